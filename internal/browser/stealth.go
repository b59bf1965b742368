package browser

// initScript runs in every new document before page scripts. It hides the
// usual automation fingerprints the target form's scripts probe for.
const initScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'plugins', {
    get: () => [
        { name: 'Chrome PDF Plugin' },
        { name: 'Chrome PDF Viewer' },
        { name: 'Native Client' },
    ],
});
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
window.chrome = window.chrome || { runtime: {} };
`

// extraHeaders accompany every request so the session resembles a normal
// interactive browser.
func extraHeaders() map[string]string {
	return map[string]string{
		"Accept-Language":           "en-US,en;q=0.9",
		"Sec-Ch-Ua-Platform":        `"Windows"`,
		"Upgrade-Insecure-Requests": "1",
	}
}
