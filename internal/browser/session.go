// Package browser owns the Playwright-driven Chromium process and its
// isolated browsing contexts. Contexts are addressed by integer index;
// index 0 is the primary context every single-context caller uses.
package browser

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"sheetpilot/internal/logging"
)

// Config configures the browser session.
type Config struct {
	Headless    bool
	BrowserPath string
	UserAgent   string
	Timeout     time.Duration
}

func (c Config) timeoutOrDefault() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 30 * time.Second
}

// Session manages one browser process and its contexts/pages.
type Session struct {
	cfg    Config
	logger logging.Logger

	mu       sync.Mutex
	pw       *playwright.Playwright
	browser  playwright.Browser
	contexts map[int]playwright.BrowserContext
	pages    map[int]playwright.Page
}

// NewSession creates an unstarted session.
func NewSession(cfg Config, logger logging.Logger) *Session {
	return &Session{
		cfg:      cfg,
		logger:   logging.OrNop(logger),
		contexts: map[int]playwright.BrowserContext{},
		pages:    map[int]playwright.Page{},
	}
}

// Launch starts the browser process. Calling Launch on an already-launched
// session is a no-op returning the existing process.
func (s *Session) Launch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil && s.browser.IsConnected() {
		return nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return &LaunchError{Err: err}
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.cfg.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--window-size=1280,800",
		},
	}
	if s.cfg.BrowserPath != "" {
		opts.ExecutablePath = playwright.String(s.cfg.BrowserPath)
	}

	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		return &LaunchError{Err: err}
	}

	s.pw = pw
	s.browser = browser
	s.logger.Info("browser launched (headless=%v)", s.cfg.Headless)
	return nil
}

// OpenContext creates the isolated browsing context for index and opens its
// page. Opening an index twice replaces nothing; the existing page stays.
func (s *Session) OpenContext(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser == nil {
		return ErrNotLaunched
	}
	if _, ok := s.pages[index]; ok {
		return nil
	}

	ctx, err := s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(s.cfg.UserAgent),
		Viewport:          &playwright.Size{Width: 1280, Height: 800},
		Locale:            playwright.String("en-US"),
		JavaScriptEnabled: playwright.Bool(true),
		ExtraHttpHeaders:  extraHeaders(),
	})
	if err != nil {
		return &LaunchError{Err: err}
	}

	if err := ctx.AddInitScript(playwright.Script{Content: playwright.String(initScript)}); err != nil {
		s.logger.Warn("context %d: init script install failed: %v", index, err)
	}

	page, err := ctx.NewPage()
	if err != nil {
		_ = ctx.Close()
		return &LaunchError{Err: err}
	}

	s.contexts[index] = ctx
	s.pages[index] = page
	s.logger.Debug("context %d opened", index)
	return nil
}

// Page returns the page for a context index.
func (s *Session) Page(index int) (playwright.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, ok := s.pages[index]
	if !ok {
		return nil, &NotStartedError{Index: index}
	}
	return page, nil
}

// NavigateTo navigates the indexed page and waits for DOM content.
func (s *Session) NavigateTo(index int, url string, timeout time.Duration) error {
	page, err := s.Page(index)
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = s.cfg.timeoutOrDefault()
	}

	s.logger.Debug("context %d: navigating to %s", index, url)
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	return nil
}

// CurrentURL returns the indexed page's URL, or "" when the context is not
// started.
func (s *Session) CurrentURL(index int) string {
	page, err := s.Page(index)
	if err != nil {
		return ""
	}
	return page.URL()
}

// CloseAll closes every context, the browser, and the driver. Individual
// close failures are logged and swallowed so teardown always completes, and
// all handles are reset so a later Launch starts clean.
func (s *Session) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for index, ctx := range s.contexts {
		if err := ctx.Close(); err != nil {
			s.logger.Warn("context %d close failed: %v", index, err)
		}
	}
	s.contexts = map[int]playwright.BrowserContext{}
	s.pages = map[int]playwright.Page{}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Warn("browser close failed: %v", err)
		}
		s.browser = nil
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			s.logger.Warn("playwright stop failed: %v", err)
		}
		s.pw = nil
	}
}
