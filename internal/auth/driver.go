package auth

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"

	"sheetpilot/internal/config"
)

// PageResolver resolves a browsing context index to its page.
type PageResolver interface {
	Page(index int) (playwright.Page, error)
}

// playwrightDriver adapts a Playwright page to the sequencer's pageDriver.
type playwrightDriver struct {
	page playwright.Page
}

func (d *playwrightDriver) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (d *playwrightDriver) WaitFor(ctx context.Context, selector string, state config.WaitCondition, timeout time.Duration) error {
	return d.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   waitState(state),
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (d *playwrightDriver) Fill(ctx context.Context, locator, value string) error {
	return d.page.Locator(locator).First().Fill(value)
}

func (d *playwrightDriver) Click(ctx context.Context, locator string) error {
	return d.page.Locator(locator).First().Click()
}

func (d *playwrightDriver) WaitForLoad(ctx context.Context, timeout time.Duration) error {
	return d.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateLoad,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func waitState(state config.WaitCondition) *playwright.WaitForSelectorState {
	switch state {
	case config.WaitHidden:
		return playwright.WaitForSelectorStateHidden
	case config.WaitAttached:
		return playwright.WaitForSelectorStateAttached
	case config.WaitDetached:
		return playwright.WaitForSelectorStateDetached
	default:
		return playwright.WaitForSelectorStateVisible
	}
}
