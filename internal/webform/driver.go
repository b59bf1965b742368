package webform

import (
	"strings"

	"github.com/playwright-community/playwright-go"
)

// pageSource resolves a browsing context index to its page.
type pageSource interface {
	Page(index int) (playwright.Page, error)
}

// formDriver is the page-operation surface the filler and verifier run
// against. Selectors address the first match.
type formDriver interface {
	Visible(selector string) bool
	Enabled(selector string) bool
	Clear(selector string) error
	Fill(selector, value string) error
	Press(selector, key string) error
	Click(selector string) error
	Attribute(selector, name string) string
	// VisibleTexts returns the trimmed, non-empty text of every visible
	// match for selector.
	VisibleTexts(selector string) []string
	BodyText() string
	// OnResponse registers a handler for every network response. The body
	// thunk fetches the response text on demand.
	OnResponse(handler func(url string, status int, body func() string))
	// PageKey identifies the underlying page, so per-page state can detect
	// when the page has been replaced.
	PageKey() any
}

func resolveDriver(pages pageSource) func(int) (formDriver, error) {
	return func(index int) (formDriver, error) {
		page, err := pages.Page(index)
		if err != nil {
			return nil, err
		}
		return &playwrightFormDriver{page: page}, nil
	}
}

type playwrightFormDriver struct {
	page playwright.Page
}

func (d *playwrightFormDriver) Visible(selector string) bool {
	visible, err := d.page.Locator(selector).First().IsVisible()
	return err == nil && visible
}

func (d *playwrightFormDriver) Enabled(selector string) bool {
	enabled, err := d.page.Locator(selector).First().IsEnabled()
	return err == nil && enabled
}

func (d *playwrightFormDriver) Clear(selector string) error {
	return d.page.Locator(selector).First().Clear()
}

func (d *playwrightFormDriver) Fill(selector, value string) error {
	return d.page.Locator(selector).First().Fill(value)
}

func (d *playwrightFormDriver) Press(selector, key string) error {
	return d.page.Locator(selector).First().Press(key)
}

func (d *playwrightFormDriver) Click(selector string) error {
	return d.page.Locator(selector).First().Click()
}

func (d *playwrightFormDriver) Attribute(selector, name string) string {
	value, err := d.page.Locator(selector).First().GetAttribute(name)
	if err != nil {
		return ""
	}
	return value
}

func (d *playwrightFormDriver) VisibleTexts(selector string) []string {
	all, err := d.page.Locator(selector).All()
	if err != nil {
		return nil
	}
	var texts []string
	for _, loc := range all {
		visible, err := loc.IsVisible()
		if err != nil || !visible {
			continue
		}
		text, err := loc.TextContent()
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func (d *playwrightFormDriver) BodyText() string {
	text, err := d.page.Locator("body").First().TextContent()
	if err != nil {
		return ""
	}
	return text
}

func (d *playwrightFormDriver) OnResponse(handler func(url string, status int, body func() string)) {
	d.page.OnResponse(func(response playwright.Response) {
		handler(response.URL(), response.Status(), func() string {
			text, err := response.Text()
			if err != nil {
				return ""
			}
			return text
		})
	})
}

func (d *playwrightFormDriver) PageKey() any {
	return d.page
}
