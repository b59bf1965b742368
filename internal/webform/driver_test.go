package webform

import (
	"time"

	"sheetpilot/internal/config"
)

// fakeFormDriver scripts page state per selector and records every
// mutating call.
type fakeFormDriver struct {
	visible map[string]bool
	enabled map[string]bool
	attrs   map[string]string // "selector|name" -> value
	texts   map[string][]string
	body    string
	fillErr map[string]error

	clickErr error
	onClick  func()

	fills   []string // "selector=value"
	clears  []string
	presses []string
	clicks  []string

	key      any
	attaches int
	handler  func(url string, status int, body func() string)
}

func newFakeFormDriver() *fakeFormDriver {
	return &fakeFormDriver{
		visible: map[string]bool{},
		enabled: map[string]bool{},
		attrs:   map[string]string{},
		texts:   map[string][]string{},
		fillErr: map[string]error{},
		key:     new(int),
	}
}

func (d *fakeFormDriver) Visible(selector string) bool { return d.visible[selector] }
func (d *fakeFormDriver) Enabled(selector string) bool { return d.enabled[selector] }

func (d *fakeFormDriver) Clear(selector string) error {
	d.clears = append(d.clears, selector)
	return nil
}

func (d *fakeFormDriver) Fill(selector, value string) error {
	if err := d.fillErr[selector]; err != nil {
		return err
	}
	d.fills = append(d.fills, selector+"="+value)
	return nil
}

func (d *fakeFormDriver) Press(selector, key string) error {
	d.presses = append(d.presses, key)
	return nil
}

func (d *fakeFormDriver) Click(selector string) error {
	d.clicks = append(d.clicks, selector)
	if d.onClick != nil {
		d.onClick()
	}
	return d.clickErr
}

func (d *fakeFormDriver) Attribute(selector, name string) string {
	return d.attrs[selector+"|"+name]
}

func (d *fakeFormDriver) VisibleTexts(selector string) []string { return d.texts[selector] }
func (d *fakeFormDriver) BodyText() string                      { return d.body }

func (d *fakeFormDriver) OnResponse(handler func(url string, status int, body func() string)) {
	d.attaches++
	d.handler = handler
}

func (d *fakeFormDriver) PageKey() any { return d.key }

// respond delivers a network response to whatever listener the current
// page carries.
func (d *fakeFormDriver) respond(url string, status int, body string) {
	if d.handler != nil {
		d.handler(url, status, func() string { return body })
	}
}

// replacePage simulates the page being torn down and recreated: a new
// identity with no listener attached.
func (d *fakeFormDriver) replacePage() {
	d.key = new(int)
	d.handler = nil
}

func staticDriver(d *fakeFormDriver) func(int) (formDriver, error) {
	return func(int) (formDriver, error) { return d, nil }
}

// fastFormConfig shrinks every polling window so timeout paths resolve
// in milliseconds.
func fastFormConfig() config.Config {
	cfg := config.Default()
	cfg.PollInterval = time.Millisecond
	cfg.PollMaxInterval = 2 * time.Millisecond
	cfg.PollMultiplier = 1.5
	cfg.GlobalTimeout = 25 * time.Millisecond
	cfg.VerifyTimeout = 25 * time.Millisecond
	cfg.FieldDelay = 0
	cfg.DropdownPopulateDelay = 0
	cfg.DropdownHighlightDelay = 0
	cfg.DropdownCloseDelay = 0
	return cfg
}
