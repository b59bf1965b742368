package webform

import (
	"context"
	"fmt"
	"strings"

	"sheetpilot/internal/config"
	"sheetpilot/internal/logging"
	"sheetpilot/internal/wait"
)

// Filler writes row values into the form's fields.
type Filler struct {
	driver func(int) (formDriver, error)
	cfg    config.Config
	defs   map[string]config.FieldDescriptor
	logger logging.Logger
}

// NewFiller creates a form interaction surface over the given page source.
func NewFiller(pages pageSource, cfg config.Config, logger logging.Logger) *Filler {
	return newFiller(resolveDriver(pages), cfg, logger)
}

func newFiller(driver func(int) (formDriver, error), cfg config.Config, logger logging.Logger) *Filler {
	return &Filler{
		driver: driver,
		cfg:    cfg,
		defs:   config.FieldDefinitions(),
		logger: logging.OrNop(logger),
	}
}

func (f *Filler) pollConfig() wait.PollConfig {
	return wait.PollConfig{
		Interval:    f.cfg.PollInterval,
		MaxInterval: f.cfg.PollMaxInterval,
		Timeout:     f.cfg.GlobalTimeout,
		Multiplier:  f.cfg.PollMultiplier,
	}
}

// WaitReady blocks until the form is usable: the project field is visible
// and enabled. Returns false when the form never settles.
func (f *Filler) WaitReady(ctx context.Context, contextIndex int) bool {
	d, err := f.driver(contextIndex)
	if err != nil {
		return false
	}
	project, ok := f.defs["project_code"]
	if !ok {
		return false
	}
	return wait.Until(ctx, f.pollConfig(), func() bool {
		return d.Visible(project.Locator) && d.Enabled(project.Locator)
	})
}

// FillFields writes every present, non-empty field in the configured order,
// skipping keys without a descriptor. The tool field's locator is overridden
// when the row's project code maps to a known tool label.
func (f *Filler) FillFields(ctx context.Context, fields map[string]string, contextIndex int) error {
	projectCode := strings.TrimSpace(fields["project_code"])

	for _, key := range config.FieldOrder() {
		value, ok := fields[key]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		desc, ok := f.defs[key]
		if !ok {
			continue
		}
		if key == "tool" {
			if label, ok := f.cfg.ToolLabelOverrides[projectCode]; ok {
				desc.Locator = fmt.Sprintf("input[aria-label*='%s']", label)
			}
		}
		if err := f.FillField(ctx, desc, value, contextIndex); err != nil {
			if desc.Optional {
				f.logger.Warn("optional field %q failed, continuing: %v", desc.Label, err)
				continue
			}
			return err
		}
		wait.Sleep(ctx, f.cfg.FieldDelay)
	}
	return nil
}

// FillField waits for the field to become visible, replaces its content with
// value, runs best-effort dropdown assistance, and checks critical fields
// for inline validation errors.
func (f *Filler) FillField(ctx context.Context, desc config.FieldDescriptor, value string, contextIndex int) error {
	d, err := f.driver(contextIndex)
	if err != nil {
		return err
	}

	visible := wait.Until(ctx, f.pollConfig(), func() bool {
		return d.Visible(desc.Locator)
	})
	if !visible {
		return &FieldNotVisibleError{Field: desc.Label}
	}

	if err := d.Clear(desc.Locator); err != nil {
		f.logger.Debug("field %q: clear failed, relying on fill: %v", desc.Label, err)
	}
	if err := d.Fill(desc.Locator, value); err != nil {
		return fmt.Errorf("fill field %q: %w", desc.Label, err)
	}
	f.logger.Debug("filled field %q", desc.Label)

	if f.isDropdown(desc, d) {
		f.assistDropdown(ctx, desc, d)
	}

	if config.CriticalFields()[desc.Key] {
		if msg := f.findValidationError(d, desc); msg != "" {
			return &FieldValidationError{Field: desc.Label, Message: msg}
		}
	}
	return nil
}

// isDropdown decides whether the field needs keyboard option selection,
// either by known label keywords or by ARIA hints on the element itself.
func (f *Filler) isDropdown(desc config.FieldDescriptor, d formDriver) bool {
	if desc.Type == config.FieldTypeDropdown {
		return true
	}
	label := strings.ToLower(desc.Label)
	for _, keyword := range config.DropdownLabelKeywords() {
		if strings.Contains(label, keyword) {
			return true
		}
	}
	if d == nil {
		return false
	}
	if d.Attribute(desc.Locator, "role") == "combobox" {
		return true
	}
	switch d.Attribute(desc.Locator, "aria-haspopup") {
	case "listbox", "menu", "true":
		return true
	}
	return false
}

// assistDropdown selects the first filtered option with ArrowDown + Enter.
// Every failure here is logged and swallowed: dropdown assistance is
// best-effort and must never abort the fill.
func (f *Filler) assistDropdown(ctx context.Context, desc config.FieldDescriptor, d formDriver) {
	wait.Sleep(ctx, f.cfg.DropdownPopulateDelay)

	if err := d.Press(desc.Locator, "ArrowDown"); err != nil {
		f.logger.Warn("dropdown %q: ArrowDown failed: %v", desc.Label, err)
		return
	}
	wait.Sleep(ctx, f.cfg.DropdownHighlightDelay)

	if err := d.Press(desc.Locator, "Enter"); err != nil {
		f.logger.Warn("dropdown %q: Enter failed: %v", desc.Label, err)
		return
	}
	wait.Sleep(ctx, f.cfg.DropdownCloseDelay)
}

// findValidationError scans the page for visible inline validation errors
// whose text relates to the field. Returns "" when none were found.
func (f *Filler) findValidationError(d formDriver, desc config.FieldDescriptor) string {
	for _, selector := range config.ValidationErrorSelectors() {
		for _, text := range d.VisibleTexts(selector) {
			if errorRelatesToField(text, desc) {
				return text
			}
		}
	}
	return ""
}

// errorRelatesToField judges by keyword match whether an error message
// belongs to the given field.
func errorRelatesToField(text string, desc config.FieldDescriptor) bool {
	lower := strings.ToLower(text)
	for _, word := range strings.Fields(strings.ToLower(desc.Label)) {
		if strings.Contains(lower, word) {
			return true
		}
	}
	for _, part := range strings.Split(desc.Key, "_") {
		if len(part) > 2 && strings.Contains(lower, part) {
			return true
		}
	}
	return false
}
