package webform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetpilot/internal/config"
)

func newTestFiller(d *fakeFormDriver) *Filler {
	return newFiller(staticDriver(d), fastFormConfig(), nil)
}

func TestFillFieldTimesOutWhenNeverVisible(t *testing.T) {
	d := newFakeFormDriver()
	f := newTestFiller(d)
	hours := config.FieldDefinitions()["hours"]

	err := f.FillField(context.Background(), hours, "8", 0)

	var notVisible *FieldNotVisibleError
	require.ErrorAs(t, err, &notVisible)
	assert.Equal(t, "Hours", notVisible.Field)
	assert.Empty(t, d.fills, "nothing may be written to an invisible field")
}

func TestFillFieldCriticalValidationAborts(t *testing.T) {
	d := newFakeFormDriver()
	hours := config.FieldDefinitions()["hours"]
	d.visible[hours.Locator] = true
	d.texts["[role='alert']"] = []string{"Hours must be a number"}
	f := newTestFiller(d)

	err := f.FillField(context.Background(), hours, "eight", 0)

	var validation *FieldValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "Hours", validation.Field)
	assert.Equal(t, "Hours must be a number", validation.Message)
	// The value was written before the form rejected it.
	assert.Equal(t, []string{hours.Locator + "=eight"}, d.fills)
}

func TestFillFieldIgnoresUnrelatedValidationError(t *testing.T) {
	d := newFakeFormDriver()
	hours := config.FieldDefinitions()["hours"]
	d.visible[hours.Locator] = true
	d.texts["[role='alert']"] = []string{"Date is required"}
	f := newTestFiller(d)

	assert.NoError(t, f.FillField(context.Background(), hours, "8", 0))
}

func TestFillFieldDropdownKeyboardAssist(t *testing.T) {
	d := newFakeFormDriver()
	project := config.FieldDefinitions()["project_code"]
	d.visible[project.Locator] = true
	f := newTestFiller(d)

	require.NoError(t, f.FillField(context.Background(), project, "PRJ-1", 0))
	assert.Equal(t, []string{project.Locator + "=PRJ-1"}, d.fills)
	assert.Equal(t, []string{"ArrowDown", "Enter"}, d.presses)
}

func TestFillFieldTextFieldSkipsDropdownAssist(t *testing.T) {
	d := newFakeFormDriver()
	hours := config.FieldDefinitions()["hours"]
	d.visible[hours.Locator] = true
	f := newTestFiller(d)

	require.NoError(t, f.FillField(context.Background(), hours, "8", 0))
	assert.Empty(t, d.presses)
}

func TestFillFieldsAppliesToolLocatorOverride(t *testing.T) {
	d := newFakeFormDriver()
	project := config.FieldDefinitions()["project_code"]
	override := "input[aria-label*='Special Tool']"
	d.visible[project.Locator] = true
	d.visible[override] = true

	cfg := fastFormConfig()
	cfg.ToolLabelOverrides = map[string]string{"P100": "Special Tool"}
	f := newFiller(staticDriver(d), cfg, nil)

	fields := map[string]string{"project_code": "P100", "tool": "Hammer"}
	require.NoError(t, f.FillFields(context.Background(), fields, 0))
	assert.Contains(t, d.fills, override+"=Hammer")
}

func TestFillFieldsOptionalFailureContinues(t *testing.T) {
	d := newFakeFormDriver()
	tool := config.FieldDefinitions()["tool"]
	task := config.FieldDefinitions()["task_description"]
	d.visible[tool.Locator] = true
	d.visible[task.Locator] = true
	d.fillErr[tool.Locator] = errors.New("detached")
	f := newTestFiller(d)

	fields := map[string]string{"tool": "Hammer", "task_description": "work"}
	require.NoError(t, f.FillFields(context.Background(), fields, 0))
	assert.Equal(t, []string{task.Locator + "=work"}, d.fills)
}

func TestFillFieldsRequiredFailureAborts(t *testing.T) {
	d := newFakeFormDriver()
	f := newTestFiller(d)

	// date never becomes visible, and date is not optional
	fields := map[string]string{"date": "01/15/2025"}
	err := f.FillFields(context.Background(), fields, 0)

	var notVisible *FieldNotVisibleError
	require.ErrorAs(t, err, &notVisible)
	assert.Equal(t, "Date", notVisible.Field)
}

func TestWaitReady(t *testing.T) {
	d := newFakeFormDriver()
	project := config.FieldDefinitions()["project_code"]
	f := newTestFiller(d)

	assert.False(t, f.WaitReady(context.Background(), 0), "invisible form is not ready")

	d.visible[project.Locator] = true
	assert.False(t, f.WaitReady(context.Background(), 0), "visible but disabled form is not ready")

	d.enabled[project.Locator] = true
	assert.True(t, f.WaitReady(context.Background(), 0))
}

func TestIsDropdownByDescriptor(t *testing.T) {
	f := newTestFiller(newFakeFormDriver())
	defs := config.FieldDefinitions()

	assert.True(t, f.isDropdown(defs["project_code"], nil))
	assert.True(t, f.isDropdown(defs["tool"], nil))
	assert.True(t, f.isDropdown(defs["detail_code"], nil))
	assert.False(t, f.isDropdown(defs["hours"], nil))
	assert.False(t, f.isDropdown(defs["date"], nil))
}

func TestIsDropdownByLabelKeyword(t *testing.T) {
	f := newTestFiller(newFakeFormDriver())

	custom := config.FieldDescriptor{
		Key:     "extra",
		Label:   "Secondary Tool",
		Locator: "#extra",
		Type:    config.FieldTypeText,
	}
	assert.True(t, f.isDropdown(custom, nil))

	plain := config.FieldDescriptor{
		Key:     "notes",
		Label:   "Notes",
		Locator: "#notes",
		Type:    config.FieldTypeText,
	}
	assert.False(t, f.isDropdown(plain, nil))
}

func TestIsDropdownByAriaHints(t *testing.T) {
	d := newFakeFormDriver()
	d.attrs["#combo|role"] = "combobox"
	d.attrs["#popup|aria-haspopup"] = "listbox"
	f := newTestFiller(d)

	combo := config.FieldDescriptor{Key: "combo", Label: "Notes", Locator: "#combo", Type: config.FieldTypeText}
	popup := config.FieldDescriptor{Key: "popup", Label: "Notes", Locator: "#popup", Type: config.FieldTypeText}
	plain := config.FieldDescriptor{Key: "plain", Label: "Notes", Locator: "#plain", Type: config.FieldTypeText}

	assert.True(t, f.isDropdown(combo, d))
	assert.True(t, f.isDropdown(popup, d))
	assert.False(t, f.isDropdown(plain, d))
}
