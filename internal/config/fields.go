package config

// FieldType distinguishes how a form field accepts input.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeDropdown FieldType = "dropdown"
)

// FieldDescriptor is the static definition of one logical form field.
type FieldDescriptor struct {
	Key      string
	Label    string
	Locator  string
	Type     FieldType
	Optional bool
}

// FieldDefinitions returns the form's field descriptors keyed by field key.
func FieldDefinitions() map[string]FieldDescriptor {
	defs := map[string]FieldDescriptor{}
	for _, d := range fieldList() {
		defs[d.Key] = d
	}
	return defs
}

// FieldOrder is the order fields are filled in. Dropdown fields that filter
// on earlier inputs come before free-text ones.
func FieldOrder() []string {
	return []string{"project_code", "date", "hours", "tool", "task_description", "detail_code"}
}

// CriticalFields are checked for inline validation errors after filling;
// a validation error on one of these aborts the row.
func CriticalFields() map[string]bool {
	return map[string]bool{
		"project_code":     true,
		"date":             true,
		"hours":            true,
		"task_description": true,
	}
}

// RequiredFields must be present and non-empty before a row touches the form.
func RequiredFields() []string {
	return []string{"hours", "project_code", "date"}
}

// DropdownLabelKeywords flag a field as dropdown-like when its label
// contains one of them (lowercased comparison).
func DropdownLabelKeywords() []string {
	return []string{"project", "tool", "detail charge code"}
}

func fieldList() []FieldDescriptor {
	return []FieldDescriptor{
		{
			Key:     "project_code",
			Label:   "Project",
			Locator: "input[aria-label='Project']",
			Type:    FieldTypeDropdown,
		},
		{
			Key:     "date",
			Label:   "Date",
			Locator: "input[placeholder='mm/dd/yyyy']",
			Type:    FieldTypeText,
		},
		{
			Key:     "hours",
			Label:   "Hours",
			Locator: "input[aria-label='Hours']",
			Type:    FieldTypeText,
		},
		{
			Key:     "task_description",
			Label:   "Task Description",
			Locator: "role=textbox[name='Task Description']",
			Type:    FieldTypeText,
		},
		{
			Key:      "tool",
			Label:    "Tool",
			Locator:  "input[aria-label*='Tool']",
			Type:     FieldTypeDropdown,
			Optional: true,
		},
		{
			Key:      "detail_code",
			Label:    "Detail Charge Code",
			Locator:  "input[aria-label='Detail Charge Code']",
			Type:     FieldTypeDropdown,
			Optional: true,
		},
	}
}
