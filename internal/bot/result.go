package bot

import (
	"strings"

	"sheetpilot/internal/config"
)

// Row is one timesheet entry keyed by spreadsheet column label
// ("Project", "Date", "Hours", ...). Field keys are accepted as a
// fallback so programmatic callers don't have to go through labels.
type Row map[string]string

// Fields projects the row onto the form's field keys, trimming values.
// Columns with no matching field descriptor are dropped.
func (r Row) Fields() map[string]string {
	out := make(map[string]string, len(r))
	for key, desc := range config.FieldDefinitions() {
		if v, ok := r[desc.Label]; ok {
			out[key] = strings.TrimSpace(v)
		} else if v, ok := r[key]; ok {
			out[key] = strings.TrimSpace(v)
		}
	}
	return out
}

// RowError is one failure inside a batch. Index -1 marks failures that
// precede or span rows (launch, login, cancellation).
type RowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BatchResult summarizes one RunAutomation call. Rows skipped because
// they were already complete appear in neither SubmittedIndices nor
// Errors.
type BatchResult struct {
	Success          bool       `json:"success"`
	SubmittedIndices []int      `json:"submittedIndices"`
	Errors           []RowError `json:"errors"`
	TotalRows        int        `json:"totalRows"`
	SuccessCount     int        `json:"successCount"`
	FailureCount     int        `json:"failureCount"`
}

func (b *BatchResult) recordError(index int, message string) {
	b.Errors = append(b.Errors, RowError{Index: index, Message: message})
}

func (b *BatchResult) finalize() BatchResult {
	b.SuccessCount = len(b.SubmittedIndices)
	b.FailureCount = len(b.Errors)
	b.Success = b.SuccessCount > 0
	return *b
}
