package config

// SubmitButtonLocators lists submit-control selector candidates in
// preference order; the first visible match wins.
func SubmitButtonLocators() []string {
	return []string{
		"button[data-client-id='form_submit_btn']",
		"button:has-text('Submit')",
		"button:has-text('Save')",
		"button:has-text('Send')",
		"input[type='submit']",
		"button[type='submit']",
		"button.submit",
		"button[aria-label*='submit']",
		"button[aria-label*='save']",
		"button[title*='submit']",
		"button[title*='save']",
	}
}

// SuccessMarkerSelectors are DOM indicators that a submission landed.
func SuccessMarkerSelectors() []string {
	return []string{
		".submission-success",
		".form-success",
		"[data-submission-status='success']",
		".confirmation-message",
		".success-message",
		".alert-success",
	}
}

// SuccessBodyIndicators are phrases that mark the confirmation content as
// a success when no structural marker is present. Matched case-insensitively.
func SuccessBodyIndicators() []string {
	return []string{
		"submissionId",
		"confirmation",
		"success! we've captured your submission",
		"form submitted successfully",
		"thank you for your submission",
	}
}

// ValidationErrorSelectors locate inline field validation errors.
func ValidationErrorSelectors() []string {
	return []string{
		"[aria-invalid='true']",
		"[role='alert']",
		".field-error",
		".validation-error",
		".error-message",
		".has-error",
		".invalid-feedback",
	}
}
