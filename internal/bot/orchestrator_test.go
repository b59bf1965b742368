package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetpilot/internal/config"
	"sheetpilot/internal/quarter"
)

type fakeBrowser struct {
	launches  int
	opens     int
	closes    int
	navigates []string
	launchErr error
}

func (b *fakeBrowser) Launch() error {
	b.launches++
	return b.launchErr
}

func (b *fakeBrowser) OpenContext(index int) error {
	b.opens++
	return nil
}

func (b *fakeBrowser) NavigateTo(index int, url string, timeout time.Duration) error {
	b.navigates = append(b.navigates, url)
	return nil
}

func (b *fakeBrowser) CloseAll() { b.closes++ }

type fakeLogin struct {
	calls int
	err   error
}

func (l *fakeLogin) Login(ctx context.Context, email, password string, contextIndex int) error {
	l.calls++
	return l.err
}

type fakeFiller struct {
	notReady  bool
	fillErr   error
	fillCalls int
	lastFill  map[string]string
}

func (f *fakeFiller) WaitReady(ctx context.Context, contextIndex int) bool {
	return !f.notReady
}

func (f *fakeFiller) FillFields(ctx context.Context, fields map[string]string, contextIndex int) error {
	f.fillCalls++
	f.lastFill = fields
	return f.fillErr
}

type fakeVerifier struct {
	results []bool
	err     error
	calls   int
	onCall  func(call int)
}

func (v *fakeVerifier) Submit(ctx context.Context, contextIndex int) (bool, error) {
	v.calls++
	if v.onCall != nil {
		v.onCall(v.calls)
	}
	if v.err != nil {
		return false, v.err
	}
	if len(v.results) == 0 {
		return false, nil
	}
	r := v.results[0]
	v.results = v.results[1:]
	return r, nil
}

type fixture struct {
	orch     *Orchestrator
	browser  *fakeBrowser
	login    *fakeLogin
	filler   *fakeFiller
	verifier *fakeVerifier
}

func newFixture(t *testing.T, results ...bool) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.SubmitQuickRetryWait = 0
	cfg.SubmitFullRetryWait = 0

	table := quarter.NewTable(nil)
	target := table.ByID("Q1-2025")
	require.NotNil(t, target)

	f := &fixture{
		browser:  &fakeBrowser{},
		login:    &fakeLogin{},
		filler:   &fakeFiller{},
		verifier: &fakeVerifier{results: results},
	}
	f.orch = New(Deps{
		Config:   cfg,
		Browser:  f.browser,
		Login:    f.login,
		Filler:   f.filler,
		Verifier: f.verifier,
		Quarters: table,
		Target:   *target,
	})
	return f
}

func goodRow() Row {
	return Row{
		"Project":          "PRJ-100",
		"Date":             "01/15/2025",
		"Hours":            "8",
		"Task Description": "Integration work",
	}
}

func TestTokenCancelRunsCallbacksOnce(t *testing.T) {
	token := NewToken()
	count := 0
	token.OnCancel(func() { count++ })

	assert.False(t, token.Cancelled())
	token.Cancel()
	token.Cancel()
	assert.True(t, token.Cancelled())
	assert.Equal(t, 1, count)

	// Late registration fires immediately.
	late := 0
	token.OnCancel(func() { late++ })
	assert.Equal(t, 1, late)
}

func TestRowFieldsProjection(t *testing.T) {
	row := Row{
		"Project":     "  PRJ-7 ",
		"date":        "2025-02-01",
		"Hours":       "4",
		"Unrelated":   "x",
		"detail_code": "DC-1",
	}
	fields := row.Fields()
	assert.Equal(t, "PRJ-7", fields["project_code"])
	assert.Equal(t, "2025-02-01", fields["date"])
	assert.Equal(t, "4", fields["hours"])
	assert.Equal(t, "DC-1", fields["detail_code"])
	assert.NotContains(t, fields, "Unrelated")
}

func TestRunSubmitsRows(t *testing.T) {
	f := newFixture(t, true, true)
	res := f.orch.RunAutomation(context.Background(), []Row{goodRow(), goodRow()}, Credentials{}, nil)

	assert.True(t, res.Success)
	assert.Equal(t, []int{0, 1}, res.SubmittedIndices)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 2, res.TotalRows)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 0, res.FailureCount)
	assert.Equal(t, 1, f.login.calls)
	assert.Equal(t, 2, f.filler.fillCalls)
	assert.Equal(t, 2, f.verifier.calls)
	// Date was converted to the form's expected layout.
	assert.Equal(t, "01/15/2025", f.filler.lastFill["date"])
}

func TestQuickRetrySucceedsWithoutRefill(t *testing.T) {
	f := newFixture(t, false, true)
	res := f.orch.RunAutomation(context.Background(), []Row{goodRow()}, Credentials{}, nil)

	assert.Equal(t, []int{0}, res.SubmittedIndices)
	assert.Equal(t, 1, f.filler.fillCalls)
	assert.Equal(t, 2, f.verifier.calls)
}

func TestFullRetryRefillsOnce(t *testing.T) {
	f := newFixture(t, false, false, true)
	res := f.orch.RunAutomation(context.Background(), []Row{goodRow()}, Credentials{}, nil)

	assert.Equal(t, []int{0}, res.SubmittedIndices)
	assert.Equal(t, 2, f.filler.fillCalls)
	assert.Equal(t, 3, f.verifier.calls)
}

func TestRetryExhaustionFailsRow(t *testing.T) {
	f := newFixture(t, false, false, false)
	res := f.orch.RunAutomation(context.Background(), []Row{goodRow()}, Credentials{}, nil)

	assert.False(t, res.Success)
	assert.Empty(t, res.SubmittedIndices)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 0, res.Errors[0].Index)
	assert.Contains(t, res.Errors[0].Message, "3 attempts")
	assert.Equal(t, 3, f.verifier.calls)
	assert.Equal(t, 2, f.filler.fillCalls)
	// Failed row triggers a recovery navigation back to the form.
	require.Len(t, f.browser.navigates, 1)
	assert.Equal(t, f.orch.target.FormURL, f.browser.navigates[0])
}

func TestCompleteRowsAreSkipped(t *testing.T) {
	f := newFixture(t, true)
	row := goodRow()
	row["Status"] = "Submitted"
	res := f.orch.RunAutomation(context.Background(), []Row{row}, Credentials{}, nil)

	assert.False(t, res.Success)
	assert.Empty(t, res.SubmittedIndices)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 1, res.TotalRows)
	assert.Equal(t, 0, f.filler.fillCalls)
	assert.Equal(t, 0, f.verifier.calls)
}

func TestMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		row  Row
	}{
		{"empty hours", Row{"Project": "PRJ-1", "Date": "01/15/2025", "Hours": ""}},
		{"nan project", Row{"Project": "nan", "Date": "01/15/2025", "Hours": "8"}},
		{"none date", Row{"Project": "PRJ-1", "Date": "None", "Hours": "8"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, true)
			res := f.orch.RunAutomation(context.Background(), []Row{tc.row}, Credentials{}, nil)

			require.Len(t, res.Errors, 1)
			assert.Contains(t, res.Errors[0].Message, "Missing required fields")
			assert.Equal(t, 0, f.filler.fillCalls)
		})
	}
}

func TestQuarterMismatchFailsRowBeforeFilling(t *testing.T) {
	f := newFixture(t, true)
	mismatch := goodRow()
	mismatch["Date"] = "07/15/2025"
	res := f.orch.RunAutomation(context.Background(), []Row{mismatch, goodRow()}, Credentials{}, nil)

	// The mismatched row fails without touching the form; the good row
	// still goes through.
	assert.Equal(t, []int{1}, res.SubmittedIndices)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 0, res.Errors[0].Index)
	assert.Contains(t, res.Errors[0].Message, "Q3 2025")
	assert.Equal(t, 1, f.filler.fillCalls)
}

func TestDateOutsideAnyQuarter(t *testing.T) {
	f := newFixture(t, true)
	row := goodRow()
	row["Date"] = "01/15/2024"
	res := f.orch.RunAutomation(context.Background(), []Row{row}, Credentials{}, nil)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "Date must be in")
	assert.Equal(t, 0, f.filler.fillCalls)
}

func TestLoginFailureAbortsBatch(t *testing.T) {
	f := newFixture(t, true)
	f.login.err = errors.New("bad credentials")
	res := f.orch.RunAutomation(context.Background(), []Row{goodRow()}, Credentials{}, nil)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, -1, res.Errors[0].Index)
	assert.Contains(t, res.Errors[0].Message, "Login failed")
	assert.Equal(t, 0, f.filler.fillCalls)
}

func TestLaunchFailureAbortsBatch(t *testing.T) {
	f := newFixture(t, true)
	f.browser.launchErr = errors.New("no chromium")
	res := f.orch.RunAutomation(context.Background(), []Row{goodRow()}, Credentials{}, nil)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, -1, res.Errors[0].Index)
	assert.Equal(t, 0, f.login.calls)
}

func TestCancelledTokenShortCircuits(t *testing.T) {
	f := newFixture(t, true)
	token := NewToken()
	token.Cancel()
	res := f.orch.RunAutomation(context.Background(), []Row{goodRow()}, Credentials{}, token)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, RowError{Index: -1, Message: "Automation cancelled"}, res.Errors[0])
	assert.Equal(t, 0, f.browser.launches)
}

func TestCancelMidBatchClosesBrowser(t *testing.T) {
	f := newFixture(t, true, true)
	token := NewToken()
	f.verifier.onCall = func(call int) {
		if call == 1 {
			token.Cancel()
		}
	}
	res := f.orch.RunAutomation(context.Background(), []Row{goodRow(), goodRow()}, Credentials{}, token)

	// Row 0 completed before the cancel took effect, row 1 never ran.
	assert.Equal(t, []int{0}, res.SubmittedIndices)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, -1, res.Errors[0].Index)
	assert.Equal(t, 1, f.verifier.calls)
	assert.GreaterOrEqual(t, f.browser.closes, 1)
}

func TestSubmitDisabledFillsWithoutClicking(t *testing.T) {
	f := newFixture(t)
	f.orch.cfg.SubmitEnabled = false
	res := f.orch.RunAutomation(context.Background(), []Row{goodRow()}, Credentials{}, nil)

	assert.Equal(t, []int{0}, res.SubmittedIndices)
	assert.Equal(t, 1, f.filler.fillCalls)
	assert.Equal(t, 0, f.verifier.calls)
}

func TestFormNotReadyFailsRow(t *testing.T) {
	f := newFixture(t, true)
	f.filler.notReady = true
	res := f.orch.RunAutomation(context.Background(), []Row{goodRow()}, Credentials{}, nil)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "ready")
	assert.Equal(t, 0, f.filler.fillCalls)
}

func TestProgressMilestones(t *testing.T) {
	f := newFixture(t, true)
	var percents []int
	f.orch.Progress = func(p int, msg string) { percents = append(percents, p) }
	f.orch.RunAutomation(context.Background(), []Row{goodRow()}, Credentials{}, nil)

	require.NotEmpty(t, percents)
	assert.Equal(t, 5, percents[0])
	assert.Contains(t, percents, 10)
	assert.Contains(t, percents, 20)
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
}

func TestFormDate(t *testing.T) {
	assert.Equal(t, "01/15/2025", formDate("2025-01-15"))
	assert.Equal(t, "12/31/2025", formDate("2025-12-31"))
	assert.Equal(t, "bogus", formDate("bogus"))
}
