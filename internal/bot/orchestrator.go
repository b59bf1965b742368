package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"sheetpilot/internal/config"
	"sheetpilot/internal/logging"
	"sheetpilot/internal/quarter"
	"sheetpilot/internal/wait"
)

// Credentials are the login identity for the form provider.
type Credentials struct {
	Email    string
	Password string
}

type loginRunner interface {
	Login(ctx context.Context, email, password string, contextIndex int) error
}

type formFiller interface {
	WaitReady(ctx context.Context, contextIndex int) bool
	FillFields(ctx context.Context, fields map[string]string, contextIndex int) error
}

type submitRunner interface {
	Submit(ctx context.Context, contextIndex int) (bool, error)
}

type browserControl interface {
	Launch() error
	OpenContext(index int) error
	NavigateTo(index int, url string, timeout time.Duration) error
	CloseAll()
}

// Deps are the collaborators an Orchestrator drives. All are required
// except Logger.
type Deps struct {
	Config   config.Config
	Browser  browserControl
	Login    loginRunner
	Filler   formFiller
	Verifier submitRunner
	Quarters *quarter.Table
	Target   quarter.Definition
	Logger   logging.Logger
}

// Orchestrator runs timesheet rows through the form one at a time on
// context 0. Row-scoped failures are recorded and the batch moves on;
// only launch/login failures and cancellation stop it.
type Orchestrator struct {
	cfg      config.Config
	browser  browserControl
	login    loginRunner
	filler   formFiller
	verifier submitRunner
	quarters *quarter.Table
	target   quarter.Definition
	logger   logging.Logger

	// Progress, when set, receives coarse percentage milestones.
	Progress func(percent int, message string)

	started bool
}

func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		cfg:      deps.Config,
		browser:  deps.Browser,
		login:    deps.Login,
		filler:   deps.Filler,
		verifier: deps.Verifier,
		quarters: deps.Quarters,
		target:   deps.Target,
		logger:   logging.OrNop(deps.Logger),
	}
}

// Start launches the browser and opens context 0. Safe to call more
// than once.
func (o *Orchestrator) Start() error {
	if o.started {
		return nil
	}
	if err := o.browser.Launch(); err != nil {
		return err
	}
	if err := o.browser.OpenContext(0); err != nil {
		return err
	}
	o.started = true
	return nil
}

// Close tears the browser down. All errors are swallowed.
func (o *Orchestrator) Close() {
	o.browser.CloseAll()
	o.started = false
}

// Login starts the browser if needed and runs the login sequence on
// context 0.
func (o *Orchestrator) Login(ctx context.Context, creds Credentials) error {
	if err := o.Start(); err != nil {
		return err
	}
	return o.login.Login(ctx, creds.Email, creds.Password, 0)
}

// RunAutomation submits rows against the target quarter's form. The
// returned result always covers every row: submitted, failed with a
// message, or silently skipped when already complete.
func (o *Orchestrator) RunAutomation(ctx context.Context, rows []Row, creds Credentials, token *Token) BatchResult {
	res := BatchResult{TotalRows: len(rows)}
	if token == nil {
		token = NewToken()
	}
	if token.Cancelled() {
		res.recordError(-1, "Automation cancelled")
		return res.finalize()
	}
	token.OnCancel(func() {
		o.logger.Warn("cancellation requested, closing browser")
		o.Close()
	})

	o.report(5, "Starting browser")
	if err := o.Start(); err != nil {
		res.recordError(-1, fmt.Sprintf("Failed to start browser: %v", err))
		return res.finalize()
	}

	o.report(10, "Logging in")
	if err := o.login.Login(ctx, creds.Email, creds.Password, 0); err != nil {
		res.recordError(-1, fmt.Sprintf("Login failed: %v", err))
		return res.finalize()
	}
	if token.Cancelled() {
		res.recordError(-1, "Automation cancelled")
		return res.finalize()
	}
	o.report(20, "Login complete")

	for i, row := range rows {
		if token.Cancelled() {
			res.recordError(-1, "Automation cancelled")
			break
		}
		o.report(20+(80*i)/max(len(rows), 1), fmt.Sprintf("Submitting row %d of %d", i+1, len(rows)))

		submitted, err := o.submitRow(ctx, i, row)
		if err != nil {
			o.logger.Error("row %d failed: %v", i, err)
			res.recordError(i, err.Error())
			o.recover(i)
			continue
		}
		if submitted {
			res.SubmittedIndices = append(res.SubmittedIndices, i)
		}
	}

	o.report(100, "Batch complete")
	return res.finalize()
}

// submitRow returns (false, nil) for rows skipped as already complete.
func (o *Orchestrator) submitRow(ctx context.Context, index int, row Row) (bool, error) {
	if strings.EqualFold(strings.TrimSpace(row[o.cfg.StatusColumn]), o.cfg.CompleteValue) {
		o.logger.Info("row %d already %s, skipping", index, o.cfg.CompleteValue)
		return false, nil
	}

	fields := row.Fields()
	if missing := missingRequired(fields); len(missing) > 0 {
		return false, fmt.Errorf("Missing required fields: %s", strings.Join(missing, ", "))
	}

	iso, err := quarter.NormalizeRowDate(fields["date"])
	if err != nil {
		return false, fmt.Errorf("Invalid date %q: %v", fields["date"], err)
	}
	def := o.quarters.ResolveForDate(iso)
	if def == nil {
		return false, errors.New(o.quarters.ValidateAvailability(iso))
	}
	if def.ID != o.target.ID {
		return false, fmt.Errorf("Date %s belongs to %s but the active form is %s", fields["date"], def.Name, o.target.Name)
	}
	fields["date"] = formDate(iso)

	if !o.filler.WaitReady(ctx, 0) {
		return false, errors.New("Form did not become ready")
	}
	return o.fillAndSubmit(ctx, fields)
}

// fillAndSubmit is the three-level retry: submit, quick retry without
// re-filling, then a delayed full re-fill and final retry.
func (o *Orchestrator) fillAndSubmit(ctx context.Context, fields map[string]string) (bool, error) {
	if err := o.filler.FillFields(ctx, fields, 0); err != nil {
		return false, err
	}
	if !o.cfg.SubmitEnabled {
		o.logger.Warn("submit disabled, row filled but not submitted")
		return true, nil
	}

	ok, err := o.verifier.Submit(ctx, 0)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	o.logger.Warn("submission unverified, retrying without re-fill")
	wait.Sleep(ctx, o.cfg.SubmitQuickRetryWait)
	ok, err = o.verifier.Submit(ctx, 0)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	o.logger.Warn("submission unverified again, re-filling after delay")
	wait.Sleep(ctx, o.cfg.SubmitFullRetryWait)
	if err := o.filler.FillFields(ctx, fields, 0); err != nil {
		return false, err
	}
	ok, err = o.verifier.Submit(ctx, 0)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return false, errors.New("submission failed after 3 attempts")
}

// recover navigates context 0 back to the form so the next row starts
// from a known page. Failures are logged only.
func (o *Orchestrator) recover(index int) {
	o.logger.Info("recovering after row %d, navigating back to form", index)
	if err := o.browser.NavigateTo(0, o.target.FormURL, o.cfg.NavigationTimeout); err != nil {
		o.logger.Warn("recovery navigation failed: %v", err)
	}
}

func (o *Orchestrator) report(percent int, message string) {
	if o.Progress != nil {
		o.Progress(percent, message)
	}
}

func missingRequired(fields map[string]string) []string {
	var missing []string
	for _, key := range config.RequiredFields() {
		v := strings.ToLower(strings.TrimSpace(fields[key]))
		if v == "" || v == "nan" || v == "none" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// formDate renders an ISO date the way the form's date input expects.
func formDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("01/02/2006")
}
