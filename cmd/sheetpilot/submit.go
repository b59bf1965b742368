package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"sheetpilot/internal/auth"
	"sheetpilot/internal/bot"
	"sheetpilot/internal/browser"
	"sheetpilot/internal/config"
	"sheetpilot/internal/logging"
	"sheetpilot/internal/quarter"
	"sheetpilot/internal/sheet"
	"sheetpilot/internal/store"
	"sheetpilot/internal/webform"
)

type submitOptions struct {
	email     string
	password  string
	quarterID string
	dryRun    bool
	headed    bool
	record    bool
}

func newSubmitCmd(root *rootOptions) *cobra.Command {
	opts := &submitOptions{}
	cmd := &cobra.Command{
		Use:   "submit <rows-file>",
		Short: "Submit timesheet rows from an .xlsx or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd.Context(), root, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "login email (falls back to saved credentials)")
	cmd.Flags().StringVar(&opts.password, "password", "", "login password (or SHEETPILOT_PASSWORD)")
	cmd.Flags().StringVar(&opts.quarterID, "quarter", "", "quarter id to target (default: resolved from the first row's date)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "fill the form but never click submit")
	cmd.Flags().BoolVar(&opts.headed, "headed", false, "run the browser with a visible window")
	cmd.Flags().BoolVar(&opts.record, "record", false, "record row outcomes in the local database")
	return cmd
}

func runSubmit(ctx context.Context, root *rootOptions, opts *submitOptions, rowsPath string) error {
	cfg, logger, err := root.load()
	if err != nil {
		return err
	}
	if opts.dryRun {
		cfg.SubmitEnabled = false
	}
	if opts.headed {
		cfg.Headless = false
	}

	rows, err := sheet.Load(rowsPath)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println(yellow("No rows found in " + rowsPath))
		return nil
	}

	table, err := quarterTable(cfg)
	if err != nil {
		return err
	}
	target, err := resolveTarget(table, opts.quarterID, rows)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s (%s rows, form %s)\n", bold("Submitting"), target.Name, bold(strconv.Itoa(len(rows))), gray(target.FormID))

	creds, err := resolveCredentials(cfg, opts)
	if err != nil {
		return err
	}

	session := browser.NewSession(browser.Config{
		Headless:    cfg.Headless,
		BrowserPath: cfg.BrowserPath,
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.NavigationTimeout,
	}, logging.NewComponentLogger("browser", loggingConfig(cfg)))

	orch := bot.New(bot.Deps{
		Config:   cfg,
		Browser:  session,
		Login:    auth.NewSequencer(session, target.FormURL, cfg, logging.NewComponentLogger("auth", loggingConfig(cfg))),
		Filler:   webform.NewFiller(session, cfg, logging.NewComponentLogger("webform", loggingConfig(cfg))),
		Verifier: webform.NewVerifier(session, webform.NewTarget(target.FormURL, target.FormID), cfg, logging.NewComponentLogger("verify", loggingConfig(cfg))),
		Quarters: table,
		Target:   *target,
		Logger:   logger,
	})
	orch.Progress = func(percent int, message string) {
		fmt.Printf("%s %s\n", cyan(fmt.Sprintf("[%3d%%]", percent)), message)
	}
	defer orch.Close()

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	token := bot.NewToken()
	go func() {
		<-signalCtx.Done()
		token.Cancel()
	}()

	res := orch.RunAutomation(signalCtx, rows, creds, token)
	renderResult(res)

	if opts.record {
		if err := recordResult(cfg, rows, res); err != nil {
			fmt.Println(yellow("Could not record outcomes: " + err.Error()))
		}
	}
	if res.FailureCount > 0 {
		return fmt.Errorf("%d of %d rows failed", res.FailureCount, res.TotalRows)
	}
	return nil
}

// resolveTarget picks the quarter form to drive: an explicit id, or the
// quarter the first row's date falls in.
func resolveTarget(table *quarter.Table, quarterID string, rows []bot.Row) (*quarter.Definition, error) {
	if quarterID != "" {
		def := table.ByID(quarterID)
		if def == nil {
			return nil, fmt.Errorf("unknown quarter %q", quarterID)
		}
		return def, nil
	}
	for _, row := range rows {
		iso, err := quarter.NormalizeRowDate(row.Fields()["date"])
		if err != nil {
			continue
		}
		if def := table.ResolveForDate(iso); def != nil {
			return def, nil
		}
	}
	if def := table.Current(); def != nil {
		return def, nil
	}
	return nil, errors.New("could not determine a target quarter; pass --quarter")
}

func resolveCredentials(cfg config.Config, opts *submitOptions) (bot.Credentials, error) {
	email, password := opts.email, opts.password
	if password == "" {
		password = os.Getenv("SHEETPILOT_PASSWORD")
	}
	if email == "" || password == "" {
		db, err := store.Open(cfg.DatabasePath)
		if err == nil {
			defer db.Close()
			savedEmail, savedPassword, credErr := db.Credentials()
			if credErr == nil {
				if email == "" {
					email = savedEmail
				}
				if password == "" {
					password = savedPassword
				}
			}
		}
	}
	if email == "" || password == "" {
		return bot.Credentials{}, errors.New("no credentials; pass --email and --password or save them with 'sheetpilot credentials save'")
	}
	return bot.Credentials{Email: email, Password: password}, nil
}

func renderResult(res bot.BatchResult) {
	fmt.Println()
	if res.Success {
		fmt.Printf("%s %d of %d rows submitted\n", green("OK"), res.SuccessCount, res.TotalRows)
	} else {
		fmt.Printf("%s 0 of %d rows submitted\n", red("FAILED"), res.TotalRows)
	}
	for _, e := range res.Errors {
		if e.Index < 0 {
			fmt.Printf("  %s %s\n", red("batch:"), e.Message)
		} else {
			fmt.Printf("  %s %s\n", red(fmt.Sprintf("row %d:", e.Index)), e.Message)
		}
	}
	rowFailures, batchFailures := 0, 0
	for _, e := range res.Errors {
		if e.Index >= 0 {
			rowFailures++
		} else {
			batchFailures++
		}
	}
	skipped := res.TotalRows - res.SuccessCount - rowFailures
	if skipped > 0 && batchFailures == 0 {
		fmt.Printf("  %s\n", gray(fmt.Sprintf("%d rows skipped (already submitted)", skipped)))
	}
}

// recordResult mirrors the batch outcome into the local database.
func recordResult(cfg config.Config, rows []bot.Row, res bot.BatchResult) error {
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	failures := map[int]string{}
	for _, e := range res.Errors {
		if e.Index >= 0 {
			failures[e.Index] = e.Message
		}
	}
	submitted := map[int]bool{}
	for _, i := range res.SubmittedIndices {
		submitted[i] = true
	}

	for i, row := range rows {
		fields := row.Fields()
		hours, _ := strconv.ParseFloat(fields["hours"], 64)
		iso, dateErr := quarter.NormalizeRowDate(fields["date"])
		if dateErr != nil {
			iso = fields["date"]
		}
		id, err := db.SaveEntry(store.Entry{
			ProjectCode:     fields["project_code"],
			Date:            iso,
			Hours:           hours,
			TaskDescription: fields["task_description"],
			Tool:            fields["tool"],
			DetailCode:      fields["detail_code"],
		})
		if err != nil {
			return err
		}
		switch {
		case submitted[i]:
			err = db.MarkSubmitted(id)
		case failures[i] != "":
			err = db.MarkFailed(id, failures[i])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func loggingConfig(cfg config.Config) logging.Config {
	return logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr}
}
