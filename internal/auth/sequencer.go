// Package auth executes the declarative login sequence against the target
// form's identity provider chain.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sheetpilot/internal/config"
	"sheetpilot/internal/logging"
	"sheetpilot/internal/wait"
)

// NavigationError reports that the login page could not be reached.
type NavigationError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// pageDriver is the slice of page behavior the sequencer needs. The
// production implementation wraps a Playwright page; tests count calls.
type pageDriver interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitFor(ctx context.Context, selector string, state config.WaitCondition, timeout time.Duration) error
	Fill(ctx context.Context, locator, value string) error
	Click(ctx context.Context, locator string) error
	WaitForLoad(ctx context.Context, timeout time.Duration) error
}

// Sequencer runs login steps in order, once per browsing context.
type Sequencer struct {
	cfg     config.Config
	steps   []config.LoginStep
	baseURL string
	driver  func(contextIndex int) (pageDriver, error)
	logger  logging.Logger

	mu       sync.Mutex
	loggedIn map[int]bool
}

// NewSequencer builds a sequencer over a page resolver. baseURL is the form
// URL login begins at.
func NewSequencer(pages PageResolver, baseURL string, cfg config.Config, logger logging.Logger) *Sequencer {
	return newSequencer(func(index int) (pageDriver, error) {
		page, err := pages.Page(index)
		if err != nil {
			return nil, err
		}
		return &playwrightDriver{page: page}, nil
	}, baseURL, cfg, logger)
}

func newSequencer(driver func(int) (pageDriver, error), baseURL string, cfg config.Config, logger logging.Logger) *Sequencer {
	return &Sequencer{
		cfg:      cfg,
		steps:    config.LoginSteps(),
		baseURL:  baseURL,
		driver:   driver,
		logger:   logging.OrNop(logger),
		loggedIn: map[int]bool{},
	}
}

// LoggedIn reports whether the context has completed login.
func (s *Sequencer) LoggedIn(contextIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn[contextIndex]
}

// Login navigates to the base URL and executes every configured step. A
// context that already logged in is a no-op; a context never logs in twice
// within the sequencer's lifetime.
func (s *Sequencer) Login(ctx context.Context, email, password string, contextIndex int) error {
	if s.LoggedIn(contextIndex) {
		s.logger.Debug("context %d already logged in, skipping", contextIndex)
		return nil
	}

	driver, err := s.driver(contextIndex)
	if err != nil {
		return err
	}

	s.logger.Info("starting login for %s (%d steps)", logging.RedactEmail(email), len(s.steps))

	if err := s.navigateWithRetries(ctx, driver); err != nil {
		return err
	}

	for i, step := range s.steps {
		s.logger.Debug("login step %d/%d: %s", i+1, len(s.steps), step.Name)

		err := s.executeStep(ctx, driver, step, email, password)
		switch {
		case err == nil:
		case step.Optional:
			s.logger.Warn("optional step %q failed, continuing: %v", step.Name, err)
		default:
			return fmt.Errorf("login step %q: %w", step.Name, err)
		}

		wait.Sleep(ctx, s.cfg.StepDelay)
	}

	s.mu.Lock()
	s.loggedIn[contextIndex] = true
	s.mu.Unlock()

	s.logger.Info("login complete for context %d", contextIndex)
	return nil
}

func (s *Sequencer) navigateWithRetries(ctx context.Context, driver pageDriver) error {
	retries := s.cfg.NavigationRetries
	if retries <= 0 {
		retries = 3
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		lastErr = driver.Navigate(ctx, s.baseURL, s.cfg.NavigationTimeout)
		if lastErr == nil {
			return nil
		}
		s.logger.Warn("navigation attempt %d/%d failed: %v", attempt, retries, lastErr)

		if attempt < retries {
			// Give the page a growing settle window before the next try.
			wait.Sleep(ctx, time.Duration(attempt)*s.cfg.NavigationSettleDelay)
			if err := driver.WaitFor(ctx, "body", config.WaitVisible, s.cfg.NavigationTimeout); err != nil {
				s.logger.Debug("body settle wait failed: %v", err)
			}
		}
	}
	return &NavigationError{URL: s.baseURL, Attempts: retries, Err: lastErr}
}

func (s *Sequencer) executeStep(ctx context.Context, driver pageDriver, step config.LoginStep, email, password string) error {
	switch step.Action {
	case config.StepWait:
		state := step.WaitCondition
		if state == "" {
			state = config.WaitVisible
		}
		return driver.WaitFor(ctx, step.Selector, state, s.cfg.GlobalTimeout)

	case config.StepInput:
		value := step.ValueKey
		switch step.ValueKey {
		case "email":
			value = email
		case "password":
			value = password
		}
		if step.Sensitive {
			s.logger.Debug("filling %s with <redacted>", step.Locator)
		} else {
			s.logger.Debug("filling %s with %q", step.Locator, value)
		}
		// Sensitive values are still written in one bulk fill; sensitivity
		// only changes what gets logged.
		return driver.Fill(ctx, step.Locator, value)

	case config.StepClick:
		if err := driver.Click(ctx, step.Locator); err != nil {
			return err
		}
		if step.ExpectsNavigation {
			if err := driver.WaitForLoad(ctx, s.cfg.NavigationTimeout); err != nil {
				s.logger.Debug("post-click load wait: %v", err)
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown login action %q", step.Action)
	}
}
