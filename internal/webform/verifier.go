package webform

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"sheetpilot/internal/config"
	"sheetpilot/internal/logging"
	"sheetpilot/internal/wait"
)

// Verifier clicks the submit control and decides whether the submission
// succeeded by watching both network responses and DOM success markers. The
// form sometimes confirms only via one of the two signals, so either one
// counts.
type Verifier struct {
	driver func(int) (formDriver, error)
	target Target
	cfg    config.Config
	logger logging.Logger

	mu        sync.Mutex
	observers map[int]observerEntry
}

// observerEntry ties a context's observer to the page it is attached to.
// When the session is relaunched the page changes and the observer must be
// re-attached, or submissions would verify false forever.
type observerEntry struct {
	pageKey any
	obs     *responseObserver
}

// NewVerifier creates a submission verifier for the given form target.
func NewVerifier(pages pageSource, target Target, cfg config.Config, logger logging.Logger) *Verifier {
	return newVerifier(resolveDriver(pages), target, cfg, logger)
}

func newVerifier(driver func(int) (formDriver, error), target Target, cfg config.Config, logger logging.Logger) *Verifier {
	return &Verifier{
		driver:    driver,
		target:    target,
		cfg:       cfg,
		logger:    logging.OrNop(logger),
		observers: map[int]observerEntry{},
	}
}

// Submit clicks the submit control and waits for a success signal. It
// returns (false, nil) when the submission was attempted but never
// confirmed; that is the retry policy's signal, not an error.
func (v *Verifier) Submit(ctx context.Context, contextIndex int) (bool, error) {
	d, err := v.driver(contextIndex)
	if err != nil {
		return false, err
	}

	obs := v.observer(d, contextIndex)
	obs.arm()
	defer obs.disarm()

	selector, found := v.findSubmitButton(d)
	if !found {
		return false, &SubmitButtonNotFoundError{}
	}
	if err := d.Click(selector); err != nil {
		return false, err
	}
	v.logger.Debug("submit clicked, waiting for confirmation")

	confirmed := wait.Until(ctx, wait.PollConfig{
		Interval:    v.cfg.PollInterval,
		MaxInterval: v.cfg.PollMaxInterval,
		Timeout:     v.cfg.VerifyTimeout,
		Multiplier:  v.cfg.PollMultiplier,
	}, func() bool {
		return obs.hasCandidate() || v.domSuccessVisible(d)
	})

	if !confirmed {
		v.logger.Warn("submission not confirmed within %s", v.cfg.VerifyTimeout)
		return false, nil
	}
	if ids := obs.correlationIDs(); len(ids) > 0 {
		v.logger.Info("submission confirmed: %v", ids)
	} else {
		v.logger.Info("submission confirmed")
	}
	return true, nil
}

// findSubmitButton tries the selector candidates in order and returns the
// first visible one.
func (v *Verifier) findSubmitButton(d formDriver) (string, bool) {
	for _, selector := range config.SubmitButtonLocators() {
		if d.Visible(selector) {
			v.logger.Debug("submit button matched %q", selector)
			return selector, true
		}
	}
	return "", false
}

// domSuccessVisible checks the page for a success marker element or a
// success phrase in the confirmation content.
func (v *Verifier) domSuccessVisible(d formDriver) bool {
	for _, selector := range config.SuccessMarkerSelectors() {
		if d.Visible(selector) {
			return true
		}
	}
	body := strings.ToLower(d.BodyText())
	if body == "" {
		return false
	}
	for _, indicator := range config.SuccessBodyIndicators() {
		if strings.Contains(body, strings.ToLower(indicator)) {
			return true
		}
	}
	return false
}

// observer returns the response observer for the context, attaching a
// listener on first use and re-attaching whenever the underlying page has
// been replaced (e.g. after a browser relaunch).
func (v *Verifier) observer(d formDriver, contextIndex int) *responseObserver {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := d.PageKey()
	if entry, ok := v.observers[contextIndex]; ok && entry.pageKey == key {
		return entry.obs
	}
	obs := &responseObserver{
		patterns:  v.target.SuccessURLPatterns,
		statusMin: v.cfg.SuccessStatusMin,
		statusMax: v.cfg.SuccessStatusMax,
		logger:    v.logger,
	}
	d.OnResponse(obs.onResponse)
	v.observers[contextIndex] = observerEntry{pageKey: key, obs: obs}
	return obs
}

// responseObserver records responses while armed and tracks candidate
// successes: responses matching a success URL pattern with a status inside
// the configured range.
type responseObserver struct {
	patterns  []string
	statusMin int
	statusMax int
	logger    logging.Logger

	mu         sync.Mutex
	armed      bool
	candidates int
	ids        map[string]string
}

func (o *responseObserver) arm() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.armed = true
	o.candidates = 0
	o.ids = map[string]string{}
}

func (o *responseObserver) disarm() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.armed = false
}

func (o *responseObserver) hasCandidate() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.candidates > 0
}

func (o *responseObserver) correlationIDs() map[string]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := map[string]string{}
	for k, val := range o.ids {
		out[k] = val
	}
	return out
}

func (o *responseObserver) isArmed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.armed
}

// onResponse is the page listener. The body is fetched only for responses
// that already pass the status and URL filters.
func (o *responseObserver) onResponse(url string, status int, body func() string) {
	if !o.isArmed() {
		return
	}
	text := ""
	if status >= o.statusMin && status <= o.statusMax && matchesAny(url, o.patterns) {
		text = body()
	}
	o.recordRaw(url, status, text)
}

// recordRaw applies the candidate filters and records a response. Split from
// onResponse so the filter logic is testable without a live page.
func (o *responseObserver) recordRaw(url string, status int, body string) {
	if !o.isArmed() {
		return
	}
	o.logger.Debug("response %d %s", status, url)

	if status < o.statusMin || status > o.statusMax {
		return
	}
	if !matchesAny(url, o.patterns) {
		return
	}
	ids := extractCorrelationIDs(body)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.armed {
		return
	}
	o.candidates++
	for k, val := range ids {
		o.ids[k] = val
	}
}

// extractCorrelationIDs pulls submission id / token / request id out of a
// JSON response body for diagnostics. Non-JSON bodies yield nothing.
func extractCorrelationIDs(body string) map[string]string {
	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil
	}
	ids := map[string]string{}
	for _, key := range []string{"submissionId", "submission_id", "token", "requestId", "request_id"} {
		if val, ok := payload[key].(string); ok && val != "" {
			ids[key] = val
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}
