package bot

import "sync"

// Token signals cooperative cancellation of a running batch. Callbacks
// registered through OnCancel fire exactly once, on the goroutine that
// calls Cancel (or immediately, when registered after cancellation).
type Token struct {
	mu        sync.Mutex
	cancelled bool
	callbacks []func()
}

// NewToken returns a fresh, uncancelled token.
func NewToken() *Token {
	return &Token{}
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Cancel marks the token cancelled and runs any registered callbacks.
// Subsequent calls are no-ops.
func (t *Token) Cancel() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	cbs := t.callbacks
	t.callbacks = nil
	t.mu.Unlock()

	for _, cb := range cbs {
		cb()
	}
}

// OnCancel registers fn to run when the token is cancelled. If the token
// is already cancelled, fn runs before OnCancel returns.
func (t *Token) OnCancel(fn func()) {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		fn()
		return
	}
	t.callbacks = append(t.callbacks, fn)
	t.mu.Unlock()
}
