// Package wait provides the bounded-exponential condition polling used by
// every blocking point in the automation pipeline: element visibility,
// submission verification, page stabilization.
package wait

import (
	"context"
	"time"
)

// PollConfig configures bounded-exponential polling.
type PollConfig struct {
	Interval    time.Duration // initial delay between condition checks
	MaxInterval time.Duration // cap for the growing delay
	Timeout     time.Duration // total budget before giving up
	Multiplier  float64       // growth factor applied after each check
}

// DefaultPollConfig returns sensible defaults.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    100 * time.Millisecond,
		MaxInterval: 2 * time.Second,
		Timeout:     30 * time.Second,
		Multiplier:  2.0,
	}
}

func (c PollConfig) normalized() PollConfig {
	if c.Interval <= 0 {
		c.Interval = 100 * time.Millisecond
	}
	if c.MaxInterval < c.Interval {
		c.MaxInterval = c.Interval
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Multiplier < 1.0 {
		c.Multiplier = 2.0
	}
	return c
}

// Condition reports whether the awaited state has been reached.
type Condition func() bool

// Until polls cond until it returns true, the timeout elapses, or ctx is
// cancelled. It returns true only when the condition was observed; timeouts
// return false rather than an error so callers decide whether a missed
// condition is fatal.
func Until(ctx context.Context, cfg PollConfig, cond Condition) bool {
	cfg = cfg.normalized()

	deadline := time.Now().Add(cfg.Timeout)
	interval := cfg.Interval

	for {
		if ctx.Err() != nil {
			return false
		}
		if cond() {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		if interval > remaining {
			interval = remaining
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
		interval = time.Duration(float64(interval) * cfg.Multiplier)
		if interval > cfg.MaxInterval {
			interval = cfg.MaxInterval
		}
	}
}

// Sleep blocks for d or until ctx is cancelled, whichever comes first.
// It reports whether the full duration elapsed.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
