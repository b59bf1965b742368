package browser

import (
	"errors"
	"fmt"
)

// ErrNotLaunched indicates an operation before Launch succeeded.
var ErrNotLaunched = errors.New("browser not launched")

// LaunchError wraps a failure to start the browser process.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("browser launch failed: %v", e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// NotStartedError indicates that a context index was never opened.
type NotStartedError struct {
	Index int
}

func (e *NotStartedError) Error() string {
	return fmt.Sprintf("browser context %d not started", e.Index)
}

// NavigationError wraps a failed page navigation.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }
