package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL means the URL matched no platform pattern. Terminal,
	// raised before any network call.
	ErrInvalidURL = errors.New("unsupported or malformed URL")

	// ErrNoCandidates is the soft-failure a strategy returns when it ran
	// but located no media. The chain continues past it.
	ErrNoCandidates = errors.New("no candidate media located")

	// ErrTooLarge means the acquired artifact exceeded the size ceiling
	// and was discarded.
	ErrTooLarge = errors.New("file exceeds size limit")

	// ErrCancelled means the per-request deadline or an external abort
	// stopped the pipeline.
	ErrCancelled = errors.New("request cancelled")
)

// TerminalError marks an acquisition failure that must not be retried:
// the method is switched immediately with zero further attempts.
type TerminalError struct {
	Err error
}

func (e *TerminalError) Error() string { return e.Err.Error() }
func (e *TerminalError) Unwrap() error { return e.Err }

// Terminal wraps err so the retry policy treats it as non-retryable.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &TerminalError{Err: err}
}

// IsTerminal reports whether err (anywhere in its chain) is terminal.
func IsTerminal(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}

// ExhaustedSourcesError is returned after every candidate URL × method
// combination failed. Cause carries the last underlying failure for
// diagnostics.
type ExhaustedSourcesError struct {
	Cause error
}

func (e *ExhaustedSourcesError) Error() string {
	if e.Cause == nil {
		return "all acquisition sources exhausted"
	}
	return fmt.Sprintf("all acquisition sources exhausted: %v", e.Cause)
}

func (e *ExhaustedSourcesError) Unwrap() error { return e.Cause }

// IsExhausted reports whether err is an exhausted-sources failure.
func IsExhausted(err error) bool {
	var ee *ExhaustedSourcesError
	return errors.As(err, &ee)
}

// UserMessage maps a terminal pipeline error to the short, classified
// string shown to end users. Raw internal errors never pass through.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidURL):
		return "That link is not supported. Send a TikTok, YouTube, Instagram or Pinterest URL."
	case errors.Is(err, ErrTooLarge):
		return "The file is too large to deliver."
	case errors.Is(err, ErrCancelled):
		return "The request timed out. Please try again."
	case IsExhausted(err):
		return "Could not fetch this content. It may be private, removed, or blocked."
	default:
		return "Something went wrong. Please try again."
	}
}
