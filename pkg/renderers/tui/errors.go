package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNeedsResolution is returned for dynamic forms whose shape must be
	// resolved before they can be prompted.
	ErrNeedsResolution = errors.New("tui: form needs resolution")
	// ErrInvalidSubmission is returned when the collected values fail
	// validation.
	ErrInvalidSubmission = errors.New("tui: invalid submission")
)
