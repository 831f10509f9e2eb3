package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrDeclined is returned when the user answers no to the final
	// confirmation.
	ErrDeclined = errors.New("tui: submission declined")
)
