package orchestration

import (
	"errors"
)

var (
	// ErrPermissionDenied is returned by Start when the microphone could not
	// be opened.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrInvalidState is returned when an operation is not valid in the
	// current session state.
	ErrInvalidState = errors.New("invalid session state")
	// ErrSessionStopped is returned by Start when the session was stopped
	// before it finished opening.
	ErrSessionStopped = errors.New("session stopped")
	// ErrNotConfigured is returned when a required collaborator is missing.
	ErrNotConfigured = errors.New("not configured")
)

const (
	MessageMicrophoneUnavailable = "Could not access microphone. Please grant permission and try again."
	MessageConnectionError       = "A connection error occurred."
	MessageAudioOutputError      = "Could not open audio output."
)

// SessionError is what the error callback receives: a message fit for the
// user and the underlying cause.
type SessionError struct {
	Message string
	Err     error
}

func (e *SessionError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *SessionError) Unwrap() error { return e.Err }
