package events

const (
	// KindSessionStateChanged identifies a session state transition.
	KindSessionStateChanged Kind = "session.state_changed"
	// KindSessionFailed identifies a session ending on an error.
	KindSessionFailed Kind = "session.failed"
	// KindSessionResetGuard identifies the reset guard being raised or lowered.
	KindSessionResetGuard Kind = "session.reset_guard"
)

// SessionStateChanged carries a session state transition.
type SessionStateChanged struct {
	Base
	From string
	To   string
}

// NewSessionStateChanged creates a session state changed event.
func NewSessionStateChanged(generation uint64, from, to string) SessionStateChanged {
	return SessionStateChanged{Base: NewBase(KindSessionStateChanged, generation), From: from, To: to}
}

// SessionFailed carries the user-facing message and cause of a session
// failure.
type SessionFailed struct {
	Base
	Message string
	Err     error
}

// NewSessionFailed creates a session failed event.
func NewSessionFailed(generation uint64, message string, err error) SessionFailed {
	return SessionFailed{Base: NewBase(KindSessionFailed, generation), Message: message, Err: err}
}

// SessionResetGuard reports whether inbound processing is currently
// suppressed by a reset.
type SessionResetGuard struct {
	Base
	Active bool
}

// NewSessionResetGuard creates a reset guard event.
func NewSessionResetGuard(active bool) SessionResetGuard {
	return SessionResetGuard{Base: NewBase(KindSessionResetGuard, 0), Active: active}
}
