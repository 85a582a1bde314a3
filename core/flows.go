package core

// Request and result payloads for the session-level operations exposed by
// the facade and the command surface.

type CompleteCallbackRequest struct {
	SessionID   string
	CallbackURL string
}

type ReauthorizeRequest struct {
	SessionID   string
	MaxAttempts int
}

type AuthorizeURIResult struct {
	SessionID string
	AuthType  string
	URI       string
}

type CallbackResult struct {
	SessionID     string
	AuthType      string
	LaunchContext LaunchContext
}

// SessionStatus is the read-side projection of a session: which strategy
// serves it and whether it can authorize requests right now.
type SessionStatus struct {
	SessionID      string
	AuthType       string
	Ready          bool
	CanSignHeaders bool
}

type ReauthorizeResult struct {
	SessionID     string
	AuthType      string
	Attempts      int
	PendingReauth bool
	LaunchContext LaunchContext
}
