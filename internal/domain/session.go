package domain

type SessionEventKind string

const (
	SessionSignedIn       SessionEventKind = "SIGNED_IN"
	SessionSignedOut      SessionEventKind = "SIGNED_OUT"
	SessionTokenRefreshed SessionEventKind = "TOKEN_REFRESHED"
	SessionUserUpdated    SessionEventKind = "USER_UPDATED"
	SessionInitial        SessionEventKind = "INITIAL_SESSION"
)

// Session is the provider-issued session payload attached to a transition.
// User may be absent; the identity is then derived from the access token.
type Session struct {
	AccessToken string    `json:"access_token"`
	User        *Identity `json:"user,omitempty"`
}

// SessionEvent is a single identity-provider state transition.
type SessionEvent struct {
	Kind    SessionEventKind `json:"event"`
	Session *Session         `json:"session"`
}

// HasSession reports whether the transition carries a usable session.
func (e SessionEvent) HasSession() bool {
	return e.Session != nil
}
