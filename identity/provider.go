package identity

import "context"

// EventType identifies a session change notification.
type EventType string

const (
	EventInitialSession EventType = "initial_session"
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventTokenRefreshed EventType = "token_refreshed"
)

// Event is delivered to session-change subscribers. Session is nil for
// signed-out events.
type Event struct {
	Type    EventType
	Session *Session
}

// OAuthProvider enumerates the supported federated sign-in providers.
type OAuthProvider string

const (
	OAuthGoogle   OAuthProvider = "google"
	OAuthApple    OAuthProvider = "apple"
	OAuthFacebook OAuthProvider = "facebook"
)

// ProfileSeed carries the optional name fields collected at sign-up. They
// seed both the session metadata and the initial profile row.
type ProfileSeed struct {
	FirstName string
	LastName  string
}

// Provider is one authenticated device context against the identity
// provider. CurrentSession returns (nil, nil) when anonymous. Implementations
// must deliver an event for every session transition, including sign-ins
// performed through this same Provider value, so subscribers observe a
// single consistent stream.
type Provider interface {
	CurrentSession(ctx context.Context) (*Session, error)
	OnSessionChange(fn func(Event)) (unsubscribe func())

	SignUp(ctx context.Context, identifier, secret string, seed ProfileSeed) (*Session, error)
	SignIn(ctx context.Context, identifier, secret string) (*Session, error)
	SignOut(ctx context.Context) error
	SignInWithOAuth(ctx context.Context, provider OAuthProvider) (redirectURL string, err error)
	ResetPassword(ctx context.Context, identifier string) error
	UpdatePassword(ctx context.Context, newSecret string) error
}
