package providerfakes

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/subiehq/subie/identity"
	apperrors "github.com/subiehq/subie/internal/errors"
)

var _ identity.Provider = (*FakeProvider)(nil)

// FakeProvider is a scriptable identity provider for flow tests. Tests seed
// sessions with SetSession/Emit and force failures through the Err fields.
type FakeProvider struct {
	lock        sync.RWMutex
	current     *identity.Session
	subscribers map[string]func(identity.Event)

	SignInErr         error
	SignUpErr         error
	SignOutErr        error
	ResetErr          error
	UpdatePasswordErr error
	OAuthURL          string

	SignOutCalls int
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{subscribers: make(map[string]func(identity.Event))}
}

func (p *FakeProvider) CurrentSession(ctx context.Context) (*identity.Session, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.current == nil {
		return nil, nil
	}
	cp := *p.current
	return &cp, nil
}

func (p *FakeProvider) OnSessionChange(fn func(identity.Event)) (unsubscribe func()) {
	id := uuid.New().String()
	p.lock.Lock()
	p.subscribers[id] = fn
	p.lock.Unlock()
	return func() {
		p.lock.Lock()
		delete(p.subscribers, id)
		p.lock.Unlock()
	}
}

func (p *FakeProvider) SignUp(ctx context.Context, identifier, secret string, seed identity.ProfileSeed) (*identity.Session, error) {
	if p.SignUpErr != nil {
		return nil, p.SignUpErr
	}
	sess := &identity.Session{
		SubjectID: uuid.New().String(),
		Token:     uuid.New().String(),
		Metadata: identity.Metadata{
			Email:     identifier,
			FirstName: seed.FirstName,
			LastName:  seed.LastName,
		},
	}
	p.SetSession(sess)
	p.Emit(identity.Event{Type: identity.EventSignedIn, Session: sess})
	return sess, nil
}

func (p *FakeProvider) SignIn(ctx context.Context, identifier, secret string) (*identity.Session, error) {
	if p.SignInErr != nil {
		return nil, p.SignInErr
	}
	sess := &identity.Session{
		SubjectID: uuid.New().String(),
		Token:     uuid.New().String(),
		Metadata:  identity.Metadata{Email: identifier},
	}
	p.SetSession(sess)
	p.Emit(identity.Event{Type: identity.EventSignedIn, Session: sess})
	return sess, nil
}

func (p *FakeProvider) SignOut(ctx context.Context) error {
	p.lock.Lock()
	p.current = nil
	p.SignOutCalls++
	err := p.SignOutErr
	p.lock.Unlock()
	p.Emit(identity.Event{Type: identity.EventSignedOut})
	return err
}

func (p *FakeProvider) SignInWithOAuth(ctx context.Context, provider identity.OAuthProvider) (string, error) {
	if p.OAuthURL == "" {
		return "", apperrors.ErrUnsupportedProvider
	}
	return p.OAuthURL, nil
}

func (p *FakeProvider) ResetPassword(ctx context.Context, identifier string) error {
	return p.ResetErr
}

func (p *FakeProvider) UpdatePassword(ctx context.Context, newSecret string) error {
	p.lock.RLock()
	current := p.current
	p.lock.RUnlock()
	if current == nil {
		return apperrors.ErrNoAuthenticatedUser
	}
	return p.UpdatePasswordErr
}

// SetSession replaces the current session without emitting an event.
func (p *FakeProvider) SetSession(sess *identity.Session) {
	p.lock.Lock()
	p.current = sess
	p.lock.Unlock()
}

// Emit delivers an event to every subscriber, as an external change
// notification (login from another tab, token refresh) would.
func (p *FakeProvider) Emit(e identity.Event) {
	p.lock.RLock()
	fns := make([]func(identity.Event), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		fns = append(fns, fn)
	}
	p.lock.RUnlock()
	for _, fn := range fns {
		fn(e)
	}
}
