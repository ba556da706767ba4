package local

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/subiehq/subie/identity"
	apperrors "github.com/subiehq/subie/internal/errors"
)

var _ identity.Provider = (*Client)(nil)

// Client is one device context bound to the local identity service. It owns
// the current session for that context and fans session changes out to
// subscribers; the reconciliation flow consumes it through the
// identity.Provider interface.
type Client struct {
	svc *Service

	lock        sync.RWMutex
	current     *identity.Session
	subscribers map[string]func(identity.Event)
}

// NewClient creates an anonymous device context.
func (s *Service) NewClient() *Client {
	return &Client{
		svc:         s,
		subscribers: make(map[string]func(identity.Event)),
	}
}

func (c *Client) CurrentSession(ctx context.Context) (*identity.Session, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.current == nil {
		return nil, nil
	}
	if c.current.Expired(c.svc.nowTime()) {
		return nil, nil
	}
	cp := *c.current
	return &cp, nil
}

func (c *Client) OnSessionChange(fn func(identity.Event)) (unsubscribe func()) {
	id := uuid.New().String()
	c.lock.Lock()
	c.subscribers[id] = fn
	c.lock.Unlock()
	return func() {
		c.lock.Lock()
		delete(c.subscribers, id)
		c.lock.Unlock()
	}
}

func (c *Client) SignUp(ctx context.Context, identifier, secret string, seed identity.ProfileSeed) (*identity.Session, error) {
	sess, err := c.svc.Register(ctx, identifier, secret, seed)
	if err != nil {
		return nil, err
	}
	c.adopt(sess, identity.EventSignedIn)
	return sess, nil
}

func (c *Client) SignIn(ctx context.Context, identifier, secret string) (*identity.Session, error) {
	sess, err := c.svc.Authenticate(ctx, identifier, secret)
	if err != nil {
		return nil, err
	}
	c.adopt(sess, identity.EventSignedIn)
	return sess, nil
}

// SignOut revokes the session at the service and clears the context. Local
// state clears even when revocation fails; the error is still returned.
func (c *Client) SignOut(ctx context.Context) error {
	c.lock.Lock()
	current := c.current
	c.current = nil
	c.lock.Unlock()

	c.notify(identity.Event{Type: identity.EventSignedOut})

	if current == nil {
		return nil
	}
	return c.svc.Revoke(ctx, current.Token)
}

func (c *Client) SignInWithOAuth(ctx context.Context, provider identity.OAuthProvider) (string, error) {
	state := uuid.New().String()
	return c.svc.BeginOAuth(ctx, provider, state)
}

func (c *Client) ResetPassword(ctx context.Context, identifier string) error {
	return c.svc.StartReset(ctx, identifier)
}

func (c *Client) UpdatePassword(ctx context.Context, newSecret string) error {
	c.lock.RLock()
	current := c.current
	c.lock.RUnlock()
	if current == nil {
		return apperrors.ErrNoAuthenticatedUser
	}
	return c.svc.SetPassword(ctx, current.SubjectID, newSecret)
}

// Adopt binds an externally resolved session (e.g. from a bearer token) to
// this context and notifies subscribers.
func (c *Client) Adopt(sess *identity.Session) {
	c.adopt(sess, identity.EventSignedIn)
}

func (c *Client) adopt(sess *identity.Session, event identity.EventType) {
	c.lock.Lock()
	c.current = sess
	c.lock.Unlock()

	cp := *sess
	c.notify(identity.Event{Type: event, Session: &cp})
}

func (c *Client) notify(e identity.Event) {
	c.lock.RLock()
	fns := make([]func(identity.Event), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.lock.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
