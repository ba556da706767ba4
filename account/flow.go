// Package account implements the session reconciliation flow: it composes
// the identity provider's live session stream with the authoritative profile
// store and the billing ledger into one continuously updated
// {session, profile, loading} view.
//
// The flow is fallback-first: the instant a session is known, it publishes a
// profile synthesized from session metadata and only then issues the profile
// store fetch, so consumers never wait on store latency to render
// authenticated content. The authoritative profile replaces the fallback
// when it arrives and differs; fetch failures are absorbed and the flow
// keeps serving fallback data.
package account

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/subiehq/subie/billing"
	"github.com/subiehq/subie/identity"
	apperrors "github.com/subiehq/subie/internal/errors"
	"github.com/subiehq/subie/internal/metrics"
	"github.com/subiehq/subie/profile"
)

// Deps holds the flow's collaborator dependencies. All three are injected;
// the flow never reaches for process-wide singletons.
type Deps struct {
	Provider identity.Provider
	Store    profile.Store
	Ledger   billing.Ledger
}

// Flow is the session reconciliation flow. One Flow serves one device
// context, mirroring the provider client it wraps.
type Flow struct {
	deps       Deps
	reconciler *billing.Reconciler
	logger     zerolog.Logger
	collector  *metrics.Collector
	nowTime    func() time.Time
	fetchDone  func(subjectID string, published bool)

	lock        sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextSubID   int
	unsubscribe func()
}

// FlowOption defines a function type to modify the Flow instance.
type FlowOption func(*Flow)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) FlowOption {
	return func(f *Flow) {
		f.nowTime = nowFunc
	}
}

// WithMetrics wires a metrics collector into the flow.
func WithMetrics(c *metrics.Collector) FlowOption {
	return func(f *Flow) {
		f.collector = c
	}
}

// WithFetchDone installs a hook invoked after every profile fetch settles,
// with the subject it was issued for and whether it changed the published
// state. Tests use it to observe fetches that deliberately publish nothing.
func WithFetchDone(fn func(subjectID string, published bool)) FlowOption {
	return func(f *Flow) {
		f.fetchDone = fn
	}
}

// NewFlow initializes a Flow with its required dependencies.
func NewFlow(deps Deps, logger zerolog.Logger, options ...FlowOption) (*Flow, error) {
	if deps.Provider == nil {
		return nil, errors.New("[NewFlow] identity provider is required")
	}
	if deps.Store == nil {
		return nil, errors.New("[NewFlow] profile store is required")
	}
	if deps.Ledger == nil {
		return nil, errors.New("[NewFlow] billing ledger is required")
	}

	reconciler, err := billing.NewReconciler(deps.Ledger, deps.Store, logger)
	if err != nil {
		return nil, errors.Wrap(err, "[NewFlow] NewReconciler")
	}

	f := &Flow{
		deps:        deps,
		reconciler:  reconciler,
		logger:      logger,
		nowTime:     time.Now,
		state:       State{Phase: PhaseUninitialized, Loading: true},
		subscribers: make(map[int]func(State)),
	}

	for _, opt := range options {
		opt(f)
	}

	return f, nil
}

// Start performs the initial session resolution and subscribes to the
// provider's change notifications. It must be called exactly once.
func (f *Flow) Start(ctx context.Context) error {
	f.lock.Lock()
	if f.state.Phase != PhaseUninitialized {
		f.lock.Unlock()
		return errors.New("[Flow.Start] already started")
	}
	f.state.Phase = PhaseResolving
	f.lock.Unlock()

	f.unsubscribe = f.deps.Provider.OnSessionChange(func(e identity.Event) {
		f.resolve(ctx, e.Session)
	})

	sess, err := f.deps.Provider.CurrentSession(ctx)
	if err != nil {
		// Treat an unreadable session as anonymous rather than blocking
		// the consumer; the next change event re-resolves.
		f.logger.Warn().Err(err).Msg("initial session resolution failed")
		sess = nil
	}
	f.resolve(ctx, sess)
	return nil
}

// Close detaches the flow from the provider's event stream.
func (f *Flow) Close() {
	if f.unsubscribe != nil {
		f.unsubscribe()
	}
}

// Snapshot returns the current state.
func (f *Flow) Snapshot() State {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.state
}

// Subscribe registers a state-change callback and returns an unsubscribe
// function. Callbacks fire only on observable changes.
func (f *Flow) Subscribe(fn func(State)) (unsubscribe func()) {
	f.lock.Lock()
	id := f.nextSubID
	f.nextSubID++
	f.subscribers[id] = fn
	f.lock.Unlock()
	return func() {
		f.lock.Lock()
		delete(f.subscribers, id)
		f.lock.Unlock()
	}
}

// resolve is the single transition point for session changes. With a nil
// session it publishes the anonymous state; otherwise it publishes the
// fallback-bearing state synchronously and only then issues the async
// profile fetch, preserving the fallback-first ordering guarantee.
func (f *Flow) resolve(ctx context.Context, sess *identity.Session) {
	if sess == nil {
		f.publish(State{Phase: PhaseAnonymous})
		return
	}

	fallback := profile.FallbackFromSession(sess)
	f.publish(State{Phase: PhaseAuthenticatedFallback, Session: sess, Profile: fallback})
	f.collector.RecordFallbackPublish()

	go f.fetchProfile(ctx, sess.SubjectID)
}

// fetchProfile reconciles the published state with the authoritative
// profile. Every result is tagged with the subject it was fetched for and
// discarded if the current session no longer matches, which closes the
// late-result-after-sign-out race. Fetch failures are absorbed: the flow
// stays on fallback data indefinitely and retries only on the next full
// session change.
func (f *Flow) fetchProfile(ctx context.Context, subjectID string) {
	published := false
	defer func() {
		if f.fetchDone != nil {
			f.fetchDone(subjectID, published)
		}
	}()

	p, err := f.deps.Store.Get(ctx, subjectID)

	f.lock.Lock()
	if f.state.Session == nil || f.state.Session.SubjectID != subjectID {
		f.lock.Unlock()
		f.collector.RecordStaleDiscard()
		f.logger.Debug().Str("subject_id", subjectID).Msg("discarded stale profile result")
		return
	}
	if err != nil {
		f.lock.Unlock()
		f.collector.RecordFetchFailure()
		f.logger.Warn().Err(err).Str("subject_id", subjectID).Msg("profile fetch failed, keeping fallback")
		return
	}
	if p.Equal(f.state.Profile) {
		// Semantically reconciled; keep the published pointer so no
		// redundant change event fires.
		f.lock.Unlock()
		return
	}
	next := f.state
	next.Phase = PhaseAuthenticatedReconciled
	next.Profile = p
	fns, changed := f.commit(next)
	f.lock.Unlock()
	f.notify(fns, next)

	published = changed
	f.collector.RecordReconciledPublish()
}

// SignIn authenticates a credential pair. On success the provider's change
// event drives the state transition; on failure the state is untouched and
// the credential error is surfaced verbatim.
func (f *Flow) SignIn(ctx context.Context, identifier, secret string) (*identity.Session, error) {
	sess, err := f.deps.Provider.SignIn(ctx, identifier, secret)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// SignUp creates a credential at the provider and the matching profile row.
// When the profile row creation fails after the identity was created, the
// error is returned and the identity is left in place; the subject then runs
// on fallback data until the row exists.
func (f *Flow) SignUp(ctx context.Context, identifier, secret string, seed identity.ProfileSeed) (*identity.Session, error) {
	sess, err := f.deps.Provider.SignUp(ctx, identifier, secret, seed)
	if err != nil {
		return nil, err
	}

	row := profile.FallbackFromSession(sess)
	if err := f.deps.Store.Create(ctx, row); err != nil {
		return sess, errors.Wrap(err, "[Flow.SignUp] profile row creation failed")
	}
	return sess, nil
}

// SignOut clears the session and profile. Local state clears even when the
// provider call fails; the error is still reported.
func (f *Flow) SignOut(ctx context.Context) error {
	err := f.deps.Provider.SignOut(ctx)
	f.publish(State{Phase: PhaseAnonymous})
	return err
}

// SignInWithOAuth starts the federated handoff and returns the provider's
// redirect URL. Resolution arrives through the change-event channel.
func (f *Flow) SignInWithOAuth(ctx context.Context, provider identity.OAuthProvider) (string, error) {
	return f.deps.Provider.SignInWithOAuth(ctx, provider)
}

// ResetPassword triggers the out-of-band reset message. No state change.
func (f *Flow) ResetPassword(ctx context.Context, identifier string) error {
	return f.deps.Provider.ResetPassword(ctx, identifier)
}

// UpdatePassword updates the credential at the provider. Requires a session.
func (f *Flow) UpdatePassword(ctx context.Context, newSecret string) error {
	if f.Snapshot().Session == nil {
		return apperrors.ErrNoAuthenticatedUser
	}
	return f.deps.Provider.UpdatePassword(ctx, newSecret)
}

// UpdateProfile writes a partial update through to the profile store and
// republishes the merged profile.
func (f *Flow) UpdateProfile(ctx context.Context, patch profile.Patch) (*profile.Profile, error) {
	snap := f.Snapshot()
	if snap.Session == nil {
		return nil, apperrors.ErrNoAuthenticatedUser
	}

	merged, err := f.deps.Store.Update(ctx, snap.Session.SubjectID, patch)
	if err != nil {
		return nil, err
	}

	f.lock.Lock()
	var fns []func(State)
	var next State
	if f.state.Session != nil && f.state.Session.SubjectID == merged.SubjectID {
		next = f.state
		next.Phase = PhaseAuthenticatedReconciled
		next.Profile = merged
		fns, _ = f.commit(next)
	}
	f.lock.Unlock()
	f.notify(fns, next)
	return merged, nil
}

// ReconcileBilling derives the effective plan from the ledger's active
// entitlements, writes it through and republishes the updated profile.
func (f *Flow) ReconcileBilling(ctx context.Context) error {
	snap := f.Snapshot()
	if snap.Session == nil {
		return apperrors.ErrNoAuthenticatedUser
	}

	tier, expiry, err := f.reconciler.Reconcile(ctx, snap.Session.SubjectID)
	if err != nil {
		return err
	}
	f.collector.RecordBillingReconcile()

	f.lock.Lock()
	var fns []func(State)
	var next State
	if f.state.Session != nil && f.state.Session.SubjectID == snap.Session.SubjectID && f.state.Profile != nil {
		next = f.state
		p := *f.state.Profile
		p.PlanTier = tier
		p.PlanExpiresAt = expiry
		next.Profile = &p
		fns, _ = f.commit(next)
	}
	f.lock.Unlock()
	f.notify(fns, next)
	return nil
}

// publish replaces the state and notifies subscribers when the change is
// observable.
func (f *Flow) publish(next State) {
	f.lock.Lock()
	fns, _ := f.commit(next)
	f.lock.Unlock()
	f.notify(fns, next)
}

// commit assumes f.lock is held. It installs the next state and returns the
// subscribers to notify; a transition to an observably equal state commits
// nothing and notifies nobody.
func (f *Flow) commit(next State) ([]func(State), bool) {
	if f.state.equal(next) {
		return nil, false
	}
	f.state = next

	fns := make([]func(State), 0, len(f.subscribers))
	for _, fn := range f.subscribers {
		fns = append(fns, fn)
	}
	return fns, true
}

// notify runs subscriber callbacks on the calling goroutine, outside the
// state lock so callbacks may read the flow.
func (f *Flow) notify(fns []func(State), next State) {
	for _, fn := range fns {
		fn(next)
	}
}
