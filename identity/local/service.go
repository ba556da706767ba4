// Package local is a self-contained identity provider: bcrypt credentials,
// JWT-backed session tokens with a cache-side revocation record, and OAuth
// handoff URL construction. It exists so the account core runs end to end
// without a hosted identity platform; everything above it depends only on
// identity.Provider.
package local

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/subiehq/subie/cache"
	"github.com/subiehq/subie/email"
	"github.com/subiehq/subie/identity"
	apperrors "github.com/subiehq/subie/internal/errors"
)

const (
	sessionKeyPrefix = "sess:"
	resetKeyPrefix   = "reset:"
	resetTTL         = 30 * time.Minute
)

// Service is the multi-user identity core. Individual device contexts are
// represented by Client values created with NewClient.
type Service struct {
	creds      identity.CredentialRepo
	sessions   cache.Cache
	sender     email.Sender
	oauth      OAuthProviders
	signingKey []byte
	sessionTTL time.Duration
	baseURL    string
	logger     zerolog.Logger
	nowTime    func() time.Time
}

// ServiceOption modifies a Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithOAuthProviders configures the federated sign-in endpoints.
func WithOAuthProviders(p OAuthProviders) ServiceOption {
	return func(s *Service) {
		s.oauth = p
	}
}

// WithBaseURL sets the public base URL embedded in reset links.
func WithBaseURL(baseURL string) ServiceOption {
	return func(s *Service) {
		s.baseURL = baseURL
	}
}

func NewService(
	creds identity.CredentialRepo,
	sessions cache.Cache,
	sender email.Sender,
	signingKey []byte,
	sessionTTL time.Duration,
	logger zerolog.Logger,
	options ...ServiceOption,
) (*Service, error) {
	if creds == nil {
		return nil, errors.New("[NewService] credential repo is required")
	}
	if sessions == nil {
		return nil, errors.New("[NewService] session cache is required")
	}
	if sender == nil {
		return nil, errors.New("[NewService] email sender is required")
	}
	if len(signingKey) == 0 {
		return nil, errors.New("[NewService] signing key is required")
	}
	if sessionTTL <= 0 {
		return nil, errors.New("[NewService] session TTL must be positive")
	}

	svc := &Service{
		creds:      creds,
		sessions:   sessions,
		sender:     sender,
		signingKey: signingKey,
		sessionTTL: sessionTTL,
		logger:     logger,
		nowTime:    time.Now,
	}

	for _, opt := range options {
		opt(svc)
	}

	return svc, nil
}

// Register creates a credential and mints a first session for it.
func (s *Service) Register(ctx context.Context, identifier, secret string, seed identity.ProfileSeed) (*identity.Session, error) {
	if err := identity.ValidateIdentifier(identifier); err != nil {
		return nil, err
	}
	if err := identity.ValidateSecretStrength(secret); err != nil {
		return nil, err
	}
	if existing, _ := s.creds.GetByEmail(ctx, identifier); existing != nil {
		return nil, apperrors.ErrIdentifierTaken
	}

	hash, err := identity.HashSecret(secret)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] HashSecret")
	}

	cred := &identity.Credential{
		SubjectID:    uuid.New().String(),
		Email:        identifier,
		PasswordHash: hash,
		Metadata: identity.Metadata{
			Email:     identifier,
			FirstName: seed.FirstName,
			LastName:  seed.LastName,
		},
		CreatedAt: s.nowTime(),
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		return nil, errors.Wrap(err, "[Service.Register] creds.Create")
	}

	return s.mintSession(cred)
}

// Authenticate checks a credential pair and mints a session. Lookup and
// comparison failures collapse into one credential error so callers cannot
// probe which identifiers exist.
func (s *Service) Authenticate(ctx context.Context, identifier, secret string) (*identity.Session, error) {
	cred, err := s.creds.GetByEmail(ctx, identifier)
	if err != nil || cred == nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !identity.CheckSecretHash(secret, cred.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := s.creds.TouchLogin(ctx, cred.SubjectID, s.nowTime()); err != nil {
		s.logger.Warn().Err(err).Str("subject_id", cred.SubjectID).Msg("touch login failed")
	}
	return s.mintSession(cred)
}

// SessionFromToken resolves a bearer token to a live session. The JWT must
// verify and the cache-side record must still exist (revocation check).
func (s *Service) SessionFromToken(ctx context.Context, token string) (*identity.Session, error) {
	sess, jti, err := s.parseSessionToken(token)
	if err != nil {
		return nil, err
	}
	if _, ok := s.sessions.Get(sessionKeyPrefix + jti); !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	if sess.Expired(s.nowTime()) {
		return nil, apperrors.ErrSessionExpired
	}
	sess.Token = token
	return sess, nil
}

// Revoke invalidates the cache-side session record for a token.
func (s *Service) Revoke(ctx context.Context, token string) error {
	_, jti, err := s.parseSessionToken(token)
	if err != nil {
		return err
	}
	s.sessions.Delete(sessionKeyPrefix + jti)
	return nil
}

// SetPassword replaces the stored secret for a subject.
func (s *Service) SetPassword(ctx context.Context, subjectID, newSecret string) error {
	if err := identity.ValidateSecretStrength(newSecret); err != nil {
		return err
	}
	hash, err := identity.HashSecret(newSecret)
	if err != nil {
		return errors.Wrap(err, "[Service.SetPassword] HashSecret")
	}
	if err := s.creds.UpdateSecret(ctx, subjectID, hash); err != nil {
		return errors.Wrap(err, "[Service.SetPassword] UpdateSecret")
	}
	return nil
}
