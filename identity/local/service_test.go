package local_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	cachememory "github.com/subiehq/subie/cache/memory"
	"github.com/subiehq/subie/identity"
	"github.com/subiehq/subie/identity/local"
	apperrors "github.com/subiehq/subie/internal/errors"
)

const (
	testIdentifier = "ada@example.com"
	testSecret     = "Passw0rd!"
)

// captureSender records outbound messages so tests can read reset links.
type captureSender struct {
	to      string
	subject string
	body    string
	sent    int
}

func (c *captureSender) Send(to, subject, textBody string) error {
	c.to = to
	c.subject = subject
	c.body = textBody
	c.sent++
	return nil
}

type testFixture struct {
	service *local.Service
	sender  *captureSender
	now     time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{
		sender: &captureSender{},
		now:    time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
	svc, err := local.NewService(
		local.NewMemoryCredentialRepo(),
		cachememory.New(time.Hour),
		f.sender,
		[]byte("test-signing-key"),
		time.Hour,
		zerolog.Nop(),
		local.WithNowTime(func() time.Time { return f.now }),
		local.WithBaseURL("https://app.example.com"),
	)
	require.NoError(t, err)
	f.service = svc
	return f
}

func (f *testFixture) register(t *testing.T) *identity.Session {
	t.Helper()
	sess, err := f.service.Register(context.Background(), testIdentifier, testSecret, identity.ProfileSeed{
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	return sess
}

func TestNewServiceValidatesInputs(t *testing.T) {
	_, err := local.NewService(nil, cachememory.New(time.Hour), &captureSender{}, []byte("k"), time.Hour, zerolog.Nop())
	require.Error(t, err)

	_, err = local.NewService(local.NewMemoryCredentialRepo(), nil, &captureSender{}, []byte("k"), time.Hour, zerolog.Nop())
	require.Error(t, err)

	_, err = local.NewService(local.NewMemoryCredentialRepo(), cachememory.New(time.Hour), &captureSender{}, nil, time.Hour, zerolog.Nop())
	require.Error(t, err)

	_, err = local.NewService(local.NewMemoryCredentialRepo(), cachememory.New(time.Hour), &captureSender{}, []byte("k"), 0, zerolog.Nop())
	require.Error(t, err)
}

func TestRegisterMintsSessionWithSeedMetadata(t *testing.T) {
	f := setupTestFixture(t)

	sess := f.register(t)
	require.NotEmpty(t, sess.SubjectID)
	require.NotEmpty(t, sess.Token)
	require.Equal(t, testIdentifier, sess.Metadata.Email)
	require.Equal(t, "Ada", sess.Metadata.FirstName)
	require.Equal(t, "Lovelace", sess.Metadata.LastName)
	require.Equal(t, f.now.Add(time.Hour).Unix(), sess.ExpiresAt.Unix())
}

func TestRegisterRejectsDuplicateIdentifier(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)

	_, err := f.service.Register(context.Background(), testIdentifier, testSecret, identity.ProfileSeed{})
	require.ErrorIs(t, err, apperrors.ErrIdentifierTaken)
}

func TestRegisterRejectsMalformedIdentifier(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Register(context.Background(), "not-an-email", testSecret, identity.ProfileSeed{})
	require.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
}

func TestRegisterRejectsWeakSecret(t *testing.T) {
	f := setupTestFixture(t)

	for _, secret := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		_, err := f.service.Register(context.Background(), testIdentifier, secret, identity.ProfileSeed{})
		require.ErrorIs(t, err, apperrors.ErrWeakSecret, "secret %q", secret)
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)

	sess, err := f.service.Authenticate(context.Background(), testIdentifier, testSecret)
	require.NoError(t, err)
	require.Equal(t, testIdentifier, sess.Metadata.Email)
}

func TestAuthenticateCollapsesFailures(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)

	_, err := f.service.Authenticate(context.Background(), testIdentifier, "Wr0ngSecret")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.service.Authenticate(context.Background(), "nobody@example.com", testSecret)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestSessionFromTokenRoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	minted := f.register(t)

	sess, err := f.service.SessionFromToken(context.Background(), minted.Token)
	require.NoError(t, err)
	require.Equal(t, minted.SubjectID, sess.SubjectID)
	require.Equal(t, minted.Token, sess.Token)
	require.Equal(t, testIdentifier, sess.Metadata.Email)
}

func TestSessionFromTokenRejectsGarbage(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.SessionFromToken(context.Background(), "not.a.jwt")
	require.Error(t, err)
}

func TestSessionFromTokenAfterRevoke(t *testing.T) {
	f := setupTestFixture(t)
	minted := f.register(t)

	require.NoError(t, f.service.Revoke(context.Background(), minted.Token))

	_, err := f.service.SessionFromToken(context.Background(), minted.Token)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestSessionFromTokenAfterExpiry(t *testing.T) {
	f := setupTestFixture(t)
	minted := f.register(t)

	f.now = f.now.Add(2 * time.Hour)

	_, err := f.service.SessionFromToken(context.Background(), minted.Token)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestStartResetUnknownIdentifierIsSilent(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.service.StartReset(context.Background(), "nobody@example.com"))
	require.Zero(t, f.sender.sent)
}

func TestResetRoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)

	require.NoError(t, f.service.StartReset(context.Background(), testIdentifier))
	require.Equal(t, 1, f.sender.sent)
	require.Equal(t, testIdentifier, f.sender.to)

	token := resetTokenFromBody(t, f.sender.body)
	require.NoError(t, f.service.CompleteReset(context.Background(), token, "N3wSecret!"))

	_, err := f.service.Authenticate(context.Background(), testIdentifier, testSecret)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.service.Authenticate(context.Background(), testIdentifier, "N3wSecret!")
	require.NoError(t, err)
}

func TestResetTokenIsSingleUse(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)

	require.NoError(t, f.service.StartReset(context.Background(), testIdentifier))
	token := resetTokenFromBody(t, f.sender.body)

	require.NoError(t, f.service.CompleteReset(context.Background(), token, "N3wSecret!"))
	err := f.service.CompleteReset(context.Background(), token, "An0therSecret!")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCompleteResetEnforcesSecretPolicy(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)

	require.NoError(t, f.service.StartReset(context.Background(), testIdentifier))
	token := resetTokenFromBody(t, f.sender.body)

	err := f.service.CompleteReset(context.Background(), token, "weak")
	require.ErrorIs(t, err, apperrors.ErrWeakSecret)
}

func resetTokenFromBody(t *testing.T, body string) string {
	t.Helper()
	_, after, found := strings.Cut(body, "token=")
	require.True(t, found, "reset link missing from body")
	token, _, _ := strings.Cut(after, "\n")
	return strings.TrimSpace(token)
}
