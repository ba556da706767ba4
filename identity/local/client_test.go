package local_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/subiehq/subie/identity"
	apperrors "github.com/subiehq/subie/internal/errors"
)

func TestClientStartsAnonymous(t *testing.T) {
	f := setupTestFixture(t)
	client := f.service.NewClient()

	sess, err := client.CurrentSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestClientSignUpAdoptsSessionAndNotifies(t *testing.T) {
	f := setupTestFixture(t)
	client := f.service.NewClient()

	var events []identity.Event
	client.OnSessionChange(func(e identity.Event) { events = append(events, e) })

	sess, err := client.SignUp(context.Background(), testIdentifier, testSecret, identity.ProfileSeed{FirstName: "Ada"})
	require.NoError(t, err)

	current, err := client.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	require.Equal(t, sess.SubjectID, current.SubjectID)

	require.Len(t, events, 1)
	require.Equal(t, identity.EventSignedIn, events[0].Type)
	require.NotNil(t, events[0].Session)
}

func TestClientSignInFailureLeavesContextAnonymous(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t)
	client := f.service.NewClient()

	var events []identity.Event
	client.OnSessionChange(func(e identity.Event) { events = append(events, e) })

	_, err := client.SignIn(context.Background(), testIdentifier, "Wr0ngSecret")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	current, err := client.CurrentSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, current)
	require.Empty(t, events)
}

func TestClientSignOutClearsAndRevokes(t *testing.T) {
	f := setupTestFixture(t)
	client := f.service.NewClient()

	sess, err := client.SignUp(context.Background(), testIdentifier, testSecret, identity.ProfileSeed{})
	require.NoError(t, err)

	var events []identity.Event
	client.OnSessionChange(func(e identity.Event) { events = append(events, e) })

	require.NoError(t, client.SignOut(context.Background()))

	current, err := client.CurrentSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, current)

	require.Len(t, events, 1)
	require.Equal(t, identity.EventSignedOut, events[0].Type)
	require.Nil(t, events[0].Session)

	_, err = f.service.SessionFromToken(context.Background(), sess.Token)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestClientSignOutWhileAnonymousIsNoop(t *testing.T) {
	f := setupTestFixture(t)
	client := f.service.NewClient()

	require.NoError(t, client.SignOut(context.Background()))
}

func TestClientUnsubscribeStopsEvents(t *testing.T) {
	f := setupTestFixture(t)
	client := f.service.NewClient()

	var events []identity.Event
	unsubscribe := client.OnSessionChange(func(e identity.Event) { events = append(events, e) })
	unsubscribe()

	_, err := client.SignUp(context.Background(), testIdentifier, testSecret, identity.ProfileSeed{})
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestClientUpdatePasswordRequiresSession(t *testing.T) {
	f := setupTestFixture(t)
	client := f.service.NewClient()

	err := client.UpdatePassword(context.Background(), "N3wSecret!")
	require.ErrorIs(t, err, apperrors.ErrNoAuthenticatedUser)
}

func TestClientUpdatePasswordRotatesSecret(t *testing.T) {
	f := setupTestFixture(t)
	client := f.service.NewClient()

	_, err := client.SignUp(context.Background(), testIdentifier, testSecret, identity.ProfileSeed{})
	require.NoError(t, err)

	require.NoError(t, client.UpdatePassword(context.Background(), "N3wSecret!"))

	_, err = f.service.Authenticate(context.Background(), testIdentifier, testSecret)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.service.Authenticate(context.Background(), testIdentifier, "N3wSecret!")
	require.NoError(t, err)
}

func TestClientCurrentSessionExpiresWithClock(t *testing.T) {
	f := setupTestFixture(t)
	client := f.service.NewClient()

	_, err := client.SignUp(context.Background(), testIdentifier, testSecret, identity.ProfileSeed{})
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)

	current, err := client.CurrentSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, current)
}
