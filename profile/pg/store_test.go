package pg

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	apperrors "github.com/subiehq/subie/internal/errors"
	"github.com/subiehq/subie/profile"
)

func newTestFixture(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func sampleProfile() *profile.Profile {
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &profile.Profile{
		SubjectID:     "subject-1",
		Email:         "a@example.com",
		EmailVerified: true,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		AvatarURL:     "https://example.com/a.png",
		PlanTier:      profile.PlanPremium,
		PlanExpiresAt: &expiry,
		Credits:       25,
		Currency:      "EUR",
		Timezone:      "Europe/Berlin",
		Role:          profile.RoleUser,
	}
}

func profileColumnNames() []string {
	return []string{
		"subject_id", "email", "email_verified", "first_name", "last_name", "avatar_url",
		"plan_tier", "plan_expires_at", "credits", "currency", "timezone", "role",
	}
}

func profileRow(p *profile.Profile) *pgxmock.Rows {
	return pgxmock.NewRows(profileColumnNames()).AddRow(
		p.SubjectID, p.Email, p.EmailVerified, p.FirstName, p.LastName, p.AvatarURL,
		p.PlanTier, p.PlanExpiresAt, p.Credits, p.Currency, p.Timezone, p.Role,
	)
}

func TestGetReturnsProfile(t *testing.T) {
	store, mock := newTestFixture(t)
	want := sampleProfile()

	mock.ExpectQuery("SELECT (.+) FROM user_profiles").
		WithArgs("subject-1").
		WillReturnRows(profileRow(want))

	got, err := store.Get(context.Background(), "subject-1")
	require.NoError(t, err)
	require.True(t, want.Equal(got))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissingRowMapsToNotFound(t *testing.T) {
	store, mock := newTestFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM user_profiles").
		WithArgs("subject-1").
		WillReturnRows(pgxmock.NewRows(profileColumnNames()))

	_, err := store.Get(context.Background(), "subject-1")
	require.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInsertsRow(t *testing.T) {
	store, mock := newTestFixture(t)
	p := sampleProfile()

	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs(
			p.SubjectID, p.Email, p.EmailVerified, p.FirstName, p.LastName, p.AvatarURL,
			p.PlanTier, p.PlanExpiresAt, p.Credits, p.Currency, p.Timezone, p.Role,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Create(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateMapsToExists(t *testing.T) {
	store, mock := newTestFixture(t)
	p := sampleProfile()

	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs(
			p.SubjectID, p.Email, p.EmailVerified, p.FirstName, p.LastName, p.AvatarURL,
			p.PlanTier, p.PlanExpiresAt, p.Credits, p.Currency, p.Timezone, p.Role,
		).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := store.Create(context.Background(), p)
	require.ErrorIs(t, err, apperrors.ErrProfileExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCoalescesNilFields(t *testing.T) {
	store, mock := newTestFixture(t)
	want := sampleProfile()
	want.FirstName = "Grace"

	first := "Grace"
	mock.ExpectQuery("UPDATE user_profiles SET").
		WithArgs("subject-1", &first, (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil)).
		WillReturnRows(profileRow(want))

	got, err := store.Update(context.Background(), "subject-1", profile.Patch{FirstName: &first})
	require.NoError(t, err)
	require.Equal(t, "Grace", got.FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePlanWritesTierAndExpiryTogether(t *testing.T) {
	store, mock := newTestFixture(t)
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE user_profiles SET plan_tier").
		WithArgs("subject-1", profile.PlanPremium, &expiry).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.UpdatePlan(context.Background(), "subject-1", profile.PlanPremium, &expiry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePlanMissingSubject(t *testing.T) {
	store, mock := newTestFixture(t)

	mock.ExpectExec("UPDATE user_profiles SET plan_tier").
		WithArgs("missing", profile.PlanFree, (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.UpdatePlan(context.Background(), "missing", profile.PlanFree, nil)
	require.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
