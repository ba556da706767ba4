package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/subiehq/subie/internal/errors"
	"github.com/subiehq/subie/profile"
)

// DB is the subset of pgxpool.Pool the store uses. pgxmock satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ profile.Store = (*Store)(nil)

// Store implements profile.Store against the user_profiles table.
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

const profileColumns = `subject_id, email, email_verified, first_name, last_name, avatar_url,
	plan_tier, plan_expires_at, credits, currency, timezone, role`

func (s *Store) Get(ctx context.Context, subjectID string) (*profile.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM user_profiles
		WHERE subject_id = $1`

	var p profile.Profile
	err := s.db.QueryRow(ctx, query, subjectID).Scan(
		&p.SubjectID, &p.Email, &p.EmailVerified, &p.FirstName, &p.LastName, &p.AvatarURL,
		&p.PlanTier, &p.PlanExpiresAt, &p.Credits, &p.Currency, &p.Timezone, &p.Role,
	)
	if err == pgx.ErrNoRows {
		return nil, apperrors.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}
	return &p, nil
}

func (s *Store) Create(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO user_profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.db.Exec(ctx, query,
		p.SubjectID, p.Email, p.EmailVerified, p.FirstName, p.LastName, p.AvatarURL,
		p.PlanTier, p.PlanExpiresAt, p.Credits, p.Currency, p.Timezone, p.Role,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, subjectID string, patch profile.Patch) (*profile.Profile, error) {
	query := `
		UPDATE user_profiles SET
			first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			avatar_url = COALESCE($4, avatar_url),
			currency   = COALESCE($5, currency),
			timezone   = COALESCE($6, timezone)
		WHERE subject_id = $1
		RETURNING ` + profileColumns

	var p profile.Profile
	err := s.db.QueryRow(ctx, query, subjectID,
		patch.FirstName, patch.LastName, patch.AvatarURL, patch.Currency, patch.Timezone,
	).Scan(
		&p.SubjectID, &p.Email, &p.EmailVerified, &p.FirstName, &p.LastName, &p.AvatarURL,
		&p.PlanTier, &p.PlanExpiresAt, &p.Credits, &p.Currency, &p.Timezone, &p.Role,
	)
	if err == pgx.ErrNoRows {
		return nil, apperrors.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &p, nil
}

// UpdatePlan writes tier and expiry in one statement so the pair is never
// observed half-updated.
func (s *Store) UpdatePlan(ctx context.Context, subjectID string, tier profile.PlanTier, expiresAt *time.Time) error {
	query := `
		UPDATE user_profiles SET plan_tier = $2, plan_expires_at = $3
		WHERE subject_id = $1`

	tag, err := s.db.Exec(ctx, query, subjectID, tier, expiresAt)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if apperrors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
