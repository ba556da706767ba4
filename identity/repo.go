package identity

import (
	"context"
	"time"
)

// CredentialRepo stores identifier/secret pairs for the local identity
// provider.
type CredentialRepo interface {
	Create(ctx context.Context, cred *Credential) error
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	GetBySubjectID(ctx context.Context, subjectID string) (*Credential, error)
	UpdateSecret(ctx context.Context, subjectID, secretHash string) error
	TouchLogin(ctx context.Context, subjectID string, at time.Time) error
}
