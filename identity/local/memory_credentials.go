package local

import (
	"context"
	"sync"
	"time"

	"github.com/subiehq/subie/identity"
	apperrors "github.com/subiehq/subie/internal/errors"
)

var _ identity.CredentialRepo = (*MemoryCredentialRepo)(nil)

// MemoryCredentialRepo keeps credentials in process memory. It backs the
// local provider in development and tests.
type MemoryCredentialRepo struct {
	byEmail   map[string]*identity.Credential
	bySubject map[string]*identity.Credential
	lock      sync.RWMutex
}

func NewMemoryCredentialRepo() *MemoryCredentialRepo {
	return &MemoryCredentialRepo{
		byEmail:   make(map[string]*identity.Credential),
		bySubject: make(map[string]*identity.Credential),
	}
}

func (r *MemoryCredentialRepo) Create(ctx context.Context, cred *identity.Credential) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.byEmail[cred.Email]; ok {
		return apperrors.ErrIdentifierTaken
	}
	cp := *cred
	r.byEmail[cred.Email] = &cp
	r.bySubject[cred.SubjectID] = &cp
	return nil
}

func (r *MemoryCredentialRepo) GetByEmail(ctx context.Context, email string) (*identity.Credential, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	cred, ok := r.byEmail[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *cred
	return &cp, nil
}

func (r *MemoryCredentialRepo) GetBySubjectID(ctx context.Context, subjectID string) (*identity.Credential, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	cred, ok := r.bySubject[subjectID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *cred
	return &cp, nil
}

func (r *MemoryCredentialRepo) UpdateSecret(ctx context.Context, subjectID, secretHash string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	cred, ok := r.bySubject[subjectID]
	if !ok {
		return apperrors.ErrNotFound
	}
	cred.PasswordHash = secretHash
	return nil
}

func (r *MemoryCredentialRepo) TouchLogin(ctx context.Context, subjectID string, at time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	cred, ok := r.bySubject[subjectID]
	if !ok {
		return apperrors.ErrNotFound
	}
	cred.LastLogin = at
	return nil
}
