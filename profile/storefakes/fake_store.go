package storefakes

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/subiehq/subie/internal/errors"
	"github.com/subiehq/subie/internal/utils"
	"github.com/subiehq/subie/profile"
)

var _ profile.Store = (*FakeStore)(nil)

// FakeStore is an in-memory profile store for tests. GetErr, when set, makes
// every Get fail, which is how flow tests simulate a slow-or-broken store.
type FakeStore struct {
	profiles map[string]*profile.Profile
	lock     sync.RWMutex

	GetErr    error
	GetDelay  func() // called before each Get when set, for ordering hooks
	CreateErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{profiles: make(map[string]*profile.Profile)}
}

func (s *FakeStore) Get(ctx context.Context, subjectID string) (*profile.Profile, error) {
	if s.GetDelay != nil {
		s.GetDelay()
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	p, ok := s.profiles[subjectID]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *FakeStore) Create(ctx context.Context, p *profile.Profile) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if _, ok := s.profiles[p.SubjectID]; ok {
		return apperrors.ErrProfileExists
	}
	cp := *p
	s.profiles[p.SubjectID] = &cp
	return nil
}

func (s *FakeStore) Update(ctx context.Context, subjectID string, patch profile.Patch) (*profile.Profile, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	p, ok := s.profiles[subjectID]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	p.FirstName = utils.ValueOr(patch.FirstName, p.FirstName)
	p.LastName = utils.ValueOr(patch.LastName, p.LastName)
	p.AvatarURL = utils.ValueOr(patch.AvatarURL, p.AvatarURL)
	p.Currency = utils.ValueOr(patch.Currency, p.Currency)
	p.Timezone = utils.ValueOr(patch.Timezone, p.Timezone)
	cp := *p
	return &cp, nil
}

func (s *FakeStore) UpdatePlan(ctx context.Context, subjectID string, tier profile.PlanTier, expiresAt *time.Time) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	p, ok := s.profiles[subjectID]
	if !ok {
		return apperrors.ErrProfileNotFound
	}
	p.PlanTier = tier
	p.PlanExpiresAt = expiresAt
	return nil
}

// Put seeds a profile directly, bypassing Create's duplicate check.
func (s *FakeStore) Put(p *profile.Profile) {
	s.lock.Lock()
	defer s.lock.Unlock()
	cp := *p
	s.profiles[p.SubjectID] = &cp
}
