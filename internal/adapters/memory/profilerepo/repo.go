package profilerepo

import (
	"context"
	"sync"

	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/profilerepo"
)

// Repo is an in-memory implementation of profilerepo.Repository.
// It is safe for concurrent use. Email lookups are case-sensitive exact
// matches, mirroring the persistence contract.
type Repo struct {
	mu        sync.RWMutex
	byID      map[domain.ProfileID]domain.Profile
	idByEmail map[string]domain.ProfileID
}

func NewRepo() *Repo {
	return &Repo{
		byID:      make(map[domain.ProfileID]domain.Profile),
		idByEmail: make(map[string]domain.ProfileID),
	}
}

func (r *Repo) Create(ctx context.Context, p domain.Profile) error {
	_ = ctx
	if p.ID == "" {
		return profilerepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.ID]; ok {
		return profilerepo.ErrAlreadyExists
	}
	if _, ok := r.idByEmail[p.Email]; ok {
		return profilerepo.ErrEmailTaken
	}

	r.byID[p.ID] = cloneProfile(p)
	r.idByEmail[p.Email] = p.ID
	return nil
}

func (r *Repo) Update(ctx context.Context, p domain.Profile) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[p.ID]
	if !ok {
		return profilerepo.ErrNotFound
	}
	if existing.Email != p.Email {
		if owner, ok := r.idByEmail[p.Email]; ok && owner != p.ID {
			return profilerepo.ErrEmailTaken
		}
		delete(r.idByEmail, existing.Email)
		r.idByEmail[p.Email] = p.ID
	}

	r.byID[p.ID] = cloneProfile(p)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ProfileID) (domain.Profile, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.Profile{}, profilerepo.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByEmail[email]
	if !ok {
		return domain.Profile{}, profilerepo.ErrNotFound
	}
	p, ok := r.byID[id]
	if !ok {
		return domain.Profile{}, profilerepo.ErrNotFound
	}
	return cloneProfile(p), nil
}

func cloneProfile(p domain.Profile) domain.Profile {
	out := p
	if p.MasterProfileID != nil {
		v := *p.MasterProfileID
		out.MasterProfileID = &v
	}
	return out
}
