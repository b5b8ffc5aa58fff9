package membershiprepo

import (
	"context"
	"sort"
	"sync"

	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/membershiprepo"
)

// Repo is an in-memory implementation of membershiprepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.MembershipID]domain.Membership
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.MembershipID]domain.Membership),
	}
}

func (r *Repo) Create(ctx context.Context, m domain.Membership) error {
	_ = ctx
	if m.ID == "" {
		return membershiprepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[m.ID]; ok {
		return membershiprepo.ErrAlreadyExists
	}
	r.byID[m.ID] = cloneMembership(m)
	return nil
}

func (r *Repo) Update(ctx context.Context, m domain.Membership) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[m.ID]; !ok {
		return membershiprepo.ErrNotFound
	}
	r.byID[m.ID] = cloneMembership(m)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MembershipID) (domain.Membership, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return domain.Membership{}, membershiprepo.ErrNotFound
	}
	return cloneMembership(m), nil
}

func (r *Repo) ListSecondaries(ctx context.Context, masterID domain.MembershipID) ([]domain.Membership, error) {
	_ = ctx
	return r.list(func(m domain.Membership) bool {
		return m.MasterMembershipID != nil && *m.MasterMembershipID == masterID
	}), nil
}

func (r *Repo) CountSecondaries(ctx context.Context, masterID domain.MembershipID) (int, error) {
	ms, _ := r.ListSecondaries(ctx, masterID)
	return len(ms), nil
}

func (r *Repo) ListIdentifiedOwnedBy(ctx context.Context, profileID domain.ProfileID) ([]domain.Membership, error) {
	_ = ctx
	return r.list(func(m domain.Membership) bool {
		return m.ProfileID == profileID && m.AccountType != domain.AccountSecondary && m.MecaID != 0
	}), nil
}

func (r *Repo) ListIdentifiedSecondaries(ctx context.Context, masterID domain.MembershipID) ([]domain.Membership, error) {
	_ = ctx
	return r.list(func(m domain.Membership) bool {
		return m.MasterMembershipID != nil && *m.MasterMembershipID == masterID && m.MecaID != 0
	}), nil
}

func (r *Repo) ListAllSecondaries(ctx context.Context) ([]domain.Membership, error) {
	_ = ctx
	return r.list(func(m domain.Membership) bool {
		return m.AccountType == domain.AccountSecondary
	}), nil
}

func (r *Repo) list(keep func(domain.Membership) bool) []domain.Membership {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Membership, 0)
	for _, m := range r.byID {
		if keep(m) {
			out = append(out, cloneMembership(m))
		}
	}
	sortByCreatedAt(out)
	return out
}

func sortByCreatedAt(ms []domain.Membership) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].ID < ms[j].ID
		}
		return ms[i].CreatedAt.Before(ms[j].CreatedAt)
	})
}

func cloneMembership(m domain.Membership) domain.Membership {
	out := m
	out.RelationshipToMaster = cloneStringPtr(m.RelationshipToMaster)
	out.MasterMembershipID = clonePtr(m.MasterMembershipID)
	out.MasterBillingProfileID = clonePtr(m.MasterBillingProfileID)
	out.LinkedAt = clonePtr(m.LinkedAt)
	out.TransactionID = cloneStringPtr(m.TransactionID)
	out.EndDate = clonePtr(m.EndDate)
	out.Vehicle = domain.Vehicle{
		Make:         cloneStringPtr(m.Vehicle.Make),
		Model:        cloneStringPtr(m.Vehicle.Model),
		Color:        cloneStringPtr(m.Vehicle.Color),
		LicensePlate: cloneStringPtr(m.Vehicle.LicensePlate),
	}
	out.Team = domain.Team{
		Name:        cloneStringPtr(m.Team.Name),
		Description: cloneStringPtr(m.Team.Description),
	}
	out.Billing = domain.BillingContact{
		FirstName:  cloneStringPtr(m.Billing.FirstName),
		LastName:   cloneStringPtr(m.Billing.LastName),
		Address:    cloneStringPtr(m.Billing.Address),
		City:       cloneStringPtr(m.Billing.City),
		State:      cloneStringPtr(m.Billing.State),
		PostalCode: cloneStringPtr(m.Billing.PostalCode),
		Country:    cloneStringPtr(m.Billing.Country),
		Phone:      cloneStringPtr(m.Billing.Phone),
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStringPtr(p *string) *string { return clonePtr(p) }
