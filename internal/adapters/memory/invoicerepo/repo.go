package invoicerepo

import (
	"context"
	"sort"
	"sync"

	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/invoicerepo"
)

// Repo is an in-memory implementation of invoicerepo.Repository.
// It is safe for concurrent use. The secondary-invoice sequence is a simple
// atomic counter, mirroring the store-backed sequence of the Postgres adapter.
type Repo struct {
	mu       sync.RWMutex
	byID     map[domain.InvoiceID]domain.Invoice
	byNumber map[string]domain.InvoiceID
	seq      int64
}

func NewRepo() *Repo {
	return &Repo{
		byID:     make(map[domain.InvoiceID]domain.Invoice),
		byNumber: make(map[string]domain.InvoiceID),
	}
}

func (r *Repo) Create(ctx context.Context, inv domain.Invoice) error {
	_ = ctx
	if inv.ID == "" {
		return invoicerepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[inv.ID]; ok {
		return invoicerepo.ErrAlreadyExists
	}
	if _, ok := r.byNumber[inv.InvoiceNumber]; ok {
		return invoicerepo.ErrAlreadyExists
	}

	r.byID[inv.ID] = cloneInvoice(inv)
	r.byNumber[inv.InvoiceNumber] = inv.ID
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.InvoiceID) (domain.Invoice, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.byID[id]
	if !ok {
		return domain.Invoice{}, invoicerepo.ErrNotFound
	}
	return cloneInvoice(inv), nil
}

func (r *Repo) ListByMasterMembership(ctx context.Context, masterID domain.MembershipID) ([]domain.Invoice, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Invoice, 0)
	for _, inv := range r.byID {
		if inv.MasterMembershipID != nil && *inv.MasterMembershipID == masterID {
			out = append(out, cloneInvoice(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repo) NextSecondarySequence(ctx context.Context) (int64, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	out := inv
	out.DueDate = cloneTimePtr(inv.DueDate)
	out.SentAt = cloneTimePtr(inv.SentAt)
	out.PaidAt = cloneTimePtr(inv.PaidAt)
	if inv.MasterMembershipID != nil {
		v := *inv.MasterMembershipID
		out.MasterMembershipID = &v
	}
	out.Items = make([]domain.InvoiceItem, len(inv.Items))
	for i, it := range inv.Items {
		c := it
		if it.ReferenceID != nil {
			v := *it.ReferenceID
			c.ReferenceID = &v
		}
		if it.SecondaryMembershipID != nil {
			v := *it.SecondaryMembershipID
			c.SecondaryMembershipID = &v
		}
		out.Items[i] = c
	}
	return out
}

func cloneTimePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
