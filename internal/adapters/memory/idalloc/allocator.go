package idalloc

import (
	"context"
	"sync"

	"github.com/newmeca/membership-api/internal/domain"
)

// FirstMecaID is where the sequential competitor-ID range starts.
const FirstMecaID = 700500

// Allocator is an in-memory implementation of idalloc.Allocator. IDs are
// assigned sequentially from FirstMecaID. It is safe for concurrent use.
type Allocator struct {
	mu   sync.Mutex
	next domain.MecaID
}

func NewAllocator() *Allocator {
	return &Allocator{next: FirstMecaID}
}

func (a *Allocator) AssignMecaID(ctx context.Context, m *domain.Membership, explicit domain.MecaID) error {
	_ = ctx
	if explicit != 0 {
		m.MecaID = explicit
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	m.MecaID = a.next
	a.next++
	return nil
}
