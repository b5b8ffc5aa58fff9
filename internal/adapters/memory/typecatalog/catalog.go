package typecatalog

import (
	"context"
	"sync"

	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/typecatalog"
)

// Catalog is an in-memory implementation of typecatalog.Catalog.
// It is safe for concurrent use.
type Catalog struct {
	mu   sync.RWMutex
	byID map[domain.MembershipTypeID]typecatalog.MembershipType
}

func NewCatalog() *Catalog {
	return &Catalog{
		byID: make(map[domain.MembershipTypeID]typecatalog.MembershipType),
	}
}

// Put registers or replaces a membership type.
func (c *Catalog) Put(mt typecatalog.MembershipType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[mt.ID] = mt
}

func (c *Catalog) GetByID(ctx context.Context, id domain.MembershipTypeID) (typecatalog.MembershipType, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	mt, ok := c.byID[id]
	if !ok {
		return typecatalog.MembershipType{}, typecatalog.ErrNotFound
	}
	return mt, nil
}
