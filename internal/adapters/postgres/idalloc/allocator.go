package idalloc

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/newmeca/membership-api/internal/adapters/postgres"
	"github.com/newmeca/membership-api/internal/domain"
)

// FirstMecaID is where the sequential competitor-ID range starts.
const FirstMecaID = 700500

// Allocator assigns MECA IDs from the memberships table: one past the highest
// assigned ID, starting at FirstMecaID. The query joins any transaction carried
// on ctx, so an assignment rolls back with the unit of work that requested it.
type Allocator struct {
	pool *pgxpool.Pool
}

func NewAllocator(pool *pgxpool.Pool) *Allocator {
	return &Allocator{pool: pool}
}

func (a *Allocator) AssignMecaID(ctx context.Context, m *domain.Membership, explicit domain.MecaID) error {
	if explicit != 0 {
		m.MecaID = explicit
		return nil
	}
	if a.pool == nil {
		return errors.New("nil postgres pool")
	}

	q := postgres.QuerierFrom(ctx, a.pool)
	var next int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(MAX(meca_id), $1 - 1) + 1 FROM memberships
	`, FirstMecaID).Scan(&next)
	if err != nil {
		return err
	}
	m.MecaID = domain.MecaID(next)
	return nil
}
