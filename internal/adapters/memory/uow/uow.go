package uow

import (
	"context"
	"sync"
)

type ctxKey struct{}

// UnitOfWork is the in-memory implementation of the uow port. It serializes
// units of work under one mutex, so cross-row checks (secondary counts, email
// uniqueness) observe a consistent store for the duration of a unit.
//
// It does not roll back writes a failed unit already applied; operations are
// expected to validate before mutating, which the application layer does.
type UnitOfWork struct {
	mu sync.Mutex
}

func New() *UnitOfWork { return &UnitOfWork{} }

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(ctxKey{}) != nil {
		// Nested unit: join the enclosing one.
		return fn(ctx)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(context.WithValue(ctx, ctxKey{}, struct{}{}))
}
