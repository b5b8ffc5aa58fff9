package uow

import "context"

// UnitOfWork runs fn inside one atomic persistence transaction. Every repository
// write issued through the returned context joins the same transaction; if fn
// returns an error all of it rolls back.
//
// Nested Do calls join the enclosing transaction rather than opening a new one.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
