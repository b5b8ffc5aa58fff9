package idalloc

import (
	"context"

	"github.com/newmeca/membership-api/internal/domain"
)

// Allocator assigns unique sequential competitor IDs ("MECA IDs") to
// memberships. Sequencing, renewal-reactivation windows and history live behind
// this contract; the core only consumes the assignment.
type Allocator interface {
	// AssignMecaID assigns an ID to the membership, mutating m.MecaID as a side
	// effect. A non-zero explicit value overrides sequence assignment. The call
	// participates in any transaction carried on ctx.
	AssignMecaID(ctx context.Context, m *domain.Membership, explicit domain.MecaID) error
}
