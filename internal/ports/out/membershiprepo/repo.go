package membershiprepo

import (
	"context"

	"github.com/newmeca/membership-api/internal/domain"
)

// Repository provides access to persisted memberships.
//
// Implementations must honor a transaction carried on the context by the uow
// port: writes issued inside uow.Do share one atomic unit of work.
//
// Result ordering expectations:
//   - List methods return results ordered by CreatedAt ascending (oldest link
//     first) to keep behavior deterministic.
type Repository interface {
	Create(ctx context.Context, m domain.Membership) error
	Update(ctx context.Context, m domain.Membership) error

	GetByID(ctx context.Context, id domain.MembershipID) (domain.Membership, error)

	// ListSecondaries returns every membership linked to the given master.
	ListSecondaries(ctx context.Context, masterID domain.MembershipID) ([]domain.Membership, error)

	// CountSecondaries counts memberships linked to the given master. Inside a
	// unit of work this re-reads under the transaction, so the per-master limit
	// check holds at commit time.
	CountSecondaries(ctx context.Context, masterID domain.MembershipID) (int, error)

	// ListIdentifiedOwnedBy returns memberships owned directly by the profile
	// (account type != secondary) that carry an assigned MECA ID.
	ListIdentifiedOwnedBy(ctx context.Context, profileID domain.ProfileID) ([]domain.Membership, error)

	// ListIdentifiedSecondaries returns secondaries of the given master that
	// carry an assigned MECA ID.
	ListIdentifiedSecondaries(ctx context.Context, masterID domain.MembershipID) ([]domain.Membership, error)

	// ListAllSecondaries returns every secondary membership. Used by the legacy
	// repair batch.
	ListAllSecondaries(ctx context.Context) ([]domain.Membership, error)
}
