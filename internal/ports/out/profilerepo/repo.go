package profilerepo

import (
	"context"

	"github.com/newmeca/membership-api/internal/domain"
)

// Repository provides access to persisted profiles.
//
// Email is unique across profiles; Create returns ErrEmailTaken on collision.
// Implementations must honor a transaction carried on the context by the uow
// port.
type Repository interface {
	Create(ctx context.Context, p domain.Profile) error
	Update(ctx context.Context, p domain.Profile) error

	GetByID(ctx context.Context, id domain.ProfileID) (domain.Profile, error)

	// GetByEmail looks a profile up by case-sensitive exact email match.
	GetByEmail(ctx context.Context, email string) (domain.Profile, error)
}
