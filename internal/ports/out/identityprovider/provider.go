package identityprovider

import (
	"context"

	"github.com/newmeca/membership-api/internal/domain"
)

// NewUser is the request to provision a login-capable identity with the
// external auth backend.
type NewUser struct {
	Email               string
	Password            string
	FirstName           string
	LastName            string
	ForcePasswordChange bool
}

// Provider provisions identities with the external auth backend. The returned
// id becomes the profile's primary key (the profile row is pinned to the auth
// user id).
type Provider interface {
	CreateUser(ctx context.Context, u NewUser) (domain.ProfileID, error)

	// GeneratePassword returns a random password of length n. Used for
	// throwaway credentials on non-login identities.
	GeneratePassword(n int) string
}
