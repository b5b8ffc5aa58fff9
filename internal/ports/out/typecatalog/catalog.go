package typecatalog

import (
	"context"
	"errors"

	"github.com/newmeca/membership-api/internal/domain"
)

// ErrNotFound indicates the requested membership-type configuration does not exist.
var ErrNotFound = errors.New("membership type not found")

// MembershipType is one entry of the membership-type configuration catalog.
type MembershipType struct {
	ID       domain.MembershipTypeID
	Name     string
	Category string
	Price    domain.Money
}

// Catalog resolves membership-type configurations.
type Catalog interface {
	GetByID(ctx context.Context, id domain.MembershipTypeID) (MembershipType, error)
}
