package invoicerepo

import (
	"context"

	"github.com/newmeca/membership-api/internal/domain"
)

// Repository provides access to persisted invoices and their line items.
//
// Implementations must honor a transaction carried on the context by the uow
// port.
type Repository interface {
	// Create persists the invoice together with its items.
	Create(ctx context.Context, inv domain.Invoice) error

	GetByID(ctx context.Context, id domain.InvoiceID) (domain.Invoice, error)

	// ListByMasterMembership returns invoices linked to a master for
	// consolidation reporting, ordered by CreatedAt ascending.
	ListByMasterMembership(ctx context.Context, masterID domain.MembershipID) ([]domain.Invoice, error)

	// NextSecondarySequence returns the next value of the store-backed atomic
	// sequence used to number secondary-billing invoices.
	NextSecondarySequence(ctx context.Context) (int64, error)
}
