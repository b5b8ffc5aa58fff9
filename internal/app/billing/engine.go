package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newmeca/membership-api/internal/domain"
	clockport "github.com/newmeca/membership-api/internal/ports/out/clock"
	"github.com/newmeca/membership-api/internal/ports/out/invoicerepo"
	"github.com/newmeca/membership-api/internal/ports/out/typecatalog"
)

// PaymentTermDays is how long the master has to settle a secondary invoice.
const PaymentTermDays = 30

// DefaultCompanyInfo is the issuing-organization snapshot stamped on invoices
// when the deployment does not override it.
var DefaultCompanyInfo = domain.CompanyInfo{
	Name:    "Mobile Electronics Competition Association",
	Email:   "billing@mecacaraudio.com",
	Website: "https://mecacaraudio.com",
}

// Engine computes invoice numbering, totals and billing snapshots for the
// master/secondary consolidation path. It never mutates memberships; it only
// writes invoices.
type Engine struct {
	invoices invoicerepo.Repository
	clk      clockport.Clock
	log      *zap.Logger

	// Company is the issuing-organization snapshot stamped on new invoices.
	Company domain.CompanyInfo
	// Currency is the ISO code stamped on new invoices.
	Currency string

	newInvoiceID func() domain.InvoiceID
}

func NewEngine(invoices invoicerepo.Repository, clk clockport.Clock, log *zap.Logger) *Engine {
	return &Engine{
		invoices: invoices,
		clk:      clk,
		log:      log,
		Company:  DefaultCompanyInfo,
		Currency: "USD",
		newInvoiceID: func() domain.InvoiceID {
			return domain.InvoiceID(uuid.NewString())
		},
	}
}

// SetNewInvoiceIDForTest overrides invoice ID generation for deterministic tests.
func (e *Engine) SetNewInvoiceIDForTest(fn func() domain.InvoiceID) {
	if fn != nil {
		e.newInvoiceID = fn
	}
}

// CreateSecondaryInvoice builds and persists the invoice for one freshly
// provisioned secondary, billed to the master's profile. The invoice goes out
// as sent immediately with one membership line at the configured type price.
//
// Numbering draws on the store-backed sequence so concurrent provisioning
// cannot collide. The call participates in any transaction carried on ctx.
func (e *Engine) CreateSecondaryInvoice(
	ctx context.Context,
	master domain.Membership,
	masterProfileID domain.ProfileID,
	secondary domain.Membership,
	mtype typecatalog.MembershipType,
) (domain.Invoice, error) {
	now := e.clk.Now()

	number, err := e.nextSecondaryNumber(ctx, now)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("allocate invoice number: %w", err)
	}

	due := now.AddDate(0, 0, PaymentTermDays)
	price := mtype.Price

	secondaryID := secondary.ID
	inv := domain.Invoice{
		ID:            e.newInvoiceID(),
		InvoiceNumber: number,
		ProfileID:     masterProfileID,
		Status:        domain.InvoiceSent,
		Subtotal:      price,
		Tax:           domain.Zero,
		Discount:      domain.Zero,
		Total:         price,
		Currency:      e.Currency,
		DueDate:       &due,
		SentAt:        &now,
		Notes:         fmt.Sprintf("Secondary membership for %s", secondary.CompetitorName),
		BillingAddress: snapshotBillingAddress(master.Billing),
		CompanyInfo:    e.Company,
		MasterMembershipID: &master.ID,
		IsMasterInvoice:    false,
		Items: []domain.InvoiceItem{
			{
				ID:                    domain.InvoiceID(uuid.NewString()),
				Description:           fmt.Sprintf("%s - Secondary Membership (%s)", mtype.Name, secondary.CompetitorName),
				Quantity:              1,
				UnitPrice:             price,
				Total:                 price.MulInt(1),
				ItemType:              domain.ItemMembership,
				ReferenceID:           &secondaryID,
				SecondaryMembershipID: &secondaryID,
				CreatedAt:             now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.invoices.Create(ctx, inv); err != nil {
		return domain.Invoice{}, err
	}

	e.log.Info("created secondary invoice",
		zap.String("invoiceNumber", inv.InvoiceNumber),
		zap.String("secondaryMembershipID", string(secondary.ID)),
		zap.String("masterMembershipID", string(master.ID)),
		zap.String("total", inv.Total.String()),
	)
	return inv, nil
}

// ListMasterInvoices returns the invoices consolidated under a master
// membership, oldest first.
func (e *Engine) ListMasterInvoices(ctx context.Context, masterID domain.MembershipID) ([]domain.Invoice, error) {
	return e.invoices.ListByMasterMembership(ctx, masterID)
}

// nextSecondaryNumber renders the next human-readable invoice number,
// INV-<year>-SEC-<6-digit sequence>.
func (e *Engine) nextSecondaryNumber(ctx context.Context, now time.Time) (string, error) {
	seq, err := e.invoices.NextSecondarySequence(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-SEC-%06d", now.Year(), seq%1000000), nil
}

// snapshotBillingAddress freezes the master's billing fields onto the invoice.
func snapshotBillingAddress(b domain.BillingContact) domain.InvoiceAddress {
	name := strings.TrimSpace(deref(b.FirstName) + " " + deref(b.LastName))
	country := deref(b.Country)
	if country == "" {
		country = "USA"
	}
	return domain.InvoiceAddress{
		Name:       name,
		Address1:   deref(b.Address),
		City:       deref(b.City),
		State:      deref(b.State),
		PostalCode: deref(b.PostalCode),
		Country:    country,
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
