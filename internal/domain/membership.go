package domain

import "time"

// AccountType is the hierarchy position of a membership.
//
// The set is closed: every operation that branches on account type must handle
// all three variants so a new variant cannot silently fall through.
type AccountType string

const (
	// AccountIndependent is a membership with no hierarchy relationship.
	AccountIndependent AccountType = "independent"
	// AccountMaster sponsors and pays for linked secondary memberships.
	AccountMaster AccountType = "master"
	// AccountSecondary is linked to and billed through a master.
	AccountSecondary AccountType = "secondary"
)

// Valid reports whether t is one of the closed set of account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountIndependent, AccountMaster, AccountSecondary:
		return true
	}
	return false
}

// PaymentStatus tracks the payment state of a membership term.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// RelationshipSelf marks a secondary that competes under the master's own name.
// When set, the secondary's competitor name always mirrors the master's.
const RelationshipSelf = "self"

// Vehicle is the competitor's registered vehicle.
type Vehicle struct {
	Make         *string
	Model        *string
	Color        *string
	LicensePlate *string
}

// Team is optional team affiliation metadata.
type Team struct {
	Name        *string
	Description *string
}

// BillingContact holds the billing-address fields carried on a membership.
// Secondaries copy these from their master at creation; the copies are
// independently mutable afterwards.
type BillingContact struct {
	FirstName  *string
	LastName   *string
	Address    *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
	Phone      *string
}

// Membership is the domain representation of one competitor's membership term.
//
// Invariants:
//   - AccountType == AccountSecondary iff MasterMembershipID != nil.
//   - A secondary cannot itself own secondaries (no multi-level hierarchy).
type Membership struct {
	ID        MembershipID
	ProfileID ProfileID
	TypeID    MembershipTypeID

	AccountType AccountType
	MecaID      MecaID

	CompetitorName       string
	RelationshipToMaster *string
	HasOwnLogin          bool

	// Master-link fields, set iff AccountType == AccountSecondary.
	MasterMembershipID     *MembershipID
	MasterBillingProfileID *ProfileID
	LinkedAt               *time.Time

	Vehicle Vehicle
	Team    Team
	Billing BillingContact

	PaymentStatus PaymentStatus
	AmountPaid    Money
	TransactionID *string

	StartDate time.Time
	EndDate   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSecondary reports whether the membership is currently linked to a master.
func (m *Membership) IsSecondary() bool {
	return m.AccountType == AccountSecondary
}

// ActiveAt reports whether the membership term covers the given instant and is paid.
func (m *Membership) ActiveAt(now time.Time) bool {
	if m.PaymentStatus != PaymentPaid {
		return false
	}
	if m.StartDate.After(now) {
		return false
	}
	return m.EndDate == nil || !m.EndDate.Before(now)
}
