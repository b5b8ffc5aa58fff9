package domain

// ProfileID identifies an identity/login record for a natural person.
type ProfileID string

// MembershipID is an internal identifier for a membership record.
type MembershipID string

// MembershipTypeID identifies a membership-type configuration.
type MembershipTypeID string

// InvoiceID is an internal identifier for an invoice record.
type InvoiceID string

// MecaID is the sequential competitor identifier assigned once a membership is paid.
// Zero means unassigned.
type MecaID int
