package domain

import "time"

// InvoiceStatus is the billing lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
	InvoiceRefunded  InvoiceStatus = "refunded"
)

// InvoiceItemType categorizes a line item.
type InvoiceItemType string

const (
	ItemMembership InvoiceItemType = "membership"
	ItemEvent      InvoiceItemType = "event_registration"
	ItemOther      InvoiceItemType = "other"
)

// InvoiceAddress is the frozen billing-address snapshot taken at creation time.
// Later changes to the master's billing fields do not alter historical invoices.
type InvoiceAddress struct {
	Name       string
	Address1   string
	City       string
	State      string
	PostalCode string
	Country    string
}

// CompanyInfo is the issuing organization snapshot printed on the invoice.
type CompanyInfo struct {
	Name    string
	Email   string
	Website string
}

// InvoiceItem is one line of an invoice. Total = UnitPrice × Quantity, rounded
// to two decimals.
type InvoiceItem struct {
	ID          InvoiceID
	Description string
	Quantity    int
	UnitPrice   Money
	Total       Money
	ItemType    InvoiceItemType

	// ReferenceID is the billed membership id.
	ReferenceID *MembershipID
	// SecondaryMembershipID back-links the line to the secondary it bills,
	// for consolidated reporting.
	SecondaryMembershipID *MembershipID

	CreatedAt time.Time
}

// Invoice is a consolidated billing artifact billed to a profile.
type Invoice struct {
	ID            InvoiceID
	InvoiceNumber string
	ProfileID     ProfileID

	Status   InvoiceStatus
	Subtotal Money
	Tax      Money
	Discount Money
	Total    Money
	Currency string

	DueDate *time.Time
	SentAt  *time.Time
	PaidAt  *time.Time

	Notes          string
	BillingAddress InvoiceAddress
	CompanyInfo    CompanyInfo

	// MasterMembershipID links the invoice to the sponsoring master for
	// billing-consolidation reporting.
	MasterMembershipID *MembershipID
	// IsMasterInvoice is reserved for a future multi-line consolidated
	// statement; single-secondary invoices carry false.
	IsMasterInvoice bool

	Items []InvoiceItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemsTotal sums the line totals. At creation time Total must equal this sum.
func (inv *Invoice) ItemsTotal() Money {
	sum := Zero
	for _, it := range inv.Items {
		sum = sum.Add(it.Total)
	}
	return sum
}
