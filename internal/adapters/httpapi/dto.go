package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"

	"github.com/newmeca/membership-api/internal/app/hierarchy"
	"github.com/newmeca/membership-api/internal/domain"
)

type vehicleJSON struct {
	Make         *string `json:"make,omitempty"`
	Model        *string `json:"model,omitempty"`
	Color        *string `json:"color,omitempty"`
	LicensePlate *string `json:"licensePlate,omitempty"`
}

type teamJSON struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type membershipJSON struct {
	ID                     string       `json:"id"`
	ProfileID              string       `json:"profileId"`
	TypeID                 string       `json:"typeId"`
	AccountType            string       `json:"accountType"`
	MecaID                 *int         `json:"mecaId,omitempty"`
	CompetitorName         string       `json:"competitorName"`
	RelationshipToMaster   *string      `json:"relationshipToMaster,omitempty"`
	HasOwnLogin            bool         `json:"hasOwnLogin"`
	MasterMembershipID     *string      `json:"masterMembershipId,omitempty"`
	MasterBillingProfileID *string      `json:"masterBillingProfileId,omitempty"`
	LinkedAt               *time.Time   `json:"linkedAt,omitempty"`
	Vehicle                vehicleJSON  `json:"vehicle"`
	Team                   teamJSON     `json:"team"`
	PaymentStatus          string       `json:"paymentStatus"`
	AmountPaid             domain.Money `json:"amountPaid"`
	TransactionID          *string      `json:"transactionId,omitempty"`
	StartDate              time.Time    `json:"startDate"`
	EndDate                *time.Time   `json:"endDate,omitempty"`
	CreatedAt              time.Time    `json:"createdAt"`
	UpdatedAt              time.Time    `json:"updatedAt"`
}

func membershipFromDomain(m domain.Membership) membershipJSON {
	out := membershipJSON{
		ID:                   string(m.ID),
		ProfileID:            string(m.ProfileID),
		TypeID:               string(m.TypeID),
		AccountType:          string(m.AccountType),
		CompetitorName:       m.CompetitorName,
		RelationshipToMaster: m.RelationshipToMaster,
		HasOwnLogin:          m.HasOwnLogin,
		LinkedAt:             m.LinkedAt,
		Vehicle: vehicleJSON{
			Make:         m.Vehicle.Make,
			Model:        m.Vehicle.Model,
			Color:        m.Vehicle.Color,
			LicensePlate: m.Vehicle.LicensePlate,
		},
		Team: teamJSON{
			Name:        m.Team.Name,
			Description: m.Team.Description,
		},
		PaymentStatus: string(m.PaymentStatus),
		AmountPaid:    m.AmountPaid,
		TransactionID: m.TransactionID,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.MecaID != 0 {
		v := int(m.MecaID)
		out.MecaID = &v
	}
	if m.MasterMembershipID != nil {
		v := string(*m.MasterMembershipID)
		out.MasterMembershipID = &v
	}
	if m.MasterBillingProfileID != nil {
		v := string(*m.MasterBillingProfileID)
		out.MasterBillingProfileID = &v
	}
	return out
}

type membershipTypeJSON struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Category string       `json:"category,omitempty"`
	Price    domain.Money `json:"price"`
}

type secondaryInfoJSON struct {
	ID                   string             `json:"id"`
	MecaID               *int               `json:"mecaId,omitempty"`
	CompetitorName       string             `json:"competitorName"`
	RelationshipToMaster *string            `json:"relationshipToMaster,omitempty"`
	HasOwnLogin          bool               `json:"hasOwnLogin"`
	ProfileID            *string            `json:"profileId,omitempty"`
	MembershipType       membershipTypeJSON `json:"membershipType"`
	Vehicle              vehicleJSON        `json:"vehicle"`
	LinkedAt             *time.Time         `json:"linkedAt,omitempty"`
	StartDate            time.Time          `json:"startDate"`
	EndDate              *time.Time         `json:"endDate,omitempty"`
	PaymentStatus        string             `json:"paymentStatus"`
	IsActive             bool               `json:"isActive"`
}

func secondaryInfoFromApp(s hierarchy.SecondaryInfo) secondaryInfoJSON {
	out := secondaryInfoJSON{
		ID:                   string(s.ID),
		CompetitorName:       s.CompetitorName,
		RelationshipToMaster: s.RelationshipToMaster,
		HasOwnLogin:          s.HasOwnLogin,
		MembershipType: membershipTypeJSON{
			ID:       string(s.MembershipType.ID),
			Name:     s.MembershipType.Name,
			Category: s.MembershipType.Category,
			Price:    s.MembershipType.Price,
		},
		Vehicle: vehicleJSON{
			Make:         s.Vehicle.Make,
			Model:        s.Vehicle.Model,
			Color:        s.Vehicle.Color,
			LicensePlate: s.Vehicle.LicensePlate,
		},
		LinkedAt:      s.LinkedAt,
		StartDate:     s.StartDate,
		EndDate:       s.EndDate,
		PaymentStatus: string(s.PaymentStatus),
		IsActive:      s.IsActive,
	}
	if s.MecaID != 0 {
		v := int(s.MecaID)
		out.MecaID = &v
	}
	if s.ProfileID != nil {
		v := string(*s.ProfileID)
		out.ProfileID = &v
	}
	return out
}

type masterInfoJSON struct {
	ID             string              `json:"id"`
	MecaID         *int                `json:"mecaId,omitempty"`
	AccountType    string              `json:"accountType"`
	Secondaries    []secondaryInfoJSON `json:"secondaries"`
	MaxSecondaries int                 `json:"maxSecondaries"`
	CanAddMore     bool                `json:"canAddMore"`
}

func masterInfoFromApp(mi hierarchy.MasterInfo) masterInfoJSON {
	out := masterInfoJSON{
		ID:             string(mi.ID),
		AccountType:    string(mi.AccountType),
		Secondaries:    make([]secondaryInfoJSON, 0, len(mi.Secondaries)),
		MaxSecondaries: mi.MaxSecondaries,
		CanAddMore:     mi.CanAddMore,
	}
	if mi.MecaID != 0 {
		v := int(mi.MecaID)
		out.MecaID = &v
	}
	for _, s := range mi.Secondaries {
		out.Secondaries = append(out.Secondaries, secondaryInfoFromApp(s))
	}
	return out
}

type controlledMecaIDJSON struct {
	MecaID               int         `json:"mecaId"`
	MembershipID         string      `json:"membershipId"`
	ProfileID            string      `json:"profileId"`
	CompetitorName       string      `json:"competitorName"`
	IsOwn                bool        `json:"isOwn"`
	RelationshipToMaster *string     `json:"relationshipToMaster,omitempty"`
	Vehicle              vehicleJSON `json:"vehicle"`
}

func controlledMecaIDFromApp(c hierarchy.ControlledMecaID) controlledMecaIDJSON {
	return controlledMecaIDJSON{
		MecaID:               int(c.MecaID),
		MembershipID:         string(c.MembershipID),
		ProfileID:            string(c.ProfileID),
		CompetitorName:       c.CompetitorName,
		IsOwn:                c.IsOwn,
		RelationshipToMaster: c.RelationshipToMaster,
		Vehicle: vehicleJSON{
			Make:         c.Vehicle.Make,
			Model:        c.Vehicle.Model,
			Color:        c.Vehicle.Color,
			LicensePlate: c.Vehicle.LicensePlate,
		},
	}
}

type profileJSON struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	CanLogin  bool   `json:"canLogin"`
}

func profileFromDomain(p domain.Profile) profileJSON {
	return profileJSON{
		ID:        string(p.ID),
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		FullName:  p.FullName,
		CanLogin:  p.CanLogin,
	}
}

type invoiceItemJSON struct {
	ID                    string       `json:"id"`
	Description           string       `json:"description"`
	Quantity              int          `json:"quantity"`
	UnitPrice             domain.Money `json:"unitPrice"`
	Total                 domain.Money `json:"total"`
	ItemType              string       `json:"itemType"`
	ReferenceID           *string      `json:"referenceId,omitempty"`
	SecondaryMembershipID *string      `json:"secondaryMembershipId,omitempty"`
}

type invoiceJSON struct {
	ID                 string            `json:"id"`
	InvoiceNumber      string            `json:"invoiceNumber"`
	ProfileID          string            `json:"profileId"`
	Status             string            `json:"status"`
	Subtotal           domain.Money      `json:"subtotal"`
	Tax                domain.Money      `json:"tax"`
	Discount           domain.Money      `json:"discount"`
	Total              domain.Money      `json:"total"`
	Currency           string            `json:"currency"`
	DueDate            *time.Time        `json:"dueDate,omitempty"`
	SentAt             *time.Time        `json:"sentAt,omitempty"`
	PaidAt             *time.Time        `json:"paidAt,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	MasterMembershipID *string           `json:"masterMembershipId,omitempty"`
	IsMasterInvoice    bool              `json:"isMasterInvoice"`
	Items              []invoiceItemJSON `json:"items"`
	CreatedAt          time.Time         `json:"createdAt"`
}

func invoiceFromDomain(inv domain.Invoice) invoiceJSON {
	out := invoiceJSON{
		ID:              string(inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		ProfileID:       string(inv.ProfileID),
		Status:          string(inv.Status),
		Subtotal:        inv.Subtotal,
		Tax:             inv.Tax,
		Discount:        inv.Discount,
		Total:           inv.Total,
		Currency:        inv.Currency,
		DueDate:         inv.DueDate,
		SentAt:          inv.SentAt,
		PaidAt:          inv.PaidAt,
		Notes:           inv.Notes,
		IsMasterInvoice: inv.IsMasterInvoice,
		Items:           make([]invoiceItemJSON, 0, len(inv.Items)),
		CreatedAt:       inv.CreatedAt,
	}
	if inv.MasterMembershipID != nil {
		v := string(*inv.MasterMembershipID)
		out.MasterMembershipID = &v
	}
	for _, it := range inv.Items {
		item := invoiceItemJSON{
			ID:          string(it.ID),
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
			ItemType:    string(it.ItemType),
		}
		if it.ReferenceID != nil {
			v := string(*it.ReferenceID)
			item.ReferenceID = &v
		}
		if it.SecondaryMembershipID != nil {
			v := string(*it.SecondaryMembershipID)
			item.SecondaryMembershipID = &v
		}
		out.Items = append(out.Items, item)
	}
	return out
}

type createSecondaryRequest struct {
	MembershipTypeID     string  `json:"membershipTypeId"`
	CompetitorName       string  `json:"competitorName"`
	RelationshipToMaster string  `json:"relationshipToMaster"`
	HasOwnLogin          bool    `json:"hasOwnLogin"`
	Email                string  `json:"email"`
	VehicleMake          *string `json:"vehicleMake,omitempty"`
	VehicleModel         *string `json:"vehicleModel,omitempty"`
	VehicleColor         *string `json:"vehicleColor,omitempty"`
	VehicleLicensePlate  *string `json:"vehicleLicensePlate,omitempty"`
	TeamName             *string `json:"teamName,omitempty"`
	TeamDescription      *string `json:"teamDescription,omitempty"`
}

type updateSecondaryRequest struct {
	CompetitorName       nullable.Nullable[string] `json:"competitorName,omitempty"`
	RelationshipToMaster nullable.Nullable[string] `json:"relationshipToMaster,omitempty"`
	VehicleMake          nullable.Nullable[string] `json:"vehicleMake,omitempty"`
	VehicleModel         nullable.Nullable[string] `json:"vehicleModel,omitempty"`
	VehicleColor         nullable.Nullable[string] `json:"vehicleColor,omitempty"`
	VehicleLicensePlate  nullable.Nullable[string] `json:"vehicleLicensePlate,omitempty"`
}

func optionalFromNullable(n nullable.Nullable[string]) hierarchy.Optional[string] {
	if !n.IsSpecified() {
		return hierarchy.Unspecified[string]()
	}
	if n.IsNull() {
		return hierarchy.Null[string]()
	}
	v, err := n.Get()
	if err != nil {
		return hierarchy.Unspecified[string]()
	}
	return hierarchy.Some(v)
}

type confirmPaymentRequest struct {
	AmountPaid    string  `json:"amountPaid"`
	TransactionID *string `json:"transactionId,omitempty"`
}

type repairResultJSON struct {
	Fixed  int      `json:"fixed"`
	Errors []string `json:"errors"`
}
