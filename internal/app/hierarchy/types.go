package hierarchy

import (
	"time"

	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/typecatalog"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// CreateSecondaryInput describes one secondary-provisioning request.
type CreateSecondaryInput struct {
	MasterMembershipID domain.MembershipID
	MembershipTypeID   domain.MembershipTypeID

	// CompetitorName is optional iff RelationshipToMaster is "self".
	CompetitorName       string
	RelationshipToMaster string

	// HasOwnLogin requests an independently usable login; Email is then required.
	HasOwnLogin bool
	Email       string

	VehicleMake         *string
	VehicleModel        *string
	VehicleColor        *string
	VehicleLicensePlate *string

	TeamName        *string
	TeamDescription *string
}

// UpdateSecondaryDetailsInput is the patch applied by UpdateSecondaryDetails.
// Unspecified fields are left untouched.
type UpdateSecondaryDetailsInput struct {
	CompetitorName       Optional[string]
	RelationshipToMaster Optional[string]
	VehicleMake          Optional[string]
	VehicleModel         Optional[string]
	VehicleColor         Optional[string]
	VehicleLicensePlate  Optional[string]
}

// SecondaryInfo is the read model for one secondary under a master.
type SecondaryInfo struct {
	ID                   domain.MembershipID
	MecaID               domain.MecaID
	CompetitorName       string
	RelationshipToMaster *string
	HasOwnLogin          bool

	// ProfileID is set only when the secondary has its own login.
	ProfileID *domain.ProfileID

	MembershipType typecatalog.MembershipType

	Vehicle domain.Vehicle

	LinkedAt      *time.Time
	StartDate     time.Time
	EndDate       *time.Time
	PaymentStatus domain.PaymentStatus
	IsActive      bool
}

// MasterInfo is the read model for a master and its secondaries.
type MasterInfo struct {
	ID             domain.MembershipID
	MecaID         domain.MecaID
	AccountType    domain.AccountType
	Secondaries    []SecondaryInfo
	MaxSecondaries int
	CanAddMore     bool
}

// ControlledMecaID is one entry of the controlled-identity registry: an
// identified membership the user either owns directly or sponsors as master.
type ControlledMecaID struct {
	MecaID               domain.MecaID
	MembershipID         domain.MembershipID
	ProfileID            domain.ProfileID
	CompetitorName       string
	IsOwn                bool
	RelationshipToMaster *string
	Vehicle              domain.Vehicle
}

// RepairResult reports a legacy-repair batch run: rows fixed plus the per-row
// failures that did not abort the batch.
type RepairResult struct {
	Fixed  int
	Errors []string
}
