package domain

import (
	"fmt"
	"strings"
	"time"
)

// PlaceholderEmailDomain hosts synthesized, non-deliverable addresses assigned to
// secondaries that have no real mailbox. An address under this domain is a
// sentinel meaning "do not notify".
const PlaceholderEmailDomain = "placeholder.meca.local"

// Profile is the identity/login record for a natural person.
type Profile struct {
	ID    ProfileID
	Email string

	FirstName string
	LastName  string
	FullName  string

	IsSecondaryAccount bool
	MasterProfileID    *ProfileID

	CanLogin            bool
	ForcePasswordChange bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName is the best-available human name for the profile.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.FirstName
}

// PlaceholderEmail synthesizes a non-deliverable address for a secondary with no
// real mailbox. The timestamp plus token keeps addresses unique across calls.
func PlaceholderEmail(now time.Time, token string) string {
	return fmt.Sprintf("secondary-%d-%s@%s", now.UnixMilli(), token, PlaceholderEmailDomain)
}

// RepairPlaceholderEmail synthesizes the address used by the legacy repair batch,
// keyed by the membership being repaired.
func RepairPlaceholderEmail(id MembershipID, now time.Time) string {
	short := string(id)
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("secondary-%s-%d@%s", short, now.UnixMilli(), PlaceholderEmailDomain)
}

// IsPlaceholderEmail reports whether email is a synthesized sentinel address.
func IsPlaceholderEmail(email string) bool {
	return strings.HasSuffix(email, "@"+PlaceholderEmailDomain)
}
