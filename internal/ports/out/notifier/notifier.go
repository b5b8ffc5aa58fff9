package notifier

import (
	"context"
	"time"

	"github.com/newmeca/membership-api/internal/domain"
)

// SecondaryWelcome is the payload for the welcome notification sent to a newly
// paid secondary member.
type SecondaryWelcome struct {
	To                 string
	RecipientName      string
	MecaID             domain.MecaID
	MembershipTypeName string
	MasterName         string
	ExpiresAt          *time.Time
}

// Gateway delivers member notifications. Failures are non-fatal to callers:
// the payment confirmation that triggers a welcome must never roll back because
// delivery failed.
type Gateway interface {
	SendSecondaryWelcome(ctx context.Context, msg SecondaryWelcome) error
}
