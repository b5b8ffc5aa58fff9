package hierarchy

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/membershiprepo"
	"github.com/newmeca/membership-api/internal/ports/out/notifier"
	"github.com/newmeca/membership-api/internal/ports/out/profilerepo"
)

// MarkSecondaryPaid confirms payment for a secondary membership. The status
// flush and the MECA ID assignment share one unit of work; the welcome
// notification goes out only after that transaction commits and its failure
// never rolls back the confirmation.
func (s *Service) MarkSecondaryPaid(ctx context.Context, secondaryID domain.MembershipID, amount domain.Money, transactionID *string) (domain.Membership, error) {
	var out domain.Membership
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		sec, err := s.memberships.GetByID(ctx, secondaryID)
		if err != nil {
			if errors.Is(err, membershiprepo.ErrNotFound) {
				return notFound(CodeSecondaryNotFound, "Secondary membership not found")
			}
			return err
		}
		if sec.AccountType != domain.AccountSecondary {
			return validation(CodeNotASecondary, "Membership is not a secondary", nil)
		}

		sec.PaymentStatus = domain.PaymentPaid
		sec.AmountPaid = amount
		if transactionID != nil {
			sec.TransactionID = transactionID
		}

		if err := s.ids.AssignMecaID(ctx, &sec, 0); err != nil {
			return err
		}

		sec.UpdatedAt = s.clk.Now()
		if err := s.memberships.Update(ctx, sec); err != nil {
			return err
		}
		out = sec
		return nil
	})
	if err != nil {
		return domain.Membership{}, err
	}

	s.log.Info("marked secondary membership paid",
		zap.String("secondaryMembershipID", string(secondaryID)),
		zap.Int("mecaID", int(out.MecaID)),
	)

	s.sendWelcome(ctx, out)
	return out, nil
}

// sendWelcome dispatches the post-payment welcome notification. Placeholder
// addresses are sentinels for "no real mailbox" and are skipped. Gateway
// failures are logged and swallowed: the recorded payment is the source of
// truth regardless of notification outcome.
func (s *Service) sendWelcome(ctx context.Context, sec domain.Membership) {
	profile, err := s.profiles.GetByID(ctx, sec.ProfileID)
	if err != nil {
		if !errors.Is(err, profilerepo.ErrNotFound) {
			s.log.Error("load secondary profile for welcome notification",
				zap.String("secondaryMembershipID", string(sec.ID)), zap.Error(err))
		}
		return
	}
	if profile.Email == "" || domain.IsPlaceholderEmail(profile.Email) {
		return
	}

	recipient := sec.CompetitorName
	if recipient == "" {
		recipient = profile.DisplayName()
	}
	if recipient == "" {
		recipient = "Member"
	}

	typeName := "MECA Membership"
	if mt, err := s.types.GetByID(ctx, sec.TypeID); err == nil {
		typeName = mt.Name
	}

	masterName := "Primary Member"
	if sec.MasterMembershipID != nil {
		if master, err := s.memberships.GetByID(ctx, *sec.MasterMembershipID); err == nil {
			if mp, err := s.profiles.GetByID(ctx, master.ProfileID); err == nil && mp.DisplayName() != "" {
				masterName = mp.DisplayName()
			}
		}
	}

	msg := notifier.SecondaryWelcome{
		To:                 profile.Email,
		RecipientName:      recipient,
		MecaID:             sec.MecaID,
		MembershipTypeName: typeName,
		MasterName:         masterName,
		ExpiresAt:          sec.EndDate,
	}
	if err := s.notify.SendSecondaryWelcome(ctx, msg); err != nil {
		s.log.Error("send secondary welcome notification",
			zap.String("secondaryMembershipID", string(sec.ID)),
			zap.String("to", profile.Email),
			zap.Error(err))
		return
	}
	s.log.Info("sent secondary welcome notification",
		zap.String("secondaryMembershipID", string(sec.ID)),
		zap.String("to", profile.Email))
}
