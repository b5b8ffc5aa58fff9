package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/membershiprepo"
	"github.com/newmeca/membership-api/internal/ports/out/profilerepo"
	"github.com/newmeca/membership-api/internal/ports/out/typecatalog"
)

// CreateSecondary provisions a secondary membership under a master: the backing
// profile, the membership record and the invoice billed to the master's profile
// are created inside one unit of work. An independent master is silently
// promoted to master in the same transaction.
func (s *Service) CreateSecondary(ctx context.Context, in CreateSecondaryInput) (domain.Membership, error) {
	var out domain.Membership
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		master, err := s.memberships.GetByID(ctx, in.MasterMembershipID)
		if err != nil {
			if errors.Is(err, membershiprepo.ErrNotFound) {
				return notFound(CodeMasterNotFound, "Master membership not found")
			}
			return err
		}

		promoted := false
		switch master.AccountType {
		case domain.AccountIndependent:
			master.AccountType = domain.AccountMaster
			promoted = true
		case domain.AccountSecondary:
			return validation(CodeMasterIsSecondary, "Cannot add secondary to a secondary membership", nil)
		case domain.AccountMaster:
			// already a master
		default:
			return validation(CodeMasterIsSecondary, "Unknown account type", nil)
		}

		if master.PaymentStatus != domain.PaymentPaid {
			return validation(CodeMasterNotPaid, "Master membership must be paid to add secondaries", nil)
		}

		count, err := s.memberships.CountSecondaries(ctx, master.ID)
		if err != nil {
			return err
		}
		if count >= s.MaxSecondaries {
			return validation(CodeSecondaryLimitReached,
				fmt.Sprintf("Maximum of %d secondary memberships allowed", s.MaxSecondaries),
				map[string]any{"maxSecondaries": s.MaxSecondaries})
		}

		if in.HasOwnLogin && strings.TrimSpace(in.Email) == "" {
			return validation(CodeEmailRequired, "Email is required when creating a login for the secondary",
				map[string]any{"email": "must be non-empty"})
		}

		competitorName, err := s.resolveCompetitorName(ctx, master, in)
		if err != nil {
			return err
		}

		mtype, err := s.types.GetByID(ctx, in.MembershipTypeID)
		if err != nil {
			if errors.Is(err, typecatalog.ErrNotFound) {
				return notFound(CodeMembershipTypeNotFound, "Membership type configuration not found")
			}
			return err
		}

		email := strings.TrimSpace(in.Email)
		if email != "" {
			if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
				return conflict(CodeEmailAlreadyInUse, "A profile with this email already exists")
			} else if !errors.Is(err, profilerepo.ErrNotFound) {
				return err
			}
		}

		now := s.clk.Now()
		if email == "" {
			// Non-login secondaries still get a queryable identity under a
			// placeholder address guaranteed not to collide.
			email = domain.PlaceholderEmail(now, randToken())
		}

		first, last := domain.SplitHumanName(competitorName)
		masterProfileID := master.ProfileID
		profile := domain.Profile{
			ID:                  s.newProfileID(),
			Email:               email,
			FirstName:           first,
			LastName:            last,
			FullName:            competitorName,
			IsSecondaryAccount:  true,
			MasterProfileID:     &masterProfileID,
			CanLogin:            in.HasOwnLogin,
			ForcePasswordChange: in.HasOwnLogin,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		endDate := master.EndDate
		if endDate == nil {
			e := now.AddDate(1, 0, 0)
			endDate = &e
		}

		linkedAt := now
		masterID := master.ID
		rel := in.RelationshipToMaster
		secondary := domain.Membership{
			ID:                     s.newMembershipID(),
			ProfileID:              profile.ID,
			TypeID:                 mtype.ID,
			AccountType:            domain.AccountSecondary,
			CompetitorName:         competitorName,
			RelationshipToMaster:   &rel,
			HasOwnLogin:            in.HasOwnLogin,
			MasterMembershipID:     &masterID,
			MasterBillingProfileID: &masterProfileID,
			LinkedAt:               &linkedAt,
			Vehicle: domain.Vehicle{
				Make:         in.VehicleMake,
				Model:        in.VehicleModel,
				Color:        in.VehicleColor,
				LicensePlate: in.VehicleLicensePlate,
			},
			Team: domain.Team{
				Name:        in.TeamName,
				Description: in.TeamDescription,
			},
			Billing:       master.Billing,
			PaymentStatus: domain.PaymentPending,
			AmountPaid:    domain.Zero,
			StartDate:     now,
			EndDate:       endDate,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if promoted {
			master.UpdatedAt = now
			if err := s.memberships.Update(ctx, master); err != nil {
				return err
			}
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			if errors.Is(err, profilerepo.ErrEmailTaken) {
				return conflict(CodeEmailAlreadyInUse, "A profile with this email already exists")
			}
			return err
		}
		if err := s.memberships.Create(ctx, secondary); err != nil {
			return err
		}

		inv, err := s.billing.CreateSecondaryInvoice(ctx, master, master.ProfileID, secondary, mtype)
		if err != nil {
			return err
		}

		s.log.Info("created secondary membership",
			zap.String("secondaryMembershipID", string(secondary.ID)),
			zap.String("masterMembershipID", string(master.ID)),
			zap.String("invoiceNumber", inv.InvoiceNumber),
		)
		out = secondary
		return nil
	})
	if err != nil {
		return domain.Membership{}, err
	}
	return out, nil
}

// resolveCompetitorName applies the "self" naming rule: a self-secondary always
// carries the master's own display name, any supplied name is ignored. Other
// relationships require a non-empty name.
func (s *Service) resolveCompetitorName(ctx context.Context, master domain.Membership, in CreateSecondaryInput) (string, error) {
	if in.RelationshipToMaster == domain.RelationshipSelf {
		return s.masterDisplayName(ctx, master)
	}
	name := domain.NormalizeHumanName(in.CompetitorName)
	if name == "" {
		return "", validation(CodeCompetitorNameRequired, "Competitor name is required for non-self relationships",
			map[string]any{"competitorName": "must be non-empty"})
	}
	return name, nil
}

// randToken returns a short random suffix for placeholder email uniqueness.
func randToken() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
