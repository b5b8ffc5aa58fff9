package hierarchy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newmeca/membership-api/internal/app/billing"
	"github.com/newmeca/membership-api/internal/domain"
	clockport "github.com/newmeca/membership-api/internal/ports/out/clock"
	"github.com/newmeca/membership-api/internal/ports/out/idalloc"
	"github.com/newmeca/membership-api/internal/ports/out/identityprovider"
	"github.com/newmeca/membership-api/internal/ports/out/membershiprepo"
	"github.com/newmeca/membership-api/internal/ports/out/notifier"
	"github.com/newmeca/membership-api/internal/ports/out/profilerepo"
	"github.com/newmeca/membership-api/internal/ports/out/typecatalog"
	"github.com/newmeca/membership-api/internal/ports/out/uow"
)

// DefaultMaxSecondaries bounds how many secondaries one master may sponsor.
const DefaultMaxSecondaries = 10

// Service implements the master/secondary hierarchy: account-type transitions,
// secondary provisioning, payment confirmation, authorization over hierarchy
// mutations, the controlled-identity registry and the legacy repair batch.
type Service struct {
	memberships membershiprepo.Repository
	profiles    profilerepo.Repository
	types       typecatalog.Catalog
	billing     *billing.Engine
	tx          uow.UnitOfWork
	ids         idalloc.Allocator
	notify      notifier.Gateway
	idp         identityprovider.Provider
	clk         clockport.Clock
	log         *zap.Logger

	newMembershipID func() domain.MembershipID
	newProfileID    func() domain.ProfileID

	// MaxSecondaries bounds secondaries per master.
	MaxSecondaries int
}

type Deps struct {
	Memberships membershiprepo.Repository
	Profiles    profilerepo.Repository
	Types       typecatalog.Catalog
	Billing     *billing.Engine
	Tx          uow.UnitOfWork
	IDs         idalloc.Allocator
	Notify      notifier.Gateway
	IdentityIDP identityprovider.Provider
	Clock       clockport.Clock
	Log         *zap.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		memberships: d.Memberships,
		profiles:    d.Profiles,
		types:       d.Types,
		billing:     d.Billing,
		tx:          d.Tx,
		ids:         d.IDs,
		notify:      d.Notify,
		idp:         d.IdentityIDP,
		clk:         d.Clock,
		log:         d.Log,
		newMembershipID: func() domain.MembershipID {
			return domain.MembershipID(uuid.NewString())
		},
		newProfileID: func() domain.ProfileID {
			return domain.ProfileID(uuid.NewString())
		},
		MaxSecondaries: DefaultMaxSecondaries,
	}
}

// SetIDGeneratorsForTest overrides membership/profile ID generation for
// deterministic tests. It should not be used in production code.
func (s *Service) SetIDGeneratorsForTest(membership func() domain.MembershipID, profile func() domain.ProfileID) {
	if membership != nil {
		s.newMembershipID = membership
	}
	if profile != nil {
		s.newProfileID = profile
	}
}

// UpgradeToMaster promotes an independent, paid membership to master status.
func (s *Service) UpgradeToMaster(ctx context.Context, id domain.MembershipID) (domain.Membership, error) {
	var out domain.Membership
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		m, err := s.memberships.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, membershiprepo.ErrNotFound) {
				return notFound(CodeMembershipNotFound, "Membership not found")
			}
			return err
		}

		switch m.AccountType {
		case domain.AccountMaster:
			return conflict(CodeAlreadyMaster, "Membership is already a master account")
		case domain.AccountSecondary:
			return validation(CodeSecondaryCannotUpgrade,
				"Cannot upgrade a secondary membership to master. Upgrade to independent first.", nil)
		case domain.AccountIndependent:
			// fallthrough to the payment check
		default:
			return validation(CodeSecondaryCannotUpgrade, "Unknown account type", nil)
		}

		if m.PaymentStatus != domain.PaymentPaid {
			return validation(CodeMembershipNotPaid, "Only paid memberships can become master accounts", nil)
		}

		m.AccountType = domain.AccountMaster
		m.UpdatedAt = s.clk.Now()
		if err := s.memberships.Update(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Membership{}, err
	}

	s.log.Info("upgraded membership to master", zap.String("membershipID", string(id)))
	return out, nil
}

// RemoveSecondary unlinks a secondary from its master, relinking it as
// independent. It never deletes the membership. Only the master account owner
// may remove secondaries.
func (s *Service) RemoveSecondary(ctx context.Context, secondaryID domain.MembershipID, requestingProfileID domain.ProfileID) (domain.Membership, error) {
	var out domain.Membership
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		sec, master, err := s.loadSecondaryWithMaster(ctx, secondaryID)
		if err != nil {
			return err
		}

		if master == nil || master.ProfileID != requestingProfileID {
			return forbidden("Only the master account owner can remove secondaries")
		}

		if err := s.unlink(ctx, &sec); err != nil {
			return err
		}
		out = sec
		return nil
	})
	if err != nil {
		return domain.Membership{}, err
	}

	s.log.Info("removed secondary from master", zap.String("secondaryMembershipID", string(secondaryID)))
	return out, nil
}

// UpgradeToIndependent unlinks a secondary without an ownership check.
// Intended for self-service by the secondary or an administrator; callers that
// act on behalf of another profile must authorize upstream.
func (s *Service) UpgradeToIndependent(ctx context.Context, secondaryID domain.MembershipID) (domain.Membership, error) {
	var out domain.Membership
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		sec, _, err := s.loadSecondaryWithMaster(ctx, secondaryID)
		if err != nil {
			return err
		}
		if err := s.unlink(ctx, &sec); err != nil {
			return err
		}
		out = sec
		return nil
	})
	if err != nil {
		return domain.Membership{}, err
	}

	s.log.Info("upgraded secondary to independent", zap.String("secondaryMembershipID", string(secondaryID)))
	return out, nil
}

// UpdateSecondaryDetails patches a secondary's competitor name, relationship
// and vehicle fields. Allowed for the master account owner or, when the
// secondary has its own login, the secondary's own profile.
//
// Changing the relationship to "self" force-overwrites the competitor name to
// the master's display name, and the resolved name cascades into the
// secondary's own profile name fields.
func (s *Service) UpdateSecondaryDetails(ctx context.Context, secondaryID domain.MembershipID, requestingProfileID domain.ProfileID, in UpdateSecondaryDetailsInput) (domain.Membership, error) {
	var out domain.Membership
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		sec, err := s.memberships.GetByID(ctx, secondaryID)
		if err != nil {
			if errors.Is(err, membershiprepo.ErrNotFound) {
				return notFound(CodeSecondaryNotFound, "Secondary membership not found")
			}
			return err
		}

		var master *domain.Membership
		if sec.MasterMembershipID != nil {
			m, err := s.memberships.GetByID(ctx, *sec.MasterMembershipID)
			if err != nil && !errors.Is(err, membershiprepo.ErrNotFound) {
				return err
			}
			if err == nil {
				master = &m
			}
		}

		isSecondaryOwner := sec.ProfileID == requestingProfileID
		isMasterOwner := master != nil && master.ProfileID == requestingProfileID
		if !isSecondaryOwner && !isMasterOwner {
			return forbidden("You do not have permission to update this membership")
		}

		if in.RelationshipToMaster.IsSpecified() {
			rel := in.RelationshipToMaster.Value()
			sec.RelationshipToMaster = &rel

			if rel == domain.RelationshipSelf && master != nil {
				name, err := s.masterDisplayName(ctx, *master)
				if err != nil {
					return err
				}
				sec.CompetitorName = name
			}
		}

		// An explicit competitor name is honored only while the relationship is
		// not "self"; for self the name mirrors the master.
		if in.CompetitorName.IsSpecified() && !isSelf(sec.RelationshipToMaster) {
			sec.CompetitorName = domain.NormalizeHumanName(in.CompetitorName.Value())
		}

		applyOptional(&sec.Vehicle.Make, in.VehicleMake)
		applyOptional(&sec.Vehicle.Model, in.VehicleModel)
		applyOptional(&sec.Vehicle.Color, in.VehicleColor)
		applyOptional(&sec.Vehicle.LicensePlate, in.VehicleLicensePlate)

		// Cascade the resolved name into the secondary's own profile.
		nameToUse := ""
		if isSelf(sec.RelationshipToMaster) {
			nameToUse = sec.CompetitorName
		} else if in.CompetitorName.IsSpecified() {
			nameToUse = domain.NormalizeHumanName(in.CompetitorName.Value())
		}
		if nameToUse != "" {
			p, err := s.profiles.GetByID(ctx, sec.ProfileID)
			if err != nil && !errors.Is(err, profilerepo.ErrNotFound) {
				return err
			}
			if err == nil {
				p.FirstName, p.LastName = domain.SplitHumanName(nameToUse)
				p.FullName = nameToUse
				p.UpdatedAt = s.clk.Now()
				if err := s.profiles.Update(ctx, p); err != nil {
					return err
				}
			}
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

	s.log.Info("updated secondary details", zap.String("secondaryMembershipID", string(secondaryID)))
	return out, nil
}

// loadSecondaryWithMaster loads a membership, requires it to be a secondary,
// and loads its master when the link resolves.
func (s *Service) loadSecondaryWithMaster(ctx context.Context, id domain.MembershipID) (domain.Membership, *domain.Membership, error) {
	sec, err := s.memberships.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, membershiprepo.ErrNotFound) {
			return domain.Membership{}, nil, notFound(CodeSecondaryNotFound, "Secondary membership not found")
		}
		return domain.Membership{}, nil, err
	}
	if sec.AccountType != domain.AccountSecondary {
		return domain.Membership{}, nil, validation(CodeNotASecondary, "Membership is not a secondary", nil)
	}

	var master *domain.Membership
	if sec.MasterMembershipID != nil {
		m, err := s.memberships.GetByID(ctx, *sec.MasterMembershipID)
		if err != nil && !errors.Is(err, membershiprepo.ErrNotFound) {
			return domain.Membership{}, nil, err
		}
		if err == nil {
			master = &m
		}
	}
	return sec, master, nil
}

// unlink clears the master-link fields, relinks the membership as independent
// and, when the secondary has its own login, clears the secondary markers on
// its profile.
func (s *Service) unlink(ctx context.Context, sec *domain.Membership) error {
	sec.AccountType = domain.AccountIndependent
	sec.MasterMembershipID = nil
	sec.MasterBillingProfileID = nil
	sec.LinkedAt = nil

	if sec.HasOwnLogin {
		p, err := s.profiles.GetByID(ctx, sec.ProfileID)
		if err != nil && !errors.Is(err, profilerepo.ErrNotFound) {
			return err
		}
		if err == nil {
			p.IsSecondaryAccount = false
			p.MasterProfileID = nil
			p.UpdatedAt = s.clk.Now()
			if err := s.profiles.Update(ctx, p); err != nil {
				return err
			}
		}
	}

	sec.UpdatedAt = s.clk.Now()
	return s.memberships.Update(ctx, *sec)
}

// masterDisplayName resolves the best-available name for a master membership:
// its competitor name, else its profile's full name, else first name, else
// "Unknown".
func (s *Service) masterDisplayName(ctx context.Context, master domain.Membership) (string, error) {
	if master.CompetitorName != "" {
		return master.CompetitorName, nil
	}
	p, err := s.profiles.GetByID(ctx, master.ProfileID)
	if err != nil {
		if errors.Is(err, profilerepo.ErrNotFound) {
			return "Unknown", nil
		}
		return "", err
	}
	if name := p.DisplayName(); name != "" {
		return name, nil
	}
	return "Unknown", nil
}

func isSelf(rel *string) bool {
	return rel != nil && *rel == domain.RelationshipSelf
}

func applyOptional(dst **string, o Optional[string]) {
	if !o.IsSpecified() {
		return
	}
	if o.IsNull() {
		*dst = nil
		return
	}
	v := o.Value()
	*dst = &v
}
