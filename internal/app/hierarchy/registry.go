package hierarchy

import (
	"context"
	"errors"

	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/membershiprepo"
	"github.com/newmeca/membership-api/internal/ports/out/profilerepo"
	"github.com/newmeca/membership-api/internal/ports/out/typecatalog"
)

// GetSecondaryMemberships lists every secondary linked to the given master.
func (s *Service) GetSecondaryMemberships(ctx context.Context, masterID domain.MembershipID) ([]SecondaryInfo, error) {
	if _, err := s.memberships.GetByID(ctx, masterID); err != nil {
		if errors.Is(err, membershiprepo.ErrNotFound) {
			return nil, notFound(CodeMasterNotFound, "Master membership not found")
		}
		return nil, err
	}

	secs, err := s.memberships.ListSecondaries(ctx, masterID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	out := make([]SecondaryInfo, 0, len(secs))
	for _, sec := range secs {
		mtype, err := s.types.GetByID(ctx, sec.TypeID)
		if err != nil && !errors.Is(err, typecatalog.ErrNotFound) {
			return nil, err
		}

		var profileID *domain.ProfileID
		if sec.HasOwnLogin {
			pid := sec.ProfileID
			profileID = &pid
		}

		out = append(out, SecondaryInfo{
			ID:                   sec.ID,
			MecaID:               sec.MecaID,
			CompetitorName:       sec.CompetitorName,
			RelationshipToMaster: sec.RelationshipToMaster,
			HasOwnLogin:          sec.HasOwnLogin,
			ProfileID:            profileID,
			MembershipType:       mtype,
			Vehicle:              sec.Vehicle,
			LinkedAt:             sec.LinkedAt,
			StartDate:            sec.StartDate,
			EndDate:              sec.EndDate,
			PaymentStatus:        sec.PaymentStatus,
			IsActive:             sec.ActiveAt(now),
		})
	}
	return out, nil
}

// GetMasterInfo returns a master summary with its secondaries and remaining
// capacity.
func (s *Service) GetMasterInfo(ctx context.Context, id domain.MembershipID) (MasterInfo, error) {
	m, err := s.memberships.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, membershiprepo.ErrNotFound) {
			return MasterInfo{}, notFound(CodeMembershipNotFound, "Membership not found")
		}
		return MasterInfo{}, err
	}

	secondaries, err := s.GetSecondaryMemberships(ctx, id)
	if err != nil {
		return MasterInfo{}, err
	}

	accountType := m.AccountType
	if !accountType.Valid() {
		accountType = domain.AccountIndependent
	}

	return MasterInfo{
		ID:             m.ID,
		MecaID:         m.MecaID,
		AccountType:    accountType,
		Secondaries:    secondaries,
		MaxSecondaries: s.MaxSecondaries,
		CanAddMore:     len(secondaries) < s.MaxSecondaries,
	}, nil
}

// GetControlledMecaIDs returns every identified membership the profile owns
// directly (any non-secondary account type) plus, for each owned master, its
// identified secondaries. This registry backs profile switching and the
// authorization oracle HasAccessToMecaID.
func (s *Service) GetControlledMecaIDs(ctx context.Context, profileID domain.ProfileID) ([]ControlledMecaID, error) {
	own, err := s.memberships.ListIdentifiedOwnedBy(ctx, profileID)
	if err != nil {
		return nil, err
	}

	out := make([]ControlledMecaID, 0, len(own))
	for _, m := range own {
		if m.MecaID == 0 {
			continue
		}
		out = append(out, ControlledMecaID{
			MecaID:         m.MecaID,
			MembershipID:   m.ID,
			ProfileID:      m.ProfileID,
			CompetitorName: m.CompetitorName,
			IsOwn:          true,
			Vehicle:        m.Vehicle,
		})

		if m.AccountType != domain.AccountMaster {
			continue
		}
		secs, err := s.memberships.ListIdentifiedSecondaries(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		for _, sec := range secs {
			if sec.MecaID == 0 {
				continue
			}
			out = append(out, ControlledMecaID{
				MecaID:               sec.MecaID,
				MembershipID:         sec.ID,
				ProfileID:            sec.ProfileID,
				CompetitorName:       sec.CompetitorName,
				IsOwn:                false,
				RelationshipToMaster: sec.RelationshipToMaster,
				Vehicle:              sec.Vehicle,
			})
		}
	}
	return out, nil
}

// HasAccessToMecaID reports whether the given MECA ID is visible/manageable by
// the profile, derived from the controlled-identity registry.
func (s *Service) HasAccessToMecaID(ctx context.Context, profileID domain.ProfileID, mecaID domain.MecaID) (bool, error) {
	controlled, err := s.GetControlledMecaIDs(ctx, profileID)
	if err != nil {
		return false, err
	}
	for _, c := range controlled {
		if c.MecaID == mecaID {
			return true, nil
		}
	}
	return false, nil
}

// IsSecondaryProfile reports whether the profile is flagged as secondary-managed.
func (s *Service) IsSecondaryProfile(ctx context.Context, profileID domain.ProfileID) (bool, error) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, profilerepo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.IsSecondaryAccount, nil
}

// GetMasterProfile returns the master profile backing a secondary profile, or
// nil when the profile is not secondary-managed.
func (s *Service) GetMasterProfile(ctx context.Context, secondaryProfileID domain.ProfileID) (*domain.Profile, error) {
	p, err := s.profiles.GetByID(ctx, secondaryProfileID)
	if err != nil {
		if errors.Is(err, profilerepo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if p.MasterProfileID == nil {
		return nil, nil
	}
	master, err := s.profiles.GetByID(ctx, *p.MasterProfileID)
	if err != nil {
		if errors.Is(err, profilerepo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &master, nil
}
