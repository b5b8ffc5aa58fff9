package hierarchy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/identityprovider"
)

// throwawayPasswordLen sizes the random password generated for repaired
// identities. The password is never used: repaired profiles carry CanLogin=false.
const throwawayPasswordLen = 16

// FixSecondariesWithoutProfiles repairs the historical "shared profile" defect:
// secondaries whose profile id equals their master's profile id. Each such row
// gets a freshly provisioned identity under a placeholder email and the
// membership is repointed to it.
//
// The batch is best-effort and idempotent: per-row failures are collected and
// do not abort remaining rows; an already-repaired row no longer matches the
// shared-profile predicate and is skipped on re-run.
func (s *Service) FixSecondariesWithoutProfiles(ctx context.Context) (RepairResult, error) {
	secs, err := s.memberships.ListAllSecondaries(ctx)
	if err != nil {
		return RepairResult{}, err
	}

	res := RepairResult{Errors: []string{}}
	for _, sec := range secs {
		repaired, err := s.repairOne(ctx, sec)
		if err != nil {
			msg := fmt.Sprintf("Failed to fix secondary %s: %v", sec.ID, err)
			s.log.Error("legacy repair row failed",
				zap.String("secondaryMembershipID", string(sec.ID)), zap.Error(err))
			res.Errors = append(res.Errors, msg)
			continue
		}
		if repaired {
			res.Fixed++
		}
	}

	s.log.Info("legacy repair batch finished",
		zap.Int("fixed", res.Fixed), zap.Int("errors", len(res.Errors)))
	return res, nil
}

// repairOne migrates a single shared-profile secondary. Returns false when the
// row does not exhibit the defect.
func (s *Service) repairOne(ctx context.Context, sec domain.Membership) (bool, error) {
	if sec.MasterMembershipID == nil {
		return false, nil
	}
	master, err := s.memberships.GetByID(ctx, *sec.MasterMembershipID)
	if err != nil {
		return false, fmt.Errorf("load master membership: %w", err)
	}
	if sec.ProfileID == "" || sec.ProfileID != master.ProfileID {
		return false, nil
	}

	now := s.clk.Now()
	email := domain.RepairPlaceholderEmail(sec.ID, now)

	name := sec.CompetitorName
	if name == "" {
		name = "Unknown"
	}
	first, last := domain.SplitHumanName(name)
	if first == "" {
		first = "Unknown"
	}

	// The auth backend requires credentials even for identities that will never
	// log in, so generate a throwaway password.
	password := s.idp.GeneratePassword(throwawayPasswordLen)

	userID, err := s.idp.CreateUser(ctx, identityprovider.NewUser{
		Email:               email,
		Password:            password,
		FirstName:           first,
		LastName:            last,
		ForcePasswordChange: false,
	})
	if err != nil {
		return false, fmt.Errorf("provision auth user: %w", err)
	}

	masterProfileID := master.ProfileID
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		profile := domain.Profile{
			ID:                 userID,
			Email:              email,
			FirstName:          first,
			LastName:           last,
			FullName:           name,
			IsSecondaryAccount: true,
			MasterProfileID:    &masterProfileID,
			CanLogin:           false,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}

		sec.ProfileID = userID
		sec.UpdatedAt = now
		if err := s.memberships.Update(ctx, sec); err != nil {
			return fmt.Errorf("repoint membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.log.Info("repaired shared-profile secondary",
		zap.String("secondaryMembershipID", string(sec.ID)),
		zap.String("profileID", string(userID)))
	return true, nil
}
