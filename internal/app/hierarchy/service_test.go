package hierarchy

import (
	"context"
	"errors"
	"testing"

	"github.com/newmeca/membership-api/internal/domain"
)

func TestUpgradeToMaster_Succeeds(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	m := e.seedMember(t, "m-1", domain.AccountIndependent, true, "Alice Smith", "alice@example.com")

	got, err := e.svc.UpgradeToMaster(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("UpgradeToMaster err=%v", err)
	}
	if got.AccountType != domain.AccountMaster {
		t.Fatalf("accountType=%q, want master", got.AccountType)
	}
}

func TestUpgradeToMaster_Errors(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")
	unpaid := e.seedMember(t, "m-unpaid", domain.AccountIndependent, false, "Carol Brown", "carol@example.com")

	tests := []struct {
		name       string
		id         domain.MembershipID
		wantStatus int
		wantCode   string
	}{
		{"not found", "missing", 404, CodeMembershipNotFound},
		{"already master", master.ID, 409, CodeAlreadyMaster},
		{"secondary", sec.ID, 422, CodeSecondaryCannotUpgrade},
		{"unpaid", unpaid.ID, 422, CodeMembershipNotPaid},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := e.svc.UpgradeToMaster(context.Background(), tc.id)
			ae := (*Error)(nil)
			if !errors.As(err, &ae) || ae.Status != tc.wantStatus || ae.Code != tc.wantCode {
				t.Fatalf("err=%v, want %s %d", err, tc.wantCode, tc.wantStatus)
			}
		})
	}
}

func TestRemoveSecondary_MasterOwnerUnlinks(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	sec, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   master.ID,
		MembershipTypeID:     typeID,
		CompetitorName:       "Bob Jones",
		RelationshipToMaster: "child",
		HasOwnLogin:          true,
		Email:                "bob@example.com",
	})
	if err != nil {
		t.Fatalf("CreateSecondary err=%v", err)
	}

	got, err := e.svc.RemoveSecondary(context.Background(), sec.ID, master.ProfileID)
	if err != nil {
		t.Fatalf("RemoveSecondary err=%v", err)
	}
	if got.AccountType != domain.AccountIndependent {
		t.Fatalf("accountType=%q, want independent", got.AccountType)
	}
	if got.MasterMembershipID != nil || got.MasterBillingProfileID != nil || got.LinkedAt != nil {
		t.Fatalf("link fields not cleared: %+v", got)
	}

	// The secondary markers on the login-capable profile must be cleared too.
	p, err := e.profiles.GetByID(context.Background(), sec.ProfileID)
	if err != nil {
		t.Fatalf("GetByID profile err=%v", err)
	}
	if p.IsSecondaryAccount || p.MasterProfileID != nil {
		t.Fatalf("profile markers not cleared: %+v", p)
	}
}

func TestRemoveSecondary_ForbiddenForNonOwner(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")

	_, err := e.svc.RemoveSecondary(context.Background(), sec.ID, "profile-intruder")
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 403 {
		t.Fatalf("err=%v, want 403", err)
	}

	// The secondary itself is not allowed to use RemoveSecondary either.
	_, err = e.svc.RemoveSecondary(context.Background(), sec.ID, sec.ProfileID)
	if !errors.As(err, &ae) || ae.Status != 403 {
		t.Fatalf("err=%v, want 403 for secondary's own profile", err)
	}
}

func TestRemoveSecondary_NotASecondary(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	m := e.seedMember(t, "m-1", domain.AccountIndependent, true, "Alice Smith", "alice@example.com")

	_, err := e.svc.RemoveSecondary(context.Background(), m.ID, m.ProfileID)
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 || ae.Code != CodeNotASecondary {
		t.Fatalf("err=%v, want NOT_A_SECONDARY 422", err)
	}
}

func TestUpgradeToIndependent_NoOwnershipCheck(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")

	got, err := e.svc.UpgradeToIndependent(context.Background(), sec.ID)
	if err != nil {
		t.Fatalf("UpgradeToIndependent err=%v", err)
	}
	if got.AccountType != domain.AccountIndependent {
		t.Fatalf("accountType=%q, want independent", got.AccountType)
	}
	if got.MasterMembershipID != nil || got.LinkedAt != nil {
		t.Fatalf("link fields not cleared: %+v", got)
	}
}

func TestUpdateSecondaryDetails_MasterOwnerPatchesFields(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")

	got, err := e.svc.UpdateSecondaryDetails(context.Background(), sec.ID, master.ProfileID, UpdateSecondaryDetailsInput{
		CompetitorName: Some("  Robert   Jones "),
		VehicleMake:    Some("Honda"),
		VehicleColor:   Null[string](),
	})
	if err != nil {
		t.Fatalf("UpdateSecondaryDetails err=%v", err)
	}
	if got.CompetitorName != "Robert Jones" {
		t.Fatalf("competitorName=%q, want normalized Robert Jones", got.CompetitorName)
	}
	if got.Vehicle.Make == nil || *got.Vehicle.Make != "Honda" {
		t.Fatalf("vehicleMake=%v", got.Vehicle.Make)
	}
	if got.Vehicle.Color != nil {
		t.Fatalf("vehicleColor=%v, want cleared", got.Vehicle.Color)
	}

	// Name cascades into the secondary's profile.
	p, err := e.profiles.GetByID(context.Background(), sec.ProfileID)
	if err != nil {
		t.Fatalf("GetByID profile err=%v", err)
	}
	if p.FullName != "Robert Jones" || p.FirstName != "Robert" || p.LastName != "Jones" {
		t.Fatalf("profile name=%q (%q %q), want Robert Jones", p.FullName, p.FirstName, p.LastName)
	}
}

func TestUpdateSecondaryDetails_SelfForcesMasterName(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")

	got, err := e.svc.UpdateSecondaryDetails(context.Background(), sec.ID, master.ProfileID, UpdateSecondaryDetailsInput{
		RelationshipToMaster: Some(domain.RelationshipSelf),
		CompetitorName:       Some("Ignored Name"),
	})
	if err != nil {
		t.Fatalf("UpdateSecondaryDetails err=%v", err)
	}
	if got.CompetitorName != "Alice Smith" {
		t.Fatalf("competitorName=%q, want master's name", got.CompetitorName)
	}

	// Re-applying self is idempotent.
	again, err := e.svc.UpdateSecondaryDetails(context.Background(), sec.ID, master.ProfileID, UpdateSecondaryDetailsInput{
		RelationshipToMaster: Some(domain.RelationshipSelf),
	})
	if err != nil {
		t.Fatalf("UpdateSecondaryDetails err=%v", err)
	}
	if again.CompetitorName != "Alice Smith" {
		t.Fatalf("competitorName=%q after re-apply", again.CompetitorName)
	}
}

func TestUpdateSecondaryDetails_SecondaryOwnLoginMayEdit(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	sec, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   master.ID,
		MembershipTypeID:     typeID,
		CompetitorName:       "Bob Jones",
		RelationshipToMaster: "child",
		HasOwnLogin:          true,
		Email:                "bob@example.com",
	})
	if err != nil {
		t.Fatalf("CreateSecondary err=%v", err)
	}

	got, err := e.svc.UpdateSecondaryDetails(context.Background(), sec.ID, sec.ProfileID, UpdateSecondaryDetailsInput{
		VehicleModel: Some("Civic"),
	})
	if err != nil {
		t.Fatalf("UpdateSecondaryDetails err=%v", err)
	}
	if got.Vehicle.Model == nil || *got.Vehicle.Model != "Civic" {
		t.Fatalf("vehicleModel=%v", got.Vehicle.Model)
	}
}

func TestUpdateSecondaryDetails_ForbiddenForStranger(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")

	_, err := e.svc.UpdateSecondaryDetails(context.Background(), sec.ID, "profile-intruder", UpdateSecondaryDetailsInput{
		CompetitorName: Some("Hijacked"),
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 403 {
		t.Fatalf("err=%v, want 403", err)
	}
}
