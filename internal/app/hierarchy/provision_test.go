package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/newmeca/membership-api/internal/domain"
)

func TestCreateSecondary_PromotesIndependentMaster(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountIndependent, true, "Alice Smith", "alice@example.com")

	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")

	gotMaster, err := e.members.GetByID(context.Background(), master.ID)
	if err != nil {
		t.Fatalf("GetByID master err=%v", err)
	}
	if gotMaster.AccountType != domain.AccountMaster {
		t.Fatalf("master accountType=%q, want master", gotMaster.AccountType)
	}

	if sec.AccountType != domain.AccountSecondary {
		t.Fatalf("secondary accountType=%q", sec.AccountType)
	}
	if sec.MasterMembershipID == nil || *sec.MasterMembershipID != master.ID {
		t.Fatalf("masterMembershipID=%v, want %s", sec.MasterMembershipID, master.ID)
	}
	if sec.MasterBillingProfileID == nil || *sec.MasterBillingProfileID != master.ProfileID {
		t.Fatalf("masterBillingProfileID=%v, want %s", sec.MasterBillingProfileID, master.ProfileID)
	}
	if sec.LinkedAt == nil {
		t.Fatalf("expected linkedAt set")
	}
	if sec.PaymentStatus != domain.PaymentPending {
		t.Fatalf("paymentStatus=%q, want pending", sec.PaymentStatus)
	}
	if sec.MecaID != 0 {
		t.Fatalf("mecaID=%d, want unassigned before payment", sec.MecaID)
	}
}

func TestCreateSecondary_SelfMirrorsMasterName(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")

	sec, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   master.ID,
		MembershipTypeID:     typeID,
		CompetitorName:       "Ignored Name",
		RelationshipToMaster: domain.RelationshipSelf,
	})
	if err != nil {
		t.Fatalf("CreateSecondary err=%v", err)
	}
	if sec.CompetitorName != "Alice Smith" {
		t.Fatalf("competitorName=%q, want master's name", sec.CompetitorName)
	}
}

func TestCreateSecondary_SelfFallsBackThroughProfileNames(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")

	// Blank the membership-level name so resolution falls through to the profile.
	master.CompetitorName = ""
	if err := e.members.Update(context.Background(), master); err != nil {
		t.Fatalf("Update err=%v", err)
	}

	sec := e.createSecondary(t, master.ID, typeID, "", domain.RelationshipSelf)
	if sec.CompetitorName != "Alice Smith" {
		t.Fatalf("competitorName=%q, want profile full name", sec.CompetitorName)
	}
}

func TestCreateSecondary_NonSelfRequiresName(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")

	_, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   master.ID,
		MembershipTypeID:     typeID,
		CompetitorName:       "   ",
		RelationshipToMaster: "child",
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 || ae.Code != CodeCompetitorNameRequired {
		t.Fatalf("err=%v, want COMPETITOR_NAME_REQUIRED 422", err)
	}
}

func TestCreateSecondary_MasterNotFound(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")

	_, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   "missing",
		MembershipTypeID:     typeID,
		CompetitorName:       "Bob",
		RelationshipToMaster: "child",
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 404 || ae.Code != CodeMasterNotFound {
		t.Fatalf("err=%v, want MASTER_NOT_FOUND 404", err)
	}
}

func TestCreateSecondary_RejectsSecondaryMaster(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")

	_, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   sec.ID,
		MembershipTypeID:     typeID,
		CompetitorName:       "Carol",
		RelationshipToMaster: "child",
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 || ae.Code != CodeMasterIsSecondary {
		t.Fatalf("err=%v, want MASTER_IS_SECONDARY 422", err)
	}
}

func TestCreateSecondary_RejectsUnpaidMaster(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountIndependent, false, "Alice Smith", "alice@example.com")

	_, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   master.ID,
		MembershipTypeID:     typeID,
		CompetitorName:       "Bob",
		RelationshipToMaster: "child",
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 || ae.Code != CodeMasterNotPaid {
		t.Fatalf("err=%v, want MASTER_NOT_PAID 422", err)
	}

	// The failed provisioning must not have promoted the master.
	got, err := e.members.GetByID(context.Background(), master.ID)
	if err != nil {
		t.Fatalf("GetByID err=%v", err)
	}
	if got.AccountType != domain.AccountIndependent {
		t.Fatalf("accountType=%q, want independent after rejected provisioning", got.AccountType)
	}
}

func TestCreateSecondary_EnforcesLimit(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	e.svc.MaxSecondaries = 2

	e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")
	e.createSecondary(t, master.ID, typeID, "Carol Jones", "child")

	_, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   master.ID,
		MembershipTypeID:     typeID,
		CompetitorName:       "Dave Jones",
		RelationshipToMaster: "child",
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 || ae.Code != CodeSecondaryLimitReached {
		t.Fatalf("err=%v, want SECONDARY_LIMIT_REACHED 422", err)
	}
	if ae.Details["maxSecondaries"] != 2 {
		t.Fatalf("details=%v, want maxSecondaries=2", ae.Details)
	}
}

func TestCreateSecondary_LoginRequiresEmail(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")

	_, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   master.ID,
		MembershipTypeID:     typeID,
		CompetitorName:       "Bob Jones",
		RelationshipToMaster: "child",
		HasOwnLogin:          true,
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 || ae.Code != CodeEmailRequired {
		t.Fatalf("err=%v, want EMAIL_REQUIRED 422", err)
	}
}

func TestCreateSecondary_DuplicateEmailConflicts(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")

	_, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   master.ID,
		MembershipTypeID:     typeID,
		CompetitorName:       "Bob Jones",
		RelationshipToMaster: "child",
		HasOwnLogin:          true,
		Email:                "alice@example.com",
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 409 || ae.Code != CodeEmailAlreadyInUse {
		t.Fatalf("err=%v, want EMAIL_ALREADY_IN_USE 409", err)
	}
}

func TestCreateSecondary_UnknownType(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")

	_, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   master.ID,
		MembershipTypeID:     "nope",
		CompetitorName:       "Bob Jones",
		RelationshipToMaster: "child",
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 404 || ae.Code != CodeMembershipTypeNotFound {
		t.Fatalf("err=%v, want MEMBERSHIP_TYPE_NOT_FOUND 404", err)
	}
}

func TestCreateSecondary_PlaceholderProfileWithoutLogin(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")

	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")

	p, err := e.profiles.GetByID(context.Background(), sec.ProfileID)
	if err != nil {
		t.Fatalf("GetByID profile err=%v", err)
	}
	if !domain.IsPlaceholderEmail(p.Email) {
		t.Fatalf("email=%q, want placeholder", p.Email)
	}
	if !strings.HasPrefix(p.Email, "secondary-") {
		t.Fatalf("email=%q, want secondary- prefix", p.Email)
	}
	if p.CanLogin || p.ForcePasswordChange {
		t.Fatalf("canLogin=%v forcePasswordChange=%v, want both false", p.CanLogin, p.ForcePasswordChange)
	}
	if !p.IsSecondaryAccount {
		t.Fatalf("expected isSecondaryAccount")
	}
	if p.MasterProfileID == nil || *p.MasterProfileID != master.ProfileID {
		t.Fatalf("masterProfileID=%v, want %s", p.MasterProfileID, master.ProfileID)
	}
	if p.FirstName != "Bob" || p.LastName != "Jones" {
		t.Fatalf("name=%q %q, want Bob Jones", p.FirstName, p.LastName)
	}
}

func TestCreateSecondary_InvoiceBilledToMaster(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")

	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")

	invs, err := e.invoices.ListByMasterMembership(context.Background(), master.ID)
	if err != nil {
		t.Fatalf("ListByMasterMembership err=%v", err)
	}
	if len(invs) != 1 {
		t.Fatalf("got %d invoices, want 1", len(invs))
	}
	inv := invs[0]

	if inv.ProfileID != master.ProfileID {
		t.Fatalf("invoice profileID=%s, want master's %s", inv.ProfileID, master.ProfileID)
	}
	if inv.Status != domain.InvoiceSent {
		t.Fatalf("status=%q, want sent", inv.Status)
	}
	if inv.SentAt == nil {
		t.Fatalf("expected sentAt set")
	}
	if inv.DueDate == nil || !inv.DueDate.Equal(e.clk.Now().AddDate(0, 0, 30)) {
		t.Fatalf("dueDate=%v, want +30 days", inv.DueDate)
	}
	if inv.Total.String() != "30.00" || inv.Subtotal.String() != "30.00" {
		t.Fatalf("total=%s subtotal=%s, want 30.00", inv.Total, inv.Subtotal)
	}
	if !inv.Tax.IsZero() || !inv.Discount.IsZero() {
		t.Fatalf("tax=%s discount=%s, want zero", inv.Tax, inv.Discount)
	}
	if inv.Currency != "USD" {
		t.Fatalf("currency=%q", inv.Currency)
	}
	if inv.IsMasterInvoice {
		t.Fatalf("isMasterInvoice=true, want false")
	}
	if !inv.Total.Equal(inv.ItemsTotal()) {
		t.Fatalf("total=%s itemsTotal=%s", inv.Total, inv.ItemsTotal())
	}

	if len(inv.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(inv.Items))
	}
	item := inv.Items[0]
	wantDesc := "Competitor - Secondary Membership (Bob Jones)"
	if item.Description != wantDesc {
		t.Fatalf("description=%q, want %q", item.Description, wantDesc)
	}
	if item.Quantity != 1 || item.ItemType != domain.ItemMembership {
		t.Fatalf("quantity=%d itemType=%q", item.Quantity, item.ItemType)
	}
	if item.SecondaryMembershipID == nil || *item.SecondaryMembershipID != sec.ID {
		t.Fatalf("secondaryMembershipID=%v, want %s", item.SecondaryMembershipID, sec.ID)
	}

	wantNumber := fmt.Sprintf("INV-%d-SEC-", e.clk.Now().Year())
	if !strings.HasPrefix(inv.InvoiceNumber, wantNumber) {
		t.Fatalf("invoiceNumber=%q, want %s prefix", inv.InvoiceNumber, wantNumber)
	}
}

func TestCreateSecondary_InvoiceNumbersAreSequential(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")

	e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")
	e.createSecondary(t, master.ID, typeID, "Carol Jones", "child")

	invs, err := e.invoices.ListByMasterMembership(context.Background(), master.ID)
	if err != nil {
		t.Fatalf("ListByMasterMembership err=%v", err)
	}
	if len(invs) != 2 {
		t.Fatalf("got %d invoices, want 2", len(invs))
	}
	if invs[0].InvoiceNumber == invs[1].InvoiceNumber {
		t.Fatalf("duplicate invoice numbers %q", invs[0].InvoiceNumber)
	}
}

func TestCreateSecondary_EndDateFollowsMaster(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")

	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")
	if sec.EndDate == nil || !sec.EndDate.Equal(*master.EndDate) {
		t.Fatalf("endDate=%v, want master's %v", sec.EndDate, master.EndDate)
	}
}

func TestCreateSecondary_EndDateDefaultsToOneYear(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	master.EndDate = nil
	if err := e.members.Update(context.Background(), master); err != nil {
		t.Fatalf("Update err=%v", err)
	}

	start := e.clk.Now()
	e.clk.Advance(time.Hour)
	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")
	want := start.Add(time.Hour).AddDate(1, 0, 0)
	if sec.EndDate == nil || !sec.EndDate.Equal(want) {
		t.Fatalf("endDate=%v, want %v", sec.EndDate, want)
	}
}
