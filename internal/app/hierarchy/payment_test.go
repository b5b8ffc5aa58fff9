package hierarchy

import (
	"context"
	"errors"
	"testing"

	"github.com/newmeca/membership-api/internal/domain"
)

func TestMarkSecondaryPaid_AssignsSequentialMecaIDs(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	first := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")
	second := e.createSecondary(t, master.ID, typeID, "Carol Jones", "child")

	txID := "txn-100"
	got, err := e.svc.MarkSecondaryPaid(context.Background(), first.ID, domain.MustMoney("30.00"), &txID)
	if err != nil {
		t.Fatalf("MarkSecondaryPaid err=%v", err)
	}
	if got.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("paymentStatus=%q, want paid", got.PaymentStatus)
	}
	if got.AmountPaid.String() != "30.00" {
		t.Fatalf("amountPaid=%s", got.AmountPaid)
	}
	if got.TransactionID == nil || *got.TransactionID != "txn-100" {
		t.Fatalf("transactionID=%v", got.TransactionID)
	}
	if got.MecaID != 700500 {
		t.Fatalf("mecaID=%d, want 700500", got.MecaID)
	}

	next, err := e.svc.MarkSecondaryPaid(context.Background(), second.ID, domain.MustMoney("30.00"), nil)
	if err != nil {
		t.Fatalf("MarkSecondaryPaid err=%v", err)
	}
	if next.MecaID != 700501 {
		t.Fatalf("mecaID=%d, want 700501", next.MecaID)
	}
	if next.TransactionID != nil {
		t.Fatalf("transactionID=%v, want nil", next.TransactionID)
	}

	// The assignment must be persisted, not just returned.
	stored, err := e.members.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetByID err=%v", err)
	}
	if stored.MecaID != 700500 || stored.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("stored mecaID=%d status=%q", stored.MecaID, stored.PaymentStatus)
	}
}

func TestMarkSecondaryPaid_SendsWelcome(t *testing.T) {
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

	paid, err := e.svc.MarkSecondaryPaid(context.Background(), sec.ID, domain.MustMoney("30.00"), nil)
	if err != nil {
		t.Fatalf("MarkSecondaryPaid err=%v", err)
	}

	sent := e.notify.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent=%d messages, want 1", len(sent))
	}
	msg := sent[0]
	if msg.To != "bob@example.com" {
		t.Fatalf("to=%q", msg.To)
	}
	if msg.RecipientName != "Bob Jones" {
		t.Fatalf("recipientName=%q", msg.RecipientName)
	}
	if msg.MembershipTypeName != "Competitor" {
		t.Fatalf("membershipTypeName=%q", msg.MembershipTypeName)
	}
	if msg.MasterName != "Alice Smith" {
		t.Fatalf("masterName=%q", msg.MasterName)
	}
	if msg.MecaID != paid.MecaID {
		t.Fatalf("mecaID=%d, want %d", msg.MecaID, paid.MecaID)
	}
	if msg.ExpiresAt == nil || paid.EndDate == nil || !msg.ExpiresAt.Equal(*paid.EndDate) {
		t.Fatalf("expiresAt=%v, want %v", msg.ExpiresAt, paid.EndDate)
	}
}

func TestMarkSecondaryPaid_SkipsPlaceholderEmail(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	typeID := e.seedType(t, "Competitor", "30.00")
	master := e.seedMember(t, "master-1", domain.AccountMaster, true, "Alice Smith", "alice@example.com")
	sec := e.createSecondary(t, master.ID, typeID, "Bob Jones", "child")

	if _, err := e.svc.MarkSecondaryPaid(context.Background(), sec.ID, domain.MustMoney("30.00"), nil); err != nil {
		t.Fatalf("MarkSecondaryPaid err=%v", err)
	}
	if got := e.notify.Sent(); len(got) != 0 {
		t.Fatalf("sent=%d messages to a placeholder address, want 0", len(got))
	}
}

func TestMarkSecondaryPaid_NotificationFailureIsSwallowed(t *testing.T) {
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

	e.notify.FailWith = errors.New("smtp down")

	paid, err := e.svc.MarkSecondaryPaid(context.Background(), sec.ID, domain.MustMoney("30.00"), nil)
	if err != nil {
		t.Fatalf("MarkSecondaryPaid err=%v, notification failure must not surface", err)
	}
	if paid.PaymentStatus != domain.PaymentPaid || paid.MecaID == 0 {
		t.Fatalf("payment not recorded: status=%q mecaID=%d", paid.PaymentStatus, paid.MecaID)
	}
}

func TestMarkSecondaryPaid_Errors(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	independent := e.seedMember(t, "m-1", domain.AccountIndependent, true, "Alice Smith", "alice@example.com")

	tests := []struct {
		name       string
		id         domain.MembershipID
		wantStatus int
		wantCode   string
	}{
		{"not found", "missing", 404, CodeSecondaryNotFound},
		{"not a secondary", independent.ID, 422, CodeNotASecondary},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := e.svc.MarkSecondaryPaid(context.Background(), tc.id, domain.MustMoney("30.00"), nil)
			ae := (*Error)(nil)
			if !errors.As(err, &ae) || ae.Status != tc.wantStatus || ae.Code != tc.wantCode {
				t.Fatalf("err=%v, want %s %d", err, tc.wantCode, tc.wantStatus)
			}
		})
	}
}
