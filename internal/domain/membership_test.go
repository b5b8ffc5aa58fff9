package domain

import (
	"testing"
	"time"
)

func TestAccountTypeValid(t *testing.T) {
	t.Parallel()

	for _, at := range []AccountType{AccountIndependent, AccountMaster, AccountSecondary} {
		if !at.Valid() {
			t.Errorf("%q not valid", at)
		}
	}
	if AccountType("").Valid() || AccountType("admin").Valid() {
		t.Error("unknown account type accepted")
	}
}

func TestActiveAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)
	end := now.AddDate(1, 0, 0)
	past := now.AddDate(-1, 0, 0)

	tests := []struct {
		name string
		m    Membership
		want bool
	}{
		{"paid in term", Membership{PaymentStatus: PaymentPaid, StartDate: start, EndDate: &end}, true},
		{"paid open ended", Membership{PaymentStatus: PaymentPaid, StartDate: start}, true},
		{"unpaid", Membership{PaymentStatus: PaymentPending, StartDate: start, EndDate: &end}, false},
		{"not started", Membership{PaymentStatus: PaymentPaid, StartDate: now.AddDate(0, 1, 0), EndDate: &end}, false},
		{"expired", Membership{PaymentStatus: PaymentPaid, StartDate: past, EndDate: &past}, false},
		{"ends today", Membership{PaymentStatus: PaymentPaid, StartDate: start, EndDate: &now}, true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.m.ActiveAt(now); got != tc.want {
				t.Fatalf("ActiveAt=%v, want %v", got, tc.want)
			}
		})
	}
}
