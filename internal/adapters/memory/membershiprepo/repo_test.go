package membershiprepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/membershiprepo"
)

func seed(t *testing.T, r *Repo, id string, fn func(*domain.Membership)) domain.Membership {
	t.Helper()
	m := domain.Membership{
		ID:            domain.MembershipID(id),
		ProfileID:     "profile-1",
		TypeID:        "type-1",
		AccountType:   domain.AccountIndependent,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if fn != nil {
		fn(&m)
	}
	if err := r.Create(context.Background(), m); err != nil {
		t.Fatalf("Create %s: %v", id, err)
	}
	return m
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	seed(t, r, "m-1", nil)

	if err := r.Create(context.Background(), domain.Membership{ID: "m-1"}); !errors.Is(err, membershiprepo.ErrAlreadyExists) {
		t.Fatalf("duplicate create err=%v", err)
	}
	if _, err := r.GetByID(context.Background(), "missing"); !errors.Is(err, membershiprepo.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
	if err := r.Update(context.Background(), domain.Membership{ID: "missing"}); !errors.Is(err, membershiprepo.ErrNotFound) {
		t.Fatalf("update missing err=%v", err)
	}
}

func TestListSecondariesOrdering(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	masterID := domain.MembershipID("master-1")
	seed(t, r, "master-1", func(m *domain.Membership) {
		m.AccountType = domain.AccountMaster
	})
	asSecondary := func(created time.Time) func(*domain.Membership) {
		return func(m *domain.Membership) {
			m.AccountType = domain.AccountSecondary
			m.MasterMembershipID = &masterID
			m.CreatedAt = created
		}
	}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seed(t, r, "sec-b", asSecondary(base))
	seed(t, r, "sec-a", asSecondary(base))
	seed(t, r, "sec-older", asSecondary(base.Add(-time.Hour)))

	got, err := r.ListSecondaries(context.Background(), masterID)
	if err != nil {
		t.Fatalf("ListSecondaries err=%v", err)
	}
	want := []domain.MembershipID{"sec-older", "sec-a", "sec-b"}
	if len(got) != len(want) {
		t.Fatalf("got %d secondaries, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("order[%d]=%s, want %s", i, got[i].ID, id)
		}
	}

	n, err := r.CountSecondaries(context.Background(), masterID)
	if err != nil || n != 3 {
		t.Fatalf("CountSecondaries=(%d, %v)", n, err)
	}
}

func TestIdentifiedFilters(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	masterID := domain.MembershipID("master-1")
	seed(t, r, "master-1", func(m *domain.Membership) {
		m.AccountType = domain.AccountMaster
		m.MecaID = 700100
	})
	seed(t, r, "unidentified", func(m *domain.Membership) {
		m.AccountType = domain.AccountIndependent
	})
	seed(t, r, "sec-paid", func(m *domain.Membership) {
		m.AccountType = domain.AccountSecondary
		m.MasterMembershipID = &masterID
		m.MecaID = 700500
	})
	seed(t, r, "sec-unpaid", func(m *domain.Membership) {
		m.AccountType = domain.AccountSecondary
		m.MasterMembershipID = &masterID
	})

	own, err := r.ListIdentifiedOwnedBy(context.Background(), "profile-1")
	if err != nil {
		t.Fatalf("ListIdentifiedOwnedBy err=%v", err)
	}
	// Secondaries and memberships without a MECA ID are excluded.
	if len(own) != 1 || own[0].ID != "master-1" {
		t.Fatalf("own=%+v", own)
	}

	secs, err := r.ListIdentifiedSecondaries(context.Background(), masterID)
	if err != nil {
		t.Fatalf("ListIdentifiedSecondaries err=%v", err)
	}
	if len(secs) != 1 || secs[0].ID != "sec-paid" {
		t.Fatalf("secs=%+v", secs)
	}

	all, err := r.ListAllSecondaries(context.Background())
	if err != nil {
		t.Fatalf("ListAllSecondaries err=%v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all=%d, want 2", len(all))
	}
}

func TestCloneIsolation(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	rel := "child"
	m := seed(t, r, "m-1", func(m *domain.Membership) {
		m.RelationshipToMaster = &rel
	})

	*m.RelationshipToMaster = "spouse"
	got, err := r.GetByID(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("GetByID err=%v", err)
	}
	if got.RelationshipToMaster == nil || *got.RelationshipToMaster != "child" {
		t.Fatalf("stored relationship=%v, want child", got.RelationshipToMaster)
	}
}
