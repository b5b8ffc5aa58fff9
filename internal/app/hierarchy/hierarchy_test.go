package hierarchy

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	memclock "github.com/newmeca/membership-api/internal/adapters/memory/clock"
	memidalloc "github.com/newmeca/membership-api/internal/adapters/memory/idalloc"
	memidentity "github.com/newmeca/membership-api/internal/adapters/memory/identityprovider"
	meminvoicerepo "github.com/newmeca/membership-api/internal/adapters/memory/invoicerepo"
	memmembershiprepo "github.com/newmeca/membership-api/internal/adapters/memory/membershiprepo"
	memnotifier "github.com/newmeca/membership-api/internal/adapters/memory/notifier"
	memprofilerepo "github.com/newmeca/membership-api/internal/adapters/memory/profilerepo"
	memtypecatalog "github.com/newmeca/membership-api/internal/adapters/memory/typecatalog"
	memuow "github.com/newmeca/membership-api/internal/adapters/memory/uow"
	"github.com/newmeca/membership-api/internal/app/billing"
	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/typecatalog"
)

type env struct {
	svc      *Service
	engine   *billing.Engine
	members  *memmembershiprepo.Repo
	profiles *memprofilerepo.Repo
	invoices *meminvoicerepo.Repo
	types    *memtypecatalog.Catalog
	notify   *memnotifier.Gateway
	idp      *memidentity.Provider
	clk      *memclock.ManualClock
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		members:  memmembershiprepo.NewRepo(),
		profiles: memprofilerepo.NewRepo(),
		invoices: meminvoicerepo.NewRepo(),
		types:    memtypecatalog.NewCatalog(),
		notify:   memnotifier.NewGateway(),
		idp:      memidentity.NewProvider(),
		clk:      memclock.NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	log := zap.NewNop()
	e.engine = billing.NewEngine(e.invoices, e.clk, log)

	e.svc = NewService(Deps{
		Memberships: e.members,
		Profiles:    e.profiles,
		Types:       e.types,
		Billing:     e.engine,
		Tx:          memuow.New(),
		IDs:         memidalloc.NewAllocator(),
		Notify:      e.notify,
		IdentityIDP: e.idp,
		Clock:       e.clk,
		Log:         log,
	})

	nextMembership := 0
	e.svc.SetIDGeneratorsForTest(
		func() domain.MembershipID {
			nextMembership++
			return domain.MembershipID(fmt.Sprintf("m-gen-%d", nextMembership))
		},
		func() domain.ProfileID {
			return domain.ProfileID(fmt.Sprintf("p-gen-%d", nextMembership))
		},
	)
	return e
}

// seedType registers a membership type and returns its id.
func (e *env) seedType(t *testing.T, name, price string) domain.MembershipTypeID {
	t.Helper()
	id := domain.MembershipTypeID("type-" + name)
	e.types.Put(typecatalog.MembershipType{
		ID:    id,
		Name:  name,
		Price: domain.MustMoney(price),
	})
	return id
}

// seedMember creates a profile plus a membership owned by it.
func (e *env) seedMember(t *testing.T, id string, accountType domain.AccountType, paid bool, fullName, email string) domain.Membership {
	t.Helper()
	now := e.clk.Now()

	first, last := domain.SplitHumanName(fullName)
	p := domain.Profile{
		ID:        domain.ProfileID("profile-" + id),
		Email:     email,
		FirstName: first,
		LastName:  last,
		FullName:  fullName,
		CanLogin:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.profiles.Create(context.Background(), p); err != nil {
		t.Fatalf("seed profile %s: %v", id, err)
	}

	status := domain.PaymentPending
	if paid {
		status = domain.PaymentPaid
	}
	end := now.AddDate(1, 0, 0)
	m := domain.Membership{
		ID:             domain.MembershipID(id),
		ProfileID:      p.ID,
		TypeID:         domain.MembershipTypeID("type-master"),
		AccountType:    accountType,
		CompetitorName: fullName,
		HasOwnLogin:    true,
		PaymentStatus:  status,
		AmountPaid:     domain.Zero,
		StartDate:      now,
		EndDate:        &end,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.members.Create(context.Background(), m); err != nil {
		t.Fatalf("seed membership %s: %v", id, err)
	}
	return m
}

// createSecondary provisions a secondary under master with sane defaults.
func (e *env) createSecondary(t *testing.T, masterID domain.MembershipID, typeID domain.MembershipTypeID, name, rel string) domain.Membership {
	t.Helper()
	sec, err := e.svc.CreateSecondary(context.Background(), CreateSecondaryInput{
		MasterMembershipID:   masterID,
		MembershipTypeID:     typeID,
		CompetitorName:       name,
		RelationshipToMaster: rel,
	})
	if err != nil {
		t.Fatalf("CreateSecondary err=%v", err)
	}
	return sec
}
