package membershiprepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/newmeca/membership-api/internal/adapters/postgres"
	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/membershiprepo"
)

// Repo is a Postgres implementation of membershiprepo.Repository. Statements
// issued inside a unit of work join its transaction via the context.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const membershipColumns = `
	id,
	profile_id,
	type_id,
	account_type,
	meca_id,
	competitor_name,
	relationship_to_master,
	has_own_login,
	master_membership_id,
	master_billing_profile_id,
	linked_at,
	vehicle_make,
	vehicle_model,
	vehicle_color,
	vehicle_license_plate,
	team_name,
	team_description,
	billing_first_name,
	billing_last_name,
	billing_address,
	billing_city,
	billing_state,
	billing_postal_code,
	billing_country,
	billing_phone,
	payment_status,
	amount_paid::text,
	transaction_id,
	start_date,
	end_date,
	created_at,
	updated_at`

func (r *Repo) Create(ctx context.Context, m domain.Membership) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(m.ID))
	if err != nil {
		return fmt.Errorf("invalid membership id: %w", err)
	}

	q := postgres.QuerierFrom(ctx, r.pool)
	_, err = q.Exec(ctx, `
		INSERT INTO memberships (
			id, profile_id, type_id, account_type, meca_id,
			competitor_name, relationship_to_master, has_own_login,
			master_membership_id, master_billing_profile_id, linked_at,
			vehicle_make, vehicle_model, vehicle_color, vehicle_license_plate,
			team_name, team_description,
			billing_first_name, billing_last_name, billing_address, billing_city,
			billing_state, billing_postal_code, billing_country, billing_phone,
			payment_status, amount_paid, transaction_id,
			start_date, end_date, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
			$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32
		)
	`, writeArgs(id, m)...)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return membershiprepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, m domain.Membership) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(m.ID))
	if err != nil {
		return fmt.Errorf("invalid membership id: %w", err)
	}

	q := postgres.QuerierFrom(ctx, r.pool)
	args := writeArgs(id, m)
	ct, err := q.Exec(ctx, `
		UPDATE memberships
		SET profile_id = $2,
		    type_id = $3,
		    account_type = $4,
		    meca_id = $5,
		    competitor_name = $6,
		    relationship_to_master = $7,
		    has_own_login = $8,
		    master_membership_id = $9,
		    master_billing_profile_id = $10,
		    linked_at = $11,
		    vehicle_make = $12,
		    vehicle_model = $13,
		    vehicle_color = $14,
		    vehicle_license_plate = $15,
		    team_name = $16,
		    team_description = $17,
		    billing_first_name = $18,
		    billing_last_name = $19,
		    billing_address = $20,
		    billing_city = $21,
		    billing_state = $22,
		    billing_postal_code = $23,
		    billing_country = $24,
		    billing_phone = $25,
		    payment_status = $26,
		    amount_paid = $27,
		    transaction_id = $28,
		    start_date = $29,
		    end_date = $30,
		    updated_at = $32
		WHERE id = $1
	`, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return membershiprepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MembershipID) (domain.Membership, error) {
	if r.pool == nil {
		return domain.Membership{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return domain.Membership{}, membershiprepo.ErrNotFound
	}
	q := postgres.QuerierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, uid)
	return scanMembership(row)
}

func (r *Repo) ListSecondaries(ctx context.Context, masterID domain.MembershipID) ([]domain.Membership, error) {
	return r.query(ctx, `WHERE master_membership_id = $1`, string(masterID))
}

func (r *Repo) CountSecondaries(ctx context.Context, masterID domain.MembershipID) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	q := postgres.QuerierFrom(ctx, r.pool)
	var n int
	err := q.QueryRow(ctx, `
		SELECT count(*) FROM memberships WHERE master_membership_id = $1
	`, string(masterID)).Scan(&n)
	return n, err
}

func (r *Repo) ListIdentifiedOwnedBy(ctx context.Context, profileID domain.ProfileID) ([]domain.Membership, error) {
	return r.query(ctx, `WHERE profile_id = $1 AND account_type <> 'secondary' AND meca_id IS NOT NULL`, string(profileID))
}

func (r *Repo) ListIdentifiedSecondaries(ctx context.Context, masterID domain.MembershipID) ([]domain.Membership, error) {
	return r.query(ctx, `WHERE master_membership_id = $1 AND meca_id IS NOT NULL`, string(masterID))
}

func (r *Repo) ListAllSecondaries(ctx context.Context) ([]domain.Membership, error) {
	return r.query(ctx, `WHERE account_type = 'secondary'`)
}

func (r *Repo) query(ctx context.Context, where string, args ...any) ([]domain.Membership, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	q := postgres.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT `+membershipColumns+`
		FROM memberships
		`+where+`
		ORDER BY created_at ASC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func writeArgs(id uuid.UUID, m domain.Membership) []any {
	var mecaID *int
	if m.MecaID != 0 {
		v := int(m.MecaID)
		mecaID = &v
	}
	return []any{
		id,
		string(m.ProfileID),
		string(m.TypeID),
		string(m.AccountType),
		mecaID,
		m.CompetitorName,
		m.RelationshipToMaster,
		m.HasOwnLogin,
		membershipIDPtr(m.MasterMembershipID),
		profileIDPtr(m.MasterBillingProfileID),
		utcPtr(m.LinkedAt),
		m.Vehicle.Make,
		m.Vehicle.Model,
		m.Vehicle.Color,
		m.Vehicle.LicensePlate,
		m.Team.Name,
		m.Team.Description,
		m.Billing.FirstName,
		m.Billing.LastName,
		m.Billing.Address,
		m.Billing.City,
		m.Billing.State,
		m.Billing.PostalCode,
		m.Billing.Country,
		m.Billing.Phone,
		string(m.PaymentStatus),
		m.AmountPaid.String(),
		m.TransactionID,
		m.StartDate.UTC(),
		utcPtr(m.EndDate),
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	}
}

func scanMembership(row pgx.Row) (domain.Membership, error) {
	var (
		m          domain.Membership
		id         uuid.UUID
		profileID  string
		typeID     string
		account    string
		mecaID     *int
		masterID   *string
		masterBill *string
		payment    string
		amount     string
		startDate  time.Time
	)
	err := row.Scan(
		&id,
		&profileID,
		&typeID,
		&account,
		&mecaID,
		&m.CompetitorName,
		&m.RelationshipToMaster,
		&m.HasOwnLogin,
		&masterID,
		&masterBill,
		&m.LinkedAt,
		&m.Vehicle.Make,
		&m.Vehicle.Model,
		&m.Vehicle.Color,
		&m.Vehicle.LicensePlate,
		&m.Team.Name,
		&m.Team.Description,
		&m.Billing.FirstName,
		&m.Billing.LastName,
		&m.Billing.Address,
		&m.Billing.City,
		&m.Billing.State,
		&m.Billing.PostalCode,
		&m.Billing.Country,
		&m.Billing.Phone,
		&payment,
		&amount,
		&m.TransactionID,
		&startDate,
		&m.EndDate,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Membership{}, membershiprepo.ErrNotFound
		}
		return domain.Membership{}, err
	}

	m.ID = domain.MembershipID(id.String())
	m.ProfileID = domain.ProfileID(profileID)
	m.TypeID = domain.MembershipTypeID(typeID)
	m.AccountType = domain.AccountType(account)
	if mecaID != nil {
		m.MecaID = domain.MecaID(*mecaID)
	}
	if masterID != nil {
		v := domain.MembershipID(*masterID)
		m.MasterMembershipID = &v
	}
	if masterBill != nil {
		v := domain.ProfileID(*masterBill)
		m.MasterBillingProfileID = &v
	}
	m.PaymentStatus = domain.PaymentStatus(payment)
	m.AmountPaid, err = domain.ParseMoney(amount)
	if err != nil {
		return domain.Membership{}, fmt.Errorf("parse amount_paid: %w", err)
	}
	m.StartDate = startDate.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m, nil
}

func membershipIDPtr(p *domain.MembershipID) *string {
	if p == nil {
		return nil
	}
	v := string(*p)
	return &v
}

func profileIDPtr(p *domain.ProfileID) *string {
	if p == nil {
		return nil
	}
	v := string(*p)
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
