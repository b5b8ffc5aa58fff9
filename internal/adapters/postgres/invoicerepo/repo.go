package invoicerepo

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
	"github.com/newmeca/membership-api/internal/ports/out/invoicerepo"
)

// Repo is a Postgres implementation of invoicerepo.Repository. Invoice numbers
// for secondary billing draw from the secondary_invoice_seq sequence so they
// are unique even under concurrent provisioning.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const invoiceColumns = `
	id,
	invoice_number,
	profile_id,
	status,
	subtotal::text,
	tax::text,
	discount::text,
	total::text,
	currency,
	due_date,
	sent_at,
	paid_at,
	notes,
	billing_name,
	billing_address1,
	billing_city,
	billing_state,
	billing_postal_code,
	billing_country,
	company_name,
	company_email,
	company_website,
	master_membership_id,
	is_master_invoice,
	created_at,
	updated_at`

func (r *Repo) Create(ctx context.Context, inv domain.Invoice) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(inv.ID))
	if err != nil {
		return fmt.Errorf("invalid invoice id: %w", err)
	}

	q := postgres.QuerierFrom(ctx, r.pool)
	_, err = q.Exec(ctx, `
		INSERT INTO invoices (
			id, invoice_number, profile_id, status,
			subtotal, tax, discount, total, currency,
			due_date, sent_at, paid_at, notes,
			billing_name, billing_address1, billing_city, billing_state,
			billing_postal_code, billing_country,
			company_name, company_email, company_website,
			master_membership_id, is_master_invoice,
			created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,
			$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26
		)
	`,
		id,
		inv.InvoiceNumber,
		string(inv.ProfileID),
		string(inv.Status),
		inv.Subtotal.String(),
		inv.Tax.String(),
		inv.Discount.String(),
		inv.Total.String(),
		inv.Currency,
		utcPtr(inv.DueDate),
		utcPtr(inv.SentAt),
		utcPtr(inv.PaidAt),
		inv.Notes,
		inv.BillingAddress.Name,
		inv.BillingAddress.Address1,
		inv.BillingAddress.City,
		inv.BillingAddress.State,
		inv.BillingAddress.PostalCode,
		inv.BillingAddress.Country,
		inv.CompanyInfo.Name,
		inv.CompanyInfo.Email,
		inv.CompanyInfo.Website,
		membershipIDPtr(inv.MasterMembershipID),
		inv.IsMasterInvoice,
		inv.CreatedAt.UTC(),
		inv.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return invoicerepo.ErrAlreadyExists
		}
		return err
	}

	for _, it := range inv.Items {
		itemID, err := uuid.Parse(string(it.ID))
		if err != nil {
			return fmt.Errorf("invalid invoice item id: %w", err)
		}
		_, err = q.Exec(ctx, `
			INSERT INTO invoice_items (
				id, invoice_id, description, quantity,
				unit_price, total, item_type,
				reference_id, secondary_membership_id, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			itemID,
			id,
			it.Description,
			it.Quantity,
			it.UnitPrice.String(),
			it.Total.String(),
			string(it.ItemType),
			membershipIDPtr(it.ReferenceID),
			membershipIDPtr(it.SecondaryMembershipID),
			it.CreatedAt.UTC(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.InvoiceID) (domain.Invoice, error) {
	if r.pool == nil {
		return domain.Invoice{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return domain.Invoice{}, invoicerepo.ErrNotFound
	}
	q := postgres.QuerierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, uid)
	inv, err := scanInvoice(row)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.Items, err = r.loadItems(ctx, q, uid)
	if err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (r *Repo) ListByMasterMembership(ctx context.Context, masterID domain.MembershipID) ([]domain.Invoice, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	q := postgres.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE master_membership_id = $1
		ORDER BY created_at ASC, id ASC
	`, string(masterID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		uid, err := uuid.Parse(string(out[i].ID))
		if err != nil {
			return nil, fmt.Errorf("invalid invoice id: %w", err)
		}
		out[i].Items, err = r.loadItems(ctx, q, uid)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) NextSecondarySequence(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	q := postgres.QuerierFrom(ctx, r.pool)
	var seq int64
	err := q.QueryRow(ctx, `SELECT nextval('secondary_invoice_seq')`).Scan(&seq)
	return seq, err
}

func (r *Repo) loadItems(ctx context.Context, q postgres.Querier, invoiceID uuid.UUID) ([]domain.InvoiceItem, error) {
	rows, err := q.Query(ctx, `
		SELECT
			id, description, quantity,
			unit_price::text, total::text, item_type,
			reference_id, secondary_membership_id, created_at
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY created_at ASC, id ASC
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InvoiceItem, 0)
	for rows.Next() {
		var (
			it        domain.InvoiceItem
			id        uuid.UUID
			unitPrice string
			total     string
			itemType  string
			refID     *string
			secID     *string
		)
		err := rows.Scan(&id, &it.Description, &it.Quantity, &unitPrice, &total, &itemType, &refID, &secID, &it.CreatedAt)
		if err != nil {
			return nil, err
		}
		it.ID = domain.InvoiceID(id.String())
		it.UnitPrice, err = domain.ParseMoney(unitPrice)
		if err != nil {
			return nil, fmt.Errorf("parse unit_price: %w", err)
		}
		it.Total, err = domain.ParseMoney(total)
		if err != nil {
			return nil, fmt.Errorf("parse item total: %w", err)
		}
		it.ItemType = domain.InvoiceItemType(itemType)
		if refID != nil {
			v := domain.MembershipID(*refID)
			it.ReferenceID = &v
		}
		if secID != nil {
			v := domain.MembershipID(*secID)
			it.SecondaryMembershipID = &v
		}
		it.CreatedAt = it.CreatedAt.UTC()
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanInvoice(row pgx.Row) (domain.Invoice, error) {
	var (
		inv      domain.Invoice
		id       uuid.UUID
		profile  string
		status   string
		subtotal string
		tax      string
		discount string
		total    string
		masterID *string
	)
	err := row.Scan(
		&id,
		&inv.InvoiceNumber,
		&profile,
		&status,
		&subtotal,
		&tax,
		&discount,
		&total,
		&inv.Currency,
		&inv.DueDate,
		&inv.SentAt,
		&inv.PaidAt,
		&inv.Notes,
		&inv.BillingAddress.Name,
		&inv.BillingAddress.Address1,
		&inv.BillingAddress.City,
		&inv.BillingAddress.State,
		&inv.BillingAddress.PostalCode,
		&inv.BillingAddress.Country,
		&inv.CompanyInfo.Name,
		&inv.CompanyInfo.Email,
		&inv.CompanyInfo.Website,
		&masterID,
		&inv.IsMasterInvoice,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Invoice{}, invoicerepo.ErrNotFound
		}
		return domain.Invoice{}, err
	}

	inv.ID = domain.InvoiceID(id.String())
	inv.ProfileID = domain.ProfileID(profile)
	inv.Status = domain.InvoiceStatus(status)
	for _, f := range []struct {
		dst *domain.Money
		src string
	}{
		{&inv.Subtotal, subtotal},
		{&inv.Tax, tax},
		{&inv.Discount, discount},
		{&inv.Total, total},
	} {
		*f.dst, err = domain.ParseMoney(f.src)
		if err != nil {
			return domain.Invoice{}, fmt.Errorf("parse invoice amount: %w", err)
		}
	}
	if masterID != nil {
		v := domain.MembershipID(*masterID)
		inv.MasterMembershipID = &v
	}
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return inv, nil
}

func membershipIDPtr(p *domain.MembershipID) *string {
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
