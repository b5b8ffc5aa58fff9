package profilerepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/newmeca/membership-api/internal/adapters/postgres"
	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/profilerepo"
)

// Repo is a Postgres implementation of profilerepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const profileColumns = `
	id,
	email,
	first_name,
	last_name,
	full_name,
	is_secondary_account,
	master_profile_id,
	can_login,
	force_password_change,
	created_at,
	updated_at`

func (r *Repo) Create(ctx context.Context, p domain.Profile) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(p.ID))
	if err != nil {
		return fmt.Errorf("invalid profile id: %w", err)
	}

	q := postgres.QuerierFrom(ctx, r.pool)
	_, err = q.Exec(ctx, `
		INSERT INTO profiles (
			id, email, first_name, last_name, full_name,
			is_secondary_account, master_profile_id,
			can_login, force_password_change,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		id,
		p.Email,
		p.FirstName,
		p.LastName,
		p.FullName,
		p.IsSecondaryAccount,
		masterPtr(p.MasterProfileID),
		p.CanLogin,
		p.ForcePasswordChange,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "profiles_email_key":
				return profilerepo.ErrEmailTaken
			default:
				return profilerepo.ErrAlreadyExists
			}
		}
		return err
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, p domain.Profile) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(p.ID))
	if err != nil {
		return fmt.Errorf("invalid profile id: %w", err)
	}

	q := postgres.QuerierFrom(ctx, r.pool)
	ct, err := q.Exec(ctx, `
		UPDATE profiles
		SET email = $2,
		    first_name = $3,
		    last_name = $4,
		    full_name = $5,
		    is_secondary_account = $6,
		    master_profile_id = $7,
		    can_login = $8,
		    force_password_change = $9,
		    updated_at = $10
		WHERE id = $1
	`,
		id,
		p.Email,
		p.FirstName,
		p.LastName,
		p.FullName,
		p.IsSecondaryAccount,
		masterPtr(p.MasterProfileID),
		p.CanLogin,
		p.ForcePasswordChange,
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return profilerepo.ErrEmailTaken
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return profilerepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ProfileID) (domain.Profile, error) {
	if r.pool == nil {
		return domain.Profile{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return domain.Profile{}, profilerepo.ErrNotFound
	}
	q := postgres.QuerierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, uid)
	return scanProfile(row)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	if r.pool == nil {
		return domain.Profile{}, errors.New("nil postgres pool")
	}
	q := postgres.QuerierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email)
	return scanProfile(row)
}

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var (
		p      domain.Profile
		id     uuid.UUID
		master *string
	)
	err := row.Scan(
		&id,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.FullName,
		&p.IsSecondaryAccount,
		&master,
		&p.CanLogin,
		&p.ForcePasswordChange,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, profilerepo.ErrNotFound
		}
		return domain.Profile{}, err
	}
	p.ID = domain.ProfileID(id.String())
	if master != nil {
		v := domain.ProfileID(*master)
		p.MasterProfileID = &v
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func masterPtr(p *domain.ProfileID) *string {
	if p == nil {
		return nil
	}
	v := string(*p)
	return &v
}
