package typecatalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/newmeca/membership-api/internal/adapters/postgres"
	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/typecatalog"
)

// Catalog is a Postgres implementation of typecatalog.Catalog backed by the
// membership_types table.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) GetByID(ctx context.Context, id domain.MembershipTypeID) (typecatalog.MembershipType, error) {
	if c.pool == nil {
		return typecatalog.MembershipType{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return typecatalog.MembershipType{}, typecatalog.ErrNotFound
	}

	q := postgres.QuerierFrom(ctx, c.pool)
	row := q.QueryRow(ctx, `
		SELECT id, name, category, price::text
		FROM membership_types
		WHERE id = $1
	`, uid)

	var (
		mt    typecatalog.MembershipType
		tid   uuid.UUID
		price string
	)
	if err := row.Scan(&tid, &mt.Name, &mt.Category, &price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return typecatalog.MembershipType{}, typecatalog.ErrNotFound
		}
		return typecatalog.MembershipType{}, err
	}
	mt.ID = domain.MembershipTypeID(tid.String())
	mt.Price, err = domain.ParseMoney(price)
	if err != nil {
		return typecatalog.MembershipType{}, fmt.Errorf("parse type price: %w", err)
	}
	return mt, nil
}
