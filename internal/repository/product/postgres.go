package product

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"pos-storefront/internal/domain"
	"pos-storefront/internal/importer"
	"pos-storefront/internal/logging"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepo struct {
	db          DBTX
	placeholder string
	logger      logrus.FieldLogger
}

// NewPostgres reads and writes the products table. Rows without a usable
// image are listed with placeholder.
func NewPostgres(db DBTX, placeholder string, logger logrus.FieldLogger) Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &postgresRepo{db: db, placeholder: placeholder, logger: logger}
}

func (r *postgresRepo) Name() string {
	return "postgres"
}

func (r *postgresRepo) List(ctx context.Context) (Listing, error) {
	const q = `
SELECT id, name, price_cents, COALESCE(category, ''), COALESCE(image, ''), position
FROM products
ORDER BY position ASC, id ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		r.logger.WithError(err).Error("product repo: list")
		return Listing{}, &domain.CatalogFetchError{Source: r.Name(), Err: err}
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Category, &p.Image, &p.Position); err != nil {
			return Listing{}, &domain.CatalogFetchError{Source: r.Name(), Err: err}
		}
		p.Image = importer.ImageOrPlaceholder(p.Image, r.placeholder)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Error("product repo: list rows")
		return Listing{}, &domain.CatalogFetchError{Source: r.Name(), Err: err}
	}
	r.logger.WithField("count", len(result)).Debug("product repo: list")
	return Listing{Products: result}, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, price_cents, category, image, position)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    category = EXCLUDED.category,
    image = EXCLUDED.image,
    position = EXCLUDED.position,
    updated_at = now()
`
	_, err := r.db.Exec(ctx, q,
		product.ID,
		product.Name,
		product.PriceCents,
		product.Category,
		product.Image,
		product.Position,
	)
	if err != nil {
		r.logger.WithError(err).WithField("id", product.ID).Error("product repo: upsert")
		return nil, err
	}
	r.logger.WithField("id", product.ID).Debug("product repo: upserted")
	out := product
	return &out, nil
}
