package product

import (
	"context"

	"pos-storefront/internal/domain"
)

// Listing is the result of one catalog load: the products that passed
// validation, in display order, and a warning per skipped entry.
type Listing struct {
	Products []domain.Product
	Warnings []error
}

// Repository is a catalog source. A failure to load the catalog as a whole
// is returned as *domain.CatalogFetchError.
type Repository interface {
	Name() string
	List(ctx context.Context) (Listing, error)
}

// Writer stores products, used by the importer and seed commands.
type Writer interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Store is a catalog source that can also be written to.
type Store interface {
	Repository
	Writer
}

// Invalidator is implemented by sources that cache listings.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}
