package product

import (
	"context"
	"os"

	"pos-storefront/internal/domain"
	"pos-storefront/internal/importer"
)

type fileRepo struct {
	path        string
	placeholder string
}

// NewFile reads the catalog from a CSV file on every List call.
func NewFile(path, placeholder string) Repository {
	return &fileRepo{path: path, placeholder: placeholder}
}

func (r *fileRepo) Name() string {
	return "file"
}

func (r *fileRepo) List(_ context.Context) (Listing, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return Listing{}, &domain.CatalogFetchError{Source: r.Name(), Err: err}
	}
	defer f.Close()

	entries, err := importer.ReadCSV(f)
	if err != nil {
		return Listing{}, &domain.CatalogFetchError{Source: r.Name(), Err: err}
	}
	products, warnings := importer.Normalize(entries, r.placeholder)
	return Listing{Products: products, Warnings: warnings}, nil
}
