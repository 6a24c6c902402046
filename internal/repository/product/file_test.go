package product

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pos-storefront/internal/domain"
)

const placeholder = "https://via.placeholder.com/150"

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestFileRepo_List(t *testing.T) {
	path := writeCSV(t, "name,price,category,image\nLatte,25.50,coffee,\nMuffin,10,bakery,muffin.png\nBroken,x,bakery,\n")

	listing, err := NewFile(path, placeholder).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listing.Products) != 2 {
		t.Fatalf("expected 2 products, got %+v", listing.Products)
	}
	if listing.Products[0].ID != "0" || listing.Products[1].ID != "1" {
		t.Fatalf("expected row index ids, got %q %q", listing.Products[0].ID, listing.Products[1].ID)
	}
	if listing.Products[0].Image != placeholder {
		t.Fatalf("expected placeholder image, got %q", listing.Products[0].Image)
	}
	if len(listing.Warnings) != 1 || !errors.Is(listing.Warnings[0], domain.ErrMalformedEntry) {
		t.Fatalf("expected one malformed entry warning, got %v", listing.Warnings)
	}
}

func TestFileRepo_MissingFile(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "nope.csv"), placeholder).List(context.Background())
	var fetchErr *domain.CatalogFetchError
	if !errors.As(err, &fetchErr) || fetchErr.Source != "file" {
		t.Fatalf("expected file fetch error, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestFileRepo_BadHeader(t *testing.T) {
	path := writeCSV(t, "title,cost\nTea,12\n")
	if _, err := NewFile(path, placeholder).List(context.Background()); !errors.Is(err, domain.ErrCatalogFetch) {
		t.Fatalf("expected catalog fetch error, got %v", err)
	}
}
