package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrUnknownProduct is returned when a product id is not in the current catalog.
	ErrUnknownProduct = errors.New("product not in catalog")
	// ErrInvalidInput marks a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCatalogFetch is the sentinel wrapped by CatalogFetchError.
	ErrCatalogFetch = errors.New("catalog fetch failed")
	// ErrMalformedEntry is the sentinel wrapped by MalformedEntryError.
	ErrMalformedEntry = errors.New("malformed catalog entry")
)

// CatalogFetchError reports a catalog that could not be read or parsed as a whole.
type CatalogFetchError struct {
	Source string
	Err    error
}

func (e *CatalogFetchError) Error() string {
	return fmt.Sprintf("%s catalog: %v", e.Source, e.Err)
}

func (e *CatalogFetchError) Unwrap() []error {
	return []error{ErrCatalogFetch, e.Err}
}

// MalformedEntryError reports a single catalog entry that was skipped.
type MalformedEntryError struct {
	Index  int
	Reason string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("catalog entry %d: %s", e.Index, e.Reason)
}

func (e *MalformedEntryError) Unwrap() error {
	return ErrMalformedEntry
}

// LineNotFoundError is returned when a quantity change targets a product that
// has no line in the cart. Callers should only adjust lines they have rendered,
// so this points at a stale reference on the caller side.
type LineNotFoundError struct {
	ProductID string
}

func (e *LineNotFoundError) Error() string {
	return fmt.Sprintf("cart line %q: %v", e.ProductID, ErrNotFound)
}

func (e *LineNotFoundError) Unwrap() error {
	return ErrNotFound
}
