package product

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pos-storefront/internal/domain"
	"pos-storefront/internal/logging"
	productrepo "pos-storefront/internal/repository/product"
)

type stubRepo struct {
	listing     productrepo.Listing
	err         error
	invalidated int
}

func (s *stubRepo) Name() string { return "stub" }

func (s *stubRepo) List(context.Context) (productrepo.Listing, error) {
	return s.listing, s.err
}

func (s *stubRepo) Invalidate(context.Context) error {
	s.invalidated++
	return nil
}

type stubRecorder struct {
	loaded, failed, malformed int
}

func (r *stubRecorder) CatalogLoaded(_ string, products, malformed int) {
	r.loaded = products
	r.malformed = malformed
}

func (r *stubRecorder) CatalogFailed(string) { r.failed++ }

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "A", Name: "Latte", PriceCents: 2550, Category: "coffee"},
		{ID: "B", Name: "Muffin", PriceCents: 1000, Category: "bakery", Position: 1},
		{ID: "C", Name: "Mocha", PriceCents: 3000, Category: "coffee", Position: 2},
	}
}

func TestService_NotLoaded(t *testing.T) {
	svc := New(&stubRepo{}, logging.Discard(), nil, 0)
	if _, err := svc.Get("A"); !errors.Is(err, domain.ErrUnknownProduct) {
		t.Fatalf("expected unknown product before load, got %v", err)
	}
	if svc.Current().Notice() == "" {
		t.Fatalf("expected notice before load")
	}
}

func TestService_Load(t *testing.T) {
	repo := &stubRepo{listing: productrepo.Listing{
		Products: sampleProducts(),
		Warnings: []error{&domain.MalformedEntryError{Index: 3, Reason: "missing name"}},
	}}
	rec := &stubRecorder{}
	svc := New(repo, logging.Discard(), rec, 0)

	cat := svc.Load(context.Background())
	if cat.Err != nil || cat.Notice() != "" {
		t.Fatalf("unexpected load error %v", cat.Err)
	}
	if rec.loaded != 3 || rec.malformed != 1 {
		t.Fatalf("unexpected recorder %+v", rec)
	}
	p, err := svc.Get("B")
	if err != nil || p.Name != "Muffin" {
		t.Fatalf("expected Muffin, got %+v err=%v", p, err)
	}
	if got := cat.Categories(); len(got) != 2 || got[0] != "coffee" || got[1] != "bakery" {
		t.Fatalf("unexpected categories %v", got)
	}
	if got := cat.Filter("coffee"); len(got) != 2 || got[1].ID != "C" {
		t.Fatalf("unexpected coffee filter %+v", got)
	}
	if got := cat.Filter(""); len(got) != 3 {
		t.Fatalf("expected all products, got %d", len(got))
	}
}

func TestService_LoadFailureKeepsEmptyCatalog(t *testing.T) {
	repo := &stubRepo{listing: productrepo.Listing{Products: sampleProducts()}}
	rec := &stubRecorder{}
	svc := New(repo, logging.Discard(), rec, 0)
	svc.Load(context.Background())

	repo.err = &domain.CatalogFetchError{Source: "stub", Err: errors.New("connection refused")}
	cat := svc.Load(context.Background())

	if len(cat.Products) != 0 {
		t.Fatalf("expected empty catalog after failure, got %d", len(cat.Products))
	}
	if !strings.Contains(cat.Notice(), "connection refused") {
		t.Fatalf("expected notice with cause, got %q", cat.Notice())
	}
	if rec.failed != 1 {
		t.Fatalf("expected one recorded failure, got %d", rec.failed)
	}
	if _, err := svc.Get("A"); !errors.Is(err, domain.ErrUnknownProduct) {
		t.Fatalf("expected unknown product on failed catalog, got %v", err)
	}
}

func TestService_EmptyCatalogNotice(t *testing.T) {
	svc := New(&stubRepo{}, logging.Discard(), nil, 0)
	cat := svc.Load(context.Background())
	if cat.Notice() != "No products found" {
		t.Fatalf("unexpected notice %q", cat.Notice())
	}
}

func TestService_RefreshInvalidatesCache(t *testing.T) {
	repo := &stubRepo{listing: productrepo.Listing{Products: sampleProducts()}}
	svc := New(repo, logging.Discard(), nil, 0)

	svc.Refresh(context.Background())
	if repo.invalidated != 1 {
		t.Fatalf("expected cache invalidation, got %d", repo.invalidated)
	}
}

func TestService_RunStopsOnCancel(t *testing.T) {
	svc := New(&stubRepo{}, logging.Discard(), nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 1)
		close(done)
	}()
	<-done
}
