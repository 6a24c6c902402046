package product

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pos-storefront/internal/domain"
	productrepo "pos-storefront/internal/repository/product"
)

// Recorder receives catalog load outcomes; *metrics.Metrics satisfies it.
type Recorder interface {
	CatalogLoaded(source string, products, malformed int)
	CatalogFailed(source string)
}

// Catalog is an immutable snapshot of one load.
type Catalog struct {
	Source   string
	Products []domain.Product
	LoadedAt time.Time
	Warnings int
	Err      error

	byID map[string]int
}

// NewCatalog builds a snapshot; err is set when the load failed.
func NewCatalog(source string, products []domain.Product, warnings int, err error, at time.Time) *Catalog {
	c := &Catalog{
		Source:   source,
		Products: products,
		LoadedAt: at,
		Warnings: warnings,
		Err:      err,
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		c.byID[p.ID] = i
	}
	return c
}

// Get looks a product up by id.
func (c *Catalog) Get(id string) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.Products[i], true
}

// Notice is the message shown instead of the grid, or "" when products loaded.
func (c *Catalog) Notice() string {
	switch {
	case c.Err != nil:
		return fmt.Sprintf("Could not load products: %v", c.Err)
	case len(c.Products) == 0:
		return "No products found"
	default:
		return ""
	}
}

// Categories returns the distinct non-empty categories in display order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range c.Products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// Filter returns the products in category, or all of them for "".
func (c *Catalog) Filter(category string) []domain.Product {
	if category == "" {
		return c.Products
	}
	out := []domain.Product{}
	for _, p := range c.Products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Service owns the current catalog snapshot. A failed load replaces the
// snapshot with an empty catalog carrying the error.
type Service struct {
	repo     productrepo.Repository
	logger   logrus.FieldLogger
	recorder Recorder
	timeout  time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	current *Catalog
}

func New(repo productrepo.Repository, logger logrus.FieldLogger, recorder Recorder, timeout time.Duration) *Service {
	return &Service{
		repo:     repo,
		logger:   logger.WithField("source", repo.Name()),
		recorder: recorder,
		timeout:  timeout,
		now:      time.Now,
		current:  NewCatalog(repo.Name(), nil, 0, errors.New("catalog not loaded"), time.Time{}),
	}
}

// Current returns the latest snapshot.
func (s *Service) Current() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Get resolves a product id against the current snapshot.
func (s *Service) Get(id string) (domain.Product, error) {
	p, ok := s.Current().Get(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("product %q: %w", id, domain.ErrUnknownProduct)
	}
	return p, nil
}

// Refresh reloads the catalog from the source, bypassing any cache.
func (s *Service) Refresh(ctx context.Context) *Catalog {
	if inv, ok := s.repo.(productrepo.Invalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			s.logger.WithError(err).Warn("catalog cache invalidate failed")
		}
	}
	return s.Load(ctx)
}

// Load fetches the catalog and swaps it in. It never fails; a load error
// is kept on the returned snapshot.
func (s *Service) Load(ctx context.Context) *Catalog {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	listing, err := s.repo.List(ctx)
	var next *Catalog
	if err != nil {
		s.logger.WithError(err).Error("catalog load failed")
		if s.recorder != nil {
			s.recorder.CatalogFailed(s.repo.Name())
		}
		next = NewCatalog(s.repo.Name(), nil, 0, err, s.now())
	} else {
		for _, w := range listing.Warnings {
			s.logger.WithError(w).Warn("skipped catalog entry")
		}
		if s.recorder != nil {
			s.recorder.CatalogLoaded(s.repo.Name(), len(listing.Products), len(listing.Warnings))
		}
		s.logger.WithFields(logrus.Fields{
			"products": len(listing.Products),
			"skipped":  len(listing.Warnings),
		}).Info("catalog loaded")
		next = NewCatalog(s.repo.Name(), listing.Products, len(listing.Warnings), nil, s.now())
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next
}

// Run reloads the catalog every interval until ctx is done. A zero
// interval disables periodic reloads.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Load(ctx)
		}
	}
}
