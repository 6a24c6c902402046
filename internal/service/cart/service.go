package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pos-storefront/internal/domain"
)

// CheckoutMessage is the confirmation returned with every receipt.
const CheckoutMessage = "Sale completed!"

type sessionStore interface {
	With(id string, fn func(cart *domain.Cart) error) error
}

type catalog interface {
	Get(id string) (domain.Product, error)
}

// Recorder receives cart events; *metrics.Metrics satisfies it.
type Recorder interface {
	CartMutation(op string)
	Checkout(totalCents int64)
}

type Service struct {
	sessions sessionStore
	catalog  catalog
	logger   logrus.FieldLogger
	recorder Recorder
	now      func() time.Time
}

func New(sessions sessionStore, catalog catalog, logger logrus.FieldLogger, recorder Recorder) *Service {
	return &Service{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

type UpdateInput struct {
	Actions []UpdateAction `json:"actions"`
}

type UpdateAction struct {
	Action    string `json:"action"`
	ProductID string `json:"productId,omitempty"`
	Delta     int    `json:"delta,omitempty"`
}

// Receipt confirms a completed sale.
type Receipt struct {
	Number      string            `json:"number"`
	Lines       []domain.CartLine `json:"lines"`
	ItemCount   int               `json:"itemCount"`
	TotalCents  int64             `json:"totalCents"`
	CompletedAt time.Time         `json:"completedAt"`
	Message     string            `json:"message"`
}

func (s *Service) Get(_ context.Context, sessionID string) (domain.CartSnapshot, error) {
	var snap domain.CartSnapshot
	err := s.sessions.With(sessionID, func(c *domain.Cart) error {
		snap = c.Snapshot()
		return nil
	})
	return snap, err
}

// Add puts one unit of productID into the session's cart. The product must
// be in the current catalog.
func (s *Service) Add(_ context.Context, sessionID, productID string) (domain.CartSnapshot, error) {
	product, err := s.resolve(productID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	return s.mutate(sessionID, "add", func(c *domain.Cart) error {
		return c.Add(product)
	})
}

// Adjust changes a line's quantity by delta, removing it at zero or below.
func (s *Service) Adjust(_ context.Context, sessionID, productID string, delta int) (domain.CartSnapshot, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.CartSnapshot{}, fmt.Errorf("%w: productId required", domain.ErrInvalidInput)
	}
	snap, err := s.mutate(sessionID, "adjust", func(c *domain.Cart) error {
		return c.AdjustQuantity(productID, delta)
	})
	s.warnStaleLine(err, sessionID, productID)
	return snap, err
}

func (s *Service) Remove(_ context.Context, sessionID, productID string) (domain.CartSnapshot, error) {
	snap, err := s.mutate(sessionID, "remove", func(c *domain.Cart) error {
		return c.Remove(productID)
	})
	s.warnStaleLine(err, sessionID, productID)
	return snap, err
}

func (s *Service) Clear(_ context.Context, sessionID string) (domain.CartSnapshot, error) {
	return s.mutate(sessionID, "clear", func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
}

// Update applies a list of actions. Either every action applies or the cart
// is left unchanged.
func (s *Service) Update(_ context.Context, sessionID string, in UpdateInput) (domain.CartSnapshot, error) {
	if len(in.Actions) == 0 {
		return domain.CartSnapshot{}, fmt.Errorf("%w: actions required", domain.ErrInvalidInput)
	}

	// Catalog lookups happen before the session lock is taken.
	products := make(map[int]domain.Product)
	for i, action := range in.Actions {
		if normalizeAction(action.Action) != "addlineitem" {
			continue
		}
		p, err := s.resolve(action.ProductID)
		if err != nil {
			return domain.CartSnapshot{}, err
		}
		products[i] = p
	}

	var ops []string
	snap, err := s.mutate(sessionID, "update", func(c *domain.Cart) error {
		work := c.Clone()
		for i, action := range in.Actions {
			productID := strings.TrimSpace(action.ProductID)
			switch normalizeAction(action.Action) {
			case "addlineitem":
				if err := work.Add(products[i]); err != nil {
					return err
				}
				ops = append(ops, "add")
			case "adjustquantity", "changelineitemquantity":
				if productID == "" {
					return fmt.Errorf("%w: productId required", domain.ErrInvalidInput)
				}
				if err := work.AdjustQuantity(productID, action.Delta); err != nil {
					return err
				}
				ops = append(ops, "adjust")
			case "removelineitem":
				if err := work.Remove(productID); err != nil {
					return err
				}
				ops = append(ops, "remove")
			case "clear":
				work.Clear()
				ops = append(ops, "clear")
			default:
				return fmt.Errorf("%w: unsupported action %q", domain.ErrInvalidInput, action.Action)
			}
		}
		c.Restore(work)
		return nil
	})
	if err != nil {
		var lineErr *domain.LineNotFoundError
		if errors.As(err, &lineErr) {
			s.warnStaleLine(err, sessionID, lineErr.ProductID)
		}
		return snap, err
	}
	if s.recorder != nil {
		for _, op := range ops {
			s.recorder.CartMutation(op)
		}
	}
	return snap, nil
}

// Checkout empties the cart and returns a receipt for what it held.
func (s *Service) Checkout(_ context.Context, sessionID string) (*Receipt, error) {
	var receipt *Receipt
	err := s.sessions.With(sessionID, func(c *domain.Cart) error {
		if c.IsEmpty() {
			return domain.ErrEmptyCart
		}
		snap := c.Snapshot()
		receipt = &Receipt{
			Number:      uuid.NewString(),
			Lines:       snap.Lines,
			ItemCount:   snap.ItemCount,
			TotalCents:  snap.TotalCents,
			CompletedAt: s.now().UTC(),
			Message:     CheckoutMessage,
		}
		c.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.Checkout(receipt.TotalCents)
	}
	s.logger.WithFields(logrus.Fields{
		"receipt": receipt.Number,
		"items":   receipt.ItemCount,
		"total":   receipt.TotalCents,
	}).Info("sale completed")
	return receipt, nil
}

func (s *Service) resolve(productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: productId required", domain.ErrInvalidInput)
	}
	return s.catalog.Get(productID)
}

// mutate runs fn under the session lock and returns the resulting cart.
// The snapshot is returned even when fn fails so callers can re-render.
func (s *Service) mutate(sessionID, op string, fn func(c *domain.Cart) error) (domain.CartSnapshot, error) {
	var snap domain.CartSnapshot
	err := s.sessions.With(sessionID, func(c *domain.Cart) error {
		err := fn(c)
		snap = c.Snapshot()
		return err
	})
	if err == nil && s.recorder != nil && op != "update" {
		s.recorder.CartMutation(op)
	}
	return snap, err
}

func (s *Service) warnStaleLine(err error, sessionID, productID string) {
	if err == nil || !errors.Is(err, domain.ErrNotFound) {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"session":    sessionID,
		"product_id": productID,
	}).Warn("quantity change for a line that is not in the cart")
}

func normalizeAction(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}
