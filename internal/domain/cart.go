package domain

import "fmt"

// MaxLineQuantity caps the units of one product in a cart. Together with the
// catalog price bound it keeps line and cart totals inside int64.
const MaxLineQuantity = 9999

// CartLine is one product in a cart. Name, price and image are copied from the
// product when the line is created and are not updated by later catalog loads.
type CartLine struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Image      string `json:"image,omitempty"`
	Quantity   int    `json:"quantity"`
}

// TotalCents returns price times quantity in minor units.
func (l CartLine) TotalCents() int64 {
	return l.PriceCents * int64(l.Quantity)
}

// Cart maps product ids to lines, keeping insertion order for display.
// Every line held by a Cart has Quantity >= 1. The zero value is an empty cart.
//
// Cart is not safe for concurrent use; each session owns its own instance.
type Cart struct {
	lines map[string]*CartLine
	order []string
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{lines: make(map[string]*CartLine)}
}

// Add puts one unit of p into the cart. A new line copies the product's name,
// price and image; an existing line only has its quantity incremented.
// Add fails only when the line is already at MaxLineQuantity.
func (c *Cart) Add(p Product) error {
	if c.lines == nil {
		c.lines = make(map[string]*CartLine)
	}
	if line, ok := c.lines[p.ID]; ok {
		if line.Quantity >= MaxLineQuantity {
			return quantityLimitError(p.ID)
		}
		line.Quantity++
		return nil
	}
	c.lines[p.ID] = &CartLine{
		ProductID:  p.ID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Image:      p.Image,
		Quantity:   1,
	}
	c.order = append(c.order, p.ID)
	return nil
}

// AdjustQuantity adds delta to the line's quantity. When the result drops to
// zero or below the line is removed. A result above MaxLineQuantity is
// rejected and leaves the line unchanged.
func (c *Cart) AdjustQuantity(productID string, delta int) error {
	line, ok := c.lines[productID]
	if !ok {
		return &LineNotFoundError{ProductID: productID}
	}
	if delta > MaxLineQuantity-line.Quantity {
		return quantityLimitError(productID)
	}
	qty := line.Quantity + delta
	if qty > 0 {
		line.Quantity = qty
		return nil
	}
	c.remove(productID)
	return nil
}

// Remove deletes the line for productID regardless of its quantity.
func (c *Cart) Remove(productID string) error {
	line, ok := c.lines[productID]
	if !ok {
		return &LineNotFoundError{ProductID: productID}
	}
	return c.AdjustQuantity(productID, -line.Quantity)
}

// Total returns the sum of price times quantity over all lines.
func (c *Cart) Total() int64 {
	var total int64
	for _, line := range c.lines {
		total += line.TotalCents()
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = make(map[string]*CartLine)
	c.order = nil
}

// Line returns a copy of the line for productID.
func (c *Cart) Line(productID string) (CartLine, bool) {
	line, ok := c.lines[productID]
	if !ok {
		return CartLine{}, false
	}
	return *line, true
}

// Lines returns copies of all lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// ItemCount returns the number of units across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// CartSnapshot is a point-in-time copy of a cart, safe to hand to other goroutines.
type CartSnapshot struct {
	Lines      []CartLine `json:"lines"`
	ItemCount  int        `json:"itemCount"`
	TotalCents int64      `json:"totalCents"`
}

func (c *Cart) Snapshot() CartSnapshot {
	return CartSnapshot{
		Lines:      c.Lines(),
		ItemCount:  c.ItemCount(),
		TotalCents: c.Total(),
	}
}

func (c *Cart) remove(productID string) {
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func quantityLimitError(productID string) error {
	return fmt.Errorf("%w: quantity of %q cannot exceed %d", ErrInvalidInput, productID, MaxLineQuantity)
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	out := &Cart{
		lines: make(map[string]*CartLine, len(c.lines)),
		order: append([]string(nil), c.order...),
	}
	for id, line := range c.lines {
		cp := *line
		out.lines[id] = &cp
	}
	return out
}

// Restore replaces the cart's contents with those of other.
func (c *Cart) Restore(other *Cart) {
	cp := other.Clone()
	c.lines = cp.lines
	c.order = cp.order
}
