package domain

// Product is one purchasable catalog entry. Products are read-only snapshots
// produced by a catalog source.
type Product struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	PriceCents int64  `json:"priceCents" validate:"gte=0,lte=100000000000"`
	Category   string `json:"category,omitempty"`
	Image      string `json:"image,omitempty"`
	Position   int    `json:"position"`
}
