package seed

import (
	"context"
	"fmt"

	"pos-storefront/internal/domain"
	"pos-storefront/internal/repository/product"
)

// Products is the demo catalog used for manual testing.
func Products(placeholder string) []domain.Product {
	return []domain.Product{
		{ID: "espresso", Name: "Espresso", PriceCents: 4500, Category: "coffee", Image: placeholder},
		{ID: "latte", Name: "Iced Latte", PriceCents: 5500, Category: "coffee", Image: placeholder},
		{ID: "thai-tea", Name: "Thai Milk Tea", PriceCents: 4000, Category: "tea", Image: placeholder},
		{ID: "croissant", Name: "Butter Croissant", PriceCents: 6500, Category: "bakery", Image: placeholder},
		{ID: "banana-cake", Name: "Banana Cake", PriceCents: 3550, Category: "bakery", Image: placeholder},
		{ID: "water", Name: "Mineral Water", PriceCents: 1500, Category: "drinks", Image: placeholder},
	}
}

// Apply upserts the demo catalog. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, repo product.Writer, placeholder string) (int, error) {
	items := Products(placeholder)
	for i, p := range items {
		p.Position = i
		if _, err := repo.Upsert(ctx, p); err != nil {
			return i, fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return len(items), nil
}
