package httpserver

import (
	"net/url"
	"time"

	"pos-storefront/internal/domain"
	"pos-storefront/internal/money"
	cartsvc "pos-storefront/internal/service/cart"
	productsvc "pos-storefront/internal/service/product"
)

type productView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	PriceCents int64  `json:"priceCents"`
	Category   string `json:"category,omitempty"`
	Image      string `json:"image"`
	ImageURL   string `json:"imageUrl"`
}

type productListResponse struct {
	Products []productView `json:"products"`
	Count    int           `json:"count"`
	Currency string        `json:"currency"`
	Source   string        `json:"source"`
	LoadedAt *time.Time    `json:"loadedAt,omitempty"`
	Notice   string        `json:"notice,omitempty"`
}

type lineView struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"quantity"`
	Image      string `json:"image"`
	ImageURL   string `json:"imageUrl"`
	Total      string `json:"total"`
	TotalCents int64  `json:"totalCents"`
}

type cartView struct {
	Lines             []lineView `json:"lines"`
	ItemCount         int        `json:"itemCount"`
	Total             string     `json:"total"`
	TotalCents        int64      `json:"totalCents"`
	Currency          string     `json:"currency"`
	Empty             bool       `json:"empty"`
	CheckoutAvailable bool       `json:"checkoutAvailable"`
}

type receiptView struct {
	Number      string     `json:"number"`
	Lines       []lineView `json:"lines"`
	ItemCount   int        `json:"itemCount"`
	Total       string     `json:"total"`
	TotalCents  int64      `json:"totalCents"`
	Currency    string     `json:"currency"`
	CompletedAt time.Time  `json:"completedAt"`
}

type checkoutResponse struct {
	Message string      `json:"message"`
	Receipt receiptView `json:"receipt"`
	Cart    cartView    `json:"cart"`
}

func toProductView(p domain.Product) productView {
	return productView{
		ID:         p.ID,
		Name:       p.Name,
		Price:      money.Format(p.PriceCents),
		PriceCents: p.PriceCents,
		Category:   p.Category,
		Image:      p.Image,
		ImageURL:   "/products/" + url.PathEscape(p.ID) + "/image",
	}
}

func toProductList(cat *productsvc.Catalog, products []domain.Product, currency string) productListResponse {
	out := productListResponse{
		Products: make([]productView, 0, len(products)),
		Count:    len(products),
		Currency: currency,
		Source:   cat.Source,
		Notice:   cat.Notice(),
	}
	if !cat.LoadedAt.IsZero() {
		at := cat.LoadedAt
		out.LoadedAt = &at
	}
	for _, p := range products {
		out.Products = append(out.Products, toProductView(p))
	}
	return out
}

func toLineViews(lines []domain.CartLine) []lineView {
	out := make([]lineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineView{
			ProductID:  l.ProductID,
			Name:       l.Name,
			Price:      money.Format(l.PriceCents),
			PriceCents: l.PriceCents,
			Quantity:   l.Quantity,
			Image:      l.Image,
			ImageURL:   "/cart/lines/" + url.PathEscape(l.ProductID) + "/image",
			Total:      money.Format(l.TotalCents()),
			TotalCents: l.TotalCents(),
		})
	}
	return out
}

func toCartView(snap domain.CartSnapshot, currency string) cartView {
	empty := len(snap.Lines) == 0
	return cartView{
		Lines:             toLineViews(snap.Lines),
		ItemCount:         snap.ItemCount,
		Total:             money.Format(snap.TotalCents),
		TotalCents:        snap.TotalCents,
		Currency:          currency,
		Empty:             empty,
		CheckoutAvailable: !empty,
	}
}

func toReceiptView(r *cartsvc.Receipt, currency string) receiptView {
	return receiptView{
		Number:      r.Number,
		Lines:       toLineViews(r.Lines),
		ItemCount:   r.ItemCount,
		Total:       money.Format(r.TotalCents),
		TotalCents:  r.TotalCents,
		Currency:    currency,
		CompletedAt: r.CompletedAt,
	}
}
