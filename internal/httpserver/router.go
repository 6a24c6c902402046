package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"pos-storefront/internal/domain"
	"pos-storefront/internal/metrics"
	cartsvc "pos-storefront/internal/service/cart"
	productsvc "pos-storefront/internal/service/product"
)

type catalogService interface {
	Current() *productsvc.Catalog
	Refresh(ctx context.Context) *productsvc.Catalog
}

type cartService interface {
	Get(ctx context.Context, sessionID string) (domain.CartSnapshot, error)
	Add(ctx context.Context, sessionID, productID string) (domain.CartSnapshot, error)
	Adjust(ctx context.Context, sessionID, productID string, delta int) (domain.CartSnapshot, error)
	Remove(ctx context.Context, sessionID, productID string) (domain.CartSnapshot, error)
	Clear(ctx context.Context, sessionID string) (domain.CartSnapshot, error)
	Update(ctx context.Context, sessionID string, in cartsvc.UpdateInput) (domain.CartSnapshot, error)
	Checkout(ctx context.Context, sessionID string) (*cartsvc.Receipt, error)
}

type limiter interface {
	Allow(key string) bool
}

// Deps holds the services the router dispatches to.
type Deps struct {
	CatalogSvc catalogService
	CartSvc    cartService
	Sessions   *scs.SessionManager
	Limiter    limiter
	Metrics    *metrics.Metrics
	// MetricsHandler serves /metrics; promhttp.Handler() when nil.
	MetricsHandler http.Handler
	Images         *ImageProxy
	Currency       string
	CORSOrigins    []string
	// TrustedProxies may set the client IP through X-Forwarded-For. None by
	// default, so the rate limiter keys on the peer address.
	TrustedProxies []string
}

// buildRouter wires routes for the API. The returned handler loads and
// saves the session around every request.
func buildRouter(logger logrus.FieldLogger, db Pinger, deps Deps) (http.Handler, error) {
	if deps.CatalogSvc == nil || deps.CartSvc == nil {
		return nil, errors.New("catalog and cart services are required")
	}
	if deps.Sessions == nil {
		deps.Sessions = scs.New()
	}
	if deps.Images == nil {
		deps.Images = NewImageProxy(http.DefaultClient, ".", defaultPlaceholder, logger)
	}
	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(requestID(), requestLogger(logger), recovery(logger))
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{"Content-Type", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(metricsHandler))

	h := &handlers{
		logger:   logger,
		catalog:  deps.CatalogSvc,
		carts:    deps.CartSvc,
		images:   deps.Images,
		currency: deps.Currency,
	}

	api := router.Group("/")
	if deps.Limiter != nil {
		api.Use(rateLimit(deps.Limiter, deps.Metrics))
	}

	api.GET("/products", h.listProducts)
	api.GET("/products/:id/image", h.productImage)
	api.GET("/categories", h.listCategories)
	api.POST("/catalog/refresh", h.refreshCatalog)

	carts := api.Group("/cart", sessionID(deps.Sessions))
	carts.GET("", h.getCart)
	carts.DELETE("", h.clearCart)
	carts.POST("/lines", h.addLine)
	carts.PATCH("/lines/:productId", h.adjustLine)
	carts.DELETE("/lines/:productId", h.removeLine)
	carts.GET("/lines/:productId/image", h.lineImage)
	carts.POST("/actions", h.updateCart)
	carts.POST("/checkout", h.checkout)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return deps.Sessions.LoadAndSave(router), nil
}
