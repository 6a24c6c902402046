package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type handlers struct {
	logger   logrus.FieldLogger
	catalog  catalogService
	carts    cartService
	images   *ImageProxy
	currency string
}

func (h *handlers) listProducts(c *gin.Context) {
	cat := h.catalog.Current()
	category := strings.TrimSpace(c.Query("category"))
	c.JSON(http.StatusOK, toProductList(cat, cat.Filter(category), h.currency))
}

func (h *handlers) listCategories(c *gin.Context) {
	categories := h.catalog.Current().Categories()
	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

func (h *handlers) refreshCatalog(c *gin.Context) {
	cat := h.catalog.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, toProductList(cat, cat.Products, h.currency))
}

func (h *handlers) productImage(c *gin.Context) {
	p, ok := h.catalog.Current().Get(c.Param("id"))
	if !ok {
		h.images.Placeholder(c)
		return
	}
	h.images.Serve(c, p.Image)
}
