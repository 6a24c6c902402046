package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-storefront/internal/domain"
	cartsvc "pos-storefront/internal/service/cart"
)

type addLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type adjustLineRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

func (h *handlers) getCart(c *gin.Context) {
	snap, err := h.carts.Get(c.Request.Context(), c.GetString(sessionKey))
	h.respondCart(c, snap, err)
}

func (h *handlers) addLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
		return
	}
	snap, err := h.carts.Add(c.Request.Context(), c.GetString(sessionKey), req.ProductID)
	h.respondCart(c, snap, err)
}

func (h *handlers) adjustLine(c *gin.Context) {
	var req adjustLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delta required"})
		return
	}
	snap, err := h.carts.Adjust(c.Request.Context(), c.GetString(sessionKey), c.Param("productId"), *req.Delta)
	h.respondCart(c, snap, err)
}

func (h *handlers) removeLine(c *gin.Context) {
	snap, err := h.carts.Remove(c.Request.Context(), c.GetString(sessionKey), c.Param("productId"))
	h.respondCart(c, snap, err)
}

func (h *handlers) clearCart(c *gin.Context) {
	snap, err := h.carts.Clear(c.Request.Context(), c.GetString(sessionKey))
	h.respondCart(c, snap, err)
}

func (h *handlers) updateCart(c *gin.Context) {
	var req cartsvc.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	snap, err := h.carts.Update(c.Request.Context(), c.GetString(sessionKey), req)
	h.respondCart(c, snap, err)
}

func (h *handlers) checkout(c *gin.Context) {
	ctx := c.Request.Context()
	sid := c.GetString(sessionKey)

	receipt, err := h.carts.Checkout(ctx, sid)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	snap, err := h.carts.Get(ctx, sid)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, checkoutResponse{
		Message: receipt.Message,
		Receipt: toReceiptView(receipt, h.currency),
		Cart:    toCartView(snap, h.currency),
	})
}

func (h *handlers) lineImage(c *gin.Context) {
	snap, err := h.carts.Get(c.Request.Context(), c.GetString(sessionKey))
	if err != nil {
		h.images.Placeholder(c)
		return
	}
	id := c.Param("productId")
	for _, line := range snap.Lines {
		if line.ProductID == id {
			h.images.Serve(c, line.Image)
			return
		}
	}
	h.images.Placeholder(c)
}

func (h *handlers) respondCart(c *gin.Context, snap domain.CartSnapshot, err error) {
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(snap, h.currency))
}
