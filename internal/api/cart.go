package api

import (
	"net/http"

	"bistro-service/internal/cart"
	"bistro-service/internal/models"
	"bistro-service/internal/service"
	"bistro-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartSessionHeader identifies the caller's cart
const CartSessionHeader = "X-Cart-Session"

type cartView struct {
	Session string            `json:"session"`
	Items   []models.CartLine `json:"items"`
	Total   int64             `json:"total"`
	Count   int               `json:"count"`
	Open    bool              `json:"open"`
}

type addCartItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	Unit   string `json:"unit"`
}

type updateCartItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	Unit   string `json:"unit"`
	Delta  int    `json:"delta"`
}

type setCartOpenRequest struct {
	Open bool `json:"open"`
}

// session returns the caller's cart, issuing a new session id when the
// request carries none
func (h *Handler) session(c *gin.Context) (string, *cart.Cart) {
	id := c.GetHeader(CartSessionHeader)
	if id == "" {
		id = uuid.New().String()
	}
	c.Header(CartSessionHeader, id)
	return id, h.carts.Get(id)
}

func renderCart(c *gin.Context, session string, ct *cart.Cart) {
	c.JSON(http.StatusOK, cartView{
		Session: session,
		Items:   ct.Lines(),
		Total:   ct.Total(),
		Count:   ct.Count(),
		Open:    ct.IsOpen(),
	})
}

func unitOrDefault(unit string) string {
	if unit == "" {
		return cart.DefaultUnit
	}
	return unit
}

func (h *Handler) getCart(c *gin.Context) {
	session, ct := h.session(c)
	renderCart(c, session, ct)
}

func (h *Handler) setCartOpen(c *gin.Context) {
	var req setCartOpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session, ct := h.session(c)
	ct.SetOpen(req.Open)
	renderCart(c, session, ct)
}

func (h *Handler) clearCart(c *gin.Context) {
	session, ct := h.session(c)
	ct.Clear()
	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	renderCart(c, session, ct)
}

// addCartItem prices the line server-side from the catalog
func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.catalog.Lookup(c.Request.Context(), req.ItemID)
	if err != nil {
		h.respondError(c, "Cannot add item", err)
		return
	}
	variant, err := service.VariantPrice(*item, req.Unit)
	if err != nil {
		h.respondError(c, "Cannot add item", err)
		return
	}

	session, ct := h.session(c)
	ct.Add(*item, variant.Label, variant.Price)
	util.CartMutationsTotal.WithLabelValues("add").Inc()
	renderCart(c, session, ct)
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, ct := h.session(c)
	ct.UpdateQuantity(req.ItemID, unitOrDefault(req.Unit), req.Delta)
	util.CartMutationsTotal.WithLabelValues("update").Inc()
	renderCart(c, session, ct)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	itemID := c.Query("item_id")
	if itemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}

	session, ct := h.session(c)
	ct.Remove(itemID, unitOrDefault(c.Query("unit")))
	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	renderCart(c, session, ct)
}
