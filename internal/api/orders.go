package api

import (
	"net/http"

	"bistro-service/internal/models"
	"bistro-service/internal/service"

	"github.com/gin-gonic/gin"
)

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// placeOrder checks out the caller's cart
func (h *Handler) placeOrder(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	// the drained cart stays registered so the session keeps adding to it
	_, ct := h.session(c)
	order, err := h.checkout.Checkout(c.Request.Context(), ct, &req)
	if err != nil {
		h.respondError(c, "Failed to place order", err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.respondError(c, "Failed to list orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Order not found", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, "Failed to update order status", err)
		return
	}
	if order == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, order)
}
