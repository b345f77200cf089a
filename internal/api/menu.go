package api

import (
	"net/http"

	"bistro-service/internal/models"
	"bistro-service/internal/service"

	"github.com/gin-gonic/gin"
)

// menuItemRequest distinguishes an omitted availability flag from false
type menuItemRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,gt=0"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
	Available   *bool  `json:"available"`
}

func (h *Handler) listMenu(c *gin.Context) {
	items, err := h.catalog.Search(c.Request.Context(), c.Query("q"), c.Query("category"))
	if err != nil {
		h.respondError(c, "Failed to load menu", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to load categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": append([]string{service.AllCategories}, categories...)})
}

func (h *Handler) listVariants(c *gin.Context) {
	items, err := h.catalog.Menu(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to load menu", err)
		return
	}

	for _, item := range items {
		if item.ID == c.Param("id") {
			c.JSON(http.StatusOK, gin.H{
				"item":     item,
				"variants": service.Variants(item),
			})
			return
		}
	}
	h.respondError(c, "Menu item not found", models.ErrMenuItemNotFound)
}

func (h *Handler) replaceMenu(c *gin.Context) {
	var items []models.MenuItem
	if err := c.ShouldBindJSON(&items); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.catalog.ReplaceMenu(c.Request.Context(), items); err != nil {
		h.respondError(c, "Failed to replace menu", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) saveMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.catalog.SaveItem(c.Request.Context(), models.MenuItem{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}, req.Available)
	if err != nil {
		h.respondError(c, "Failed to save menu item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deleteMenuItem(c *gin.Context) {
	if err := h.catalog.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "Failed to delete menu item", err)
		return
	}
	c.Status(http.StatusNoContent)
}
