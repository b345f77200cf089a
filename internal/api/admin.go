package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, expiresAt, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, "Login failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.auth.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		h.respondError(c, "Failed to register admin", err)
		return
	}

	h.logger.Info("Admin account created",
		zap.String("username", req.Username),
		zap.String("by", c.GetString(adminContextKey)))
	c.JSON(http.StatusCreated, gin.H{"username": req.Username})
}

func (h *Handler) getAnalytics(c *gin.Context) {
	summary, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to compute analytics", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// chat always answers 200; model failures become canned replies
func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply": h.waiter.Chat(c.Request.Context(), req.Message),
	})
}
