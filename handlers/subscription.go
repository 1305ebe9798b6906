package handlers

import (
	"errors"
	"net/http"

	"fixly/services/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubscriptionHandler manages push endpoint registrations.
type SubscriptionHandler struct {
	Registry *subscription.Registry
	Logger   *zap.Logger
}

func NewSubscriptionHandler(registry *subscription.Registry, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{Registry: registry, Logger: logger}
}

// RegisterEndpoint registers one device endpoint for a professional.
func (h *SubscriptionHandler) RegisterEndpoint(c *gin.Context) {
	var input struct {
		ProfessionalID string `json:"professionalId" binding:"required"`
		ServiceType    string `json:"serviceType"`
		District       string `json:"district"`
		Endpoint       string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	err := h.Registry.Register(c.Request.Context(), input.ProfessionalID, input.ServiceType, input.District, input.Endpoint)
	if err != nil {
		var cfgErr *subscription.ConfigurationError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cfgErr.Error()})
			return
		}
		h.Logger.Error("failed to register push endpoint", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register push endpoint"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"professionalId": input.ProfessionalID, "endpoint": input.Endpoint})
}

// UnregisterEndpoint removes one device endpoint. Unknown endpoints are a
// no-op so clients can retry safely.
func (h *SubscriptionHandler) UnregisterEndpoint(c *gin.Context) {
	var input struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	h.Registry.Unregister(input.Endpoint)
	c.Status(http.StatusNoContent)
}
