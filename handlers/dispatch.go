package handlers

import (
	"errors"
	"net/http"
	"time"

	bookingRepo "fixly/database/repository/booking"
	"fixly/models"
	"fixly/services/dispatch"
	"fixly/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DispatchHandler exposes the dispatch engine over HTTP.
type DispatchHandler struct {
	Svc    dispatch.DispatchService
	Repo   bookingRepo.BookingRepository
	Logger *zap.Logger
}

func NewDispatchHandler(svc dispatch.DispatchService, repo bookingRepo.BookingRepository, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{Svc: svc, Repo: repo, Logger: logger}
}

// CreateBooking persists a new booking in requested status and triggers the
// first dispatch cycle.
func (h *DispatchHandler) CreateBooking(c *gin.Context) {
	var input struct {
		CustomerID    string          `json:"customerId" binding:"required"`
		ServiceType   string          `json:"serviceType" binding:"required"`
		IssueType     string          `json:"issueType"`
		Description   string          `json:"description"`
		ScheduledAt   time.Time       `json:"scheduledAt"`
		DurationHours int             `json:"durationHours"`
		Location      models.Location `json:"location"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Location.District == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location.district is required"})
		return
	}
	if input.DurationHours <= 0 {
		input.DurationHours = models.DefaultBookingDurationHours
	}

	booking := &models.Booking{
		ID:            uuid.New().String(),
		CustomerID:    input.CustomerID,
		ServiceType:   input.ServiceType,
		IssueType:     input.IssueType,
		Description:   input.Description,
		ScheduledAt:   input.ScheduledAt,
		DurationHours: input.DurationHours,
		Location:      input.Location,
		Status:        models.BookingStatusRequested,
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.Repo.Create(c.Request.Context(), booking); err != nil {
		h.Logger.Error("failed to create booking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		return
	}
	if err := h.Svc.OnBookingCreated(c.Request.Context(), booking); err != nil {
		// The booking is persisted; the rescan loop will pick it up.
		h.Logger.Warn("initial dispatch failed", zap.String("bookingId", booking.ID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, booking)
}

// GetBooking returns a booking by id. Callers who saw a timeout on accept
// use this to re-query the authoritative status before retrying.
func (h *DispatchHandler) GetBooking(c *gin.Context) {
	booking, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.Logger.Error("failed to fetch booking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch booking"})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// AcceptBooking resolves a professional's claim on a booking.
func (h *DispatchHandler) AcceptBooking(c *gin.Context) {
	bookingID := c.Param("id")
	var input struct {
		ProfessionalID string `json:"professionalId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	err := h.Svc.Accept(c.Request.Context(), bookingID, input.ProfessionalID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"bookingId":      bookingID,
			"professionalId": input.ProfessionalID,
			"status":         models.BookingStatusAssigned,
		})
	case errors.Is(err, dispatch.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "booking is no longer available"})
	case errors.Is(err, dispatch.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking or professional not found"})
	case errors.Is(err, dispatch.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error":   "booking store did not respond in time",
			"details": "outcome unknown; re-query the booking before retrying",
		})
	default:
		h.Logger.Error("accept failed", zap.String("bookingId", bookingID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to accept booking", err.Error())
	}
}

// CancelBooking cancels a still-requested booking.
func (h *DispatchHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("id")

	err := h.Svc.CancelRequested(c.Request.Context(), bookingID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"bookingId": bookingID, "status": models.BookingStatusCancelled})
	case errors.Is(err, dispatch.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "booking has already been assigned"})
	case errors.Is(err, dispatch.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, dispatch.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "booking store did not respond in time"})
	default:
		h.Logger.Error("cancel failed", zap.String("bookingId", bookingID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel booking", err.Error())
	}
}
