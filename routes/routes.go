package routes

import (
	"net/http"

	"fixly/handlers"
	"fixly/utils"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all endpoints for the dispatch service.
func RegisterRoutes(
	r *gin.Engine,
	dispatchHandler *handlers.DispatchHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	streamHandler *handlers.StreamHandler,
) {
	api := r.Group("/api/dispatch")
	{
		api.POST("/bookings", dispatchHandler.CreateBooking)
		api.GET("/bookings/:id", dispatchHandler.GetBooking)
		api.POST("/bookings/:id/accept", dispatchHandler.AcceptBooking)
		api.POST("/bookings/:id/cancel", dispatchHandler.CancelBooking)

		api.POST("/subscriptions", subscriptionHandler.RegisterEndpoint)
		api.DELETE("/subscriptions", subscriptionHandler.UnregisterEndpoint)

		api.GET("/stream", streamHandler.Stream)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}
