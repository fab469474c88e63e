package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/residenza/service-facility/internal/application"
	"github.com/residenza/service-facility/internal/platform/auth"
	"github.com/residenza/service-facility/internal/platform/middleware"
	"github.com/residenza/service-facility/internal/platform/response"
)

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	service *application.BookingService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, verifier auth.TokenVerifier) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(verifier), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings/stats", h.BookingStats)
	}
}

// BookingStats handles GET /admin/bookings/stats.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
