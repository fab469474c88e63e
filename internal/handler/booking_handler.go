package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/residenza/service-facility/internal/application"
	"github.com/residenza/service-facility/internal/platform/auth"
	"github.com/residenza/service-facility/internal/platform/middleware"
	"github.com/residenza/service-facility/internal/platform/response"
)

// FacilityHandler handles HTTP requests for facilities and their bookings.
type FacilityHandler struct {
	facilities *application.FacilityService
	bookings   *application.BookingService
}

// NewFacilityHandler creates a new FacilityHandler.
func NewFacilityHandler(facilities *application.FacilityService, bookings *application.BookingService) *FacilityHandler {
	return &FacilityHandler{facilities: facilities, bookings: bookings}
}

// RegisterRoutes registers facility and booking routes on the given router group.
func (h *FacilityHandler) RegisterRoutes(r *gin.RouterGroup, verifier auth.TokenVerifier) {
	facilities := r.Group("/facilities")
	facilities.Use(middleware.AuthMiddleware(verifier))
	{
		facilities.GET("", h.ListFacilities)
		facilities.GET("/:id", h.GetFacility)
		facilities.GET("/:id/bookings", h.ListFacilityBookings)
		facilities.POST("/:id/bookings", h.CreateBooking)

		facilities.GET("/bookings/my", h.ListMyBookings)
		facilities.GET("/bookings/:id", h.GetBooking)
		facilities.PUT("/bookings/:id/approve", middleware.RequireRole(auth.RoleAdmin), h.DecideBooking)
		facilities.PUT("/bookings/:id/cancel", h.CancelBooking)
	}
}

// ListFacilities handles GET /facilities.
func (h *FacilityHandler) ListFacilities(c *gin.Context) {
	result, err := h.facilities.ListFacilities(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetFacility handles GET /facilities/:id.
func (h *FacilityHandler) GetFacility(c *gin.Context) {
	facilityID, ok := pathID(c, "id", "facility")
	if !ok {
		return
	}

	result, err := h.facilities.GetFacility(c.Request.Context(), facilityID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListFacilityBookings handles GET /facilities/:id/bookings.
func (h *FacilityHandler) ListFacilityBookings(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	facilityID, ok := pathID(c, "id", "facility")
	if !ok {
		return
	}

	result, err := h.bookings.ListFacilityBookings(c.Request.Context(), actor, facilityID, listQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result)
}

// CreateBooking handles POST /facilities/:id/bookings.
func (h *FacilityHandler) CreateBooking(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	facilityID, ok := pathID(c, "id", "facility")
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.bookings.CreateBooking(c.Request.Context(), actor, facilityID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListMyBookings handles GET /facilities/bookings/my.
func (h *FacilityHandler) ListMyBookings(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	result, err := h.bookings.ListMyBookings(c.Request.Context(), actor, listQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result)
}

// GetBooking handles GET /facilities/bookings/:id.
func (h *FacilityHandler) GetBooking(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	result, err := h.bookings.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DecideBooking handles PUT /facilities/bookings/:id/approve.
func (h *FacilityHandler) DecideBooking(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	var req application.DecideBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.bookings.DecideBooking(c.Request.Context(), actor, bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, result, "booking "+result.Status)
}

// CancelBooking handles PUT /facilities/bookings/:id/cancel.
func (h *FacilityHandler) CancelBooking(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	result, err := h.bookings.CancelBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, result, "booking cancelled")
}

func listQuery(c *gin.Context) application.ListBookingsQuery {
	page, limit := parsePagination(c)
	return application.ListBookingsQuery{
		Status: c.Query("status"),
		Date:   c.Query("date"),
		Page:   page,
		Limit:  limit,
	}
}
