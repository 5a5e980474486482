package booking

import (
	"net/http"
	"strconv"

	"vaccinebooking/internal/middleware"
	"vaccinebooking/internal/pkg/apperror"
	"vaccinebooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the booking routes on the /api/v1 group. requireUser
// guards /bookings/me and may be nil when token auth is disabled.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireUser gin.HandlerFunc) {
	rg.POST("/bookings", h.CreateBooking)
	rg.POST("/bookings/cart", h.CreateCartBooking)
	rg.GET("/bookings/all", h.GetAllBookings)
	if requireUser != nil {
		rg.GET("/bookings/me", requireUser, h.GetMyBookings)
	} else {
		rg.GET("/bookings/me", h.GetMyBookings)
	}
	rg.GET("/bookings/:id", h.GetOrder)
	rg.GET("/users/:id/bookings", h.GetUserBookings)
	rg.GET("/users/email/:email/bookings", h.GetBookingsByEmail)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.Validation(err.Error()))
		return
	}
	if req.UserID == 0 {
		req.UserID = middleware.UserID(c)
	}

	b, err := h.service.CreateSingleBooking(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Successfully completed booking", b)
}

func (h *Handler) CreateCartBooking(c *gin.Context) {
	var req CreateCartBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.Validation(err.Error()))
		return
	}
	if req.UserID == 0 {
		req.UserID = middleware.UserID(c)
	}

	b, err := h.service.CreateCartBooking(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Successfully created cart booking", gin.H{
		"bookingId":   b.ID,
		"referenceId": b.ReferenceID(),
		"totalCost":   b.TotalCost,
		"itemDetails": b.Items,
		"booking":     b,
	})
}

func (h *Handler) GetAllBookings(c *gin.Context) {
	out, err := h.service.GetAllBookingsWithVaccineDetails(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Successfully fetched all bookings", out)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	od, err := h.service.FindOrderByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Successfully fetched booking", od)
}

func (h *Handler) GetUserBookings(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.renderUserBookings(c, userID)
}

func (h *Handler) GetMyBookings(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}
	h.renderUserBookings(c, userID)
}

func (h *Handler) renderUserBookings(c *gin.Context, userID int64) {
	out, err := h.service.GetBookingsByUser(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Successfully fetched bookings", out)
}

func (h *Handler) GetBookingsByEmail(c *gin.Context) {
	out, err := h.service.GetBookingsByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Successfully fetched bookings", out)
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, apperror.Validation(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}
