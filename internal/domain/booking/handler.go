package booking

import (
	"errors"
	"net/http"
	"strconv"

	"servicehub/internal/middleware"
	"servicehub/internal/pkg/response"
	"servicehub/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// CreateBooking godoc
// @Summary Request a booking with a provider
// @Tags Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateBookingRequest true "Booking request"
// @Success 201 {object} Booking
// @Router /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.ProviderID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Provider ID is required")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(c, errs)
		return
	}

	b, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, "create booking", err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

// ListBookings godoc
// @Summary List the caller's bookings, newest first
// @Tags Bookings
// @Security BearerAuth
// @Produce json
// @Router /bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	out, err := h.service.ListForClient(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, "list bookings", err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// AcceptBooking godoc
// @Summary Accept a pending booking and capture its payment
// @Tags Bookings
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Router /bookings/{id}/accept [put]
func (h *Handler) AcceptBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.service.Accept(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		h.fail(c, "accept booking", err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// DeclineBooking godoc
// @Summary Decline a pending booking and release its payment
// @Tags Bookings
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Router /bookings/{id}/decline [put]
func (h *Handler) DeclineBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.service.Decline(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		h.fail(c, "decline booking", err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// Dashboard godoc
// @Summary Provider overview: next booking, pending requests, earnings
// @Tags Provider
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Dashboard
// @Router /provider/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	out, err := h.service.Dashboard(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, "provider dashboard", err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ErrProviderRequired):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Provider ID is required")
	case errors.Is(err, ErrSelfBooking):
		response.Error(c, http.StatusBadRequest, "SELF_BOOKING", "You cannot book yourself")
	case errors.Is(err, ErrProviderNotFound):
		response.Error(c, http.StatusBadRequest, "PROVIDER_NOT_FOUND", "Provider not found")
	case errors.Is(err, ErrServiceMismatch):
		response.Error(c, http.StatusBadRequest, "SERVICE_MISMATCH", "Service does not belong to this provider")
	case errors.Is(err, ErrPaymentInUse):
		response.Error(c, http.StatusConflict, "PAYMENT_IN_USE", "Payment is already used by another booking")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	default:
		h.logger.Error(op, zap.Int64("user_id", middleware.UserID(c)), zap.Error(err))
		response.Internal(c)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}
