package payment

import (
	"errors"
	"net/http"

	"servicehub/internal/metrics"
	"servicehub/internal/middleware"
	"servicehub/internal/pkg/response"
	"servicehub/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	gateway  Gateway
	currency string
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewHandler(gateway Gateway, currency string, logger *zap.Logger, m *metrics.Metrics) *Handler {
	return &Handler{gateway: gateway, currency: currency, logger: logger, metrics: m}
}

// CreatePaymentIntent godoc
// @Summary Place a manual-capture hold for a booking
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateIntentRequest true "Amount in minor units"
// @Success 200 {object} CreateIntentResponse
// @Router /payments/create-payment-intent [post]
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(c, errs)
		return
	}

	userID := middleware.UserID(c)
	intent, err := h.gateway.CreateHold(c.Request.Context(), req.Amount, h.currency, userID)
	if err != nil {
		h.count("failed")
		h.logger.Error("create payment intent", zap.Int64("user_id", userID), zap.Error(err))
		if errors.Is(err, ErrNotConfigured) {
			response.Error(c, http.StatusServiceUnavailable, "PAYMENTS_UNAVAILABLE", "Payments are not available")
			return
		}
		response.Internal(c)
		return
	}
	h.count("ok")

	response.Success(c, http.StatusOK, CreateIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
}

func (h *Handler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.PaymentCalls.WithLabelValues("create", outcome).Inc()
	}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.POST("/payments/create-payment-intent", h.CreatePaymentIntent)
}
