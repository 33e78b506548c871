package provider

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

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

// BecomeProvider godoc
// @Summary Register the caller's service offerings and grant the provider role
// @Tags Provider
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body BecomeProviderRequest true "Offerings"
// @Success 200 {object} map[string]interface{}
// @Router /becomeProvider [post]
func (h *Handler) BecomeProvider(c *gin.Context) {
	var req BecomeProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(c, errs)
		return
	}

	token, err := h.service.BecomeProvider(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, "become provider", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "You are now a provider!",
		"token":   token,
	})
}

// ListServices godoc
// @Summary List the caller's offerings
// @Tags Provider
// @Security BearerAuth
// @Produce json
// @Router /provider/services [get]
func (h *Handler) ListServices(c *gin.Context) {
	out, err := h.service.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, "list offerings", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": out})
}

// UpdateService godoc
// @Summary Partially update one of the caller's offerings
// @Tags Provider
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Offering ID"
// @Router /provider/services/{id} [put]
func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(c, errs)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		h.fail(c, "update offering", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service": updated})
}

// DeleteService godoc
// @Summary Delete one of the caller's offerings
// @Tags Provider
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Router /provider/services/{id} [delete]
func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		h.fail(c, "delete offering", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// SearchByService godoc
// @Summary Find providers offering a service by name
// @Tags Provider
// @Security BearerAuth
// @Param service_name query string true "Service name"
// @Router /providers [get]
func (h *Handler) SearchByService(c *gin.Context) {
	q := SearchQuery{ServiceName: strings.TrimSpace(c.Query("service_name"))}
	if errs := validator.Validate(q); errs != nil {
		response.ValidationError(c, errs)
		return
	}

	out, err := h.service.SearchByService(c.Request.Context(), q.ServiceName)
	if err != nil {
		h.fail(c, "search providers", err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// SearchByCategory godoc
// @Summary Find provider offerings within a category
// @Tags Provider
// @Security BearerAuth
// @Param category query string true "Category name"
// @Router /providersByCategory [get]
func (h *Handler) SearchByCategory(c *gin.Context) {
	q := CategoryQuery{Category: strings.TrimSpace(c.Query("category"))}
	if errs := validator.Validate(q); errs != nil {
		response.ValidationError(c, errs)
		return
	}

	out, err := h.service.SearchByCategory(c.Request.Context(), q.Category)
	if err != nil {
		h.fail(c, "search providers by category", err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, verr.Fields)
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, ErrEmptyPatch):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Nothing to update")
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
