package profile

import (
	"errors"
	"net/http"

	"servicehub/internal/domain/upload"
	"servicehub/internal/domain/user"
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

// GetProfile godoc
// @Summary Get the caller's account profile
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Profile
// @Router /account/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, "get profile", err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// UpdateProfile godoc
// @Summary Partially update the caller's account profile
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile update"
// @Router /account/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(c, errs)
		return
	}

	p, token, err := h.service.Update(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, "update profile", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": p, "token": token})
}

// UploadAvatar godoc
// @Summary Upload a new avatar image
// @Tags Account
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Image"
// @Router /account/avatar [post]
func (h *Handler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		h.fail(c, "upload avatar", ErrNoAvatar)
		return
	}

	url, token, err := h.service.UploadAvatar(c.Request.Context(), middleware.UserID(c), fh)
	if err != nil {
		h.fail(c, "upload avatar", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url, "token": token})
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ErrNoAvatar), errors.Is(err, upload.ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "An avatar image is required")
	case errors.Is(err, upload.ErrInvalidMimeType):
		response.Error(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Avatar must be a JPEG, PNG, GIF or WebP image")
	case errors.Is(err, upload.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Avatar exceeds the maximum size")
	case errors.Is(err, upload.ErrNotConfigured):
		response.Error(c, http.StatusServiceUnavailable, "UPLOADS_UNAVAILABLE", "Uploads are not available")
	case errors.Is(err, user.ErrEmptyPatch):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Nothing to update")
	case errors.Is(err, user.ErrEmailTaken):
		response.Error(c, http.StatusBadRequest, "EMAIL_EXISTS", "Email already in use")
	case errors.Is(err, user.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	default:
		h.logger.Error(op, zap.Int64("user_id", middleware.UserID(c)), zap.Error(err))
		response.Internal(c)
	}
}
