package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-account-service/internal/application"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/internal/interface/middleware"
	"github.com/oksasatya/user-account-service/pkg/response"
	"github.com/oksasatya/user-account-service/pkg/validation"
)

// maxAvatarUploadBytes caps the multipart avatar upload size.
const maxAvatarUploadBytes = 5 << 20

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	Username        string `json:"username" binding:"omitempty,min=3,max=20,username"`
	Email           string `json:"email" binding:"omitempty,email,max=100"`
	Password        string `json:"password" binding:"omitempty,pwd"`
	ConfirmPassword string `json:"confirm_password" binding:"required_with=Password,omitempty,eqfield=Password"`
}

type updateAvatarRequest struct {
	AvatarURL string `json:"avatar_url" binding:"required,url,max=500"`
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

// GetCurrentUser GET /api/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	uid := middleware.UserID(c)
	p, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		h.serviceError(c, err, "get profile failed")
		return
	}
	response.Success(c, http.StatusOK, p, "profile")
}

// UpdateProfile PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := middleware.UserID(c)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	p, err := h.Svc.UpdateProfile(c.Request.Context(), uid, userapp.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.serviceError(c, err, "update profile failed")
		return
	}
	response.Success(c, http.StatusOK, p, "profile updated successfully")
}

// UpdateAvatar PUT /api/users/avatar
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	uid := middleware.UserID(c)
	var req updateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	p, err := h.Svc.UpdateAvatar(c.Request.Context(), uid, req.AvatarURL)
	if err != nil {
		h.serviceError(c, err, "update avatar failed")
		return
	}
	response.Success(c, http.StatusOK, p, "avatar updated successfully")
}

// UploadAvatar POST /api/users/avatar/upload (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid := middleware.UserID(c)

	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", map[string]string{"avatar": "is required"})
		return
	}
	if fh.Size > maxAvatarUploadBytes {
		response.Error(c, http.StatusBadRequest, "invalid payload", map[string]string{"avatar": "file too large"})
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.Error(c, http.StatusBadRequest, "invalid payload", map[string]string{"avatar": "must be an image"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", map[string]string{"avatar": "unreadable file"})
		return
	}
	defer func() { _ = f.Close() }()

	p, err := h.Svc.UploadAvatar(c.Request.Context(), uid, f, fh.Filename, contentType)
	if err != nil {
		if errors.Is(err, userapp.ErrUploadsDisabled) {
			response.Error(c, http.StatusServiceUnavailable, "avatar uploads unavailable", nil)
			return
		}
		h.serviceError(c, err, "upload avatar failed")
		return
	}
	response.Success(c, http.StatusOK, p, "avatar updated successfully")
}

// DeleteAccount DELETE /api/users/account
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	uid := middleware.UserID(c)
	var req deleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.DeactivateAccount(c.Request.Context(), uid, req.Password); err != nil {
		h.serviceError(c, err, "delete account failed")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "account deactivated successfully")
}

// serviceError maps service errors onto the HTTP taxonomy. Unknown errors
// are logged and reported as an opaque 500.
func (h *UserHandler) serviceError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, userapp.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, repo.ErrUsernameTaken):
		response.Error(c, http.StatusConflict, "username already taken", nil)
	case errors.Is(err, repo.ErrEmailTaken):
		response.Error(c, http.StatusConflict, "email already taken", nil)
	case errors.Is(err, userapp.ErrInvalidPassword):
		response.Error(c, http.StatusBadRequest, "invalid password", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("user_id", middleware.UserID(c)).Error(logMsg)
		}
		response.Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}
