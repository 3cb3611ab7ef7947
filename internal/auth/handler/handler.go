package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"admin_console_backend/internal/auth/service"
	"admin_console_backend/internal/auth/transport"
	"admin_console_backend/platform/httpkit"
)

type Handler struct {
	svc *service.Service
}

const msgInvalidRequest = "invalid request"

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sign-in", h.SignIn)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/sign-out", h.SignOut)
	rg.POST("/forgot-password", h.ForgotPassword)
	rg.POST("/reset-password", h.ResetPassword)
}

// SignIn authenticates an admin with email and password.
// POST /api/v1/auth/sign-in
func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.authError(c, err)
		return
	}
	httpkit.OK(c, toAuthResponse(result))
}

// Refresh rotates a refresh token.
// POST /api/v1/auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req transport.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.authError(c, err)
		return
	}
	httpkit.OK(c, toAuthResponse(result))
}

// SignOut revokes a refresh token.
// POST /api/v1/auth/sign-out
func (h *Handler) SignOut(c *gin.Context) {
	var req transport.SignOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.svc.SignOut(c.Request.Context(), req.RefreshToken); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "sign out failed", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangePassword sets a new password for the authenticated admin.
// POST /api/v1/users/me/password
func (h *Handler) ChangePassword(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), identity.UserID(), req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpkit.Error(c, http.StatusBadRequest, "current password is incorrect", nil)
			return
		}
		if httpkit.HandleError(c, err) {
			return
		}
	}
	c.Status(http.StatusNoContent)
}

// ForgotPassword emails a reset link. Always returns 204.
// POST /api/v1/auth/forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req transport.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "could not process request", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetPassword consumes a reset token and sets the new password.
// POST /api/v1/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req transport.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.authError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) authError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpkit.Error(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, service.ErrAccountInactive):
		httpkit.Error(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrTokenExpired), errors.Is(err, service.ErrTokenInvalid):
		httpkit.Error(c, http.StatusUnauthorized, err.Error(), nil)
	default:
		httpkit.HandleError(c, err)
	}
}

func toAuthResponse(r service.SignInResult) transport.AuthResponse {
	return transport.AuthResponse{
		AccessToken:        r.AccessToken,
		RefreshToken:       r.RefreshToken,
		MustChangePassword: r.MustChangePassword,
	}
}
