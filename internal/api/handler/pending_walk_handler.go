package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/service"
	"github.com/joemerrillis/sniffr/pkg/response"
)

// PendingWalkHandler 待确认遛狗 HTTP 处理器
type PendingWalkHandler struct {
	pendingSvc service.PendingWalkService
}

// NewPendingWalkHandler 创建 PendingWalkHandler
func NewPendingWalkHandler(pendingSvc service.PendingWalkService) *PendingWalkHandler {
	return &PendingWalkHandler{pendingSvc: pendingSvc}
}

// ListPendingWalks 本人待确认遛狗，默认本周
// GET /api/v1/pending-walks?from=&to=
func (h *PendingWalkHandler) ListPendingWalks(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.PendingWalkListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	walks, err := h.pendingSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handlePendingWalkError(c, err)
		return
	}
	response.OK(c, gin.H{"pending_walks": walks})
}

// ListClientPendingWalks 租户员工查看客户待确认遛狗
// GET /api/v1/tenants/:tenant_id/clients/:client_id/pending-walks
func (h *PendingWalkHandler) ListClientPendingWalks(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	tenantID, okTenant := PathUUID(c, "tenant_id")
	clientID, okClient := PathUUID(c, "client_id")
	if !okTenant || !okClient {
		h.handlePendingWalkError(c, service.ErrTenantClientNotFound)
		return
	}
	var req dto.PendingWalkListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	walks, err := h.pendingSvc.ListForClient(c.Request.Context(), caller,
		tenantID, clientID, &req)
	if err != nil {
		h.handlePendingWalkError(c, err)
		return
	}
	response.OK(c, gin.H{"pending_walks": walks})
}

// ExportPendingWalks 导出待确认遛狗（xlsx / ics）
// GET /api/v1/pending-walks/export?format=xlsx|ics
func (h *PendingWalkHandler) ExportPendingWalks(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.PendingWalkExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	file, err := h.pendingSvc.Export(c.Request.Context(), caller, &req)
	if err != nil {
		h.handlePendingWalkError(c, err)
		return
	}
	sendFile(c, file)
}

func (h *PendingWalkHandler) handlePendingWalkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPendingWalkRangeInvalid):
		response.BadRequest(c, 16001, err.Error())
	case errors.Is(err, service.ErrTenantNotFound):
		response.NotFound(c, 13001, "租户不存在")
	case errors.Is(err, service.ErrTenantClientNotFound):
		response.NotFound(c, 13002, "租户客户关联不存在")
	default:
		response.InternalError(c, err)
	}
}
