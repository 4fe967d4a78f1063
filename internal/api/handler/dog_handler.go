package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/service"
	"github.com/joemerrillis/sniffr/pkg/response"
)

// DogHandler 狗档案 HTTP 处理器
type DogHandler struct {
	dogSvc service.DogService
}

// NewDogHandler 创建 DogHandler
func NewDogHandler(dogSvc service.DogService) *DogHandler {
	return &DogHandler{dogSvc: dogSvc}
}

// ListDogs 狗档案列表
// GET /api/v1/dogs
func (h *DogHandler) ListDogs(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.DogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	dogs, err := h.dogSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleDogError(c, err)
		return
	}
	response.OK(c, gin.H{"dogs": dogs})
}

// GetDog 狗档案详情
// GET /api/v1/dogs/:id
func (h *DogHandler) GetDog(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := PathUUID(c, "id")
	if !ok {
		h.handleDogError(c, service.ErrDogNotFound)
		return
	}
	dog, err := h.dogSvc.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.handleDogError(c, err)
		return
	}
	response.OK(c, gin.H{"dog": dog})
}

// CreateDog 新建狗档案
// POST /api/v1/dogs
func (h *DogHandler) CreateDog(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateDogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	dog, err := h.dogSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleDogError(c, err)
		return
	}
	response.Created(c, gin.H{"dog": dog})
}

// UpdateDog 更新狗档案
// PATCH /api/v1/dogs/:id
func (h *DogHandler) UpdateDog(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := PathUUID(c, "id")
	if !ok {
		h.handleDogError(c, service.ErrDogNotFound)
		return
	}
	var req dto.UpdateDogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err)
		return
	}
	dog, err := h.dogSvc.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		h.handleDogError(c, err)
		return
	}
	response.OK(c, gin.H{"dog": dog})
}

// DeleteDog 删除狗档案
// DELETE /api/v1/dogs/:id
func (h *DogHandler) DeleteDog(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := PathUUID(c, "id")
	if !ok {
		response.NoContent(c)
		return
	}
	if err := h.dogSvc.Delete(c.Request.Context(), caller, id); err != nil {
		h.handleDogError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *DogHandler) handleDogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDogNotFound):
		response.NotFound(c, 14001, "狗档案不存在")
	case errors.Is(err, service.ErrTenantNotFound):
		response.NotFound(c, 13001, "租户不存在")
	case errors.Is(err, service.ErrDogWeightInvalid):
		response.BadRequest(c, 14002, err.Error())
	default:
		response.InternalError(c, err)
	}
}
