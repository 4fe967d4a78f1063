package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joemerrillis/sniffr/internal/api/middleware"
	"github.com/joemerrillis/sniffr/internal/service"
	"github.com/joemerrillis/sniffr/pkg/response"
)

// MustGetCaller 从 Gin 上下文中取出认证中间件注入的调用者身份。
// 未注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	v, exists := c.Get(middleware.CallerKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return service.Caller{}, false
	}
	caller, ok := v.(service.Caller)
	if !ok || caller.UserID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Caller{}, false
	}
	return caller, true
}

// PathUUID 读取 UUID 格式的路径参数。
// 格式非法时返回 false，调用方按"资源不存在"处理，避免非法值落到 uuid 列上触发 22P02。
func PathUUID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		return id, false
	}
	return id, true
}
