package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joemerrillis/sniffr/config"
	"github.com/joemerrillis/sniffr/pkg/response"
)

// ExposeErrors 非生产环境下允许 500 响应携带错误详情
func ExposeErrors(cfg *config.ServerConfig) gin.HandlerFunc {
	expose := !cfg.IsProduction()
	return func(c *gin.Context) {
		c.Set(response.ExposeErrorsKey, expose)
		c.Next()
	}
}

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
		Code:    50000,
		Message: "服务器内部错误",
	})
}
