package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/game-library/internal/logger"
)

// RequestLogger 请求日志中间件（结构化输出）
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.LogRequest(
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
		)
	}
}
