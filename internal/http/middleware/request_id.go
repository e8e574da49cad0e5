package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextRequestIDKey — ключ, под которым request id лежит в контексте gin.
const ContextRequestIDKey = "request_id"

// RequestID присваивает каждому запросу идентификатор.
// Если клиент прислал X-Request-ID, используем его, иначе генерируем свой.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(ContextRequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}
