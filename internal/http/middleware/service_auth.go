package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/users-backend/internal/service"
)

// ContextServiceKey — имя сервиса-вызывающего в контексте gin.
const ContextServiceKey = "serviceName"

// ServiceAuthMiddleware проверяет сервисный JWT и требуемый scope.
// Закрывает маршруты, отдающие данные только доверенным сервисам.
func ServiceAuthMiddleware(tokens *service.ServiceTokenManager, requiredScope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется сервисный токен"})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		subject, scope, err := tokens.Parse(raw)
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		if requiredScope != "" && scope != requiredScope {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "недостаточно прав"})
			return
		}

		c.Set(ContextServiceKey, subject)
		c.Next()
	}
}
