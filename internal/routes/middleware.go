package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JulianRp2177/api-task-manager/internal/handlers"
	"github.com/JulianRp2177/api-task-manager/internal/services"
)

// RequestIDHeader はリクエストIDを運ぶヘッダー名です。
const RequestIDHeader = "X-Request-ID"

// AuthMiddleware はベアラートークンからユーザーを解決し、コンテキストに設定するミドルウェアです。
func AuthMiddleware(resolver *services.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			handlers.AbortUnauthenticated(c)
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				handlers.AbortUnauthenticated(c)
				return
			}
			log.Printf("Failed to resolve current user: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}

		c.Set(handlers.CurrentUserKey, user)
		c.Next()
	}
}

// RequestID は受け取った X-Request-ID を引き継ぎ、無ければ新しく採番します。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
