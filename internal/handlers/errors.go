package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JulianRp2177/api-task-manager/internal/services"
)

// abortWithError はサービスのエラーをステータスコードと {"detail": ...} に変換します。
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		AbortUnauthenticated(c)
	case errors.Is(err, services.ErrInvalidCredentials):
		abortWithDetail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrPasswordTooLong):
		abortWithDetail(c, http.StatusBadRequest, "Invalid request payload")
	case errors.Is(err, services.ErrDuplicateEmail):
		abortWithDetail(c, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, services.ErrListNotFound):
		abortWithDetail(c, http.StatusNotFound, "Task list not found")
	case errors.Is(err, services.ErrTaskNotFound):
		abortWithDetail(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, services.ErrUserNotFound):
		abortWithDetail(c, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrAssignmentFailed):
		abortWithDetail(c, http.StatusInternalServerError, "Failed to assign user to task")
	default:
		log.Printf("Unexpected error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		abortWithDetail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// AbortUnauthenticated は認証失敗の401レスポンスを返します。
func AbortUnauthenticated(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	abortWithDetail(c, http.StatusUnauthorized, "Could not validate credentials")
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// parseID はパスパラメータを整数IDとして取り出します。失敗時は400を返します。
func parseID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid ID format")
		return 0, false
	}
	return id, true
}
