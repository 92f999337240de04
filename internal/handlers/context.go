package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/JulianRp2177/api-task-manager/internal/models"
)

// CurrentUserKey は認証ミドルウェアが解決したユーザーを保存するキーです。
const CurrentUserKey = "current_user"

// CurrentUser はリクエストに紐づくユーザーを返します。
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}
