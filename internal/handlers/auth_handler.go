package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JulianRp2177/api-task-manager/internal/models"
	"github.com/JulianRp2177/api-task-manager/internal/services"
)

// AuthHandler は登録・ログイン関連のハンドラーを管理します。
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler は新しいAuthHandlerを作成します。
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterHandler はユーザー登録を処理します。
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req models.UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// LoginHandler はフォーム (username, password) でログインし、アクセストークンを返します。
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req models.UserLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// MeHandler は認証済みのユーザー自身を返します。
func (h *AuthHandler) MeHandler(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		AbortUnauthenticated(c)
		return
	}
	c.JSON(http.StatusOK, user)
}
