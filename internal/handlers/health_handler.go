package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger はストレージへの疎通確認です。*sql.DB が満たします。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler は死活監視用のハンドラーです。
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler は新しいHealthHandlerを作成します。db が nil ならストレージ確認を省きます。
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz はプロセスが生きていれば常に200を返します。
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz はデータベース接続の健全性を確認します。
func (h *HealthHandler) Readyz(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			log.Printf("DB Ping failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "detail": "Database connection failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
