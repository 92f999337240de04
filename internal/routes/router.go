// Package routesはroutingを行います。
package routes

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/JulianRp2177/api-task-manager/internal/config"
	"github.com/JulianRp2177/api-task-manager/internal/handlers"
	"github.com/JulianRp2177/api-task-manager/internal/notify"
	"github.com/JulianRp2177/api-task-manager/internal/repositories"
	"github.com/JulianRp2177/api-task-manager/internal/services"
)

// Dependencies はルーターが組み立てに使うストレージと外部接続です。
type Dependencies struct {
	Users    repositories.UserRepository
	Tasks    repositories.TaskRepository
	Notifier notify.Notifier
	// DB は /readyz で疎通確認する接続です。メモリドライバーでは nil です。
	DB       *sql.DB
}

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	tokenService, err := services.NewTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create token service: %w", err)
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.New(cfg)
	}

	// サービス
	hasher := services.NewBcryptHasher(cfg.BcryptCost)
	authService, err := services.NewAuthService(deps.Users, hasher, tokenService)
	if err != nil {
		return nil, fmt.Errorf("could not create auth service: %w", err)
	}
	resolver := services.NewIdentityResolver(tokenService, deps.Users)
	taskService := services.NewTaskService(deps.Tasks)
	assignmentService := services.NewAssignmentService(deps.Tasks, deps.Users, notifier)

	// ハンドラー
	var pinger handlers.Pinger
	if deps.DB != nil {
		pinger = deps.DB
	}
	healthHandler := handlers.NewHealthHandler(pinger)
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)

	r := gin.Default()
	r.Use(RequestID())

	// CORS対策
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	// ルーティング
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.RegisterHandler)
		auth.POST("/login", authHandler.LoginHandler)
		auth.GET("/me", AuthMiddleware(resolver), authHandler.MeHandler)
	}

	task := r.Group("/task")
	task.Use(AuthMiddleware(resolver))
	{
		task.POST("/lists", taskHandler.CreateListHandler)
		task.GET("/lists", taskHandler.GetListsHandler)
		task.GET("/lists/:id", taskHandler.GetListHandler)
		task.DELETE("/lists/:id", taskHandler.DeleteListHandler)
		task.POST("/lists/:id/tasks", taskHandler.CreateTaskHandler)
		task.GET("/lists/:id/tasks", taskHandler.ListTasksHandler)
		task.PATCH("/tasks/:id", taskHandler.UpdateTaskHandler)
		task.DELETE("/tasks/:id", taskHandler.DeleteTaskHandler)
	}

	assigned := r.Group("/assigned_task")
	assigned.Use(AuthMiddleware(resolver))
	{
		assigned.POST("/:id", assignmentHandler.AssignTaskHandler)
	}

	return r, nil
}
