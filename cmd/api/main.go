package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/JulianRp2177/api-task-manager/internal/config"
	"github.com/JulianRp2177/api-task-manager/internal/database"
	"github.com/JulianRp2177/api-task-manager/internal/notify"
	"github.com/JulianRp2177/api-task-manager/internal/repositories"
	"github.com/JulianRp2177/api-task-manager/internal/routes"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// SIGINT/SIGTERMでキャンセルされるルートコンテキスト
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	deps, cleanup, err := buildDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	r, err := routes.SetupRouter(cfg, deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on port %s (driver=%s)...", cfg.Port, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Printf("shutdown signal received")

	// 新規リクエストを止め、処理中のものはタイムアウトまで待つ
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Printf("bye")
	return nil
}

// buildDependencies は設定されたドライバーに応じてストレージを組み立てます。
func buildDependencies(ctx context.Context, cfg *config.Config) (routes.Dependencies, func(), error) {
	notifier := notify.New(cfg)

	if cfg.DBDriver == config.DriverMemory {
		log.Println("Using in-memory storage; data is lost on exit")
		store := repositories.NewMemoryStore()
		return routes.Dependencies{
			Users:    store.Users(),
			Tasks:    store.Tasks(),
			Notifier: notifier,
		}, func() {}, nil
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return routes.Dependencies{}, nil, err
	}
	return routes.Dependencies{
		Users:    repositories.NewSQLUserRepo(db),
		Tasks:    repositories.NewSQLTaskRepo(db),
		Notifier: notifier,
		DB:       db,
	}, closeDB(db), nil
}

func closeDB(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}
}
