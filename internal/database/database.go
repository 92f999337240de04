// Package database はSQL接続の初期化とスキーマのマイグレーションを行います。
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/JulianRp2177/api-task-manager/internal/config"
)

//go:embed migrations/mysql/*.sql migrations/sqlite3/*.sql
var migrations embed.FS

// Open は設定されたドライバーでデータベース接続を開き、マイグレーションを適用します。
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	dsn := cfg.DSN
	if cfg.DBDriver == config.DriverSQLite {
		dsn = SQLiteDSN(cfg.DSN)
	}

	db, err := sql.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	switch cfg.DBDriver {
	case config.DriverSQLite:
		// SQLite は書き込みが1接続のみ
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db, cfg.DBDriver); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("Successfully connected to %s database!", cfg.DBDriver)
	return db, nil
}

// SQLiteDSN はファイルパスに外部キー制約などのオプションを付けます。
func SQLiteDSN(dbPath string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", dbPath)
}

// Migrate は埋め込まれたSQLマイグレーションをドライバーの方言で適用します。
func Migrate(db *sql.DB, driver string) error {
	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(db, path.Join("migrations", driver)); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
