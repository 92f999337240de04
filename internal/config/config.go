// Package config は起動時に一度だけ読み込まれるアプリケーション設定を提供します。
package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// サポートするストレージドライバー
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
	DriverMemory = "memory"
)

// Config はプロセス全体で共有される読み取り専用の設定です。
type Config struct {
	Port string

	DBDriver string
	DSN      string

	SecretKey      string
	Algorithm      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	AllowOrigins []string

	SMTP SMTPConfig
}

// SMTPConfig は割り当て通知メールの送信設定です。Host が空なら送信しません。
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// Enabled はSMTP通知が設定されているかを返します。
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// Load は .env（存在する場合）と環境変数から Config を構築します。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env file: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv は getenv から Config を構築して検証します。
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:         valueOr(getenv("PORT"), "8080"),
		DBDriver:     valueOr(getenv("DB_DRIVER"), DriverMySQL),
		DSN:          getenv("DATABASE_URL"),
		SecretKey:    getenv("SECRET_KEY"),
		Algorithm:    valueOr(getenv("ALGORITHM"), "HS256"),
		BcryptCost:   bcrypt.DefaultCost,
		AllowOrigins: splitList(valueOr(getenv("ALLOW_ORIGINS"), "http://localhost:3000")),
		SMTP: SMTPConfig{
			Host:     getenv("SMTP_HOST"),
			Port:     valueOr(getenv("SMTP_PORT"), "587"),
			User:     getenv("SMTP_USER"),
			Password: getenv("SMTP_PASSWORD"),
			From:     getenv("SMTP_FROM"),
		},
	}

	if cfg.SecretKey == "" {
		return nil, errors.New("SECRET_KEY is required")
	}

	switch cfg.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("unsupported ALGORITHM %q", cfg.Algorithm)
	}

	minutes := 30
	if v := getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES %q", v)
		}
		minutes = n
	}
	cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute

	if v := getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < bcrypt.MinCost || n > bcrypt.MaxCost {
			return nil, fmt.Errorf("invalid BCRYPT_COST %q", v)
		}
		cfg.BcryptCost = n
	}

	switch cfg.DBDriver {
	case DriverMySQL:
		if cfg.DSN == "" {
			cfg.DSN = mysqlDSN(getenv)
		} else {
			dsn, err := NormalizeMySQLDSN(cfg.DSN)
			if err != nil {
				return nil, err
			}
			cfg.DSN = dsn
		}
	case DriverSQLite:
		if cfg.DSN == "" {
			cfg.DSN = valueOr(getenv("DB_PATH"), "task_manager.db")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.SMTP.Enabled() && cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}

	return cfg, nil
}

// mysqlDSN は DB_* 環境変数からMySQL接続文字列を構築します。
func mysqlDSN(getenv func(string) string) string {
	mc := mysql.NewConfig()
	mc.User = getenv("DB_USER")
	mc.Passwd = getenv("DB_PASS")
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(valueOr(getenv("DB_HOST"), "127.0.0.1"), valueOr(getenv("DB_PORT"), "3306"))
	mc.DBName = getenv("DB_NAME")
	return withRequiredParams(mc).FormatDSN()
}

// NormalizeMySQLDSN は任意のMySQL DSNに parseTime と clientFoundRows を強制します。
func NormalizeMySQLDSN(dsn string) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	return withRequiredParams(mc).FormatDSN(), nil
}

// withRequiredParams は created_at を time.Time で読み、値が変わらないUPDATEでも一致行数が返るようにします。
func withRequiredParams(mc *mysql.Config) *mysql.Config {
	mc.ParseTime = true
	mc.ClientFoundRows = true
	return mc
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
