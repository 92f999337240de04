package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianRp2177/api-task-manager/internal/config"
	"github.com/JulianRp2177/api-task-manager/testutil"
)

func TestBuildDependencies_Memory(t *testing.T) {
	cfg := testutil.TestConfig()

	deps, cleanup, err := buildDependencies(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, deps.Users)
	assert.NotNil(t, deps.Tasks)
	assert.NotNil(t, deps.Notifier)
	assert.Nil(t, deps.DB)
}

func TestBuildDependencies_SQLite(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.DBDriver = config.DriverSQLite
	cfg.DSN = filepath.Join(t.TempDir(), "main.db")

	deps, cleanup, err := buildDependencies(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, deps.DB)
	require.NoError(t, deps.DB.Ping())
}

// TestFullFlow_MySQL は TEST_DB_* が設定されている場合のみ実際のMySQLに対して実行します。
func TestFullFlow_MySQL(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("Warning: Could not load .env file for tests: %v", err)
	}

	dbUser := os.Getenv("TEST_DB_USER")
	dbPass := os.Getenv("TEST_DB_PASS")
	dbHost := os.Getenv("TEST_DB_HOST")
	dbPort := os.Getenv("TEST_DB_PORT")
	dbName := os.Getenv("TEST_DB_NAME")
	if dbUser == "" || dbHost == "" || dbName == "" {
		t.Skip("TEST_DB_* is not set; skipping MySQL integration test")
	}

	cfg := testutil.TestConfig()
	cfg.DBDriver = config.DriverMySQL
	cfg.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&clientFoundRows=true", dbUser, dbPass, dbHost, dbPort, dbName)

	deps, cleanup, err := buildDependencies(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	// テストのたびにクリーンな状態にする
	for _, stmt := range []string{"SET FOREIGN_KEY_CHECKS=0", "TRUNCATE TABLE tasks", "TRUNCATE TABLE task_lists", "TRUNCATE TABLE users", "SET FOREIGN_KEY_CHECKS=1"} {
		_, err := deps.DB.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	r := testutil.NewTestRouter(t, cfg, deps)
	token := testutil.RegisterAndLogin(t, r, "mysql@example.com", "password123")
	list := testutil.CreateTestList(t, r, token, "MySQL")
	task := testutil.CreateTestTask(t, r, token, list.ID, map[string]any{"title": "persist", "priority": 2})

	// 値が変わらないPATCHでも404にならないこと
	for i := 0; i < 2; i++ {
		resp := testutil.DoJSON(t, r, http.MethodPatch, fmt.Sprintf("/task/tasks/%d", task.ID), token, map[string]any{"completed": true})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := testutil.DoJSON(t, r, http.MethodPost, fmt.Sprintf("/assigned_task/%d", task.ID), token,
		map[string]string{"user_email": "mysql@example.com"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = testutil.DoJSON(t, r, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}
