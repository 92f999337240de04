// Package testutil はHTTPレベルのテストで使う共通のセットアップを提供します。
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/JulianRp2177/api-task-manager/internal/config"
	"github.com/JulianRp2177/api-task-manager/internal/models"
	"github.com/JulianRp2177/api-task-manager/internal/notify"
	"github.com/JulianRp2177/api-task-manager/internal/repositories"
	"github.com/JulianRp2177/api-task-manager/internal/routes"
)

// TestSecret はテスト用の署名鍵です。
const TestSecret = "test-secret-key"

// TestConfig はメモリドライバーと最小コストのbcryptを使う設定を返します。
func TestConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		DBDriver:       config.DriverMemory,
		SecretKey:      TestSecret,
		Algorithm:      "HS256",
		AccessTokenTTL: 30 * time.Minute,
		BcryptCost:     bcrypt.MinCost,
		AllowOrigins:   []string{"http://localhost:3000"},
	}
}

// SetupTestRouter はメモリストアを背にしたテスト用のGinルーターをセットアップします。
func SetupTestRouter(t *testing.T) (*gin.Engine, *repositories.MemoryStore) {
	t.Helper()
	store := repositories.NewMemoryStore()
	r := NewTestRouter(t, TestConfig(), routes.Dependencies{
		Users:    store.Users(),
		Tasks:    store.Tasks(),
		Notifier: notify.NewLogNotifier(log.New(io.Discard, "", 0)),
	})
	return r, store
}

// NewTestRouter は任意の依存関係でルーターを組み立てます。
func NewTestRouter(t *testing.T, cfg *config.Config, deps routes.Dependencies) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r, err := routes.SetupRouter(cfg, deps)
	require.NoError(t, err)
	return r
}

// DoJSON はJSONボディ付きのリクエストを送り、レスポンスを返します。token が空なら認証ヘッダーを付けません。
func DoJSON(t *testing.T, router *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// DecodeJSON はレスポンスボディを v にデコードします。
func DecodeJSON(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), v), "body: %s", resp.Body.String())
}

// PostLoginForm はフォーム形式でログインを送信します。
func PostLoginForm(t *testing.T, router *gin.Engine, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// CreateTestUser はAPI経由でユーザーを登録します。
func CreateTestUser(t *testing.T, router *gin.Engine, email, password string) *models.User {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "ユーザー登録に失敗しました: %s", resp.Body.String())

	var created models.User
	DecodeJSON(t, resp, &created)
	require.NotZero(t, created.ID)
	return &created
}

// LoginAndGetToken はログインしてアクセストークンを返します。
func LoginAndGetToken(t *testing.T, router *gin.Engine, email, password string) (string, error) {
	t.Helper()
	resp := PostLoginForm(t, router, email, password)
	if resp.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d: %s", resp.Code, resp.Body.String())
	}

	var token models.AccessToken
	if err := json.Unmarshal(resp.Body.Bytes(), &token); err != nil {
		return "", fmt.Errorf("failed to unmarshal login response: %w", err)
	}
	return token.AccessToken, nil
}

// RegisterAndLogin はユーザーを登録してトークンを取得します。
func RegisterAndLogin(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()
	CreateTestUser(t, router, email, password)
	token, err := LoginAndGetToken(t, router, email, password)
	require.NoError(t, err)
	return token
}

// CreateTestList はAPI経由でタスクリストを作成します。
func CreateTestList(t *testing.T, router *gin.Engine, token, name string) *models.TaskList {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, "/task/lists", token, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, "リスト作成に失敗しました: %s", resp.Body.String())

	var list models.TaskList
	DecodeJSON(t, resp, &list)
	return &list
}

// CreateTestTask はAPI経由でリストにタスクを作成します。
func CreateTestTask(t *testing.T, router *gin.Engine, token string, listID int, payload map[string]any) *models.Task {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, fmt.Sprintf("/task/lists/%d/tasks", listID), token, payload)
	require.Equal(t, http.StatusCreated, resp.Code, "タスク作成に失敗しました: %s", resp.Body.String())

	var task models.Task
	DecodeJSON(t, resp, &task)
	return &task
}
