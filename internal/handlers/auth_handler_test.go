package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianRp2177/api-task-manager/internal/models"
	"github.com/JulianRp2177/api-task-manager/testutil"
)

func TestRegisterHandler(t *testing.T) {
	r, store := testutil.SetupTestRouter(t)

	resp := testutil.DoJSON(t, r, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "new_user@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var body map[string]any
	testutil.DecodeJSON(t, resp, &body)
	assert.Equal(t, "new_user@example.com", body["email"])
	assert.Equal(t, true, body["is_active"])
	assert.NotContains(t, body, "hashed_password")
	assert.NotContains(t, body, "password")

	stored, err := store.Users().FindByEmail(context.Background(), "new_user@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.HashedPassword)
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	testutil.CreateTestUser(t, r, "dup@example.com", "password123")

	resp := testutil.DoJSON(t, r, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "dup@example.com",
		"password": "another",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]string
	testutil.DecodeJSON(t, resp, &body)
	assert.Equal(t, "Email already registered", body["detail"])
}

func TestRegisterHandler_InvalidPayload(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"invalid email", map[string]string{"email": "not-an-email", "password": "pw"}},
		{"missing password", map[string]string{"email": "a@example.com"}},
		{"password too long", map[string]string{"email": "a@example.com", "password": strings.Repeat("x", 73)}},
		{"multibyte password over 72 bytes", map[string]string{"email": "b@example.com", "password": strings.Repeat("é", 40)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, r, http.MethodPost, "/auth/register", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.JSONEq(t, `{"detail":"Invalid request payload"}`, resp.Body.String())
		})
	}
}

func TestLoginHandler(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	testutil.CreateTestUser(t, r, "login@example.com", "password123")

	resp := testutil.PostLoginForm(t, r, "login@example.com", "password123")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var token models.AccessToken
	testutil.DecodeJSON(t, resp, &token)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
}

func TestLoginHandler_JSONBody(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	testutil.CreateTestUser(t, r, "json@example.com", "password123")

	resp := testutil.DoJSON(t, r, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "json@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestLoginHandler_FailuresAreIndistinguishable(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	testutil.CreateTestUser(t, r, "known@example.com", "password123")

	wrongPassword := testutil.PostLoginForm(t, r, "known@example.com", "wrong")
	unknownEmail := testutil.PostLoginForm(t, r, "unknown@example.com", "password123")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.JSONEq(t, `{"detail":"Invalid credentials"}`, wrongPassword.Body.String())
}

func TestLoginHandler_MissingFields(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)

	resp := testutil.PostLoginForm(t, r, "", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMeHandler(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	token := testutil.RegisterAndLogin(t, r, "me@example.com", "password123")

	resp := testutil.DoJSON(t, r, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var me models.User
	testutil.DecodeJSON(t, resp, &me)
	assert.Equal(t, "me@example.com", me.Email)
	assert.True(t, me.IsActive)
}

func TestMeHandler_Unauthenticated(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)

	resp := testutil.DoJSON(t, r, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Bearer", resp.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"detail":"Could not validate credentials"}`, resp.Body.String())
}
