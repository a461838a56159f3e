package integration

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"clara-backend/internal/bootstrap"
	"clara-backend/internal/config"
	"clara-backend/internal/dto"
	"clara-backend/internal/server"
	"clara-backend/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("Warning: Could not load ../../.env: %v", err)
	}
	if os.Getenv("DB_CONNECTION_STRING") == "" {
		t.Skip("DB_CONNECTION_STRING not set; skipping integration test")
	}
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	return server.New(cfg, container).GetApp()
}

func postJSON(t *testing.T, app *fiber.App, path, token string, body interface{}) *envelope {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	out.Code = resp.StatusCode
	return &out
}

func TestAuthFlow(t *testing.T) {
	app := setupApp(t)

	email := fmt.Sprintf("flow-%d@example.com", time.Now().UnixNano())
	password := "integration-secret"

	// Signup
	res := postJSON(t, app, "/api/auth/signup", "", dto.SignupRequest{Email: email, Password: password})
	require.True(t, res.Success, "signup failed: %s", res.Message)

	var session dto.SessionResponse
	require.NoError(t, json.Unmarshal(res.Data, &session))
	require.NotEmpty(t, session.Token)
	require.NotEmpty(t, session.RefreshToken)

	// Duplicate signup is rejected
	dup := postJSON(t, app, "/api/auth/signup", "", dto.SignupRequest{Email: email, Password: password})
	assert.False(t, dup.Success)
	assert.Equal(t, fiber.StatusBadRequest, dup.Code)

	// Signin with the wrong password fails uniformly
	bad := postJSON(t, app, "/api/auth/signin", "", dto.SigninRequest{Email: email, Password: "wrong"})
	assert.False(t, bad.Success)
	assert.Equal(t, fiber.StatusUnauthorized, bad.Code)

	// Validate the access token
	req := httptest.NewRequest("GET", "/api/auth/validate", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Rotate the refresh token
	rotated := postJSON(t, app, "/api/auth/refresh", "", dto.RefreshRequest{RefreshToken: session.RefreshToken})
	require.True(t, rotated.Success, "refresh failed: %s", rotated.Message)

	var next dto.SessionResponse
	require.NoError(t, json.Unmarshal(rotated.Data, &next))
	assert.NotEqual(t, session.RefreshToken, next.RefreshToken)

	// Replay of the consumed refresh token fails
	replay := postJSON(t, app, "/api/auth/refresh", "", dto.RefreshRequest{RefreshToken: session.RefreshToken})
	assert.False(t, replay.Success)
	assert.Equal(t, fiber.StatusUnauthorized, replay.Code)

	// Logout, then the rotated access token is dead
	out := postJSON(t, app, "/api/auth/logout", next.Token, dto.LogoutRequest{Token: next.Token})
	assert.True(t, out.Success)

	req = httptest.NewRequest("GET", "/api/auth/validate", nil)
	req.Header.Set("Authorization", "Bearer "+next.Token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
