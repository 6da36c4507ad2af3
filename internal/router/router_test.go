package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hellodube-gateway/internal/config"
	"hellodube-gateway/internal/docs"
	"hellodube-gateway/internal/handler"
	"hellodube-gateway/internal/middleware"
	"hellodube-gateway/internal/model"
	"hellodube-gateway/internal/service"
)

type memUserStore struct {
	byID    map[string]model.User
	byEmail map[string]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byID: map[string]model.User{}, byEmail: map[string]model.User{}}
}

func (m *memUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserStore) FindByEmailWithPassword(_ context.Context, email string) (model.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memUserStore) Create(_ context.Context, u model.User) error {
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserStore) TouchLastLogin(_ context.Context, _ string) error { return nil }

type memSessionStore struct {
	byToken map[string]model.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{byToken: map[string]model.Session{}}
}

func (m *memSessionStore) Store(_ context.Context, s model.Session) error {
	m.byToken[s.Token] = s
	return nil
}

func (m *memSessionStore) Find(_ context.Context, token string, userID string) (model.Session, error) {
	s, ok := m.byToken[token]
	if !ok || s.UserID != userID {
		return model.Session{}, model.ErrSessionNotFound
	}
	return s, nil
}

func (m *memSessionStore) DeleteByID(_ context.Context, id string) error {
	for token, s := range m.byToken {
		if s.ID == id {
			delete(m.byToken, token)
		}
	}
	return nil
}

func (m *memSessionStore) DeleteByToken(_ context.Context, token string) (int64, error) {
	if _, ok := m.byToken[token]; !ok {
		return 0, nil
	}
	delete(m.byToken, token)
	return 1, nil
}

func (m *memSessionStore) DeleteByTokenAndUser(_ context.Context, token string, userID string) (int64, error) {
	s, ok := m.byToken[token]
	if !ok || s.UserID != userID {
		return 0, nil
	}
	delete(m.byToken, token)
	return 1, nil
}

func (m *memSessionStore) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	var deleted int64
	for token, s := range m.byToken {
		if s.UserID == userID {
			delete(m.byToken, token)
			deleted++
		}
	}
	return deleted, nil
}

type disconnectedDB struct{}

func (disconnectedDB) Connected() bool { return false }

const gatewayTestMaster = `openapi: 3.0.3
info:
  title: Test
  version: 1.0.0
paths:
  /api/dube/international/getprojectlist.php:
    get:
      x-roles: [dube-admin]
`

func newTestGateway(t *testing.T) *httptest.Server {
	t.Helper()

	masterPath := filepath.Join(t.TempDir(), "master.yaml")
	require.NoError(t, os.WriteFile(masterPath, []byte(gatewayTestMaster), 0o600))

	cfg := &config.Config{
		RequestTimeout:    5 * time.Second,
		RateLimitRPM:      10000,
		AuthRateLimitRPM:  10000,
		OpenAPIMasterFile: masterPath,
	}

	tokenService := service.NewTokenService("access-secret", "refresh-secret", time.Hour, 2*time.Hour)
	authService := service.NewAuthService(tokenService, newMemUserStore(), newMemSessionStore())
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	r := New(cfg, authMiddleware, Handlers{
		Auth:    handler.NewAuthHandler(authService, tokenService),
		Program: handler.NewProgramHandler(),
		Docs:    handler.NewDocsHandler(docs.NewLibrary(cfg.OpenAPIMasterFile), tokenService),
		Test:    handler.NewTestHandler(),
		Health:  handler.NewHealthHandler(disconnectedDB{}),
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func getWithToken(t *testing.T, url string, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func registerUser(t *testing.T, server *httptest.Server, email string, role string) model.AuthResponse {
	t.Helper()
	resp := postJSON(t, server.URL+"/api/auth/register", model.RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "secret1",
		Role:      role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var parsed model.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.NotEmpty(t, parsed.Tokens.AccessToken)
	require.NotEmpty(t, parsed.Tokens.RefreshToken)
	return parsed
}

func TestGateway_RegisterAndRoleGatedAccess(t *testing.T) {
	server := newTestGateway(t)

	reg := registerUser(t, server, "a@x.com", model.RoleDubeAdmin)
	assert.Equal(t, model.RoleDubeAdmin, reg.User.Role)

	// dube-admin reaches its own domain.
	resp := getWithToken(t, server.URL+"/api/dube/international/getprojectlist.php", reg.Tokens.AccessToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// ...but not the other program's routes.
	resp = getWithToken(t, server.URL+"/api/wfp/getbeneficiarylist.php", reg.Tokens.AccessToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// No token at all is unauthorized.
	resp = getWithToken(t, server.URL+"/api/dube/international/getprojectlist.php", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The token query parameter is an accepted fallback.
	resp = getWithToken(t, server.URL+"/api/dube/international/getprojectlist.php?token="+reg.Tokens.AccessToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateway_ViewerCannotUseAdminRoutes(t *testing.T) {
	server := newTestGateway(t)

	reg := registerUser(t, server, "viewer@x.com", model.RoleDubeViewer)

	// Project list is admin-only; the supplier list allows viewers.
	resp := getWithToken(t, server.URL+"/api/dube/international/getprojectlist.php", reg.Tokens.AccessToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = getWithToken(t, server.URL+"/api/dube/international/getsupplierlist.php", reg.Tokens.AccessToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateway_RefreshRotationSingleUse(t *testing.T) {
	server := newTestGateway(t)

	reg := registerUser(t, server, "a@x.com", model.RoleDubeAdmin)

	first := postJSON(t, server.URL+"/api/auth/refresh", model.RefreshRequest{RefreshToken: reg.Tokens.RefreshToken})
	require.Equal(t, http.StatusOK, first.StatusCode)

	var rotated model.RefreshResponse
	require.NoError(t, json.NewDecoder(first.Body).Decode(&rotated))
	assert.NotEqual(t, reg.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	second := postJSON(t, server.URL+"/api/auth/refresh", model.RefreshRequest{RefreshToken: reg.Tokens.RefreshToken})
	assert.Equal(t, http.StatusForbidden, second.StatusCode)
}

func TestGateway_ForgedTokenRejected(t *testing.T) {
	server := newTestGateway(t)
	registerUser(t, server, "a@x.com", model.RoleDubeAdmin)

	forger := service.NewTokenService("some-other-secret", "refresh-secret", time.Hour, 2*time.Hour)
	pair, err := forger.Issue(model.User{ID: "u1", Email: "a@x.com", Role: model.RoleDubeAdmin})
	require.NoError(t, err)

	resp := getWithToken(t, server.URL+"/api/dube/international/getprojectlist.php", pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateway_LogoutAllTerminatesEverySession(t *testing.T) {
	server := newTestGateway(t)

	reg := registerUser(t, server, "a@x.com", model.RoleDubeAdmin)

	for i := 0; i < 2; i++ {
		resp := postJSON(t, server.URL+"/api/auth/login", model.LoginRequest{Email: "a@x.com", Password: "secret1"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/auth/logoutAll", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+reg.Tokens.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.EqualValues(t, 3, parsed.Count)

	// Every refresh token is now revoked.
	refreshResp := postJSON(t, server.URL+"/api/auth/refresh", model.RefreshRequest{RefreshToken: reg.Tokens.RefreshToken})
	assert.Equal(t, http.StatusForbidden, refreshResp.StatusCode)
}

func TestGateway_PublicRoutes(t *testing.T) {
	server := newTestGateway(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	testResp, err := http.Get(server.URL + "/api/test/public")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testResp.Body.Close() })
	assert.Equal(t, http.StatusOK, testResp.StatusCode)
}

func TestGateway_LoginPageServedUnauthenticated(t *testing.T) {
	server := newTestGateway(t)

	resp, err := http.Get(server.URL + "/login.html")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "login-form")
}

func TestGateway_AuthProbeEchoesClaims(t *testing.T) {
	server := newTestGateway(t)

	reg := registerUser(t, server, "a@x.com", model.RoleWFPViewer)

	resp := getWithToken(t, server.URL+"/api/test/auth", reg.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Success bool             `json:"success"`
		User    model.AuthClaims `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.True(t, parsed.Success)
	assert.Equal(t, "a@x.com", parsed.User.Email)
	assert.Equal(t, model.RoleWFPViewer, parsed.User.Role)
}

func TestGateway_DocsGatedByRole(t *testing.T) {
	server := newTestGateway(t)

	admin := registerUser(t, server, "admin@dube.com", model.RoleDubeAdmin)
	outsider := registerUser(t, server, "wfp@x.com", model.RoleWFPAdmin)

	resp := getWithToken(t, server.URL+"/api-docs/dube/admin?token="+admin.Tokens.AccessToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getWithToken(t, server.URL+"/api-docs/dube/admin?token="+outsider.Tokens.AccessToken, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = getWithToken(t, server.URL+"/api-docs/dube/admin", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
