package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hellodube-gateway/internal/docs"
	"hellodube-gateway/internal/model"
)

const docsTestMaster = `openapi: 3.0.3
info:
  title: Test
  version: 1.0.0
paths:
  /api/dube/international/getsupplierlist.php:
    get:
      summary: list suppliers
      x-roles: [dube-admin, dube-viewer]
  /api/dube/international/createinvoice.php:
    post:
      summary: create invoice
      x-roles: [dube-admin]
`

func newDocsHandler(t *testing.T, verifier accessVerifier) *DocsHandler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "master.yaml")
	require.NoError(t, os.WriteFile(path, []byte(docsTestMaster), 0o600))
	return NewDocsHandler(docs.NewLibrary(path), verifier)
}

func docsRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)

	// Populate chi URL params the way the router would.
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("domain", "dube")
	rctx.URLParams.Add("level", "viewer")
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDocs_NoToken(t *testing.T) {
	h := newDocsHandler(t, &stubTokenVerifier{})

	rec := httptest.NewRecorder()
	h.SwaggerUI(rec, docsRequest("/api-docs/dube/viewer"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDocs_WrongRole(t *testing.T) {
	h := newDocsHandler(t, &stubTokenVerifier{claims: &model.AuthClaims{UserID: "u1", Role: model.RoleWFPAdmin}})

	rec := httptest.NewRecorder()
	h.SwaggerUI(rec, docsRequest("/api-docs/dube/viewer?token=tok"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDocs_ViewerGetsReadOnlySpec(t *testing.T) {
	h := newDocsHandler(t, &stubTokenVerifier{claims: &model.AuthClaims{UserID: "u1", Role: model.RoleDubeViewer}})

	rec := httptest.NewRecorder()
	h.OpenAPI(rec, docsRequest("/api-docs/dube/viewer/openapi.yaml?token=tok"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "getsupplierlist.php")
	assert.NotContains(t, body, "createinvoice.php")
}

func TestDocs_SwaggerUIPreAuthorizes(t *testing.T) {
	h := newDocsHandler(t, &stubTokenVerifier{claims: &model.AuthClaims{UserID: "u1", Role: model.RoleDubeViewer}})

	rec := httptest.NewRecorder()
	h.SwaggerUI(rec, docsRequest("/api-docs/dube/viewer?token=tok"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "swagger-ui-bundle.js")
	assert.Contains(t, body, `"Bearer tok"`)
	assert.Contains(t, body, "/api-docs/dube/viewer/openapi.yaml?token=tok")
}

func TestDocs_UnknownVariant(t *testing.T) {
	h := newDocsHandler(t, &stubTokenVerifier{claims: &model.AuthClaims{UserID: "u1", Role: model.RoleDubeAdmin}})

	req := httptest.NewRequest(http.MethodGet, "/api-docs/nope/admin?token=tok", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("domain", "nope")
	rctx.URLParams.Add("level", "admin")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h.SwaggerUI(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
