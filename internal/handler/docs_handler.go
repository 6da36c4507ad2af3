package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"hellodube-gateway/internal/docs"
	"hellodube-gateway/internal/middleware"
	"hellodube-gateway/internal/model"
)

// docVariant describes one published documentation view: which operations it
// contains and which roles may open it.
type docVariant struct {
	title        string
	includeRoles []string
	methods      []string
	viewerRoles  []string
}

var docVariants = map[string]docVariant{
	"dube/admin": {
		title:        "Dube International API - Admin",
		includeRoles: []string{model.RoleDubeAdmin, model.RoleDubeViewer},
		viewerRoles:  []string{model.RoleDubeAdmin},
	},
	"dube/viewer": {
		title:        "Dube International API - Read Only",
		includeRoles: []string{model.RoleDubeViewer},
		methods:      []string{http.MethodGet},
		viewerRoles:  []string{model.RoleDubeViewer},
	},
	"wfp/admin": {
		title:        "WFP Program API - Admin",
		includeRoles: []string{model.RoleWFPAdmin, model.RoleWFPViewer},
		viewerRoles:  []string{model.RoleWFPAdmin},
	},
	"wfp/viewer": {
		title:        "WFP Program API - Read Only",
		includeRoles: []string{model.RoleWFPViewer},
		methods:      []string{http.MethodGet},
		viewerRoles:  []string{model.RoleWFPViewer},
	},
}

// DocsHandler gates the documentation routes itself: the token may arrive in
// a query parameter (documentation-viewer links embed it), which the global
// middleware chain does not own.
type DocsHandler struct {
	library  *docs.Library
	verifier accessVerifier
}

func NewDocsHandler(library *docs.Library, verifier accessVerifier) *DocsHandler {
	return &DocsHandler{library: library, verifier: verifier}
}

func (h *DocsHandler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	key, _, token, ok := h.authorize(w, r)
	if !ok {
		return
	}

	variant := docVariants[key]
	specURL := fmt.Sprintf("/api-docs/%s/openapi.yaml?token=%s", key, url.QueryEscape(token))

	// JSON-encode untrusted values before embedding them in the page script.
	tokenJS, _ := json.Marshal("Bearer " + token)
	specURLJS, _ := json.Marshal(specURL)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>%s</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
    <style>body{margin:0;background:#fafafa;}#swagger-ui{max-width:1200px;margin:0 auto;}</style>
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      var bearer = %s;
      window.ui = SwaggerUIBundle({
        url: %s,
        dom_id: '#swagger-ui',
        deepLinking: true,
        displayRequestDuration: true,
        persistAuthorization: true,
        requestInterceptor: function (req) {
          req.headers['Authorization'] = bearer;
          return req;
        }
      });
    </script>
  </body>
</html>`, variant.title, tokenJS, specURLJS)
}

func (h *DocsHandler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	key, _, _, ok := h.authorize(w, r)
	if !ok {
		return
	}

	variant := docVariants[key]
	filtered, err := h.library.Filtered(key, variant.includeRoles, variant.methods)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(filtered)
}

func (h *DocsHandler) authorize(w http.ResponseWriter, r *http.Request) (key string, claims *model.AuthClaims, token string, ok bool) {
	key = chi.URLParam(r, "domain") + "/" + chi.URLParam(r, "level")
	variant, exists := docVariants[key]
	if !exists {
		writeErrorMessage(w, http.StatusNotFound, "Unknown documentation set")
		return "", nil, "", false
	}

	token = middleware.ExtractToken(r)
	if token == "" {
		writeErrorMessage(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return "", nil, "", false
	}

	claims, err := h.verifier.VerifyAccess(token)
	if err != nil {
		if errors.Is(err, model.ErrSecretMissing) {
			writeError(w, err)
			return "", nil, "", false
		}
		writeErrorMessage(w, http.StatusUnauthorized, "Invalid or expired token.")
		return "", nil, "", false
	}

	for _, role := range variant.viewerRoles {
		if claims.Role == role {
			return key, claims, token, true
		}
	}

	writeErrorMessage(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
	return "", nil, "", false
}
