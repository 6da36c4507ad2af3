package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"hellodube-gateway/internal/middleware"
	"hellodube-gateway/internal/model"
	"hellodube-gateway/internal/service"
)

type accessVerifier interface {
	VerifyAccess(tokenString string) (*model.AuthClaims, error)
}

type authOrchestrator interface {
	Register(ctx context.Context, req model.RegisterRequest, meta service.RequestMeta) (model.Profile, model.TokenPair, error)
	Login(ctx context.Context, req model.LoginRequest, meta service.RequestMeta) (model.Profile, model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, meta service.RequestMeta) (model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) (int64, error)
}

type AuthHandler struct {
	auth     authOrchestrator
	verifier accessVerifier
}

func NewAuthHandler(auth authOrchestrator, verifier accessVerifier) *AuthHandler {
	return &AuthHandler{auth: auth, verifier: verifier}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	profile, tokens, err := h.auth.Register(r.Context(), payload, requestMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.AuthResponse{User: profile, Tokens: tokens})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	profile, tokens, err := h.auth.Login(r.Context(), payload, requestMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthResponse{User: profile, Tokens: tokens})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), payload.RefreshToken, requestMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.RefreshResponse{
		Message: "Tokens refreshed successfully",
		Tokens:  tokens,
	})
}

// Logout always reports success for a well-formed request, whether or not a
// session row was actually deleted.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	if err := h.auth.Logout(r.Context(), payload.RefreshToken); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged out successfully"})
}

// LogoutAll takes the target user from the body, or from a bearer token it
// verifies itself: the route sits under the public /api/auth prefix, so the
// auth middleware never runs for it.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LogoutAllRequest
	_ = json.NewDecoder(r.Body).Decode(&payload)

	userID := strings.TrimSpace(payload.UserID)
	if userID == "" {
		if token := middleware.ExtractToken(r); token != "" {
			if claims, err := h.verifier.VerifyAccess(token); err == nil {
				userID = claims.UserID
			}
		}
	}
	if userID == "" {
		writeErrorMessage(w, http.StatusBadRequest, "User ID is required")
		return
	}

	count, err := h.auth.LogoutAll(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
		Count   int64  `json:"count"`
	}{
		Message: fmt.Sprintf("Logged out from all devices (%d sessions terminated)", count),
		Count:   count,
	})
}

func requestMeta(r *http.Request) service.RequestMeta {
	return service.RequestMeta{
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}
