package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hellodube-gateway/internal/model"
	"hellodube-gateway/pkg/apierror"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	TouchLastLogin(ctx context.Context, userID string) error
}

type sessionStore interface {
	Store(ctx context.Context, s model.Session) error
	Find(ctx context.Context, token string, userID string) (model.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByToken(ctx context.Context, token string) (int64, error)
	DeleteByTokenAndUser(ctx context.Context, token string, userID string) (int64, error)
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}

// RequestMeta records where a session was opened from.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type AuthService struct {
	tokens   *TokenService
	users    userStore
	sessions sessionStore
}

func NewAuthService(tokens *TokenService, users userStore, sessions sessionStore) *AuthService {
	return &AuthService{tokens: tokens, users: users, sessions: sessions}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, meta RequestMeta) (model.Profile, model.TokenPair, error) {
	if err := validateRegistration(req); err != nil {
		return model.Profile{}, model.TokenPair{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.Profile{}, model.TokenPair{}, err
	}
	if exists {
		return model.Profile{}, model.TokenPair{}, apierror.New(http.StatusConflict, "User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.Profile{}, model.TokenPair{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.Profile{}, model.TokenPair{}, err
	}

	tokens, err := s.openSession(ctx, user, meta)
	if err != nil {
		return model.Profile{}, model.TokenPair{}, err
	}
	s.stampLastLogin(ctx, user.ID)

	return user.Profile(), tokens, nil
}

// Login deliberately returns the same status and message whether the email
// is unknown or the password is wrong.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, meta RequestMeta) (model.Profile, model.TokenPair, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return model.Profile{}, model.TokenPair{}, apierror.New(http.StatusBadRequest, "Email and password are required")
	}

	user, err := s.users.FindByEmailWithPassword(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.Profile{}, model.TokenPair{}, apierror.New(http.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return model.Profile{}, model.TokenPair{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return model.Profile{}, model.TokenPair{}, apierror.New(http.StatusUnauthorized, "Invalid credentials")
	}

	tokens, err := s.openSession(ctx, user, meta)
	if err != nil {
		return model.Profile{}, model.TokenPair{}, err
	}
	s.stampLastLogin(ctx, user.ID)

	return user.Profile(), tokens, nil
}

// Refresh rotates a refresh token: the presented token is spent and a new
// pair is issued. The delete is keyed on token+user and checked for rows
// affected, so concurrent double-submission of one token yields exactly one
// winner.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta RequestMeta) (model.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, model.ErrSecretMissing) {
			return model.TokenPair{}, err
		}
		return model.TokenPair{}, apierror.New(http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	session, err := s.sessions.Find(ctx, refreshToken, claims.UserID)
	if errors.Is(err, model.ErrSessionNotFound) {
		return model.TokenPair{}, apierror.New(http.StatusForbidden, "Refresh token not found or revoked")
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		// Owning user is gone; the row is an orphan.
		if delErr := s.sessions.DeleteByID(ctx, session.ID); delErr != nil {
			slog.Warn("failed to delete orphaned session", "session_id", session.ID, "error", delErr)
		}
		return model.TokenPair{}, apierror.New(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	deleted, err := s.sessions.DeleteByTokenAndUser(ctx, refreshToken, claims.UserID)
	if err != nil {
		return model.TokenPair{}, err
	}
	if deleted == 0 {
		return model.TokenPair{}, apierror.New(http.StatusForbidden, "Refresh token not found or revoked")
	}

	return s.openSession(ctx, user, meta)
}

// Logout revokes one session. Unknown tokens still succeed so callers cannot
// probe which tokens exist.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	deleted, err := s.sessions.DeleteByToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if deleted == 0 {
		slog.Debug("logout with unknown refresh token")
	}
	return nil
}

func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	return s.sessions.DeleteAllForUser(ctx, userID)
}

func (s *AuthService) openSession(ctx context.Context, user model.User, meta RequestMeta) (model.TokenPair, error) {
	tokens, err := s.tokens.Issue(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	now := time.Now().UTC()
	session := model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     tokens.RefreshToken,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		ExpiresAt: now.Add(s.tokens.RefreshTTL()),
		CreatedAt: now,
	}
	if err := s.sessions.Store(ctx, session); err != nil {
		return model.TokenPair{}, err
	}

	return tokens, nil
}

// stampLastLogin is best effort; a failed timestamp never fails the login.
func (s *AuthService) stampLastLogin(ctx context.Context, userID string) {
	if err := s.users.TouchLastLogin(ctx, userID); err != nil {
		slog.Warn("failed to stamp last login", "user_id", userID, "error", err)
	}
}

func validateRegistration(req model.RegisterRequest) error {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return apierror.New(http.StatusBadRequest, "First name and last name are required")
	}

	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		return apierror.New(http.StatusBadRequest, "A valid email is required")
	}

	if len(req.Password) < 6 {
		return apierror.New(http.StatusBadRequest, "Password must be at least 6 characters")
	}

	if !model.ValidRole(req.Role) {
		return apierror.New(http.StatusBadRequest, "Role must be one of: "+strings.Join(model.Roles, ", "))
	}

	return nil
}
