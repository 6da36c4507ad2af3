package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"hellodube-gateway/internal/model"
)

// TokenService signs and verifies the two credential types. Access and
// refresh tokens use distinct secrets so a leak of one cannot forge the
// other. Secrets are checked at use time, never at construction: a missing
// secret is a configuration failure surfaced on the first signing attempt.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret string, refreshSecret string, accessTTL time.Duration, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// Issue produces an access/refresh pair for the user. Pure: no storage side
// effects. The access token carries identity, email and role; the refresh
// token carries only the identity.
func (s *TokenService) Issue(user model.User) (model.TokenPair, error) {
	if len(s.accessSecret) == 0 || len(s.refreshSecret) == 0 {
		return model.TokenPair{}, model.ErrSecretMissing
	}

	now := time.Now().UTC()

	accessToken, err := sign(s.accessSecret, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"typ":   "access",
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	// The jti keeps consecutive refresh tokens distinct even when issued
	// within the same second; rotation relies on token strings being unique.
	refreshToken, err := sign(s.refreshSecret, jwt.MapClaims{
		"sub": user.ID,
		"typ": "refresh",
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.refreshTTL).Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *TokenService) VerifyAccess(tokenString string) (*model.AuthClaims, error) {
	return s.verify(tokenString, s.accessSecret, "access")
}

func (s *TokenService) VerifyRefresh(tokenString string) (*model.AuthClaims, error) {
	return s.verify(tokenString, s.refreshSecret, "refresh")
}

func (s *TokenService) verify(tokenString string, secret []byte, expectedType string) (*model.AuthClaims, error) {
	if len(secret) == 0 {
		return nil, model.ErrSecretMissing
	}

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.ErrTokenInvalid
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrTokenInvalid
	}

	typ, _ := claimsMap["typ"].(string)
	if typ != expectedType {
		return nil, model.ErrTokenInvalid
	}

	claims := &model.AuthClaims{Type: typ}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Email, _ = claimsMap["email"].(string)
	claims.Role, _ = claimsMap["role"].(string)

	if claims.UserID == "" {
		return nil, model.ErrTokenInvalid
	}

	return claims, nil
}

func sign(secret []byte, claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
