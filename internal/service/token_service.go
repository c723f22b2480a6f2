package service

import (
	"fmt"
	"time"

	"classquiz/internal/config"
	"classquiz/internal/domain"
	"classquiz/internal/dto"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and validates the JWTs carried on API requests.
type TokenService interface {
	GenerateToken(userID, role string) (string, error)
	ValidateToken(tokenString string) (*dto.AuthClaims, error)
}

type tokenService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenService creates a new TokenService from the JWT configuration.
func NewTokenService(cfg config.JWTConfig) TokenService {
	return &tokenService{
		secretKey: []byte(cfg.SecretKey),
		ttl:       cfg.AccessTokenTTL,
		now:       time.Now,
	}
}

// GenerateToken issues an HS256 access token carrying the user's ID and role.
func (s *tokenService) GenerateToken(userID, role string) (string, error) {
	now := s.now()
	claims := dto.AuthClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", domain.NewInternalError("failed to sign access token", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning its claims.
func (s *tokenService) ValidateToken(tokenString string) (*dto.AuthClaims, error) {
	claims := &dto.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.NewUnauthorizedError("invalid or expired token")
	}
	return claims, nil
}
