package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/weilandt/circ-api/internal/config"
)

// hmacTokenService is an implementation of TokenService using HMAC-SHA signing.
type hmacTokenService struct {
	signingKey           []byte
	tokenLifetime        time.Duration
	refreshTokenLifetime time.Duration
	timeFunc             func() time.Time // injectable for testing
	clockSkew            time.Duration    // leeway for clock drift during validation
}

// jwtCustomClaims defines the structure of JWT claims we use
type jwtCustomClaims struct {
	Role      Role   `json:"role"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a new token service using HMAC-SHA signing.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacTokenService{
		signingKey:           []byte(cfg.JWTSecret),
		tokenLifetime:        time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		refreshTokenLifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
		timeFunc:             time.Now,
		clockSkew:            2 * time.Minute,
	}, nil
}

// NewTestTokenService creates a token service with a fixed time function,
// for tests that need deterministic expiry behavior.
func NewTestTokenService(secret string, lifetime time.Duration, timeFunc func() time.Time) TokenService {
	return &hmacTokenService{
		signingKey:           []byte(secret),
		tokenLifetime:        lifetime,
		refreshTokenLifetime: lifetime * 24,
		timeFunc:             timeFunc,
	}
}

func (s *hmacTokenService) GenerateToken(ctx context.Context, username string, role Role) (string, error) {
	return s.generate(username, role, "access", s.tokenLifetime)
}

func (s *hmacTokenService) GenerateRefreshToken(ctx context.Context, username string, role Role) (string, error) {
	return s.generate(username, role, "refresh", s.refreshTokenLifetime)
}

func (s *hmacTokenService) generate(username string, role Role, tokenType string, lifetime time.Duration) (string, error) {
	now := s.timeFunc()

	claims := jwtCustomClaims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *hmacTokenService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(tokenString, "access")
}

func (s *hmacTokenService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(tokenString, "refresh")
}

func (s *hmacTokenService) validate(tokenString, wantType string) (*Claims, error) {
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}

	return &Claims{
		Username:  claims.Subject,
		Role:      claims.Role,
		TokenType: claims.TokenType,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
