package auth

import (
	"context"
	"time"
)

// Role distinguishes member tokens from staff tokens.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// TokenService defines operations for managing JWT authentication tokens.
// Subjects are identified by their unique user name.
type TokenService interface {
	// GenerateToken creates a signed access token for the named subject.
	GenerateToken(ctx context.Context, username string, role Role) (string, error)

	// ValidateToken validates an access token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType or
	// ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed refresh token for the named
	// subject. Refresh tokens have a longer lifetime and are only good for
	// obtaining new access tokens.
	GenerateRefreshToken(ctx context.Context, username string, role Role) (string, error)

	// ValidateRefreshToken validates a refresh token string and extracts
	// the claims.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims carried by the tokens.
type Claims struct {
	// Username is the unique name of the user the token was issued for.
	Username string `json:"sub,omitempty"`

	// Role indicates whether the subject is a member or an admin.
	Role Role `json:"role,omitempty"`

	// TokenType indicates the purpose of the token ("access" or "refresh").
	TokenType string `json:"type,omitempty"`

	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
