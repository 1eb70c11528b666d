package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/task-manager-api/internal/user"
)

// TokenClaims is what a verified bearer token carries
type TokenClaims struct {
	TokenID   string    `json:"jti"`
	UserID    string    `json:"user_id"` // UUID stored as string in token
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"` // zero when the token never expires
}

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID uuid.UUID) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// SessionStore persists the hashes of active tokens per user
type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	AddSession(ctx context.Context, userID uuid.UUID, tokenHash string) error
	HasSession(ctx context.Context, userID uuid.UUID, tokenHash string) (bool, error)
	RemoveSession(ctx context.Context, userID uuid.UUID, tokenHash string) error
	ClearSessions(ctx context.Context, userID uuid.UUID) error
}
