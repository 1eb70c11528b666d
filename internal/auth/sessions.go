package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/redmonkez12/task-manager-api/internal/apperror"
	"github.com/redmonkez12/task-manager-api/internal/httputil"
	"github.com/redmonkez12/task-manager-api/internal/user"
)

// ErrUnauthenticated is the single outcome of every failed token resolution
var ErrUnauthenticated = apperror.New(apperror.KindUnauthenticated, httputil.CodeUnauthenticated, "please authenticate")

// Sessions issues bearer tokens and resolves them back to users.
// A token is only valid while its hash is stored for the user.
type Sessions struct {
	tokens TokenService
	store  SessionStore
}

func NewSessions(tokens TokenService, store SessionStore) *Sessions {
	return &Sessions{tokens: tokens, store: store}
}

// WithStore returns sessions persisting through store, typically a
// repository bound to a transaction
func (s *Sessions) WithStore(store SessionStore) *Sessions {
	return &Sessions{tokens: s.tokens, store: store}
}

// Issue signs a token for the user and stores it as an active session.
// The token is returned only after the session is persisted.
func (s *Sessions) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.tokens.CreateToken(userID)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	if err := s.store.AddSession(ctx, userID, hashToken(token)); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Resolve returns the user bound to a live token. Authentication failures
// return ErrUnauthenticated; storage failures are returned wrapped.
func (s *Sessions) Resolve(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := s.store.HasSession(ctx, userID, hashToken(token))
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !ok {
		return nil, ErrUnauthenticated
	}

	return u, nil
}

// Revoke ends one session. Revoking an unknown token is a no-op.
func (s *Sessions) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.store.RemoveSession(ctx, userID, hashToken(token)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeAll ends every session of the user
func (s *Sessions) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.ClearSessions(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// hashToken returns the hex SHA-256 of a token; only hashes are stored
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
