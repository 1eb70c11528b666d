package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// PasetoService handles PASETO token creation and validation
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305)
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
	ttl          time.Duration
}

// NewPasetoService creates a token service. A zero ttl issues tokens
// without an exp claim; they stay valid until their session is revoked.
func NewPasetoService(symmetricKey []byte, ttl time.Duration) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
		ttl:          ttl,
	}, nil
}

// CreateToken generates a new PASETO v4.local token bound to userID
func (s *PasetoService) CreateToken(userID uuid.UUID) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetJti(uuid.NewString())
	token.SetIssuedAt(now)
	if s.ttl > 0 {
		token.SetExpiration(now.Add(s.ttl))
	}
	token.SetString("user_id", userID.String())

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken validates a PASETO v4.local token and returns the claims
func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	// exp is optional here, so it is checked below instead of by the parser
	parser := paseto.NewParserWithoutExpiryCheck()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := token.GetString("user_id")
	if err != nil {
		return nil, ErrInvalidToken
	}

	tokenID, err := token.GetJti()
	if err != nil {
		return nil, ErrInvalidToken
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims := &TokenClaims{
		TokenID:  tokenID,
		UserID:   userID,
		IssuedAt: issuedAt,
	}

	if expiresAt, err := token.GetExpiration(); err == nil {
		if time.Now().After(expiresAt) {
			return nil, ErrExpiredToken
		}
		claims.ExpiresAt = expiresAt
	}

	return claims, nil
}
