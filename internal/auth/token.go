package auth

import (
	"fmt"

	"github.com/redmonkez12/task-manager-api/internal/config"
)

// NewTokenService builds the token service selected by AUTH_TOKEN_STRATEGY
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	switch cfg.TokenStrategy {
	case config.TokenStrategyPaseto:
		return NewPasetoService([]byte(cfg.PasetoKey), cfg.TokenTTL)
	case config.TokenStrategyJWT:
		return NewJWTService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	default:
		return nil, fmt.Errorf("unknown token strategy %q", cfg.TokenStrategy)
	}
}
