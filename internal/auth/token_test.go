package auth

import (
	"strings"
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/task-manager-api/internal/config"
)

const testKey = "0123456789abcdef0123456789abcdef"

func tokenServices(t *testing.T, ttl time.Duration) map[string]TokenService {
	t.Helper()

	pasetoSvc, err := NewPasetoService([]byte(testKey), ttl)
	require.NoError(t, err)
	jwtSvc, err := NewJWTService([]byte(testKey), ttl)
	require.NoError(t, err)

	return map[string]TokenService{
		"paseto": pasetoSvc,
		"jwt":    jwtSvc,
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	for name, svc := range tokenServices(t, 0) {
		t.Run(name, func(t *testing.T) {
			userID := uuid.New()

			token, err := svc.CreateToken(userID)
			require.NoError(t, err)

			claims, err := svc.VerifyToken(token)
			require.NoError(t, err)
			assert.Equal(t, userID.String(), claims.UserID)
			assert.NotEmpty(t, claims.TokenID)
			assert.True(t, claims.ExpiresAt.IsZero(), "zero ttl issues non-expiring tokens")
		})
	}
}

func TestTokenService_TokensAreUnique(t *testing.T) {
	for name, svc := range tokenServices(t, 0) {
		t.Run(name, func(t *testing.T) {
			userID := uuid.New()

			first, err := svc.CreateToken(userID)
			require.NoError(t, err)
			second, err := svc.CreateToken(userID)
			require.NoError(t, err)

			assert.NotEqual(t, first, second)
		})
	}
}

func TestTokenService_RejectsTampered(t *testing.T) {
	for name, svc := range tokenServices(t, 0) {
		t.Run(name, func(t *testing.T) {
			token, err := svc.CreateToken(uuid.New())
			require.NoError(t, err)

			tampered := token[:len(token)-2] + flip(token[len(token)-2:])
			_, err = svc.VerifyToken(tampered)
			assert.ErrorIs(t, err, ErrInvalidToken)

			_, err = svc.VerifyToken("not-a-token")
			assert.ErrorIs(t, err, ErrInvalidToken)

			_, err = svc.VerifyToken("")
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_RejectsForeignKey(t *testing.T) {
	other := strings.Repeat("z", 32)

	pasetoA, err := NewPasetoService([]byte(testKey), 0)
	require.NoError(t, err)
	pasetoB, err := NewPasetoService([]byte(other), 0)
	require.NoError(t, err)

	token, err := pasetoA.CreateToken(uuid.New())
	require.NoError(t, err)
	_, err = pasetoB.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	jwtA, err := NewJWTService([]byte(testKey), 0)
	require.NoError(t, err)
	jwtB, err := NewJWTService([]byte(other), 0)
	require.NoError(t, err)

	token, err = jwtA.CreateToken(uuid.New())
	require.NoError(t, err)
	_, err = jwtB.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Expiry(t *testing.T) {
	for name, svc := range tokenServices(t, time.Hour) {
		t.Run(name+" valid", func(t *testing.T) {
			token, err := svc.CreateToken(uuid.New())
			require.NoError(t, err)

			claims, err := svc.VerifyToken(token)
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
		})
	}
}

func TestPasetoService_ExpiredToken(t *testing.T) {
	svc, err := NewPasetoService([]byte(testKey), time.Hour)
	require.NoError(t, err)

	token := paseto.NewToken()
	token.SetJti(uuid.NewString())
	token.SetIssuedAt(time.Now().Add(-2 * time.Hour))
	token.SetExpiration(time.Now().Add(-time.Hour))
	token.SetString("user_id", uuid.NewString())

	_, err = svc.VerifyToken(token.V4Encrypt(svc.symmetricKey, nil))
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc, err := NewJWTService([]byte(testKey), time.Hour)
	require.NoError(t, err)

	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testKey))
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	svc, err := NewJWTService([]byte(testKey), 0)
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwtClaims{UserID: uuid.NewString()}).SignedString([]byte(testKey))
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewPasetoService_KeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("short"), 0)
	assert.Error(t, err)
}

func TestNewTokenService(t *testing.T) {
	svc, err := NewTokenService(config.AuthConfig{TokenStrategy: config.TokenStrategyPaseto, PasetoKey: testKey})
	require.NoError(t, err)
	assert.IsType(t, &PasetoService{}, svc)

	svc, err = NewTokenService(config.AuthConfig{TokenStrategy: config.TokenStrategyJWT, JWTSecret: testKey})
	require.NoError(t, err)
	assert.IsType(t, &JWTService{}, svc)

	_, err = NewTokenService(config.AuthConfig{TokenStrategy: "magic"})
	assert.Error(t, err)
}

func flip(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
	}
	return string(b)
}
