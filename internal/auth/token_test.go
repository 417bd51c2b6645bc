package auth

import (
	"testing"
	"time"

	"github.com/gatherly/gatherly/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gatherly",
			Subject:   "idp_user_1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name:  "Alex",
		Email: "alex@example.com",
	}
}

func TestValidate(t *testing.T) {
	validator := NewTokenValidator(config.Auth{JwtSecret: "test-secret", Issuer: "gatherly"})

	t.Run("valid token returns its claims", func(t *testing.T) {
		token := signToken(t, "test-secret", validClaims())

		claims, err := validator.Validate(token)

		require.NoError(t, err)
		assert.Equal(t, "idp_user_1", claims.Subject)
		assert.Equal(t, "Alex", claims.Name)
		assert.Equal(t, "alex@example.com", claims.Email)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		token := signToken(t, "other-secret", validClaims())

		_, err := validator.Validate(token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer is rejected", func(t *testing.T) {
		claims := validClaims()
		claims.Issuer = "someone-else"
		token := signToken(t, "test-secret", claims)

		_, err := validator.Validate(token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		claims := validClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		token := signToken(t, "test-secret", claims)

		_, err := validator.Validate(token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject is rejected", func(t *testing.T) {
		claims := validClaims()
		claims.Subject = ""
		token := signToken(t, "test-secret", claims)

		_, err := validator.Validate(token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := validator.Validate("not-a-token")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
