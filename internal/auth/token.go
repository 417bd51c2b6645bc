package auth

import (
	"errors"
	"fmt"

	"github.com/gatherly/gatherly/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid bearer token")

// Claims are the identity-provider claims Gatherly relies on. The subject is
// the provider's stable user id and becomes the user's UID.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// TokenValidator verifies bearer tokens issued by the identity provider.
type TokenValidator struct {
	secret []byte
	issuer string
}

func NewTokenValidator(cfg config.Auth) *TokenValidator {
	return &TokenValidator{
		secret: []byte(cfg.JwtSecret),
		issuer: cfg.Issuer,
	}
}

// Validate parses and verifies the token and returns its claims.
func (v *TokenValidator) Validate(tokenString string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
