// Package auth turns bearer tokens into the gateway user record.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/upb/gateway-policy-hooks/gateway"
)

// ErrInvalidToken is returned when the token cannot be parsed or verified
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the claims read from a bearer token
type Claims struct {
	jwt.RegisteredClaims
	Data map[string]any `json:"data,omitempty"`
}

// HMACValidator verifies HS256 bearer tokens signed with a shared secret
type HMACValidator struct {
	secret []byte
	parser *jwt.Parser
}

// NewHMACValidator creates a validator for the given secret.
// When issuer is non-empty the iss claim must match it.
func NewHMACValidator(secret, issuer string) (*HMACValidator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &HMACValidator{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// ValidateToken verifies the token and returns the user it describes.
// The sub claim may be empty; policy hooks decide what that means.
func (v *HMACValidator) ValidateToken(_ context.Context, token string) (*gateway.User, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &gateway.User{
		Sub:  claims.Subject,
		Data: claims.Data,
	}, nil
}

// Sign issues an HS256 token carrying claims
func (v *HMACValidator) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
