package issuers

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AdminRole grants access to the admin routes.
const AdminRole = "admin"

var ErrUnknownIssuer = errors.New("no verifier for token issuer")

// Principal is the verified identity behind an admin session.
type Principal struct {
	Subject string   `json:"sub"`
	Issuer  string   `json:"iss"`
	Roles   []string `json:"roles"`
}

// Verifier checks a bearer token and returns the principal it was issued to.
type Verifier interface {
	Name() string
	Verify(ctx context.Context, token string) (*Principal, error)
}

// ExtractIssuerURL extracts the 'iss' claim from a JWT token string without verifying it.
func ExtractIssuerURL(tokenString string) (string, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	issRaw, ok := claims["iss"]
	if !ok {
		return "", nil
	}

	iss, ok := issRaw.(string)
	if !ok {
		return "", fmt.Errorf("invalid 'iss' claim type")
	}

	return iss, nil
}
