package issuers

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims are the claims of an operator session token.
type AdminClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// StaticIssuer verifies HMAC-signed session tokens created by 'pbichat token admin'.
type StaticIssuer struct {
	issuer string
	key    []byte
	parser *jwt.Parser
}

// NewStatic creates a verifier for the given signing key. If issuer is set,
// the iss claim must match it.
func NewStatic(signingKey []byte, issuer string) (*StaticIssuer, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("static issuer requires a signing key")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &StaticIssuer{
		issuer: issuer,
		key:    signingKey,
		parser: jwt.NewParser(opts...),
	}, nil
}

func (s *StaticIssuer) Name() string {
	return "static"
}

func (s *StaticIssuer) Verify(_ context.Context, token string) (*Principal, error) {
	var claims AdminClaims
	parsed, err := s.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("session token verification failed: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("session token is not valid")
	}
	return &Principal{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
		Roles:   claims.Roles,
	}, nil
}

// Sign creates a session token for subject with the given roles.
func Sign(signingKey []byte, claims AdminClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}
