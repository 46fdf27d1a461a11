package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// SupabaseClaims are the claims carried by a Supabase Auth access token
type SupabaseClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SupabaseVerifier validates HS256 access tokens signed with the project's JWT secret
type SupabaseVerifier struct {
	secret []byte
}

// NewSupabaseVerifier creates a SupabaseVerifier
func NewSupabaseVerifier(secret string) *SupabaseVerifier {
	return &SupabaseVerifier{secret: []byte(secret)}
}

// Verify parses and validates token
func (v *SupabaseVerifier) Verify(_ context.Context, token string) (*models.Identity, error) {
	claims := &SupabaseClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid access token")
	}
	if claims.Subject == "" {
		return nil, errors.New("access token has no subject")
	}
	return &models.Identity{ID: claims.Subject, Email: claims.Email}, nil
}
