package session

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/beawarely-feed/internal/models"
)

// IDTokenVerifier is the part of *auth.Client the FirebaseVerifier needs
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier validates Firebase ID tokens
type FirebaseVerifier struct {
	client IDTokenVerifier
}

// NewFirebaseVerifier creates a FirebaseVerifier
func NewFirebaseVerifier(client IDTokenVerifier) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify checks the ID token with Firebase
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	t, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired ID token: %w", err)
	}
	identity := &models.Identity{ID: t.UID}
	if email, ok := t.Claims["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}
