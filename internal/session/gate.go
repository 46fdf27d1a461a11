// Package session resolves the viewer's identity from an access token issued by
// the external auth service.
package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/anonto42/beawarely-feed/internal/feed"
	"github.com/anonto42/beawarely-feed/internal/models"
	"go.uber.org/zap"
)

// Token locations checked by TokenFromRequest, in order after the Authorization header
const (
	CookieName = "sb-access-token"
	QueryParam = "access_token"
)

// Verifier checks an access token and returns the identity it was issued to
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

// Gate decides who the current viewer is
type Gate struct {
	verifier Verifier
	logger   *zap.Logger
}

// NewGate creates a Gate
func NewGate(verifier Verifier, logger *zap.Logger) *Gate {
	return &Gate{verifier: verifier, logger: logger}
}

// Resolve returns nil for an empty token (anonymous viewer). A token that cannot
// be verified is an AuthError; it is never downgraded to anonymous.
func (g *Gate) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, nil
	}
	identity, err := g.verifier.Verify(ctx, token)
	if err != nil {
		g.logger.Warn("session check failed", zap.Error(err))
		return nil, feed.NewError(feed.AuthError, "session", err)
	}
	return identity, nil
}

// TokenFromRequest extracts the access token from the Authorization header,
// the session cookie or the access_token query parameter.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.URL.Query().Get(QueryParam)
}
