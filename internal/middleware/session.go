package middleware

import (
	"net/http"

	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/anonto42/beawarely-feed/internal/session"
	"github.com/labstack/echo/v4"
)

// IdentityKey is the echo context key holding the viewer's *models.Identity
const IdentityKey = "identity"

// SessionMiddleware resolves the viewer for every request. Requests without a
// token continue as anonymous; a token that fails verification stops the
// request with 401 instead of falling back to anonymous.
func SessionMiddleware(gate *session.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := session.TokenFromRequest(c.Request())

			identity, err := gate.Resolve(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Session check failed. Please log in again.").SetInternal(err)
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// RequireIdentity rejects anonymous viewers
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFrom(c) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Log in first.")
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by SessionMiddleware, nil when anonymous
func IdentityFrom(c echo.Context) *models.Identity {
	identity, _ := c.Get(IdentityKey).(*models.Identity)
	return identity
}

// SessionResolved reports whether SessionMiddleware completed for c, whether or
// not a viewer was found.
func SessionResolved(c echo.Context) bool {
	_, ok := c.Get(IdentityKey).(*models.Identity)
	return ok
}
