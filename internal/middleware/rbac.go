package middleware

import (
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"userhub/internal/auth"
	apperrors "userhub/internal/errors"
	"userhub/internal/model"
)

// CurrentClaims extracts the verified access-token claims placed on the
// context by the JWT middleware.
func CurrentClaims(c echo.Context) (*auth.AccessClaims, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(*auth.AccessClaims)
	return claims, ok
}

// RequireRole gates a route on the role carried by the access token. The
// check is purely against the token payload; the store is never consulted.
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := CurrentClaims(c)
			if !ok || claims.Role != role {
				return apperrors.ErrForbidden
			}
			return next(c)
		}
	}
}
