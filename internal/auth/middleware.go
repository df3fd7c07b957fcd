package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const claimsKey = "auth.claims"

// Middleware rejects requests without a valid bearer token and stores the
// token claims on the echo context.
func Middleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			claims, err := ValidateToken(secret, tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// RequireWriter rejects write methods for roles that may only read. It must
// run after Middleware.
func RequireWriter() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			claims := GetClaims(c)
			if claims == nil || !claims.Role.CanWrite() {
				return echo.NewHTTPError(http.StatusForbidden, "role may not modify records")
			}
			return next(c)
		}
	}
}

// GetClaims returns the claims stored by Middleware, or nil.
func GetClaims(c echo.Context) *Claims {
	claims, _ := c.Get(claimsKey).(*Claims)
	return claims
}
