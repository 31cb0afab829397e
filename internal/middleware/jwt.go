package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-reservation/internal/utils"
)

// JWTAuth validates a Bearer access token and stores the subject (as a
// uint64 user id) and role in the context.  Requests without a valid token
// get 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			if !authenticate(c, secret, strings.TrimPrefix(auth, "Bearer ")) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			return next(c)
		}
	}
}

// OptionalJWT behaves like JWTAuth but lets anonymous requests through.
// A present but invalid token is ignored.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(auth, "Bearer ") {
				authenticate(c, secret, strings.TrimPrefix(auth, "Bearer "))
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, secret, raw string) bool {
	claims, err := utils.ParseAccessToken(secret, raw)
	if err != nil {
		return false
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return false
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return false
	}
	role, _ := claims["role"].(string)
	c.Set(ctxUserID, id)
	c.Set(ctxRole, role)
	return true
}
