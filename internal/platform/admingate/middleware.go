package admingate

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CookieName is the name of the cookie holding the encrypted passkey.
const CookieName = "accessKey"

// Middleware returns echo middleware that admits a request when it carries
// either a valid accessKey cookie or a valid Bearer session token. Everything
// else gets a 401.
func Middleware(gate *Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
				if gate.VerifyEncrypted(cookie.Value) == nil {
					return next(c)
				}
			}

			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token := strings.TrimPrefix(auth, "Bearer ")
				if gate.CheckSession(token) == nil {
					return next(c)
				}
			}

			return echo.NewHTTPError(http.StatusUnauthorized, "admin access required")
		}
	}
}
