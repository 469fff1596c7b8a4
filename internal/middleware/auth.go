package middleware

import (
	"net/http"

	"novella-shop/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	// AuthCookieName holds the signed session token issued at login.
	AuthCookieName = "novella_auth"

	// ContextKeyUserID carries the authenticated user's id.
	ContextKeyUserID = "user_id"
)

// AuthMiddleware requires a valid session token cookie and exposes the
// user id to handlers.
func AuthMiddleware(userService service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(AuthCookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}

			userID, err := userService.ParseSessionToken(cookie.Value)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
			}

			c.Set(ContextKeyUserID, userID)
			return next(c)
		}
	}
}

// OptionalAuthMiddleware exposes the user id when a valid token cookie
// is present but lets anonymous visitors through. Checkout uses it so
// guests can buy while signed-in users get orders tied to their account.
func OptionalAuthMiddleware(userService service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(AuthCookieName)
			if err == nil && cookie.Value != "" {
				if userID, err := userService.ParseSessionToken(cookie.Value); err == nil {
					c.Set(ContextKeyUserID, userID)
				}
			}
			return next(c)
		}
	}
}

func UserID(c echo.Context) uint {
	id, _ := c.Get(ContextKeyUserID).(uint)
	return id
}
