package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	sessionCookieName = "novella_session"

	// ContextKeySessionID carries the visitor's cart session id.
	ContextKeySessionID = "session_id"
)

// SessionMiddleware gives every visitor a stable session id cookie; the
// cart and promo state in the session store hang off this id.
func SessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				cookie = &http.Cookie{
					Name:     sessionCookieName,
					Value:    uuid.NewString(),
					Path:     "/",
					HttpOnly: true,
				}
				c.SetCookie(cookie)
			}

			c.Set(ContextKeySessionID, cookie.Value)
			return next(c)
		}
	}
}

func SessionID(c echo.Context) string {
	id, _ := c.Get(ContextKeySessionID).(string)
	return id
}
