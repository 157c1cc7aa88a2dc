package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie holding the session token
const SessionCookie = "session"

const userIDKey = "user_id"

// CurrentUser returns the signed-in user id from the session cookie or a
// bearer token. Missing and invalid tokens both read as anonymous.
func CurrentUser(c *fiber.Ctx, v *Verifier) (string, bool) {
	if id, ok := c.Locals(userIDKey).(string); ok && id != "" {
		return id, true
	}

	token := c.Cookies(SessionCookie)
	if token == "" {
		header := c.Get(fiber.HeaderAuthorization)
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			token = strings.TrimSpace(after)
		}
	}
	if token == "" {
		return "", false
	}

	id, err := v.Verify(token)
	if err != nil {
		return "", false
	}
	c.Locals(userIDKey, id)
	return id, true
}

// RequireUser sends anonymous visitors to the sign-in page
func RequireUser(v *Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c, v); ok {
			return c.Next()
		}
		if c.Get("HX-Request") == "true" {
			c.Set("HX-Redirect", "/sign-in")
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.Redirect("/sign-in", fiber.StatusSeeOther)
	}
}

// SetSession stores token in the session cookie
func SetSession(c *fiber.Ctx, token string, ttl time.Duration, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSession expires the session cookie
func ClearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// UserID returns the user resolved earlier in the request by CurrentUser or
// RequireUser, or "" when none was.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
