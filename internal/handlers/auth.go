package handlers

import (
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/jjenkins/agencydash/internal/auth"
	"github.com/jjenkins/agencydash/internal/templates"
)

// SessionOptions configures the session cookie written on sign-in
type SessionOptions struct {
	TTL    time.Duration
	Secure bool
}

func SignInPageHandler(verifier *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := auth.CurrentUser(c, verifier); ok {
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return render(c, templates.SignIn(""))
	}
}

func SignInHandler(verifier *auth.Verifier, opts SessionOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.FormValue("token"))

		userID, err := verifier.Verify(token)
		if err != nil {
			log.WithError(err).Debug("Rejected sign-in token")
			return render(c, templates.SignIn("Invalid or expired token"), templ.WithStatus(fiber.StatusUnauthorized))
		}

		auth.SetSession(c, token, opts.TTL, opts.Secure)
		log.WithField("user_id", userID).Info("User signed in")

		return c.Redirect("/", fiber.StatusSeeOther)
	}
}

func SignOutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth.ClearSession(c)
		return c.Redirect("/sign-in", fiber.StatusSeeOther)
	}
}
