package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/agencydash/internal/auth"
	"github.com/jjenkins/agencydash/internal/reveal"
	"github.com/jjenkins/agencydash/internal/templates"
)

// Revealer discloses a contact's private fields
type Revealer interface {
	Reveal(ctx context.Context, contactID, userID string) reveal.Result
}

var revealStatusCodes = map[reveal.Status]int{
	reveal.StatusSuccess:      fiber.StatusOK,
	reveal.StatusUnauthorized: fiber.StatusUnauthorized,
	reveal.StatusLimitReached: fiber.StatusTooManyRequests,
	reveal.StatusNotFound:     fiber.StatusNotFound,
	reveal.StatusUnavailable:  fiber.StatusServiceUnavailable,
	reveal.StatusFailed:       fiber.StatusInternalServerError,
}

// RevealHandler serves POST /contacts/:id/reveal. HTMX callers get the
// fragment that replaces the reveal button; everyone else gets JSON.
func RevealHandler(svc Revealer, verifier *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		field := c.Query("field", templates.FieldEmail)
		if field != templates.FieldEmail && field != templates.FieldPhone {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "field must be email or phone"})
		}

		contactID := c.Params("id")
		userID, _ := auth.CurrentUser(c, verifier)
		res := svc.Reveal(c.UserContext(), contactID, userID)

		if isHTMX(c) {
			return revealFragment(c, contactID, field, res)
		}

		code, ok := revealStatusCodes[res.Status]
		if !ok {
			code = fiber.StatusInternalServerError
		}

		switch res.Status {
		case reveal.StatusSuccess:
			return c.Status(code).JSON(fiber.Map{
				"success": true,
				"data": fiber.Map{
					"email": res.Email,
					"phone": res.Phone,
				},
			})
		case reveal.StatusLimitReached:
			return c.Status(code).JSON(fiber.Map{
				"error":        res.Message(),
				"limitReached": true,
			})
		default:
			return c.Status(code).JSON(fiber.Map{"error": res.Message()})
		}
	}
}

func revealFragment(c *fiber.Ctx, contactID, field string, res reveal.Result) error {
	switch res.Status {
	case reveal.StatusSuccess:
		value := res.Email
		if field == templates.FieldPhone {
			value = res.Phone
		}
		return render(c, templates.RevealedValue(field, value))
	case reveal.StatusLimitReached:
		return render(c, templates.LimitReached(res.Limit))
	case reveal.StatusUnauthorized:
		c.Set("HX-Redirect", "/sign-in")
	}
	return render(c, templates.RevealButton(contactID, field, res.Message()))
}
