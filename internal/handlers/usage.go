package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/jjenkins/agencydash/internal/auth"
	"github.com/jjenkins/agencydash/internal/quota"
	"github.com/jjenkins/agencydash/internal/templates"
)

// UsageReader reports a user's quota standing
type UsageReader interface {
	Usage(ctx context.Context, userID string) (quota.Decision, error)
}

func UsageHandler(ledger UsageReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := auth.UserID(c)

		decision, err := ledger.Usage(c.UserContext(), userID)
		if err != nil {
			log.WithError(err).Error("Error loading usage")
			return c.Status(fiber.StatusServiceUnavailable).SendString("Service unavailable, please try again")
		}

		if c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
			return c.JSON(fiber.Map{
				"count":     decision.CurrentCount,
				"limit":     decision.Limit,
				"remaining": decision.Remaining(),
				"resetsAt":  decision.ResetsAt,
				"timezone":  decision.ResetsAt.Location().String(),
			})
		}

		return render(c, templates.Usage(userID, decision))
	}
}
