package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/jjenkins/agencydash/internal/auth"
	"github.com/jjenkins/agencydash/internal/service"
	"github.com/jjenkins/agencydash/internal/templates"
)

// Dashboard supplies the home page figures
type Dashboard interface {
	Dashboard(ctx context.Context, userID string) (*service.DashboardMetrics, error)
}

func HomeHandler(dashboard Dashboard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := auth.UserID(c)

		metrics, err := dashboard.Dashboard(c.UserContext(), userID)
		if err != nil {
			log.WithError(err).Error("Error loading dashboard")
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading dashboard")
		}

		return render(c, templates.Home(userID, metrics))
	}
}
