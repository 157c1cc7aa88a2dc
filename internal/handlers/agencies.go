package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jjenkins/agencydash/internal/auth"
	"github.com/jjenkins/agencydash/internal/model"
	"github.com/jjenkins/agencydash/internal/templates"
)

// AgencyLister pages through agencies
type AgencyLister interface {
	List(ctx context.Context, limit, offset int) ([]model.Agency, error)
	CountAgencies(ctx context.Context) (int, error)
}

func AgenciesHandler(agencies AgencyLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := parsePage(c)

		var (
			rows  []model.Agency
			count int
		)
		g, ctx := errgroup.WithContext(c.UserContext())
		g.Go(func() error {
			var err error
			rows, err = agencies.List(ctx, PageSize, offset(page))
			return err
		})
		g.Go(func() error {
			var err error
			count, err = agencies.CountAgencies(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			log.WithError(err).Error("Error loading agencies")
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading agencies")
		}

		data := templates.AgencyPage{
			Agencies: rows,
			Pagination: templates.Pagination{
				Page:       page,
				TotalPages: totalPages(count),
				Total:      count,
				Path:       "/agencies",
				Target:     "#agencies-table",
			},
		}

		// HTMX pagination only swaps the table
		if isHTMX(c) {
			return render(c, templates.AgenciesTable(data))
		}

		return render(c, templates.Agencies(auth.UserID(c), data))
	}
}
