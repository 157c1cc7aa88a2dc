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

// ContactLister pages through contacts
type ContactLister interface {
	List(ctx context.Context, limit, offset int) ([]model.ContactListing, error)
	CountContacts(ctx context.Context) (int, error)
}

func ContactsHandler(contacts ContactLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := parsePage(c)

		var (
			rows  []model.ContactListing
			count int
		)
		g, ctx := errgroup.WithContext(c.UserContext())
		g.Go(func() error {
			var err error
			rows, err = contacts.List(ctx, PageSize, offset(page))
			return err
		})
		g.Go(func() error {
			var err error
			count, err = contacts.CountContacts(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			log.WithError(err).Error("Error loading contacts")
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading contacts")
		}

		data := templates.ContactPage{
			Contacts: rows,
			Pagination: templates.Pagination{
				Page:       page,
				TotalPages: totalPages(count),
				Total:      count,
				Path:       "/contacts",
				Target:     "#contacts-table",
			},
		}

		if isHTMX(c) {
			return render(c, templates.ContactsTable(data))
		}

		return render(c, templates.Contacts(auth.UserID(c), data))
	}
}
