package handlers

import (
	"strconv"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// PageSize is the number of rows per listing page
const PageSize = 10

func render(c *fiber.Ctx, page templ.Component, opts ...func(*templ.ComponentHandler)) error {
	handler := adaptor.HTTPHandler(templ.Handler(page, opts...))
	return handler(c)
}

func isHTMX(c *fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

// parsePage reads ?page=, treating anything invalid or below 1 as page 1
func parsePage(c *fiber.Ctx) int {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func totalPages(count int) int {
	return (count + PageSize - 1) / PageSize
}

func offset(page int) int {
	return (page - 1) * PageSize
}
