package routes

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/journeygraph/pkg/journeygraph"
	"github.com/travigo/journeygraph/pkg/planner"
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, journeygraph.ErrUnknownLocation):
		return fiber.StatusNotFound
	case errors.Is(err, journeygraph.ErrInvalidQuery),
		errors.Is(err, journeygraph.ErrOutOfRange),
		errors.Is(err, planner.ErrInvalidEndpoint):
		return fiber.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func sendError(c *fiber.Ctx, status int, message string) error {
	c.Status(status)
	return c.JSON(fiber.Map{
		"error": message,
	})
}

func sendLookupError(c *fiber.Ctx, err error) error {
	return sendError(c, errorStatus(err), err.Error())
}

// sendReduced writes value keeping only the fields in the given sheriff groups
func sendReduced(c *fiber.Ctx, value interface{}, groups ...string) error {
	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, value)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "Sherrif could not reduce response")
	}

	return c.JSON(reduced)
}

func detailGroups(c *fiber.Ctx) []string {
	if c.QueryBool("detailed") {
		return []string{"basic", "detailed"}
	}
	return []string{"basic"}
}
