package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/journeygraph/pkg/ctdf"
)

func APIVersion(version ctdf.DatasetVersion) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"version": "v0.1",
			"dataset": version,
		})
	}
}
