package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/journeygraph/pkg/database"
	"github.com/travigo/journeygraph/pkg/journeygraph"
)

func GraphRouter(router fiber.Router, graph *journeygraph.Graph, record *database.GraphRecord) {
	router.Get("/", func(c *fiber.Ctx) error {
		response := *record
		response.Summary = graph.Summary()

		return sendReduced(c, response, "basic")
	})
}
