package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/journeygraph/pkg/api/routes"
	"github.com/travigo/journeygraph/pkg/database"
	"github.com/travigo/journeygraph/pkg/planner"
)

type Server struct {
	Planner *planner.Planner
	Record  *database.GraphRecord
	// Location is used for request times without an offset
	Location *time.Location
}

func NewApp(server *Server) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewRequestLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion(server.Record.DatasetVersion))

	routes.GraphRouter(group.Group("/graph"), server.Planner.Graph, server.Record)
	routes.LocationsRouter(group.Group("/locations"), server.Planner.Graph)
	routes.PlannerRouter(group.Group("/planner"), server.Planner, server.Location)

	return webApp
}
