package routes

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/journeygraph/pkg/journeygraph"
)

const maxLocationRadius = 5000

func LocationsRouter(router fiber.Router, graph *journeygraph.Graph) {
	router.Get("/", func(c *fiber.Ctx) error {
		return listLocations(c, graph)
	})
	router.Get("/:identifier", func(c *fiber.Ctx) error {
		return getLocation(c, graph)
	})
}

type nearbyLocation struct {
	Location journeygraph.LocationInfo `json:"location" groups:"basic"`
	Distance float64                   `json:"distance" groups:"basic"`
}

func listLocations(c *fiber.Ctx, graph *journeygraph.Graph) error {
	latitude, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	longitude, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		return sendError(c, fiber.StatusBadRequest, "Parameters lat and lon are required")
	}

	radius, err := strconv.ParseFloat(c.Query("radius", "500"), 64)
	if err != nil || radius <= 0 || radius > maxLocationRadius {
		return sendError(c, fiber.StatusBadRequest, "Parameter radius should be between 0 and 5000 metres")
	}

	locations := []nearbyLocation{}
	for _, found := range graph.LocationsWithin(latitude, longitude, radius) {
		info, err := graph.Location(found.ID)
		if err != nil {
			return sendLookupError(c, err)
		}
		locations = append(locations, nearbyLocation{Location: info, Distance: found.Distance})
	}

	return sendReduced(c, locations, detailGroups(c)...)
}

func getLocation(c *fiber.Ctx, graph *journeygraph.Graph) error {
	location, err := graph.Location(c.Params("identifier"))
	if err != nil {
		return sendLookupError(c, err)
	}

	return sendReduced(c, location, detailGroups(c)...)
}
