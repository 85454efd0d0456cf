package routes

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/journeygraph/pkg/planner"
)

func PlannerRouter(router fiber.Router, journeyPlanner *planner.Planner, location *time.Location) {
	router.Get("/coordinates", func(c *fiber.Ctx) error {
		return getPlanBetweenCoordinates(c, journeyPlanner, location)
	})
	router.Get("/:origin/:destination", func(c *fiber.Ctx) error {
		return getPlanBetweenStops(c, journeyPlanner, location)
	})
}

func getPlanBetweenStops(c *fiber.Ctx, journeyPlanner *planner.Planner, location *time.Location) error {
	query, err := parsePlannerQuery(c, location)
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	query.Origin = planner.Stop(c.Params("origin"))
	query.Destination = planner.Stop(c.Params("destination"))

	return sendPlans(c, journeyPlanner, query)
}

func getPlanBetweenCoordinates(c *fiber.Ctx, journeyPlanner *planner.Planner, location *time.Location) error {
	query, err := parsePlannerQuery(c, location)
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	if c.Query("from") == "" || c.Query("to") == "" {
		return sendError(c, fiber.StatusBadRequest, "Parameters from and to are required")
	}
	if query.Origin, err = planner.ParseEndpoint(c.Query("from")); err != nil {
		return sendLookupError(c, err)
	}
	if query.Destination, err = planner.ParseEndpoint(c.Query("to")); err != nil {
		return sendLookupError(c, err)
	}

	if distance := c.Query("max_access_distance"); distance != "" {
		if query.MaxAccessDistance, err = strconv.ParseFloat(distance, 64); err != nil || query.MaxAccessDistance <= 0 {
			return sendError(c, fiber.StatusBadRequest, "Parameter max_access_distance should be a positive number")
		}
	}
	if speed := c.Query("access_speed"); speed != "" {
		if query.AccessSpeed, err = strconv.ParseFloat(speed, 64); err != nil || query.AccessSpeed <= 0 {
			return sendError(c, fiber.StatusBadRequest, "Parameter access_speed should be a positive number")
		}
	}

	return sendPlans(c, journeyPlanner, query)
}

func parsePlannerQuery(c *fiber.Ctx, location *time.Location) (planner.Query, error) {
	var query planner.Query

	if count := c.Query("count"); count != "" {
		parsed, err := strconv.Atoi(count)
		if err != nil || parsed < 1 {
			return query, fiber.NewError(fiber.StatusBadRequest, "Parameter count should be a positive integer")
		}
		query.MaxResults = parsed
	}

	if datetime := c.Query("datetime"); datetime != "" {
		parsed, err := planner.ParseTime(datetime, location)
		if err != nil {
			return query, fiber.NewError(fiber.StatusBadRequest, "Parameter datetime should be an RFC3339/ISO8601 datetime")
		}
		query.NotBefore = parsed
	}

	return query, nil
}

func sendPlans(c *fiber.Ctx, journeyPlanner *planner.Planner, query planner.Query) error {
	results, err := journeyPlanner.Plan(c.UserContext(), query)
	if err != nil {
		return sendLookupError(c, err)
	}

	return sendReduced(c, results, detailGroups(c)...)
}
