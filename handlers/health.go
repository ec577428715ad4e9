package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/andikahmadi/sikp-backend/database"
)

// HandleCheckHealth reports process liveness and database reachability
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"error":  "database unreachable",
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
