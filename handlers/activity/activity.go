package activity

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/handlers"
	"github.com/andikahmadi/sikp-backend/services"
	"github.com/andikahmadi/sikp-backend/utils/middleware"
	"github.com/andikahmadi/sikp-backend/utils/response"
)

// ActivityHandler exposes the activity feed over HTTP
type ActivityHandler struct {
	activity *services.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activity *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// Mine returns the authenticated user's recent activity, optionally limited
// by ?limit=
func (h *ActivityHandler) Mine(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	entries, err := h.activity.ListForUser(c.Context(), sess.UserID, c.QueryInt("limit"))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, entries)
}

// ForUser returns another user's recent activity
func (h *ActivityHandler) ForUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	entries, err := h.activity.ListForUser(c.Context(), userID, c.QueryInt("limit"))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, entries)
}
