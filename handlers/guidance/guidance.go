package guidance

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/handlers"
	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/services"
	"github.com/andikahmadi/sikp-backend/utils/middleware"
	"github.com/andikahmadi/sikp-backend/utils/response"
)

// GuidanceHandler exposes guidance sessions and reports over HTTP
type GuidanceHandler struct {
	guidance *services.GuidanceService
}

// NewGuidanceHandler creates a new guidance handler
func NewGuidanceHandler(guidance *services.GuidanceService) *GuidanceHandler {
	return &GuidanceHandler{guidance: guidance}
}

// Schedule creates a session for one of the supervisor's teams
func (h *GuidanceHandler) Schedule(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req services.ScheduleSessionInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	session, err := h.guidance.ScheduleSession(c.Context(), sess, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, session)
}

// CloseRequest carries the terminal status for a session
type CloseRequest struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled"`
}

// Close marks a session completed or cancelled
func (h *GuidanceHandler) Close(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid session ID")
	}

	var req CloseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	session, err := h.guidance.CloseSession(c.Context(), sess, sessionID, model.GuidanceSessionStatus(req.Status))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, session)
}

// FileReport records the student's report for a session. The report content
// comes in the "content" form field, the optional PDF in "file".
func (h *GuidanceHandler) FileReport(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid session ID")
	}

	content := c.FormValue("content")
	file, err := c.FormFile("file")
	if err != nil {
		file = nil // attachment is optional
	}

	report, err := h.guidance.FileReport(c.Context(), sess, sessionID, content, file)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, report)
}

// ForTeam lists a team's sessions
func (h *GuidanceHandler) ForTeam(c *fiber.Ctx) error {
	teamID, err := uuid.Parse(c.Params("teamId"))
	if err != nil {
		return response.BadRequest(c, "Invalid team ID")
	}

	sessions, err := h.guidance.ListForTeam(c.Context(), teamID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, sessions)
}

// Mine lists the authenticated supervisor's sessions
func (h *GuidanceHandler) Mine(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sessions, err := h.guidance.ListForSupervisor(c.Context(), sess.UserID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, sessions)
}
