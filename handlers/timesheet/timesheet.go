package timesheet

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/handlers"
	"github.com/andikahmadi/sikp-backend/services"
	"github.com/andikahmadi/sikp-backend/utils/middleware"
	"github.com/andikahmadi/sikp-backend/utils/response"
)

// TimesheetHandler exposes student work logs over HTTP
type TimesheetHandler struct {
	timesheets *services.TimesheetService
}

// NewTimesheetHandler creates a new timesheet handler
func NewTimesheetHandler(timesheets *services.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{timesheets: timesheets}
}

// Create records a daily entry
func (h *TimesheetHandler) Create(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req services.TimesheetInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	entry, err := h.timesheets.Create(c.Context(), sess, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, entry)
}

// Update rewrites a pending entry
func (h *TimesheetHandler) Update(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid entry ID")
	}

	var req services.TimesheetInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	entry, err := h.timesheets.Update(c.Context(), sess, entryID, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, entry)
}

// Delete removes a pending entry
func (h *TimesheetHandler) Delete(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid entry ID")
	}

	if err := h.timesheets.Delete(c.Context(), sess, entryID); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Entry deleted", nil)
}

// ReviewRequest carries the review decision
type ReviewRequest struct {
	Approve bool `json:"approve"`
}

// Review decides a pending entry
func (h *TimesheetHandler) Review(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid entry ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	entry, err := h.timesheets.Review(c.Context(), sess, entryID, req.Approve)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, entry)
}

// Mine returns the authenticated student's entries, optionally bounded by
// ?from= and ?to= (YYYY-MM-DD)
func (h *TimesheetHandler) Mine(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return h.list(c, sess.UserID)
}

// ForStudent returns another student's entries
func (h *TimesheetHandler) ForStudent(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}
	return h.list(c, studentID)
}

// PendingForTeam returns the supervisor review queue for one team
func (h *TimesheetHandler) PendingForTeam(c *fiber.Ctx) error {
	teamID, err := uuid.Parse(c.Params("teamId"))
	if err != nil {
		return response.BadRequest(c, "Invalid team ID")
	}

	entries, err := h.timesheets.ListPendingForTeam(c.Context(), teamID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, entries)
}

func (h *TimesheetHandler) list(c *fiber.Ctx, studentID uuid.UUID) error {
	var from, to time.Time
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return response.BadRequest(c, "from must be YYYY-MM-DD")
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return response.BadRequest(c, "to must be YYYY-MM-DD")
		}
		to = parsed
	}

	entries, err := h.timesheets.ListForStudent(c.Context(), studentID, from, to)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, entries)
}
