package team

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/handlers"
	"github.com/andikahmadi/sikp-backend/services"
	"github.com/andikahmadi/sikp-backend/utils/middleware"
	"github.com/andikahmadi/sikp-backend/utils/response"
)

// TeamHandler exposes team management over HTTP
type TeamHandler struct {
	teams *services.TeamService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teams *services.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// CreateRequest describes a new team
type CreateRequest struct {
	Name      string      `json:"name" validate:"required"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// Create creates a team with the creating student as a member
func (h *TeamHandler) Create(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	team, err := h.teams.Create(c.Context(), sess, req.Name, req.MemberIDs)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, team)
}

// Get returns a team with members and supervisors
func (h *TeamHandler) Get(c *fiber.Ctx) error {
	teamID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid team ID")
	}

	team, err := h.teams.Get(c.Context(), teamID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, team)
}

// MyTeam returns the authenticated student's team
func (h *TeamHandler) MyTeam(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	team, err := h.teams.TeamForStudent(c.Context(), sess.UserID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, team)
}

// MemberRequest identifies a student to add or remove
type MemberRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
}

// AddMember adds a student to the team
func (h *TeamHandler) AddMember(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	teamID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid team ID")
	}

	var req MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.teams.AddMember(c.Context(), sess, teamID, req.StudentID); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Member added", nil)
}

// RemoveMember removes a student from the team
func (h *TeamHandler) RemoveMember(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	teamID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid team ID")
	}

	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	if err := h.teams.RemoveMember(c.Context(), sess, teamID, studentID); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Member removed", nil)
}

// AssignSupervisorRequest identifies a supervisor and the slot to fill
type AssignSupervisorRequest struct {
	SupervisorID uuid.UUID `json:"supervisor_id" validate:"required"`
	SlotIndex    int       `json:"slot_index" validate:"required,oneof=1 2"`
}

// AssignSupervisor fills one of the team's two supervisor slots
func (h *TeamHandler) AssignSupervisor(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	teamID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid team ID")
	}

	var req AssignSupervisorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.teams.AssignSupervisor(c.Context(), sess, teamID, req.SupervisorID, req.SlotIndex); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Supervisor assigned", nil)
}

// EligibleStudents lists students not yet in any team
func (h *TeamHandler) EligibleStudents(c *fiber.Ctx) error {
	students, err := h.teams.EligibleStudents(c.Context())
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, students)
}

// EligibleSupervisors lists all supervisors
func (h *TeamHandler) EligibleSupervisors(c *fiber.Ctx) error {
	supervisors, err := h.teams.EligibleSupervisors(c.Context())
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, supervisors)
}
