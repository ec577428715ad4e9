package evaluation

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/database"
	"github.com/andikahmadi/sikp-backend/handlers"
	"github.com/andikahmadi/sikp-backend/services"
	"github.com/andikahmadi/sikp-backend/utils/middleware"
	"github.com/andikahmadi/sikp-backend/utils/response"
)

// EvaluationHandler exposes student evaluations over HTTP
type EvaluationHandler struct {
	evaluations *services.EvaluationService
	reporting   *database.ReportingStore
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(evaluations *services.EvaluationService, reporting *database.ReportingStore) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations, reporting: reporting}
}

// Add records an evaluation for a student
func (h *EvaluationHandler) Add(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req services.AddEvaluationInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	evaluation, err := h.evaluations.Add(c.Context(), sess, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, evaluation)
}

// EditRequest carries the fields an edit may change
type EditRequest struct {
	Score    float64 `json:"score"`
	Comments string  `json:"comments"`
}

// Edit updates an evaluation in place
func (h *EvaluationHandler) Edit(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	evaluationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid evaluation ID")
	}

	var req EditRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	evaluation, err := h.evaluations.Edit(c.Context(), sess, evaluationID, req.Score, req.Comments)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, evaluation)
}

// Delete removes all of the evaluated student's evaluations
func (h *EvaluationHandler) Delete(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	evaluationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid evaluation ID")
	}

	if err := h.evaluations.Delete(c.Context(), sess, evaluationID); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Evaluations deleted", nil)
}

// ListForStudent returns a student's evaluations
func (h *EvaluationHandler) ListForStudent(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	evaluations, err := h.evaluations.ListForStudent(c.Context(), studentID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, evaluations)
}

// List returns all evaluations
func (h *EvaluationHandler) List(c *fiber.Ctx) error {
	evaluations, err := h.evaluations.ListAll(c.Context())
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, evaluations)
}

// Recap returns the per-student score recap for the coordinator dashboard
func (h *EvaluationHandler) Recap(c *fiber.Ctx) error {
	rows, err := h.reporting.EvaluationRecap(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build evaluation recap")
	}
	return response.Success(c, rows)
}
