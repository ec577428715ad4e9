package registration

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/handlers"
	"github.com/andikahmadi/sikp-backend/services"
	"github.com/andikahmadi/sikp-backend/utils/middleware"
	"github.com/andikahmadi/sikp-backend/utils/response"
)

// RegistrationHandler exposes KP registrations over HTTP
type RegistrationHandler struct {
	registrations *services.RegistrationService
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrations *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// Save creates or rewrites the student's registration
func (h *RegistrationHandler) Save(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req services.RegistrationInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	registration, err := h.registrations.Save(c.Context(), sess, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, registration)
}

// Mine returns the authenticated student's registration
func (h *RegistrationHandler) Mine(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	registration, err := h.registrations.Get(c.Context(), sess.UserID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, registration)
}

// AttachDocument uploads a KRS or transcript PDF onto the registration.
// The kind path parameter is "krs" or "transcript".
func (h *RegistrationHandler) AttachDocument(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Document file is required")
	}

	registration, err := h.registrations.AttachDocument(c.Context(), sess, c.Params("kind"), file)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, registration)
}

// ReviewRequest carries the review decision
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes,omitempty"`
}

// Review decides a pending registration
func (h *RegistrationHandler) Review(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	registrationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid registration ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	registration, err := h.registrations.Review(c.Context(), sess, registrationID, req.Approve, req.Notes)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, registration)
}

// List returns registrations, optionally filtered by ?status=
func (h *RegistrationHandler) List(c *fiber.Ctx) error {
	registrations, err := h.registrations.List(c.Context(), c.Query("status"))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, registrations)
}
