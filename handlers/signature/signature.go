package signature

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/handlers"
	"github.com/andikahmadi/sikp-backend/services"
	"github.com/andikahmadi/sikp-backend/utils/middleware"
	"github.com/andikahmadi/sikp-backend/utils/response"
)

// SignatureHandler exposes the digital signature lifecycle over HTTP
type SignatureHandler struct {
	signatures *services.SignatureService
}

// NewSignatureHandler creates a new signature handler
func NewSignatureHandler(signatures *services.SignatureService) *SignatureHandler {
	return &SignatureHandler{signatures: signatures}
}

// Upload stores a new signature image for the authenticated supervisor
func (h *SignatureHandler) Upload(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Signature file is required")
	}

	signature, err := h.signatures.Upload(c.Context(), sess, sess.UserID, file)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, signature)
}

// ReviewRequest carries the review decision
type ReviewRequest struct {
	Approve bool `json:"approve"`
}

// Review decides a pending signature
func (h *SignatureHandler) Review(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	signatureID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid signature ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	signature, err := h.signatures.Review(c.Context(), sess, signatureID, req.Approve)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, signature)
}

// Delete soft-deletes a signature
func (h *SignatureHandler) Delete(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	signatureID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid signature ID")
	}

	if err := h.signatures.Delete(c.Context(), sess, signatureID); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Signature deleted", nil)
}

// MyStatus returns the authenticated supervisor's current signature status
func (h *SignatureHandler) MyStatus(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	status, err := h.signatures.CurrentStatus(c.Context(), sess.UserID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, status)
}

// Status returns any supervisor's current signature status
func (h *SignatureHandler) Status(c *fiber.Ctx) error {
	supervisorID, err := uuid.Parse(c.Params("supervisorId"))
	if err != nil {
		return response.BadRequest(c, "Invalid supervisor ID")
	}

	status, err := h.signatures.CurrentStatus(c.Context(), supervisorID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, status)
}

// ListPending returns the admin review queue
func (h *SignatureHandler) ListPending(c *fiber.Ctx) error {
	signatures, err := h.signatures.ListPending(c.Context())
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, signatures)
}
