package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/services"
)

// FunctionsHandler implements the privileged maintenance endpoints consumed
// by the operations tooling. These endpoints keep a fixed response shape:
// 200 {"success": true, "message": ...} or 400 {"error": ...}.
type FunctionsHandler struct {
	accounts   *services.AccountService
	signatures *services.SignatureService
}

// NewFunctionsHandler creates a new functions handler
func NewFunctionsHandler(accounts *services.AccountService, signatures *services.SignatureService) *FunctionsHandler {
	return &FunctionsHandler{accounts: accounts, signatures: signatures}
}

// DeleteUserRequest identifies the account to delete
type DeleteUserRequest struct {
	UserID string `json:"userId"`
}

// DeleteUser removes an account and everything referencing it
func (h *FunctionsHandler) DeleteUser(c *fiber.Ctx) error {
	var req DeleteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "userId is required",
		})
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "userId must be a valid UUID",
		})
	}

	if err := h.accounts.DeleteUser(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted successfully",
	})
}

// UpdateSignature updates or inserts a supervisor signature row
func (h *FunctionsHandler) UpdateSignature(c *fiber.Ctx) error {
	var req services.UpsertSignatureInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	signature, err := h.signatures.Upsert(c.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrNotFound) ||
			errors.Is(err, services.ErrInvalidTransition) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to update signature",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Signature updated successfully",
		"data":    signature,
	})
}
