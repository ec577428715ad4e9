package auth

import (
	"github.com/gofiber/fiber/v2"

	authutil "github.com/andikahmadi/sikp-backend/utils/auth"
	"github.com/andikahmadi/sikp-backend/utils/middleware"
	"github.com/andikahmadi/sikp-backend/utils/response"
	"github.com/andikahmadi/sikp-backend/utils/validation"
)

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	profile, ok := middleware.GetProfile(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, toUserResponse(profile))
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	FullName string `json:"full_name,omitempty"`
	NIM      string `json:"nim,omitempty"`
	NIP      string `json:"nip,omitempty"`
}

// UpdateProfile updates the authenticated user's profile fields
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	profile, ok := middleware.GetProfile(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FullName != "" {
		updates["full_name"] = validation.SanitizeString(req.FullName)
	}
	if req.NIM != "" {
		updates["nim"] = req.NIM
	}
	if req.NIP != "" {
		updates["nip"] = req.NIP
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "Nothing to update")
	}

	if err := h.db.Model(profile).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, toUserResponse(profile))
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword changes the user's password and invalidates all their tokens
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	profile, ok := middleware.GetProfile(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := authutil.VerifyPassword(profile.PasswordHash, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	hashed, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	if err := h.db.Model(profile).Update("password_hash", hashed).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	// Force re-login everywhere
	if err := h.blacklistService.RevokeAllUserTokens(c.Context(), profile.ID); err != nil {
		return response.InternalServerError(c, "Failed to invalidate sessions")
	}

	return response.SuccessWithMessage(c, "Password updated, please log in again", nil)
}
