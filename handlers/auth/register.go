package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/andikahmadi/sikp-backend/model"
	authutil "github.com/andikahmadi/sikp-backend/utils/auth"
	"github.com/andikahmadi/sikp-backend/utils/response"
	"github.com/andikahmadi/sikp-backend/utils/validation"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2"`
	Role     string `json:"role,omitempty"` // Optional, defaults to "student"
	NIM      string `json:"nim,omitempty"`
	NIP      string `json:"nip,omitempty"`
}

// RegisterResponse represents a successful registration response
type RegisterResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return response.BadRequest(c, "Email, password, and full name are required")
	}

	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	// Set default role if not provided
	if req.Role == "" {
		req.Role = string(model.RoleStudent)
	}
	role := model.Role(req.Role)
	if !model.ValidRole(role) {
		return response.BadRequest(c, "Invalid role")
	}

	// Students register with their student number
	if role == model.RoleStudent && req.NIM == "" {
		return response.BadRequest(c, "NIM is required for students")
	}

	// Check if user already exists
	var existing model.Profile
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	profile := model.Profile{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FullName:     validation.SanitizeString(req.FullName),
		Role:         role,
		NIM:          req.NIM,
		NIP:          req.NIP,
		TokenVersion: 0,
	}

	if err := h.db.Create(&profile).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(profile.ID, profile.Email, string(profile.Role), profile.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(profile.ID, profile.Email, string(profile.Role), profile.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	res := RegisterResponse{
		User:         toUserResponse(&profile),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.jwtManager.AccessExpiry().Seconds()),
	}

	return response.Created(c, res)
}
