package admin

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/utils/response"
)

// UsersHandler exposes user administration
type UsersHandler struct {
	db *gorm.DB
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(db *gorm.DB) *UsersHandler {
	return &UsersHandler{db: db}
}

// List returns all profiles, optionally filtered by ?role=
func (h *UsersHandler) List(c *fiber.Ctx) error {
	query := h.db.Order("created_at DESC")

	if role := c.Query("role"); role != "" {
		if !model.ValidRole(model.Role(role)) {
			return response.BadRequest(c, "Unknown role")
		}
		query = query.Where("role = ?", role)
	}

	var profiles []model.Profile
	if err := query.Find(&profiles).Error; err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}
	return response.Success(c, profiles)
}
