package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/andikahmadi/sikp-backend/services"
	"github.com/andikahmadi/sikp-backend/utils/response"
)

// ServiceError maps service-layer sentinel errors onto the response envelope
func ServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "You do not have permission to perform this action")
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}
