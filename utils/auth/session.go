package auth

import (
	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/model"
)

// Session is the authenticated caller identity passed explicitly into every
// service operation that needs authorization. Services never read ambient
// auth state.
type Session struct {
	UserID uuid.UUID
	Role   model.Role
}

// Is reports whether the session holds any of the given roles
func (s Session) Is(roles ...model.Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// CanReview reports whether the session may review proposals and registrations
func (s Session) CanReview() bool {
	return s.Is(model.RoleCoordinator, model.RoleAdmin)
}
