package model

// Role identifies what a profile is allowed to do in the KP workflow
type Role string

const (
	RoleStudent     Role = "student"
	RoleSupervisor  Role = "supervisor"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// ValidRole reports whether r is one of the known roles
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleSupervisor, RoleCoordinator, RoleAdmin:
		return true
	}
	return false
}

// Profile represents a registered user: student, supervisor, coordinator or admin
type Profile struct {
	Base
	FullName     string `gorm:"not null" json:"full_name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	NIM          string `gorm:"type:varchar(20)" json:"nim,omitempty"` // student number
	NIP          string `gorm:"type:varchar(30)" json:"nip,omitempty"` // staff number
	TokenVersion int    `gorm:"default:0" json:"-"`                    // Increment to invalidate all user tokens
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}
