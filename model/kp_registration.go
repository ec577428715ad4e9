package model

import (
	"github.com/google/uuid"
)

// Registration review statuses
const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
	RegistrationActive   = "active"
)

// KpRegistration records a student's eligibility data for the KP program.
// IPK and both credit totals are NOT NULL at the storage layer; every update
// rewrites the whole academic record even when only one field changed.
type KpRegistration struct {
	Base
	StudentID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"student_id"`
	Semester              int       `gorm:"not null" json:"semester"`
	IPK                   float64   `gorm:"type:numeric(3,2);not null" json:"ipk"`
	TotalCompletedCredits int       `gorm:"not null" json:"total_completed_credits"`
	TotalDECredits        int       `gorm:"not null" json:"total_d_e_credits"`
	RegistrationStatus    string    `gorm:"type:varchar(20);not null;default:'pending'" json:"registration_status"`
	Status                string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes                 string    `gorm:"type:text" json:"notes,omitempty"`
	LastKRSFile           string    `gorm:"type:text" json:"last_krs_file,omitempty"`
	LastGPAFile           string    `gorm:"type:text" json:"last_gpa_file,omitempty"`

	// Relationships
	Student Profile `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}

// TableName specifies the table name for KpRegistration
func (KpRegistration) TableName() string {
	return "kp_registrations"
}
