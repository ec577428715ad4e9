package model

import (
	"time"

	"github.com/google/uuid"
)

// TimesheetStatus is the supervisor review status of a timesheet entry
type TimesheetStatus string

const (
	TimesheetStatusPending  TimesheetStatus = "pending"
	TimesheetStatusApproved TimesheetStatus = "approved"
	TimesheetStatusRejected TimesheetStatus = "rejected"
)

// StudentTimesheet is one daily work log entry of a student on placement
type StudentTimesheet struct {
	Base
	StudentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"student_id"`
	WorkDate  time.Time       `gorm:"type:date;not null" json:"work_date"`
	StartTime string          `gorm:"type:varchar(5);not null" json:"start_time"` // HH:MM
	EndTime   string          `gorm:"type:varchar(5);not null" json:"end_time"`   // HH:MM
	Activity  string          `gorm:"type:text;not null" json:"activity"`
	Status    TimesheetStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	// Relationships
	Student Profile `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}

// TableName specifies the table name for StudentTimesheet
func (StudentTimesheet) TableName() string {
	return "student_timesheets"
}
