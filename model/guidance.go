package model

import (
	"time"

	"github.com/google/uuid"
)

// GuidanceSessionStatus is the scheduling state of a guidance session
type GuidanceSessionStatus string

const (
	GuidanceStatusScheduled GuidanceSessionStatus = "scheduled"
	GuidanceStatusCompleted GuidanceSessionStatus = "completed"
	GuidanceStatusCancelled GuidanceSessionStatus = "cancelled"
)

// GuidanceSession is a scheduled meeting between a team and one of its supervisors
type GuidanceSession struct {
	Base
	TeamID       uuid.UUID             `gorm:"type:uuid;not null;index" json:"team_id"`
	SupervisorID uuid.UUID             `gorm:"type:uuid;not null;index" json:"supervisor_id"`
	ScheduledAt  time.Time             `gorm:"not null" json:"scheduled_at"`
	Topic        string                `gorm:"not null" json:"topic"`
	Location     string                `json:"location,omitempty"`
	Status       GuidanceSessionStatus `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`

	// Relationships
	Team       Team    `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"team,omitempty"`
	Supervisor Profile `gorm:"foreignKey:SupervisorID;constraint:OnDelete:CASCADE" json:"supervisor,omitempty"`
	Reports    []GuidanceReport `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"reports,omitempty"`
}

// TableName specifies the table name for GuidanceSession
func (GuidanceSession) TableName() string {
	return "guidance_sessions"
}

// GuidanceReport is a student's written report for one guidance session
type GuidanceReport struct {
	Base
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	FileURL   string    `gorm:"type:text" json:"file_url,omitempty"`

	// Relationships
	Session GuidanceSession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	Student Profile         `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}

// TableName specifies the table name for GuidanceReport
func (GuidanceReport) TableName() string {
	return "guidance_reports"
}
