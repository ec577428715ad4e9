package model

import (
	"time"

	"github.com/google/uuid"
)

// Supervisor slot indexes exposed by the assignment UI
const (
	SlotAcademicSupervisor = 1
	SlotFieldSupervisor    = 2
)

// Team is the student group collectively pursuing one KP placement
type Team struct {
	Base
	Name string `gorm:"not null" json:"name"`

	// Relationships
	Members     []TeamMember     `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Supervisors []TeamSupervisor `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"supervisors,omitempty"`
}

// TableName specifies the table name for Team
func (Team) TableName() string {
	return "teams"
}

// TeamMember joins a student profile to a team
type TeamMember struct {
	TeamID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"team_id"`
	StudentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"student_id"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relationships
	Team    Team    `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
	Student Profile `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}

// TableName specifies the table name for TeamMember
func (TeamMember) TableName() string {
	return "team_members"
}

// TeamSupervisor assigns a supervisor to one of the two slots a team exposes.
// Reassigning a slot overwrites its value; no history is kept.
type TeamSupervisor struct {
	TeamID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"team_id"`
	SlotIndex    int       `gorm:"primaryKey" json:"slot_index"`
	SupervisorID uuid.UUID `gorm:"type:uuid;not null;index" json:"supervisor_id"`
	AssignedAt   time.Time `gorm:"autoCreateTime" json:"assigned_at"`

	// Relationships
	Team       Team    `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
	Supervisor Profile `gorm:"foreignKey:SupervisorID;constraint:OnDelete:CASCADE" json:"supervisor,omitempty"`
}

// TableName specifies the table name for TeamSupervisor
func (TeamSupervisor) TableName() string {
	return "team_supervisors"
}
