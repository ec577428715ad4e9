package model

import (
	"github.com/google/uuid"
)

// EvaluatorType distinguishes academic-supervisor vs field-supervisor scoring
type EvaluatorType string

const (
	EvaluatorTypeSupervisor      EvaluatorType = "supervisor"
	EvaluatorTypeFieldSupervisor EvaluatorType = "field_supervisor"
)

// ValidEvaluatorType reports whether t is a known evaluator type
func ValidEvaluatorType(t EvaluatorType) bool {
	return t == EvaluatorTypeSupervisor || t == EvaluatorTypeFieldSupervisor
}

// Evaluation holds one evaluator-scoped score for a student. At most one row
// exists per (student, evaluator type); the two rows of a student are managed
// as a unit — deleting one deletes both.
type Evaluation struct {
	Base
	StudentID     uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_evaluation_student_type" json:"student_id"`
	EvaluatorType EvaluatorType `gorm:"type:varchar(20);not null;uniqueIndex:idx_evaluation_student_type" json:"evaluator_type"`
	Score         float64       `gorm:"type:numeric(4,1);not null" json:"score"`
	Comments      string        `gorm:"type:text" json:"comments,omitempty"`

	// Relationships
	Student Profile `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}

// TableName specifies the table name for Evaluation
func (Evaluation) TableName() string {
	return "evaluations"
}
