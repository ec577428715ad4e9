package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity actions recorded by the services
const (
	ActionProposalSubmitted    = "proposal_submitted"
	ActionProposalReviewed     = "proposal_reviewed"
	ActionProposalApproved     = "proposal_approved"
	ActionProposalRejected     = "proposal_rejected"
	ActionDocumentUploaded     = "document_uploaded"
	ActionSignatureUploaded    = "signature_uploaded"
	ActionSignatureReviewed    = "signature_reviewed"
	ActionRegistrationCreated  = "registration_created"
	ActionRegistrationReviewed = "registration_reviewed"
	ActionEvaluationAdded      = "evaluation_added"
	ActionEvaluationDeleted    = "evaluation_deleted"
	ActionUserDeleted          = "user_deleted"
)

// SystemActivityLog is the append-only record of feedback and system activity.
// Rows are only ever inserted and trimmed by retention, never updated.
type SystemActivityLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ProposalID *uuid.UUID     `gorm:"type:uuid;index" json:"proposal_id,omitempty"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	Detail     string         `gorm:"type:text" json:"detail"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for SystemActivityLog
func (SystemActivityLog) TableName() string {
	return "system_activity_logs"
}

// BeforeCreate assigns a UUID when none was provided
func (l *SystemActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
