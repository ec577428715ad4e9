package model

import (
	"time"

	"github.com/google/uuid"
)

// ProposalStatus is the stored lifecycle status of a proposal
type ProposalStatus string

const (
	ProposalStatusDraft     ProposalStatus = "draft"
	ProposalStatusSubmitted ProposalStatus = "submitted"
	ProposalStatusReviewed  ProposalStatus = "reviewed"
	ProposalStatusApproved  ProposalStatus = "approved"
	ProposalStatusRejected  ProposalStatus = "rejected"

	// ProposalStatusRevision is never stored. It is the display projection of a
	// submitted proposal that still carries a rejection reason from an earlier
	// review cycle. See Proposal.DisplayStatus.
	ProposalStatusRevision ProposalStatus = "revision"
)

// ValidStoredStatus reports whether s may be persisted on a proposal row
func ValidStoredStatus(s ProposalStatus) bool {
	switch s {
	case ProposalStatusDraft, ProposalStatusSubmitted, ProposalStatusReviewed,
		ProposalStatusApproved, ProposalStatusRejected:
		return true
	}
	return false
}

// Proposal is a team's submission describing its intended internship placement
type Proposal struct {
	Base
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `gorm:"type:text;not null" json:"description"`
	CompanyName     string         `json:"company_name,omitempty"`
	Status          ProposalStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason,omitempty"`
	TeamID          *uuid.UUID     `gorm:"type:uuid;index" json:"team_id,omitempty"`

	// Relationships
	Team      *Team              `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Documents []ProposalDocument `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

// TableName specifies the table name for Proposal
func (Proposal) TableName() string {
	return "proposals"
}

// DisplayStatus projects the stored status into the status shown to users.
// Legacy rows encode "needs revision" as submitted + non-empty rejection
// reason; those render as revision, everything else renders as stored.
func (p *Proposal) DisplayStatus() ProposalStatus {
	if p.Status == ProposalStatusSubmitted && p.RejectionReason != "" {
		return ProposalStatusRevision
	}
	return p.Status
}

// ProposalDocument is an uploaded artifact attached to a proposal.
// When several documents exist, the most recently uploaded one is current.
type ProposalDocument struct {
	Base
	ProposalID uuid.UUID `gorm:"type:uuid;not null;index" json:"proposal_id"`
	FileName   string    `gorm:"not null" json:"file_name"`
	FileURL    string    `gorm:"not null;type:text" json:"file_url"`
	FileType   string    `gorm:"type:varchar(50)" json:"file_type"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`

	// Relationships
	Proposal Proposal `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ProposalDocument
func (ProposalDocument) TableName() string {
	return "proposal_documents"
}
