package model

import (
	"github.com/google/uuid"
)

// SignatureStatus is the review status of a supervisor's signature image
type SignatureStatus string

const (
	SignatureStatusPending  SignatureStatus = "pending"
	SignatureStatusApproved SignatureStatus = "approved"
	SignatureStatusRejected SignatureStatus = "rejected"
	// SignatureStatusDeleted is the soft-delete sentinel. Rows never leave the
	// table; superseded and removed signatures are parked here.
	SignatureStatusDeleted SignatureStatus = "deleted"
)

// ValidSignatureStatus reports whether s is a known signature status
func ValidSignatureStatus(s SignatureStatus) bool {
	switch s {
	case SignatureStatusPending, SignatureStatusApproved,
		SignatureStatusRejected, SignatureStatusDeleted:
		return true
	}
	return false
}

// DigitalSignature is a supervisor's signature image and its approval state.
// Invariant: at most one non-deleted row exists per supervisor; installing a
// new signature marks every prior non-deleted row deleted in the same
// transaction. QRCodeURL is populated only while status is approved.
type DigitalSignature struct {
	Base
	SupervisorID uuid.UUID       `gorm:"type:uuid;not null;index" json:"supervisor_id"`
	SignatureURL string          `gorm:"not null;type:text" json:"signature_url"`
	Status       SignatureStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	QRCodeURL    string          `gorm:"type:text" json:"qr_code_url,omitempty"`

	// Relationships
	Supervisor Profile `gorm:"foreignKey:SupervisorID;constraint:OnDelete:CASCADE" json:"supervisor,omitempty"`
}

// TableName specifies the table name for DigitalSignature
func (DigitalSignature) TableName() string {
	return "digital_signatures"
}
