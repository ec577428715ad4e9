package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/model"
)

// ActivityService appends to the system activity log. Entries are the
// feedback trail shown on proposals and the audit trail of privileged actions.
type ActivityService struct {
	db *gorm.DB
}

// NewActivityService creates a new activity service
func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record appends one activity entry. Logging is best-effort: a failed insert
// must never fail the user action that triggered it, so errors are only logged.
func (s *ActivityService) Record(ctx context.Context, userID, proposalID *uuid.UUID, action, detail string, metadata map[string]interface{}) {
	entry := model.SystemActivityLog{
		UserID:     userID,
		ProposalID: proposalID,
		Action:     action,
		Detail:     detail,
	}

	if metadata != nil {
		metadataJSON, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("Failed to marshal activity metadata for %s: %v", action, err)
		} else {
			entry.Metadata = datatypes.JSON(metadataJSON)
		}
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("Failed to record activity %s: %v", action, err)
	}
}

// ListForUser retrieves recent activity entries for a user
func (s *ActivityService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.SystemActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []model.SystemActivityLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user activity: %w", err)
	}
	return entries, nil
}

// ListForProposal retrieves the feedback/activity trail of a proposal,
// oldest first so it reads as a conversation
func (s *ActivityService) ListForProposal(ctx context.Context, proposalID uuid.UUID) ([]model.SystemActivityLog, error) {
	var entries []model.SystemActivityLog
	err := s.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list proposal activity: %w", err)
	}
	return entries, nil
}

// TrimOlderThan deletes log entries older than the cutoff. Used by the
// retention cron job.
func (s *ActivityService) TrimOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.SystemActivityLog{})
	return result.RowsAffected, result.Error
}
