package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/andikahmadi/sikp-backend/model"
)

const (
	activityRetention = 180 * 24 * time.Hour
	cronLogRetention  = 30 * 24 * time.Hour
	staleDraftAge     = 14 * 24 * time.Hour
)

// CleanupTokenBlacklist purges blacklist entries whose tokens have expired.
// Runs hourly; expired entries can never match a live token again.
func (m *CronManager) CleanupTokenBlacklist() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "cleanup_token_blacklist"

	removed, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to cleanup token blacklist: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired blacklist entries", removed))
}

// CleanupOldData trims activity entries and cron logs past their retention
// windows
func (m *CronManager) CleanupOldData() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	jobName := "cleanup_old_data"

	trimmed, err := m.activity.TrimOlderThan(ctx, time.Now().Add(-activityRetention))
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to trim activity log: %w", err))
		return
	}

	result := m.db.WithContext(ctx).
		Where("created_at < ?", time.Now().Add(-cronLogRetention)).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to trim cron logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Trimmed %d activity entries, %d cron logs",
		trimmed, result.RowsAffected))
}

// RemindStaleDrafts records an activity entry against proposals that have sat
// in draft for too long, so the team's feed surfaces the nudge
func (m *CronManager) RemindStaleDrafts() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "stale_draft_reminder"
	cutoff := time.Now().Add(-staleDraftAge)

	var proposals []model.Proposal
	err := m.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", model.ProposalStatusDraft, cutoff).
		Find(&proposals).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to query stale drafts: %w", err))
		return
	}

	if len(proposals) == 0 {
		m.logJobComplete(jobName, "No stale drafts")
		return
	}

	for i := range proposals {
		proposalID := proposals[i].ID
		m.activity.Record(ctx, nil, &proposalID, "draft_reminder",
			fmt.Sprintf("Proposal %q has been in draft since %s",
				proposals[i].Title, proposals[i].UpdatedAt.Format("2006-01-02")), nil)
	}

	m.logJobComplete(jobName, fmt.Sprintf("Reminded %d stale drafts", len(proposals)))
}
