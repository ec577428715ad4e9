package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/services/storage"
	"github.com/andikahmadi/sikp-backend/utils/auth"
	"github.com/andikahmadi/sikp-backend/utils/pdfvalidation"
)

// GuidanceService manages guidance sessions between teams and their
// supervisors, and the reports students file for them
type GuidanceService struct {
	db    *gorm.DB
	store ObjectStore
}

func NewGuidanceService(db *gorm.DB, store ObjectStore) *GuidanceService {
	return &GuidanceService{db: db, store: store}
}

// ScheduleSessionInput describes a new guidance session
type ScheduleSessionInput struct {
	TeamID      uuid.UUID `json:"team_id" validate:"required"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Topic       string    `json:"topic" validate:"required"`
	Location    string    `json:"location"`
}

// ScheduleSession creates a session. Only a supervisor assigned to the team
// may schedule for it.
func (s *GuidanceService) ScheduleSession(ctx context.Context, sess auth.Session, in ScheduleSessionInput) (*model.GuidanceSession, error) {
	if !sess.Is(model.RoleSupervisor, model.RoleAdmin) {
		return nil, ErrForbidden
	}
	if in.Topic == "" {
		return nil, validationError("topic is required")
	}
	if in.ScheduledAt.IsZero() {
		return nil, validationError("scheduled_at is required")
	}

	if sess.Is(model.RoleSupervisor) {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.TeamSupervisor{}).
			Where("team_id = ? AND supervisor_id = ?", in.TeamID, sess.UserID).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check supervisor assignment: %w", err)
		}
		if count == 0 {
			return nil, ErrForbidden
		}
	}

	session := &model.GuidanceSession{
		TeamID:       in.TeamID,
		SupervisorID: sess.UserID,
		ScheduledAt:  in.ScheduledAt,
		Topic:        in.Topic,
		Location:     in.Location,
		Status:       model.GuidanceStatusScheduled,
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create guidance session: %w", err)
	}
	return session, nil
}

// CloseSession marks a scheduled session completed or cancelled
func (s *GuidanceService) CloseSession(ctx context.Context, sess auth.Session, sessionID uuid.UUID, status model.GuidanceSessionStatus) (*model.GuidanceSession, error) {
	if status != model.GuidanceStatusCompleted && status != model.GuidanceStatusCancelled {
		return nil, validationError("status must be completed or cancelled")
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.SupervisorID != sess.UserID && !sess.Is(model.RoleAdmin) {
		return nil, ErrForbidden
	}
	if session.Status != model.GuidanceStatusScheduled {
		return nil, fmt.Errorf("%w: session already %s", ErrInvalidTransition, session.Status)
	}

	if err := s.db.WithContext(ctx).Model(session).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to close guidance session: %w", err)
	}
	session.Status = status
	return session, nil
}

// FileReport records a student's report for a session, optionally with a PDF
// attachment. One report per student per session.
func (s *GuidanceService) FileReport(ctx context.Context, sess auth.Session, sessionID uuid.UUID, content string, file *multipart.FileHeader) (*model.GuidanceReport, error) {
	if !sess.Is(model.RoleStudent) {
		return nil, ErrForbidden
	}
	if content == "" {
		return nil, validationError("content is required")
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.GuidanceStatusCancelled {
		return nil, fmt.Errorf("%w: session is cancelled", ErrInvalidTransition)
	}

	var memberCount int64
	err = s.db.WithContext(ctx).Model(&model.TeamMember{}).
		Where("team_id = ? AND student_id = ?", session.TeamID, sess.UserID).
		Count(&memberCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check team membership: %w", err)
	}
	if memberCount == 0 {
		return nil, ErrForbidden
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&model.GuidanceReport{}).
		Where("session_id = ? AND student_id = ?", sessionID, sess.UserID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing report: %w", err)
	}
	if existing > 0 {
		return nil, validationError("a report for this session already exists")
	}

	var fileURL string
	if file != nil {
		reader, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open report attachment: %w", err)
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read report attachment: %w", err)
		}

		result, err := pdfvalidation.ValidatePDFBytes(data, pdfvalidation.GuidanceReportLimits)
		if err != nil {
			return nil, fmt.Errorf("failed to validate report attachment: %w", err)
		}
		if !result.Valid {
			return nil, validationError("invalid report attachment: %s", result.Error)
		}

		key := storage.GenerateKey("guidance", file.Filename)
		fileURL, err = s.store.UploadBytes(ctx, key, data, "application/pdf")
		if err != nil {
			return nil, fmt.Errorf("failed to store report attachment: %w", err)
		}
	}

	report := &model.GuidanceReport{
		SessionID: sessionID,
		StudentID: sess.UserID,
		Content:   content,
		FileURL:   fileURL,
	}
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, fmt.Errorf("failed to create guidance report: %w", err)
	}
	return report, nil
}

// ListForTeam returns a team's sessions newest first, with reports preloaded
func (s *GuidanceService) ListForTeam(ctx context.Context, teamID uuid.UUID) ([]model.GuidanceSession, error) {
	var sessions []model.GuidanceSession
	err := s.db.WithContext(ctx).
		Preload("Supervisor").
		Preload("Reports").
		Preload("Reports.Student").
		Where("team_id = ?", teamID).
		Order("scheduled_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list guidance sessions: %w", err)
	}
	return sessions, nil
}

// ListForSupervisor returns the sessions a supervisor scheduled, newest first
func (s *GuidanceService) ListForSupervisor(ctx context.Context, supervisorID uuid.UUID) ([]model.GuidanceSession, error) {
	var sessions []model.GuidanceSession
	err := s.db.WithContext(ctx).
		Preload("Team").
		Where("supervisor_id = ?", supervisorID).
		Order("scheduled_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list guidance sessions: %w", err)
	}
	return sessions, nil
}

func (s *GuidanceService) loadSession(ctx context.Context, sessionID uuid.UUID) (*model.GuidanceSession, error) {
	var session model.GuidanceSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: guidance session %s", ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load guidance session: %w", err)
	}
	return &session, nil
}
