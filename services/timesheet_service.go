package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/utils/auth"
)

// TimesheetService manages the daily work logs of students on placement
type TimesheetService struct {
	db *gorm.DB
}

func NewTimesheetService(db *gorm.DB) *TimesheetService {
	return &TimesheetService{db: db}
}

// TimesheetInput is one daily entry. Times are HH:MM, 24-hour.
type TimesheetInput struct {
	WorkDate  string `json:"work_date" validate:"required"` // YYYY-MM-DD
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Activity  string `json:"activity" validate:"required"`
}

func (in TimesheetInput) parse() (time.Time, error) {
	workDate, err := time.Parse("2006-01-02", in.WorkDate)
	if err != nil {
		return time.Time{}, validationError("work_date must be YYYY-MM-DD")
	}

	start, err := time.Parse("15:04", in.StartTime)
	if err != nil {
		return time.Time{}, validationError("start_time must be HH:MM")
	}
	end, err := time.Parse("15:04", in.EndTime)
	if err != nil {
		return time.Time{}, validationError("end_time must be HH:MM")
	}
	if !end.After(start) {
		return time.Time{}, validationError("end_time must be after start_time")
	}

	if in.Activity == "" {
		return time.Time{}, validationError("activity is required")
	}
	return workDate, nil
}

// Create records a new timesheet entry for the student. One entry per student
// per date.
func (s *TimesheetService) Create(ctx context.Context, sess auth.Session, in TimesheetInput) (*model.StudentTimesheet, error) {
	if !sess.Is(model.RoleStudent) {
		return nil, ErrForbidden
	}

	workDate, err := in.parse()
	if err != nil {
		return nil, err
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&model.StudentTimesheet{}).
		Where("student_id = ? AND work_date = ?", sess.UserID, workDate).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing entries: %w", err)
	}
	if count > 0 {
		return nil, validationError("an entry for %s already exists", in.WorkDate)
	}

	entry := &model.StudentTimesheet{
		StudentID: sess.UserID,
		WorkDate:  workDate,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Activity:  in.Activity,
		Status:    model.TimesheetStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create timesheet entry: %w", err)
	}
	return entry, nil
}

// Update rewrites a pending entry. Reviewed entries are frozen.
func (s *TimesheetService) Update(ctx context.Context, sess auth.Session, entryID uuid.UUID, in TimesheetInput) (*model.StudentTimesheet, error) {
	entry, err := s.load(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.StudentID != sess.UserID {
		return nil, ErrForbidden
	}
	if entry.Status != model.TimesheetStatusPending {
		return nil, fmt.Errorf("%w: entry already %s", ErrInvalidTransition, entry.Status)
	}

	workDate, err := in.parse()
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"work_date":  workDate,
		"start_time": in.StartTime,
		"end_time":   in.EndTime,
		"activity":   in.Activity,
	}
	if err := s.db.WithContext(ctx).Model(entry).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update timesheet entry: %w", err)
	}
	return s.load(ctx, entryID)
}

// Review decides a pending entry. Supervisors, coordinators and admins may
// review.
func (s *TimesheetService) Review(ctx context.Context, sess auth.Session, entryID uuid.UUID, approve bool) (*model.StudentTimesheet, error) {
	if !sess.Is(model.RoleSupervisor, model.RoleCoordinator, model.RoleAdmin) {
		return nil, ErrForbidden
	}

	entry, err := s.load(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != model.TimesheetStatusPending {
		return nil, fmt.Errorf("%w: cannot review from %s", ErrInvalidTransition, entry.Status)
	}

	status := model.TimesheetStatusRejected
	if approve {
		status = model.TimesheetStatusApproved
	}
	if err := s.db.WithContext(ctx).Model(entry).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to review timesheet entry: %w", err)
	}
	entry.Status = status
	return entry, nil
}

// Delete removes a pending entry. Students may delete their own entries.
func (s *TimesheetService) Delete(ctx context.Context, sess auth.Session, entryID uuid.UUID) error {
	entry, err := s.load(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.StudentID != sess.UserID && !sess.Is(model.RoleAdmin) {
		return ErrForbidden
	}
	if entry.Status != model.TimesheetStatusPending {
		return fmt.Errorf("%w: entry already %s", ErrInvalidTransition, entry.Status)
	}

	if err := s.db.WithContext(ctx).Delete(entry).Error; err != nil {
		return fmt.Errorf("failed to delete timesheet entry: %w", err)
	}
	return nil
}

// ListForStudent returns a student's entries between from and to inclusive;
// zero times mean unbounded
func (s *TimesheetService) ListForStudent(ctx context.Context, studentID uuid.UUID, from, to time.Time) ([]model.StudentTimesheet, error) {
	query := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("work_date ASC")
	if !from.IsZero() {
		query = query.Where("work_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("work_date <= ?", to)
	}

	var entries []model.StudentTimesheet
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list timesheet entries: %w", err)
	}
	return entries, nil
}

// ListPendingForTeam returns pending entries of a team's members, for the
// supervisor review queue
func (s *TimesheetService) ListPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]model.StudentTimesheet, error) {
	var entries []model.StudentTimesheet
	err := s.db.WithContext(ctx).
		Preload("Student").
		Where("status = ? AND student_id IN (?)", model.TimesheetStatusPending,
			s.db.Model(&model.TeamMember{}).Select("student_id").Where("team_id = ?", teamID)).
		Order("work_date ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending timesheet entries: %w", err)
	}
	return entries, nil
}

func (s *TimesheetService) load(ctx context.Context, entryID uuid.UUID) (*model.StudentTimesheet, error) {
	var entry model.StudentTimesheet
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: timesheet entry %s", ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to load timesheet entry: %w", err)
	}
	return &entry, nil
}
