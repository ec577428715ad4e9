package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/utils/auth"
)

// EvaluationService manages the per-student evaluator scores. The two rows of
// a student (academic and field supervisor) are managed as a unit: deleting
// either deletes both, in one transaction.
type EvaluationService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(db *gorm.DB, activity *ActivityService) *EvaluationService {
	return &EvaluationService{db: db, activity: activity}
}

// AddEvaluationInput carries a new evaluator score
type AddEvaluationInput struct {
	StudentID     uuid.UUID           `json:"student_id" validate:"required"`
	EvaluatorType model.EvaluatorType `json:"evaluator_type" validate:"required"`
	Score         float64             `json:"score"`
	Comments      string              `json:"comments"`
}

// Add creates one evaluation row after range-checking the score
func (s *EvaluationService) Add(ctx context.Context, sess auth.Session, in AddEvaluationInput) (*model.Evaluation, error) {
	if sess.Role == model.RoleStudent {
		return nil, ErrForbidden
	}
	if !model.ValidEvaluatorType(in.EvaluatorType) {
		return nil, validationError("unknown evaluator type %q", in.EvaluatorType)
	}
	if err := validateScore(in.Score); err != nil {
		return nil, err
	}

	var student model.Profile
	if err := s.db.WithContext(ctx).First(&student, "id = ?", in.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: student %s", ErrNotFound, in.StudentID)
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}

	var existing int64
	err := s.db.WithContext(ctx).Model(&model.Evaluation{}).
		Where("student_id = ? AND evaluator_type = ?", in.StudentID, in.EvaluatorType).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing evaluation: %w", err)
	}
	if existing > 0 {
		return nil, validationError("a %s evaluation already exists for this student", in.EvaluatorType)
	}

	evaluation := &model.Evaluation{
		StudentID:     in.StudentID,
		EvaluatorType: in.EvaluatorType,
		Score:         in.Score,
		Comments:      in.Comments,
	}
	if err := s.db.WithContext(ctx).Create(evaluation).Error; err != nil {
		return nil, fmt.Errorf("failed to create evaluation: %w", err)
	}

	s.activity.Record(ctx, &sess.UserID, nil, model.ActionEvaluationAdded,
		fmt.Sprintf("%s score recorded for %s", in.EvaluatorType, student.FullName), nil)

	return evaluation, nil
}

// Edit updates score and comments in place, preserving the row identity
func (s *EvaluationService) Edit(ctx context.Context, sess auth.Session, evaluationID uuid.UUID, score float64, comments string) (*model.Evaluation, error) {
	if sess.Role == model.RoleStudent {
		return nil, ErrForbidden
	}
	if err := validateScore(score); err != nil {
		return nil, err
	}

	var evaluation model.Evaluation
	if err := s.db.WithContext(ctx).First(&evaluation, "id = ?", evaluationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: evaluation %s", ErrNotFound, evaluationID)
		}
		return nil, fmt.Errorf("failed to load evaluation: %w", err)
	}

	evaluation.Score = score
	evaluation.Comments = comments
	if err := s.db.WithContext(ctx).Save(&evaluation).Error; err != nil {
		return nil, fmt.Errorf("failed to update evaluation: %w", err)
	}

	return &evaluation, nil
}

// Delete removes the targeted evaluation AND every other evaluation row of
// the same student, so both evaluator-type rows disappear together
func (s *EvaluationService) Delete(ctx context.Context, sess auth.Session, evaluationID uuid.UUID) error {
	if sess.Role == model.RoleStudent {
		return ErrForbidden
	}

	var studentID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var evaluation model.Evaluation
		if err := tx.First(&evaluation, "id = ?", evaluationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: evaluation %s", ErrNotFound, evaluationID)
			}
			return fmt.Errorf("failed to load evaluation: %w", err)
		}
		studentID = evaluation.StudentID

		if err := tx.Where("student_id = ?", studentID).Delete(&model.Evaluation{}).Error; err != nil {
			return fmt.Errorf("failed to delete evaluations: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, &sess.UserID, nil, model.ActionEvaluationDeleted,
		fmt.Sprintf("All evaluations removed for student %s", studentID), nil)

	return nil
}

// ListForStudent returns the student's evaluation rows with evaluator identity
func (s *EvaluationService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	err := s.db.WithContext(ctx).
		Preload("Student").
		Where("student_id = ?", studentID).
		Order("evaluator_type").
		Find(&evaluations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return evaluations, nil
}

// ListAll returns every evaluation joined with student identity
func (s *EvaluationService) ListAll(ctx context.Context) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	err := s.db.WithContext(ctx).
		Preload("Student").
		Order("created_at DESC").
		Find(&evaluations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return evaluations, nil
}

// validateScore enforces the [0,100] range with one decimal of precision
func validateScore(score float64) error {
	if score < 0 || score > 100 {
		return validationError("score must be between 0 and 100")
	}
	scaled := score * 10
	if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
		return validationError("score precision is one decimal place")
	}
	return nil
}
