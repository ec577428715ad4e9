package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/services/storage"
	"github.com/andikahmadi/sikp-backend/utils/auth"
	"github.com/andikahmadi/sikp-backend/utils/pdfvalidation"
)

// RegistrationService manages KP program registrations and their eligibility
// documents
type RegistrationService struct {
	db       *gorm.DB
	store    ObjectStore
	activity *ActivityService
}

func NewRegistrationService(db *gorm.DB, store ObjectStore, activity *ActivityService) *RegistrationService {
	return &RegistrationService{db: db, store: store, activity: activity}
}

// RegistrationInput carries the full academic record. Every save rewrites all
// of it; partial updates would leave NOT NULL columns behind.
type RegistrationInput struct {
	Semester              int     `json:"semester" validate:"required,min=1,max=14"`
	IPK                   float64 `json:"ipk" validate:"required"`
	TotalCompletedCredits int     `json:"total_completed_credits" validate:"required,min=0"`
	TotalDECredits        int     `json:"total_d_e_credits" validate:"min=0"`
	Notes                 string  `json:"notes"`
}

func (in RegistrationInput) validate() error {
	if in.Semester < 1 || in.Semester > 14 {
		return validationError("semester must be between 1 and 14")
	}
	if in.IPK < 0 || in.IPK > 4 {
		return validationError("ipk must be between 0.00 and 4.00")
	}
	if in.TotalCompletedCredits < 0 {
		return validationError("total completed credits cannot be negative")
	}
	if in.TotalDECredits < 0 {
		return validationError("total D/E credits cannot be negative")
	}
	if in.TotalDECredits > in.TotalCompletedCredits {
		return validationError("total D/E credits cannot exceed total completed credits")
	}
	return nil
}

// Save creates the student's registration or rewrites the existing one. A
// rejected registration returns to pending on resubmission; approved and
// active registrations are frozen.
func (s *RegistrationService) Save(ctx context.Context, sess auth.Session, in RegistrationInput) (*model.KpRegistration, error) {
	if !sess.Is(model.RoleStudent) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var registration model.KpRegistration
	err := s.db.WithContext(ctx).First(&registration, "student_id = ?", sess.UserID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		registration = model.KpRegistration{
			StudentID:             sess.UserID,
			Semester:              in.Semester,
			IPK:                   in.IPK,
			TotalCompletedCredits: in.TotalCompletedCredits,
			TotalDECredits:        in.TotalDECredits,
			RegistrationStatus:    model.RegistrationPending,
			Status:                model.RegistrationPending,
			Notes:                 in.Notes,
		}
		if err := s.db.WithContext(ctx).Create(&registration).Error; err != nil {
			return nil, fmt.Errorf("failed to create registration: %w", err)
		}
		s.activity.Record(ctx, &sess.UserID, nil, model.ActionRegistrationCreated,
			"KP registration submitted", nil)
		return &registration, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}

	if registration.RegistrationStatus == model.RegistrationApproved ||
		registration.Status == model.RegistrationActive {
		return nil, fmt.Errorf("%w: registration already approved", ErrInvalidTransition)
	}

	// Whole-record rewrite: every academic field is written on every update
	// so the NOT NULL columns are always refreshed together
	updates := map[string]interface{}{
		"semester":                in.Semester,
		"ip_k":                    in.IPK,
		"total_completed_credits": in.TotalCompletedCredits,
		"total_de_credits":        in.TotalDECredits,
		"notes":                   in.Notes,
		"registration_status":     model.RegistrationPending,
		"status":                  model.RegistrationPending,
	}
	if err := s.db.WithContext(ctx).Model(&registration).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update registration: %w", err)
	}

	return s.Get(ctx, sess.UserID)
}

// AttachDocument validates and stores a KRS or transcript PDF on the
// student's registration. kind is "krs" or "transcript".
func (s *RegistrationService) AttachDocument(ctx context.Context, sess auth.Session, kind string, file *multipart.FileHeader) (*model.KpRegistration, error) {
	if !sess.Is(model.RoleStudent) {
		return nil, ErrForbidden
	}

	var limits pdfvalidation.PDFLimits
	var column string
	switch kind {
	case "krs":
		limits = pdfvalidation.KRSLimits
		column = "last_krs_file"
	case "transcript":
		limits = pdfvalidation.TranscriptLimits
		column = "last_gpa_file"
	default:
		return nil, validationError("unknown document kind %q", kind)
	}

	var registration model.KpRegistration
	if err := s.db.WithContext(ctx).First(&registration, "student_id = ?", sess.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no registration for student", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}

	content, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s document: %w", kind, err)
	}
	defer content.Close()

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s document: %w", kind, err)
	}

	result, err := pdfvalidation.ValidatePDFBytes(data, limits)
	if err != nil {
		return nil, fmt.Errorf("failed to validate %s document: %w", kind, err)
	}
	if !result.Valid {
		return nil, validationError("invalid %s document: %s", kind, result.Error)
	}

	key := storage.GenerateKey(fmt.Sprintf("registrations/%s", kind), file.Filename)
	fileURL, err := s.store.UploadBytes(ctx, key, data, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to store %s document: %w", kind, err)
	}

	if err := s.db.WithContext(ctx).Model(&registration).Update(column, fileURL).Error; err != nil {
		return nil, fmt.Errorf("failed to attach %s document: %w", kind, err)
	}

	s.activity.Record(ctx, &sess.UserID, nil, model.ActionDocumentUploaded,
		fmt.Sprintf("Registration %s document uploaded", kind), nil)

	return s.Get(ctx, sess.UserID)
}

// Review decides a pending registration. Coordinator or admin only.
func (s *RegistrationService) Review(ctx context.Context, sess auth.Session, registrationID uuid.UUID, approve bool, notes string) (*model.KpRegistration, error) {
	if !sess.CanReview() {
		return nil, ErrForbidden
	}

	var registration model.KpRegistration
	if err := s.db.WithContext(ctx).First(&registration, "id = ?", registrationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: registration %s", ErrNotFound, registrationID)
		}
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}

	if registration.RegistrationStatus != model.RegistrationPending {
		return nil, fmt.Errorf("%w: cannot review from %s", ErrInvalidTransition, registration.RegistrationStatus)
	}

	status := model.RegistrationRejected
	if approve {
		status = model.RegistrationApproved
	}

	updates := map[string]interface{}{"registration_status": status}
	if notes != "" {
		updates["notes"] = notes
	}
	if err := s.db.WithContext(ctx).Model(&registration).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to review registration: %w", err)
	}

	s.activity.Record(ctx, &sess.UserID, nil, model.ActionRegistrationReviewed,
		fmt.Sprintf("Registration %s %s", registration.ID, status), nil)

	return s.Get(ctx, registration.StudentID)
}

// Get returns the student's registration
func (s *RegistrationService) Get(ctx context.Context, studentID uuid.UUID) (*model.KpRegistration, error) {
	var registration model.KpRegistration
	err := s.db.WithContext(ctx).Preload("Student").First(&registration, "student_id = ?", studentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no registration for student %s", ErrNotFound, studentID)
		}
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}
	return &registration, nil
}

// List returns registrations filtered by review status; empty status means all
func (s *RegistrationService) List(ctx context.Context, status string) ([]model.KpRegistration, error) {
	query := s.db.WithContext(ctx).Preload("Student").Order("created_at DESC")
	if status != "" {
		query = query.Where("registration_status = ?", status)
	}

	var registrations []model.KpRegistration
	if err := query.Find(&registrations).Error; err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return registrations, nil
}
