package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/services/storage"
	"github.com/andikahmadi/sikp-backend/utils/auth"
	"github.com/andikahmadi/sikp-backend/utils/cache"
)

const signatureCacheTTL = 5 * time.Minute

// SignatureService manages the digital signature lifecycle of supervisors.
// Invariant maintained here: at most one non-deleted signature row exists per
// supervisor; every path that installs a new row supersedes the old ones in
// the same transaction.
type SignatureService struct {
	db       *gorm.DB
	store    ObjectStore
	cache    *cache.RedisCache
	activity *ActivityService
	baseURL  string
}

// NewSignatureService creates a new signature service. cache may be nil when
// Redis is unavailable; caching is then skipped.
func NewSignatureService(db *gorm.DB, store ObjectStore, redisCache *cache.RedisCache, activity *ActivityService, baseURL string) *SignatureService {
	return &SignatureService{
		db:       db,
		store:    store,
		cache:    redisCache,
		activity: activity,
		baseURL:  baseURL,
	}
}

// Upload stores a new signature image for the supervisor and installs it as
// the current pending signature, superseding any previous one
func (s *SignatureService) Upload(ctx context.Context, sess auth.Session, supervisorID uuid.UUID, file *multipart.FileHeader) (*model.DigitalSignature, error) {
	// Supervisors upload their own signature; admins may act for anyone
	if sess.UserID != supervisorID && !sess.Is(model.RoleAdmin) {
		return nil, ErrForbidden
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return nil, validationError("signature must be a PNG or JPEG image")
	}

	content, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open signature file: %w", err)
	}
	defer content.Close()

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read signature file: %w", err)
	}

	key := storage.GenerateKey("signatures", file.Filename)
	signatureURL, err := s.store.UploadBytes(ctx, key, data, storage.GetContentType(file.Filename))
	if err != nil {
		return nil, fmt.Errorf("failed to store signature image: %w", err)
	}

	signature, err := s.install(ctx, supervisorID, signatureURL, model.SignatureStatusPending, false)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, &sess.UserID, nil, model.ActionSignatureUploaded,
		fmt.Sprintf("Signature uploaded for supervisor %s", supervisorID), nil)

	return signature, nil
}

// Review decides a pending signature. Approval generates the QR artifact and
// records its URL; rejection never populates the QR field. Admin only.
func (s *SignatureService) Review(ctx context.Context, sess auth.Session, signatureID uuid.UUID, approve bool) (*model.DigitalSignature, error) {
	if !sess.Is(model.RoleAdmin) {
		return nil, ErrForbidden
	}

	var signature model.DigitalSignature
	if err := s.db.WithContext(ctx).First(&signature, "id = ?", signatureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: signature %s", ErrNotFound, signatureID)
		}
		return nil, fmt.Errorf("failed to load signature: %w", err)
	}

	if signature.Status != model.SignatureStatusPending {
		return nil, fmt.Errorf("%w: cannot review from %s", ErrInvalidTransition, signature.Status)
	}

	if approve {
		qrURL, err := s.generateQR(ctx, signature.ID)
		if err != nil {
			return nil, err
		}
		signature.Status = model.SignatureStatusApproved
		signature.QRCodeURL = qrURL
	} else {
		signature.Status = model.SignatureStatusRejected
		signature.QRCodeURL = ""
	}

	if err := s.db.WithContext(ctx).Save(&signature).Error; err != nil {
		return nil, fmt.Errorf("failed to update signature: %w", err)
	}

	s.invalidateCache(ctx, signature.SupervisorID)
	s.activity.Record(ctx, &sess.UserID, nil, model.ActionSignatureReviewed,
		fmt.Sprintf("Signature %s %s", signature.ID, signature.Status), nil)

	return &signature, nil
}

// Delete soft-deletes a signature; the supervisor's current-signature view
// reverts to the empty status object
func (s *SignatureService) Delete(ctx context.Context, sess auth.Session, signatureID uuid.UUID) error {
	var signature model.DigitalSignature
	if err := s.db.WithContext(ctx).First(&signature, "id = ?", signatureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: signature %s", ErrNotFound, signatureID)
		}
		return fmt.Errorf("failed to load signature: %w", err)
	}

	if sess.UserID != signature.SupervisorID && !sess.Is(model.RoleAdmin) {
		return ErrForbidden
	}

	err := s.db.WithContext(ctx).Model(&signature).
		Updates(map[string]interface{}{
			"status":      model.SignatureStatusDeleted,
			"qr_code_url": "",
		}).Error
	if err != nil {
		return fmt.Errorf("failed to delete signature: %w", err)
	}

	s.invalidateCache(ctx, signature.SupervisorID)
	return nil
}

// SignatureStatus is the current-signature view. When a supervisor has no
// non-deleted signature, callers receive this object with empty fields, never
// an error; the UI branches on field presence.
type SignatureStatus struct {
	ID           *uuid.UUID `json:"id,omitempty"`
	Status       string     `json:"status"`
	SignatureURL string     `json:"signature_url,omitempty"`
	QRCodeURL    string     `json:"qr_code_url,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// CurrentStatus returns the supervisor's most recent non-deleted signature as
// a status object, or an empty status object when none exists
func (s *SignatureService) CurrentStatus(ctx context.Context, supervisorID uuid.UUID) (*SignatureStatus, error) {
	cacheKey := fmt.Sprintf("signature:status:%s", supervisorID)
	if s.cache != nil {
		var cached SignatureStatus
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var signature model.DigitalSignature
	err := s.db.WithContext(ctx).
		Where("supervisor_id = ? AND status <> ?", supervisorID, model.SignatureStatusDeleted).
		Order("created_at DESC").
		First(&signature).Error

	status := &SignatureStatus{}
	switch {
	case err == nil:
		id := signature.ID
		updatedAt := signature.UpdatedAt
		status.ID = &id
		status.Status = string(signature.Status)
		status.SignatureURL = signature.SignatureURL
		status.QRCodeURL = signature.QRCodeURL
		status.UpdatedAt = &updatedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Null-object: no signature yet is a normal state, not an error
	default:
		return nil, fmt.Errorf("failed to load signature status: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, status, signatureCacheTTL); err != nil {
			log.Printf("Failed to cache signature status for %s: %v", supervisorID, err)
		}
	}

	return status, nil
}

// ListPending lists pending signatures for the admin review queue
func (s *SignatureService) ListPending(ctx context.Context) ([]model.DigitalSignature, error) {
	var signatures []model.DigitalSignature
	err := s.db.WithContext(ctx).
		Preload("Supervisor").
		Where("status = ?", model.SignatureStatusPending).
		Order("created_at ASC").
		Find(&signatures).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending signatures: %w", err)
	}
	return signatures, nil
}

// UpsertSignatureInput is the payload of the privileged update-signature
// endpoint. Either SignatureID or SupervisorID must be set, together with a
// valid status.
type UpsertSignatureInput struct {
	SignatureID  *uuid.UUID            `json:"signatureId"`
	SupervisorID *uuid.UUID            `json:"supervisor_id"`
	Status       model.SignatureStatus `json:"status"`
	SignatureURL string                `json:"signature_url"`
}

// Upsert updates an existing signature row or inserts a new one for the
// supervisor, preserving the one-non-deleted-row invariant. Approved rows get
// a QR artifact.
func (s *SignatureService) Upsert(ctx context.Context, in UpsertSignatureInput) (*model.DigitalSignature, error) {
	if in.SignatureID == nil && in.SupervisorID == nil {
		return nil, validationError("signatureId or supervisor_id is required")
	}
	if in.Status == "" {
		return nil, validationError("status is required")
	}
	if !model.ValidSignatureStatus(in.Status) {
		return nil, validationError("unknown signature status %q", in.Status)
	}

	if in.SignatureID != nil {
		var signature model.DigitalSignature
		if err := s.db.WithContext(ctx).First(&signature, "id = ?", *in.SignatureID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: signature %s", ErrNotFound, *in.SignatureID)
			}
			return nil, fmt.Errorf("failed to load signature: %w", err)
		}

		// A superseded row stays superseded; reviving it would leave the
		// supervisor with two current signatures. New rows go through the
		// supervisor_id path.
		if signature.Status == model.SignatureStatusDeleted {
			return nil, fmt.Errorf("%w: signature %s is deleted", ErrInvalidTransition, signature.ID)
		}

		signature.Status = in.Status
		if in.SignatureURL != "" {
			signature.SignatureURL = in.SignatureURL
		}
		if in.Status == model.SignatureStatusApproved && signature.QRCodeURL == "" {
			qrURL, err := s.generateQR(ctx, signature.ID)
			if err != nil {
				return nil, err
			}
			signature.QRCodeURL = qrURL
		}
		if in.Status != model.SignatureStatusApproved {
			signature.QRCodeURL = ""
		}

		if err := s.db.WithContext(ctx).Save(&signature).Error; err != nil {
			return nil, fmt.Errorf("failed to update signature: %w", err)
		}
		s.invalidateCache(ctx, signature.SupervisorID)
		return &signature, nil
	}

	// Insert path: a new current row for the supervisor
	signature, err := s.install(ctx, *in.SupervisorID, in.SignatureURL, in.Status, in.Status == model.SignatureStatusApproved)
	if err != nil {
		return nil, err
	}
	return signature, nil
}

// install creates a new current signature row for the supervisor, marking all
// prior non-deleted rows deleted in the same transaction
func (s *SignatureService) install(ctx context.Context, supervisorID uuid.UUID, signatureURL string, status model.SignatureStatus, withQR bool) (*model.DigitalSignature, error) {
	signature := &model.DigitalSignature{
		SupervisorID: supervisorID,
		SignatureURL: signatureURL,
		Status:       status,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.DigitalSignature{}).
			Where("supervisor_id = ? AND status <> ?", supervisorID, model.SignatureStatusDeleted).
			Updates(map[string]interface{}{
				"status":      model.SignatureStatusDeleted,
				"qr_code_url": "",
			}).Error
		if err != nil {
			return fmt.Errorf("failed to supersede previous signatures: %w", err)
		}

		if err := tx.Create(signature).Error; err != nil {
			return fmt.Errorf("failed to create signature: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if withQR {
		qrURL, err := s.generateQR(ctx, signature.ID)
		if err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).Model(signature).Update("qr_code_url", qrURL).Error; err != nil {
			return nil, fmt.Errorf("failed to store QR code URL: %w", err)
		}
		signature.QRCodeURL = qrURL
	}

	s.invalidateCache(ctx, supervisorID)
	return signature, nil
}

// generateQR renders the verification QR PNG for a signature and uploads it
func (s *SignatureService) generateQR(ctx context.Context, signatureID uuid.UUID) (string, error) {
	verifyURL := fmt.Sprintf("%s/verify/signatures/%s", s.baseURL, signatureID)

	png, err := qrcode.Encode(verifyURL, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	key := storage.GenerateKey("signatures/qr", fmt.Sprintf("%s.png", signatureID))
	qrURL, err := s.store.UploadBytes(ctx, key, png, "image/png")
	if err != nil {
		return "", fmt.Errorf("failed to store QR code: %w", err)
	}
	return qrURL, nil
}

func (s *SignatureService) invalidateCache(ctx context.Context, supervisorID uuid.UUID) {
	if s.cache == nil {
		return
	}
	cacheKey := fmt.Sprintf("signature:status:%s", supervisorID)
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		log.Printf("Failed to invalidate signature cache for %s: %v", supervisorID, err)
	}
}
