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

// DocumentService handles proposal document uploads
type DocumentService struct {
	db       *gorm.DB
	store    ObjectStore
	activity *ActivityService
}

func NewDocumentService(db *gorm.DB, store ObjectStore, activity *ActivityService) *DocumentService {
	return &DocumentService{db: db, store: store, activity: activity}
}

// UploadProposalDocument validates and attaches a PDF to a proposal. Only
// members of the proposal's team may upload; approved and rejected proposals
// are frozen.
func (s *DocumentService) UploadProposalDocument(ctx context.Context, sess auth.Session, proposalID uuid.UUID, file *multipart.FileHeader) (*model.ProposalDocument, error) {
	var proposal model.Proposal
	if err := s.db.WithContext(ctx).First(&proposal, "id = ?", proposalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: proposal %s", ErrNotFound, proposalID)
		}
		return nil, fmt.Errorf("failed to load proposal: %w", err)
	}

	if proposal.Status == model.ProposalStatusApproved || proposal.Status == model.ProposalStatusRejected {
		return nil, fmt.Errorf("%w: proposal is %s", ErrInvalidTransition, proposal.Status)
	}

	if sess.Is(model.RoleStudent) {
		if proposal.TeamID == nil {
			return nil, ErrForbidden
		}
		var count int64
		err := s.db.WithContext(ctx).Model(&model.TeamMember{}).
			Where("team_id = ? AND student_id = ?", *proposal.TeamID, sess.UserID).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check team membership: %w", err)
		}
		if count == 0 {
			return nil, ErrForbidden
		}
	}

	content, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer content.Close()

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	result, err := pdfvalidation.ValidatePDFBytes(data, pdfvalidation.ProposalLimits)
	if err != nil {
		return nil, fmt.Errorf("failed to validate document: %w", err)
	}
	if !result.Valid {
		return nil, validationError("invalid proposal document: %s", result.Error)
	}

	key := storage.GenerateKey("proposals", file.Filename)
	fileURL, err := s.store.UploadBytes(ctx, key, data, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	document := &model.ProposalDocument{
		ProposalID: proposalID,
		FileName:   file.Filename,
		FileURL:    fileURL,
		FileType:   "application/pdf",
		UploadedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(document).Error; err != nil {
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	s.activity.Record(ctx, &sess.UserID, &proposalID, model.ActionDocumentUploaded,
		fmt.Sprintf("Document %s uploaded", file.Filename),
		map[string]interface{}{"page_count": result.PageCount, "file_size": result.FileSize})

	return document, nil
}

// ListProposalDocuments returns a proposal's documents, newest upload first
func (s *DocumentService) ListProposalDocuments(ctx context.Context, proposalID uuid.UUID) ([]model.ProposalDocument, error) {
	var documents []model.ProposalDocument
	err := s.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("uploaded_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, nil
}
