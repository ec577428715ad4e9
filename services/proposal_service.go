package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/utils/auth"
)

// ProposalService owns the proposal lifecycle: submission, coordinator review
// and the aggregate detail read-model
type ProposalService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewProposalService creates a new proposal service
func NewProposalService(db *gorm.DB, activity *ActivityService) *ProposalService {
	return &ProposalService{db: db, activity: activity}
}

// SubmitProposalInput carries everything a team submission needs
type SubmitProposalInput struct {
	TeamID        uuid.UUID   `json:"team_id" validate:"required"`
	Title         string      `json:"title" validate:"required"`
	Description   string      `json:"description" validate:"required"`
	CompanyName   string      `json:"company_name"`
	SupervisorIDs []uuid.UUID `json:"supervisor_ids" validate:"required,min=1,max=2"`
	Draft         bool        `json:"draft"` // save without submitting
}

// Submit creates or resubmits the team's proposal. A team submits against one
// proposal row: resubmission updates the existing row back to submitted and
// clears the rejection reason. Requires the team to have at least one member
// and at least one selected supervisor.
func (s *ProposalService) Submit(ctx context.Context, sess auth.Session, in SubmitProposalInput) (*model.Proposal, error) {
	if in.Title == "" || in.Description == "" {
		return nil, validationError("title and description are required")
	}
	if len(in.SupervisorIDs) == 0 {
		return nil, validationError("at least one supervisor must be selected")
	}
	if len(in.SupervisorIDs) > 2 {
		return nil, validationError("a team has at most two supervisor slots")
	}

	var proposal model.Proposal
	teamSvc := NewTeamService(s.db)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var memberCount int64
		if err := tx.Model(&model.TeamMember{}).Where("team_id = ?", in.TeamID).Count(&memberCount).Error; err != nil {
			return fmt.Errorf("failed to count team members: %w", err)
		}
		if memberCount == 0 {
			return validationError("team has no members")
		}

		// Students may only submit for their own team
		if sess.Is(model.RoleStudent) {
			var callerCount int64
			err := tx.Model(&model.TeamMember{}).
				Where("team_id = ? AND student_id = ?", in.TeamID, sess.UserID).
				Count(&callerCount).Error
			if err != nil {
				return fmt.Errorf("failed to check team membership: %w", err)
			}
			if callerCount == 0 {
				return ErrForbidden
			}
		}

		// Fill supervisor slots in order: first ID is the academic
		// supervisor, second the field supervisor
		for i, supervisorID := range in.SupervisorIDs {
			if err := teamSvc.assignSupervisorTx(tx, in.TeamID, supervisorID, i+1); err != nil {
				return err
			}
		}

		status := model.ProposalStatusSubmitted
		if in.Draft {
			status = model.ProposalStatusDraft
		}

		err := tx.Where("team_id = ?", in.TeamID).First(&proposal).Error
		switch {
		case err == nil:
			// Approved is terminal for a submission; only the
			// rejection cycle comes back through here
			if proposal.Status == model.ProposalStatusApproved {
				return fmt.Errorf("%w: proposal already approved", ErrInvalidTransition)
			}
			// Resubmission cycle: same row, back to submitted, reason cleared
			proposal.Title = in.Title
			proposal.Description = in.Description
			proposal.CompanyName = in.CompanyName
			proposal.Status = status
			proposal.RejectionReason = ""
			if err := tx.Save(&proposal).Error; err != nil {
				return fmt.Errorf("failed to update proposal: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			teamID := in.TeamID
			proposal = model.Proposal{
				Title:       in.Title,
				Description: in.Description,
				CompanyName: in.CompanyName,
				Status:      status,
				TeamID:      &teamID,
			}
			if err := tx.Create(&proposal).Error; err != nil {
				return fmt.Errorf("failed to create proposal: %w", err)
			}
		default:
			return fmt.Errorf("failed to look up proposal: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !in.Draft {
		s.activity.Record(ctx, &sess.UserID, &proposal.ID, model.ActionProposalSubmitted,
			fmt.Sprintf("Proposal %q submitted", proposal.Title), nil)
	}

	return &proposal, nil
}

// Approve transitions a submitted proposal to approved. The team's
// registrations are activated in the same transaction so evaluation and
// timesheet eligibility unlocks atomically with the approval.
func (s *ProposalService) Approve(ctx context.Context, sess auth.Session, proposalID uuid.UUID) (*model.Proposal, error) {
	if !sess.CanReview() {
		return nil, ErrForbidden
	}

	var proposal model.Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadProposal(tx, proposalID, &proposal); err != nil {
			return err
		}
		if !decidable(proposal.Status) {
			return fmt.Errorf("%w: cannot approve from %s", ErrInvalidTransition, proposal.Status)
		}

		proposal.Status = model.ProposalStatusApproved
		proposal.RejectionReason = ""
		if err := tx.Save(&proposal).Error; err != nil {
			return fmt.Errorf("failed to approve proposal: %w", err)
		}

		// Unlock downstream eligibility for every team member
		if proposal.TeamID != nil {
			memberIDs := tx.Model(&model.TeamMember{}).
				Select("student_id").
				Where("team_id = ?", *proposal.TeamID)
			err := tx.Model(&model.KpRegistration{}).
				Where("student_id IN (?)", memberIDs).
				Update("status", model.RegistrationActive).Error
			if err != nil {
				return fmt.Errorf("failed to activate registrations: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, &sess.UserID, &proposal.ID, model.ActionProposalApproved,
		fmt.Sprintf("Proposal %q approved", proposal.Title), nil)

	return &proposal, nil
}

// Reject transitions a submitted proposal to rejected. A non-empty reason is
// required and persisted.
func (s *ProposalService) Reject(ctx context.Context, sess auth.Session, proposalID uuid.UUID, reason string) (*model.Proposal, error) {
	if !sess.CanReview() {
		return nil, ErrForbidden
	}
	if reason == "" {
		return nil, validationError("a rejection reason is required")
	}

	var proposal model.Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadProposal(tx, proposalID, &proposal); err != nil {
			return err
		}
		if !decidable(proposal.Status) {
			return fmt.Errorf("%w: cannot reject from %s", ErrInvalidTransition, proposal.Status)
		}

		proposal.Status = model.ProposalStatusRejected
		proposal.RejectionReason = reason
		if err := tx.Save(&proposal).Error; err != nil {
			return fmt.Errorf("failed to reject proposal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, &sess.UserID, &proposal.ID, model.ActionProposalRejected,
		reason, nil)

	return &proposal, nil
}

// MarkReviewed records that a coordinator has looked at a submitted proposal
// without deciding yet
func (s *ProposalService) MarkReviewed(ctx context.Context, sess auth.Session, proposalID uuid.UUID) (*model.Proposal, error) {
	if !sess.CanReview() {
		return nil, ErrForbidden
	}

	var proposal model.Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadProposal(tx, proposalID, &proposal); err != nil {
			return err
		}
		if proposal.Status != model.ProposalStatusSubmitted {
			return fmt.Errorf("%w: cannot mark reviewed from %s", ErrInvalidTransition, proposal.Status)
		}

		proposal.Status = model.ProposalStatusReviewed
		if err := tx.Save(&proposal).Error; err != nil {
			return fmt.Errorf("failed to mark proposal reviewed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, &sess.UserID, &proposal.ID, model.ActionProposalReviewed,
		fmt.Sprintf("Proposal %q marked reviewed", proposal.Title), nil)

	return &proposal, nil
}

// ProposalDetail is the aggregate read-model of one proposal
type ProposalDetail struct {
	Proposal      model.Proposal           `json:"proposal"`
	DisplayStatus model.ProposalStatus     `json:"display_status"`
	Members       []model.TeamMember       `json:"members"`
	Supervisors   []model.TeamSupervisor   `json:"supervisors"`
	Documents     []model.ProposalDocument `json:"documents"`
	Feedback      []model.SystemActivityLog `json:"feedback"`
}

// GetDetail aggregates the proposal with its team, documents, supervisors and
// feedback trail. Only a missing proposal row is an error; a failure loading
// any joined collection degrades that collection to empty so the rest of the
// aggregate still renders.
func (s *ProposalService) GetDetail(ctx context.Context, proposalID uuid.UUID) (*ProposalDetail, error) {
	var proposal model.Proposal
	if err := loadProposal(s.db.WithContext(ctx), proposalID, &proposal); err != nil {
		return nil, err
	}

	detail := &ProposalDetail{
		Proposal:      proposal,
		DisplayStatus: proposal.DisplayStatus(),
		Members:       []model.TeamMember{},
		Supervisors:   []model.TeamSupervisor{},
		Documents:     []model.ProposalDocument{},
		Feedback:      []model.SystemActivityLog{},
	}

	if proposal.TeamID != nil {
		if err := s.db.WithContext(ctx).
			Preload("Student").
			Where("team_id = ?", *proposal.TeamID).
			Find(&detail.Members).Error; err != nil {
			log.Printf("Degrading proposal %s members to empty: %v", proposalID, err)
			detail.Members = []model.TeamMember{}
		}

		if err := s.db.WithContext(ctx).
			Preload("Supervisor").
			Where("team_id = ?", *proposal.TeamID).
			Order("slot_index").
			Find(&detail.Supervisors).Error; err != nil {
			log.Printf("Degrading proposal %s supervisors to empty: %v", proposalID, err)
			detail.Supervisors = []model.TeamSupervisor{}
		}
	}

	if err := s.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("uploaded_at DESC").
		Find(&detail.Documents).Error; err != nil {
		log.Printf("Degrading proposal %s documents to empty: %v", proposalID, err)
		detail.Documents = []model.ProposalDocument{}
	}

	feedback, err := s.activity.ListForProposal(ctx, proposalID)
	if err != nil {
		log.Printf("Degrading proposal %s feedback to empty: %v", proposalID, err)
	} else {
		detail.Feedback = feedback
	}

	return detail, nil
}

// ListAll returns all proposals, newest first
func (s *ProposalService) ListAll(ctx context.Context) ([]model.Proposal, error) {
	var proposals []model.Proposal
	err := s.db.WithContext(ctx).
		Preload("Team").
		Order("created_at DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	return proposals, nil
}

// GetByTeam returns the team's proposal, or ErrNotFound
func (s *ProposalService) GetByTeam(ctx context.Context, teamID uuid.UUID) (*model.Proposal, error) {
	var proposal model.Proposal
	err := s.db.WithContext(ctx).Where("team_id = ?", teamID).First(&proposal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: proposal for team %s", ErrNotFound, teamID)
		}
		return nil, fmt.Errorf("failed to load proposal: %w", err)
	}
	return &proposal, nil
}

// decidable reports whether a coordinator may still approve or reject a
// proposal in this status. Marking a proposal reviewed parks it without
// taking it out of the decision set.
func decidable(status model.ProposalStatus) bool {
	return status == model.ProposalStatusSubmitted || status == model.ProposalStatusReviewed
}

func loadProposal(tx *gorm.DB, proposalID uuid.UUID, dest *model.Proposal) error {
	if err := tx.First(dest, "id = ?", proposalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: proposal %s", ErrNotFound, proposalID)
		}
		return fmt.Errorf("failed to load proposal: %w", err)
	}
	return nil
}
