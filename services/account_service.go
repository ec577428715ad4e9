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

// AccountService implements the privileged account maintenance operations
type AccountService struct {
	db        *gorm.DB
	blacklist *auth.BlacklistService
	activity  *ActivityService
}

func NewAccountService(db *gorm.DB, blacklist *auth.BlacklistService, activity *ActivityService) *AccountService {
	return &AccountService{db: db, blacklist: blacklist, activity: activity}
}

// DeleteUser removes a profile and all rows that reference it, in one
// transaction, then revokes the user's outstanding tokens. The activity log
// keeps its entries; their user reference is detached instead of deleted.
func (s *AccountService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	var profile model.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deletes := []struct {
			name  string
			where string
			model interface{}
		}{
			{"evaluations", "student_id = ?", &model.Evaluation{}},
			{"signatures", "supervisor_id = ?", &model.DigitalSignature{}},
			{"registrations", "student_id = ?", &model.KpRegistration{}},
			{"timesheets", "student_id = ?", &model.StudentTimesheet{}},
			{"guidance reports", "student_id = ?", &model.GuidanceReport{}},
			{"team memberships", "student_id = ?", &model.TeamMember{}},
			{"supervisor assignments", "supervisor_id = ?", &model.TeamSupervisor{}},
			{"guidance sessions", "supervisor_id = ?", &model.GuidanceSession{}},
		}
		for _, d := range deletes {
			if err := tx.Where(d.where, userID).Delete(d.model).Error; err != nil {
				return fmt.Errorf("failed to delete %s: %w", d.name, err)
			}
		}

		err := tx.Model(&model.SystemActivityLog{}).
			Where("user_id = ?", userID).
			Update("user_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to detach activity entries: %w", err)
		}

		if err := tx.Delete(&model.Profile{}, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.blacklist.RevokeAllUserTokens(ctx, userID); err != nil {
		// The profile row is gone; a failed revocation only shortens the
		// window until the tokens expire on their own
		log.Printf("Failed to revoke tokens for deleted user %s: %v", userID, err)
	}

	s.activity.Record(ctx, nil, nil, model.ActionUserDeleted,
		fmt.Sprintf("User %s (%s) deleted", profile.FullName, profile.Email),
		map[string]interface{}{"deleted_user_id": userID.String(), "role": string(profile.Role)})

	return nil
}
