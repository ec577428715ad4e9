package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/utils/auth"
)

// TeamService manages team membership and supervisor slot assignment
type TeamService struct {
	db *gorm.DB
}

// NewTeamService creates a new team service
func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

// Create creates a team with an initial member set. The creating student is
// always a member.
func (s *TeamService) Create(ctx context.Context, sess auth.Session, name string, memberIDs []uuid.UUID) (*model.Team, error) {
	if name == "" {
		return nil, validationError("team name is required")
	}

	if sess.Role == model.RoleStudent {
		memberIDs = appendUnique(memberIDs, sess.UserID)
	}
	if len(memberIDs) == 0 {
		return nil, validationError("a team needs at least one member")
	}

	team := &model.Team{Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}
		for _, studentID := range memberIDs {
			if err := s.addMemberTx(tx, team.ID, studentID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, team.ID)
}

// AddMember adds a student to a team
func (s *TeamService) AddMember(ctx context.Context, sess auth.Session, teamID, studentID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.addMemberTx(tx, teamID, studentID)
	})
}

func (s *TeamService) addMemberTx(tx *gorm.DB, teamID, studentID uuid.UUID) error {
	var student model.Profile
	if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: student %s", ErrNotFound, studentID)
		}
		return fmt.Errorf("failed to load student: %w", err)
	}
	if student.Role != model.RoleStudent {
		return validationError("profile %s is not a student", studentID)
	}

	member := model.TeamMember{TeamID: teamID, StudentID: studentID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

// RemoveMember removes a student from a team
func (s *TeamService) RemoveMember(ctx context.Context, sess auth.Session, teamID, studentID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("team_id = ? AND student_id = ?", teamID, studentID).
		Delete(&model.TeamMember{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove team member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: membership", ErrNotFound)
	}
	return nil
}

// AssignSupervisor puts a supervisor into one of the team's two slots.
// Assigning an occupied slot overwrites it; no history is kept.
func (s *TeamService) AssignSupervisor(ctx context.Context, sess auth.Session, teamID, supervisorID uuid.UUID, slotIndex int) error {
	if slotIndex != model.SlotAcademicSupervisor && slotIndex != model.SlotFieldSupervisor {
		return validationError("slot index must be %d or %d", model.SlotAcademicSupervisor, model.SlotFieldSupervisor)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.assignSupervisorTx(tx, teamID, supervisorID, slotIndex)
	})
}

func (s *TeamService) assignSupervisorTx(tx *gorm.DB, teamID, supervisorID uuid.UUID, slotIndex int) error {
	var supervisor model.Profile
	if err := tx.First(&supervisor, "id = ?", supervisorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: supervisor %s", ErrNotFound, supervisorID)
		}
		return fmt.Errorf("failed to load supervisor: %w", err)
	}
	if supervisor.Role != model.RoleSupervisor {
		return validationError("profile %s is not a supervisor", supervisorID)
	}

	assignment := model.TeamSupervisor{
		TeamID:       teamID,
		SlotIndex:    slotIndex,
		SupervisorID: supervisorID,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "slot_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"supervisor_id"}),
	}).Create(&assignment).Error
	if err != nil {
		return fmt.Errorf("failed to assign supervisor: %w", err)
	}
	return nil
}

// Get loads a team with members and supervisor assignments
func (s *TeamService) Get(ctx context.Context, teamID uuid.UUID) (*model.Team, error) {
	var team model.Team
	err := s.db.WithContext(ctx).
		Preload("Members.Student").
		Preload("Supervisors.Supervisor").
		First(&team, "id = ?", teamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
		}
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return &team, nil
}

// TeamForStudent returns the team the student belongs to, or ErrNotFound
func (s *TeamService) TeamForStudent(ctx context.Context, studentID uuid.UUID) (*model.Team, error) {
	var membership model.TeamMember
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no team for student", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up membership: %w", err)
	}
	return s.Get(ctx, membership.TeamID)
}

// EligibleStudents lists students not yet in any team
func (s *TeamService) EligibleStudents(ctx context.Context) ([]model.Profile, error) {
	var students []model.Profile
	err := s.db.WithContext(ctx).
		Where("role = ?", model.RoleStudent).
		Where("id NOT IN (?)", s.db.Model(&model.TeamMember{}).Select("student_id")).
		Order("full_name").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible students: %w", err)
	}
	return students, nil
}

// EligibleSupervisors lists all supervisor profiles
func (s *TeamService) EligibleSupervisors(ctx context.Context) ([]model.Profile, error) {
	var supervisors []model.Profile
	err := s.db.WithContext(ctx).
		Where("role = ?", model.RoleSupervisor).
		Order("full_name").
		Find(&supervisors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible supervisors: %w", err)
	}
	return supervisors, nil
}

func appendUnique(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
