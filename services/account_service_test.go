package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/utils/auth"
)

func TestDeleteUserRemovesReferencingRows(t *testing.T) {
	db := newTestDB(t)
	activity := NewActivityService(db)
	svc := NewAccountService(db, auth.NewBlacklistService(db), activity)

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	keeper := createProfile(t, db, model.RoleStudent, "Dewi Lestari")
	team := createTeamWith(t, db, student, keeper)

	evaluation := model.Evaluation{
		StudentID:     student.ID,
		EvaluatorType: model.EvaluatorTypeSupervisor,
		Score:         80,
	}
	if err := db.Create(&evaluation).Error; err != nil {
		t.Fatalf("failed to create evaluation: %v", err)
	}
	registration := model.KpRegistration{
		StudentID:             student.ID,
		Semester:              6,
		IPK:                   3.2,
		TotalCompletedCredits: 100,
	}
	if err := db.Create(&registration).Error; err != nil {
		t.Fatalf("failed to create registration: %v", err)
	}
	activity.Record(context.Background(), &student.ID, nil, model.ActionRegistrationCreated, "KP registration submitted", nil)

	if err := svc.DeleteUser(context.Background(), student.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	var profileCount int64
	db.Model(&model.Profile{}).Where("id = ?", student.ID).Count(&profileCount)
	if profileCount != 0 {
		t.Error("profile row still exists")
	}

	var evalCount, regCount, memberCount int64
	db.Model(&model.Evaluation{}).Where("student_id = ?", student.ID).Count(&evalCount)
	db.Model(&model.KpRegistration{}).Where("student_id = ?", student.ID).Count(&regCount)
	db.Model(&model.TeamMember{}).Where("student_id = ?", student.ID).Count(&memberCount)
	if evalCount != 0 || regCount != 0 || memberCount != 0 {
		t.Errorf("referencing rows survived: evaluations=%d registrations=%d memberships=%d", evalCount, regCount, memberCount)
	}

	// The other member of the team is untouched
	var keeperMembership int64
	db.Model(&model.TeamMember{}).Where("team_id = ? AND student_id = ?", team.ID, keeper.ID).Count(&keeperMembership)
	if keeperMembership != 1 {
		t.Error("unrelated team membership was removed")
	}

	// Activity entries survive with the user reference detached
	var orphaned int64
	db.Model(&model.SystemActivityLog{}).Where("user_id IS NULL").Count(&orphaned)
	if orphaned == 0 {
		t.Error("activity entries were not detached from the deleted user")
	}
}

func TestDeleteUserNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, auth.NewBlacklistService(db), NewActivityService(db))

	if err := svc.DeleteUser(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
