package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/model"
)

func assignTeamSupervisor(t *testing.T, db *gorm.DB, team *model.Team, supervisor *model.Profile) {
	t.Helper()
	assignment := model.TeamSupervisor{
		TeamID:       team.ID,
		SlotIndex:    model.SlotAcademicSupervisor,
		SupervisorID: supervisor.ID,
	}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("failed to assign supervisor: %v", err)
	}
}

func scheduleInput(team *model.Team) ScheduleSessionInput {
	return ScheduleSessionInput{
		TeamID:      team.ID,
		ScheduledAt: time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC),
		Topic:       "Progres mingguan",
		Location:    "Ruang dosen",
	}
}

func TestScheduleSessionRequiresAssignment(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuidanceService(db, newFakeObjectStore())

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	assigned := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	unassigned := createProfile(t, db, model.RoleSupervisor, "Rina Wijaya")
	team := createTeamWith(t, db, student)
	assignTeamSupervisor(t, db, team, assigned)

	session, err := svc.ScheduleSession(context.Background(), sessionFor(assigned), scheduleInput(team))
	if err != nil {
		t.Fatalf("ScheduleSession failed: %v", err)
	}
	if session.Status != model.GuidanceStatusScheduled {
		t.Errorf("status = %s, want scheduled", session.Status)
	}

	if _, err := svc.ScheduleSession(context.Background(), sessionFor(unassigned), scheduleInput(team)); !errors.Is(err, ErrForbidden) {
		t.Errorf("unassigned supervisor: got %v, want ErrForbidden", err)
	}
	if _, err := svc.ScheduleSession(context.Background(), sessionFor(student), scheduleInput(team)); !errors.Is(err, ErrForbidden) {
		t.Errorf("student: got %v, want ErrForbidden", err)
	}
}

func TestScheduleSessionValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuidanceService(db, newFakeObjectStore())

	admin := createProfile(t, db, model.RoleAdmin, "Admin")
	team := createTeamWith(t, db)

	in := scheduleInput(team)
	in.Topic = ""
	if _, err := svc.ScheduleSession(context.Background(), sessionFor(admin), in); !errors.Is(err, ErrValidation) {
		t.Errorf("missing topic: got %v, want ErrValidation", err)
	}

	in = scheduleInput(team)
	in.ScheduledAt = time.Time{}
	if _, err := svc.ScheduleSession(context.Background(), sessionFor(admin), in); !errors.Is(err, ErrValidation) {
		t.Errorf("missing time: got %v, want ErrValidation", err)
	}
}

func TestCloseSession(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuidanceService(db, newFakeObjectStore())

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	other := createProfile(t, db, model.RoleSupervisor, "Rina Wijaya")
	team := createTeamWith(t, db, student)
	assignTeamSupervisor(t, db, team, supervisor)

	session, err := svc.ScheduleSession(context.Background(), sessionFor(supervisor), scheduleInput(team))
	if err != nil {
		t.Fatalf("ScheduleSession failed: %v", err)
	}

	if _, err := svc.CloseSession(context.Background(), sessionFor(supervisor), session.ID, model.GuidanceStatusScheduled); !errors.Is(err, ErrValidation) {
		t.Errorf("close to scheduled: got %v, want ErrValidation", err)
	}
	if _, err := svc.CloseSession(context.Background(), sessionFor(other), session.ID, model.GuidanceStatusCompleted); !errors.Is(err, ErrForbidden) {
		t.Errorf("close by other supervisor: got %v, want ErrForbidden", err)
	}

	closed, err := svc.CloseSession(context.Background(), sessionFor(supervisor), session.ID, model.GuidanceStatusCompleted)
	if err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}
	if closed.Status != model.GuidanceStatusCompleted {
		t.Errorf("status = %s, want completed", closed.Status)
	}

	if _, err := svc.CloseSession(context.Background(), sessionFor(supervisor), session.ID, model.GuidanceStatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second close: got %v, want ErrInvalidTransition", err)
	}
}

func TestFileReport(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuidanceService(db, newFakeObjectStore())

	member := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	outsider := createProfile(t, db, model.RoleStudent, "Eko Prasetyo")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	team := createTeamWith(t, db, member)
	assignTeamSupervisor(t, db, team, supervisor)

	session, err := svc.ScheduleSession(context.Background(), sessionFor(supervisor), scheduleInput(team))
	if err != nil {
		t.Fatalf("ScheduleSession failed: %v", err)
	}

	report, err := svc.FileReport(context.Background(), sessionFor(member), session.ID, "Diskusi arsitektur sistem", nil)
	if err != nil {
		t.Fatalf("FileReport failed: %v", err)
	}
	if report.Content != "Diskusi arsitektur sistem" {
		t.Errorf("content = %q", report.Content)
	}

	if _, err := svc.FileReport(context.Background(), sessionFor(member), session.ID, "lagi", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate report: got %v, want ErrValidation", err)
	}
	if _, err := svc.FileReport(context.Background(), sessionFor(outsider), session.ID, "x", nil); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-member report: got %v, want ErrForbidden", err)
	}
	if _, err := svc.FileReport(context.Background(), sessionFor(member), session.ID, "", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("empty content: got %v, want ErrValidation", err)
	}
}

func TestFileReportRejectedForCancelledSession(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuidanceService(db, newFakeObjectStore())

	member := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	team := createTeamWith(t, db, member)
	assignTeamSupervisor(t, db, team, supervisor)

	session, err := svc.ScheduleSession(context.Background(), sessionFor(supervisor), scheduleInput(team))
	if err != nil {
		t.Fatalf("ScheduleSession failed: %v", err)
	}
	if _, err := svc.CloseSession(context.Background(), sessionFor(supervisor), session.ID, model.GuidanceStatusCancelled); err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}

	if _, err := svc.FileReport(context.Background(), sessionFor(member), session.ID, "x", nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("got %v, want ErrInvalidTransition", err)
	}
}

func TestListForTeamAndSupervisor(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuidanceService(db, newFakeObjectStore())

	member := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	team := createTeamWith(t, db, member)
	otherTeam := createTeamWith(t, db)
	assignTeamSupervisor(t, db, team, supervisor)
	assignTeamSupervisor(t, db, otherTeam, supervisor)

	if _, err := svc.ScheduleSession(context.Background(), sessionFor(supervisor), scheduleInput(team)); err != nil {
		t.Fatalf("ScheduleSession failed: %v", err)
	}
	if _, err := svc.ScheduleSession(context.Background(), sessionFor(supervisor), scheduleInput(otherTeam)); err != nil {
		t.Fatalf("ScheduleSession failed: %v", err)
	}

	forTeam, err := svc.ListForTeam(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("ListForTeam failed: %v", err)
	}
	if len(forTeam) != 1 {
		t.Errorf("got %d sessions for team, want 1", len(forTeam))
	}

	forSupervisor, err := svc.ListForSupervisor(context.Background(), supervisor.ID)
	if err != nil {
		t.Fatalf("ListForSupervisor failed: %v", err)
	}
	if len(forSupervisor) != 2 {
		t.Errorf("got %d sessions for supervisor, want 2", len(forSupervisor))
	}
}
