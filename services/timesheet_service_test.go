package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andikahmadi/sikp-backend/model"
)

func timesheetEntry(date string) TimesheetInput {
	return TimesheetInput{
		WorkDate:  date,
		StartTime: "08:00",
		EndTime:   "16:00",
		Activity:  "Implementasi modul gudang",
	}
}

func TestCreateTimesheetEntry(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimesheetService(db)

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	entry, err := svc.Create(context.Background(), sessionFor(student), timesheetEntry("2026-03-02"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if entry.Status != model.TimesheetStatusPending {
		t.Errorf("status = %s, want pending", entry.Status)
	}
}

func TestCreateTimesheetRejectsDuplicateDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimesheetService(db)

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	other := createProfile(t, db, model.RoleStudent, "Dewi Lestari")

	if _, err := svc.Create(context.Background(), sessionFor(student), timesheetEntry("2026-03-02")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), sessionFor(student), timesheetEntry("2026-03-02")); !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate date: got %v, want ErrValidation", err)
	}
	// Same date is fine for a different student
	if _, err := svc.Create(context.Background(), sessionFor(other), timesheetEntry("2026-03-02")); err != nil {
		t.Errorf("other student on same date: %v", err)
	}
}

func TestTimesheetInputValidation(t *testing.T) {
	cases := []struct {
		name string
		in   TimesheetInput
	}{
		{"bad date", TimesheetInput{WorkDate: "02-03-2026", StartTime: "08:00", EndTime: "16:00", Activity: "a"}},
		{"bad start", TimesheetInput{WorkDate: "2026-03-02", StartTime: "8am", EndTime: "16:00", Activity: "a"}},
		{"end before start", TimesheetInput{WorkDate: "2026-03-02", StartTime: "16:00", EndTime: "08:00", Activity: "a"}},
		{"end equals start", TimesheetInput{WorkDate: "2026-03-02", StartTime: "08:00", EndTime: "08:00", Activity: "a"}},
		{"missing activity", TimesheetInput{WorkDate: "2026-03-02", StartTime: "08:00", EndTime: "16:00"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.in.parse(); !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpdateTimesheetOnlyWhilePending(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimesheetService(db)

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	sess := sessionFor(student)

	entry, err := svc.Create(context.Background(), sess, timesheetEntry("2026-03-02"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	in := timesheetEntry("2026-03-02")
	in.Activity = "Refactoring modul gudang"
	updated, err := svc.Update(context.Background(), sess, entry.ID, in)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Activity != "Refactoring modul gudang" {
		t.Errorf("activity = %q", updated.Activity)
	}

	if _, err := svc.Review(context.Background(), sessionFor(supervisor), entry.ID, true); err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if _, err := svc.Update(context.Background(), sess, entry.ID, in); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("update after review: got %v, want ErrInvalidTransition", err)
	}
}

func TestUpdateTimesheetForbiddenForOthers(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimesheetService(db)

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	other := createProfile(t, db, model.RoleStudent, "Dewi Lestari")

	entry, err := svc.Create(context.Background(), sessionFor(student), timesheetEntry("2026-03-02"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Update(context.Background(), sessionFor(other), entry.ID, timesheetEntry("2026-03-02")); !errors.Is(err, ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
}

func TestReviewTimesheet(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimesheetService(db)

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")

	entry, err := svc.Create(context.Background(), sessionFor(student), timesheetEntry("2026-03-02"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Review(context.Background(), sessionFor(student), entry.ID, true); !errors.Is(err, ErrForbidden) {
		t.Errorf("student review: got %v, want ErrForbidden", err)
	}

	reviewed, err := svc.Review(context.Background(), sessionFor(supervisor), entry.ID, false)
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if reviewed.Status != model.TimesheetStatusRejected {
		t.Errorf("status = %s, want rejected", reviewed.Status)
	}

	if _, err := svc.Review(context.Background(), sessionFor(supervisor), entry.ID, true); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second review: got %v, want ErrInvalidTransition", err)
	}
}

func TestDeleteTimesheet(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimesheetService(db)

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	sess := sessionFor(student)

	entry, err := svc.Create(context.Background(), sess, timesheetEntry("2026-03-02"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), sessionFor(supervisor), entry.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete: got %v, want ErrForbidden", err)
	}
	if err := svc.Delete(context.Background(), sess, entry.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	entries, err := svc.ListForStudent(context.Background(), student.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListForStudent failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries after delete, want 0", len(entries))
	}
}

func TestListForStudentDateRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimesheetService(db)

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	sess := sessionFor(student)

	for _, date := range []string{"2026-03-02", "2026-03-03", "2026-03-10"} {
		if _, err := svc.Create(context.Background(), sess, timesheetEntry(date)); err != nil {
			t.Fatalf("Create %s failed: %v", date, err)
		}
	}

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	entries, err := svc.ListForStudent(context.Background(), student.ID, from, to)
	if err != nil {
		t.Fatalf("ListForStudent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries in range, want 2", len(entries))
	}

	all, err := svc.ListForStudent(context.Background(), student.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListForStudent failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d entries unbounded, want 3", len(all))
	}
}

func TestListPendingForTeam(t *testing.T) {
	db := newTestDB(t)
	svc := NewTimesheetService(db)

	member := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	outsider := createProfile(t, db, model.RoleStudent, "Eko Prasetyo")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	team := createTeamWith(t, db, member)

	memberEntry, err := svc.Create(context.Background(), sessionFor(member), timesheetEntry("2026-03-02"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), sessionFor(member), timesheetEntry("2026-03-03")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), sessionFor(outsider), timesheetEntry("2026-03-02")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Review(context.Background(), sessionFor(supervisor), memberEntry.ID, true); err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	pending, err := svc.ListPendingForTeam(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("ListPendingForTeam failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("got %d pending entries, want 1", len(pending))
	}
}
