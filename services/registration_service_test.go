package services

import (
	"context"
	"errors"
	"testing"

	"github.com/andikahmadi/sikp-backend/model"
)

func validRegistrationInput() RegistrationInput {
	return RegistrationInput{
		Semester:              6,
		IPK:                   3.45,
		TotalCompletedCredits: 110,
		TotalDECredits:        4,
		Notes:                 "siap KP",
	}
}

func TestSaveCreatesPendingRegistration(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegistrationService(db, newFakeObjectStore(), NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	registration, err := svc.Save(context.Background(), sessionFor(student), validRegistrationInput())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if registration.RegistrationStatus != model.RegistrationPending {
		t.Errorf("registration_status = %s, want pending", registration.RegistrationStatus)
	}
	if registration.Status != model.RegistrationPending {
		t.Errorf("status = %s, want pending", registration.Status)
	}
}

func TestSaveForbiddenForNonStudents(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegistrationService(db, newFakeObjectStore(), NewActivityService(db))

	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	if _, err := svc.Save(context.Background(), sessionFor(supervisor), validRegistrationInput()); !errors.Is(err, ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
}

func TestRegistrationInputValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RegistrationInput)
	}{
		{"semester too low", func(in *RegistrationInput) { in.Semester = 0 }},
		{"semester too high", func(in *RegistrationInput) { in.Semester = 15 }},
		{"ipk above scale", func(in *RegistrationInput) { in.IPK = 4.5 }},
		{"negative ipk", func(in *RegistrationInput) { in.IPK = -1 }},
		{"negative credits", func(in *RegistrationInput) { in.TotalCompletedCredits = -10 }},
		{"de exceeds completed", func(in *RegistrationInput) { in.TotalDECredits = 200 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegistrationInput()
			tc.mutate(&in)
			if err := in.validate(); !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestSaveRewritesWholeRecordAndResetsStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegistrationService(db, newFakeObjectStore(), NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	coordinator := createProfile(t, db, model.RoleCoordinator, "Dr. Siti Rahayu")
	sess := sessionFor(student)

	first, err := svc.Save(context.Background(), sess, validRegistrationInput())
	if err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	if _, err := svc.Review(context.Background(), sessionFor(coordinator), first.ID, false, "transkrip kurang"); err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	in := validRegistrationInput()
	in.Semester = 7
	in.IPK = 3.6
	in.Notes = "perbaikan"
	updated, err := svc.Save(context.Background(), sess, in)
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}

	if updated.ID != first.ID {
		t.Errorf("resubmission created a new row")
	}
	if updated.Semester != 7 || updated.IPK != 3.6 || updated.Notes != "perbaikan" {
		t.Errorf("fields not rewritten: %+v", updated)
	}
	if updated.RegistrationStatus != model.RegistrationPending {
		t.Errorf("registration_status = %s, want pending after resubmission", updated.RegistrationStatus)
	}
}

func TestSaveFrozenAfterApproval(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegistrationService(db, newFakeObjectStore(), NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	coordinator := createProfile(t, db, model.RoleCoordinator, "Dr. Siti Rahayu")
	sess := sessionFor(student)

	registration, err := svc.Save(context.Background(), sess, validRegistrationInput())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := svc.Review(context.Background(), sessionFor(coordinator), registration.ID, true, ""); err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	if _, err := svc.Save(context.Background(), sess, validRegistrationInput()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("got %v, want ErrInvalidTransition", err)
	}
}

func TestReviewTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegistrationService(db, newFakeObjectStore(), NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	coordinator := createProfile(t, db, model.RoleCoordinator, "Dr. Siti Rahayu")

	registration, err := svc.Save(context.Background(), sessionFor(student), validRegistrationInput())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := svc.Review(context.Background(), sessionFor(student), registration.ID, true, ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("student review: got %v, want ErrForbidden", err)
	}

	approved, err := svc.Review(context.Background(), sessionFor(coordinator), registration.ID, true, "memenuhi syarat")
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if approved.RegistrationStatus != model.RegistrationApproved {
		t.Errorf("registration_status = %s, want approved", approved.RegistrationStatus)
	}
	if approved.Notes != "memenuhi syarat" {
		t.Errorf("notes = %q", approved.Notes)
	}

	// A decided registration cannot be reviewed again
	if _, err := svc.Review(context.Background(), sessionFor(coordinator), registration.ID, false, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second review: got %v, want ErrInvalidTransition", err)
	}
}

func TestAttachDocumentUnknownKind(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegistrationService(db, newFakeObjectStore(), NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	if _, err := svc.AttachDocument(context.Background(), sessionFor(student), "ijazah", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegistrationService(db, newFakeObjectStore(), NewActivityService(db))

	alpha := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	beta := createProfile(t, db, model.RoleStudent, "Dewi Lestari")
	coordinator := createProfile(t, db, model.RoleCoordinator, "Dr. Siti Rahayu")

	first, err := svc.Save(context.Background(), sessionFor(alpha), validRegistrationInput())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := svc.Save(context.Background(), sessionFor(beta), validRegistrationInput()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := svc.Review(context.Background(), sessionFor(coordinator), first.ID, true, ""); err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	pending, err := svc.List(context.Background(), model.RegistrationPending)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("got %d pending registrations, want 1", len(pending))
	}

	all, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d registrations, want 2", len(all))
	}
}
