package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/model"
)

func TestSubmitCreatesProposalAndAssignsSupervisors(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	field := createProfile(t, db, model.RoleSupervisor, "Rina Wijaya")
	team := createTeamWith(t, db, student)

	proposal, err := svc.Submit(context.Background(), sessionFor(student), SubmitProposalInput{
		TeamID:        team.ID,
		Title:         "Sistem Informasi Gudang",
		Description:   "Implementasi sistem pergudangan",
		CompanyName:   "PT Maju Jaya",
		SupervisorIDs: []uuid.UUID{supervisor.ID, field.ID},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if proposal.Status != model.ProposalStatusSubmitted {
		t.Errorf("status = %s, want submitted", proposal.Status)
	}

	var slots []model.TeamSupervisor
	if err := db.Where("team_id = ?", team.ID).Order("slot_index").Find(&slots).Error; err != nil {
		t.Fatalf("failed to load supervisor slots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d supervisor slots, want 2", len(slots))
	}
	if slots[0].SupervisorID != supervisor.ID || slots[1].SupervisorID != field.ID {
		t.Errorf("slots filled out of order: %v / %v", slots[0].SupervisorID, slots[1].SupervisorID)
	}
}

func TestSubmitValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	team := createTeamWith(t, db, student)
	sess := sessionFor(student)

	cases := []struct {
		name string
		in   SubmitProposalInput
	}{
		{"missing title", SubmitProposalInput{TeamID: team.ID, Description: "d", SupervisorIDs: []uuid.UUID{supervisor.ID}}},
		{"missing description", SubmitProposalInput{TeamID: team.ID, Title: "t", SupervisorIDs: []uuid.UUID{supervisor.ID}}},
		{"no supervisors", SubmitProposalInput{TeamID: team.ID, Title: "t", Description: "d"}},
		{"too many supervisors", SubmitProposalInput{
			TeamID: team.ID, Title: "t", Description: "d",
			SupervisorIDs: []uuid.UUID{supervisor.ID, supervisor.ID, supervisor.ID},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), sess, tc.in)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestSubmitRejectsEmptyTeam(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	team := createTeamWith(t, db) // no members

	_, err := svc.Submit(context.Background(), sessionFor(student), SubmitProposalInput{
		TeamID:        team.ID,
		Title:         "t",
		Description:   "d",
		SupervisorIDs: []uuid.UUID{supervisor.ID},
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}
}

func TestResubmitReusesRowAndClearsRejection(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	coordinator := createProfile(t, db, model.RoleCoordinator, "Dr. Siti Rahayu")
	team := createTeamWith(t, db, student)

	in := SubmitProposalInput{
		TeamID:        team.ID,
		Title:         "Versi pertama",
		Description:   "d",
		SupervisorIDs: []uuid.UUID{supervisor.ID},
	}
	first, err := svc.Submit(context.Background(), sessionFor(student), in)
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	if _, err := svc.Reject(context.Background(), sessionFor(coordinator), first.ID, "scope too broad"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	in.Title = "Versi kedua"
	second, err := svc.Submit(context.Background(), sessionFor(student), in)
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("resubmission created a new row: %s vs %s", second.ID, first.ID)
	}
	if second.Status != model.ProposalStatusSubmitted {
		t.Errorf("status = %s, want submitted", second.Status)
	}
	if second.RejectionReason != "" {
		t.Errorf("rejection reason not cleared: %q", second.RejectionReason)
	}

	var count int64
	db.Model(&model.Proposal{}).Where("team_id = ?", team.ID).Count(&count)
	if count != 1 {
		t.Errorf("got %d proposal rows for the team, want 1", count)
	}
}

func TestResubmitRefusedAfterApproval(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	coordinator := createProfile(t, db, model.RoleCoordinator, "Dr. Siti Rahayu")
	team := createTeamWith(t, db, student)

	in := SubmitProposalInput{
		TeamID:        team.ID,
		Title:         "t",
		Description:   "d",
		SupervisorIDs: []uuid.UUID{supervisor.ID},
	}
	proposal, err := svc.Submit(context.Background(), sessionFor(student), in)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := svc.Approve(context.Background(), sessionFor(coordinator), proposal.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if _, err := svc.Submit(context.Background(), sessionFor(student), in); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("resubmit after approval: got %v, want ErrInvalidTransition", err)
	}

	var reloaded model.Proposal
	if err := db.First(&reloaded, "id = ?", proposal.ID).Error; err != nil {
		t.Fatalf("failed to reload proposal: %v", err)
	}
	if reloaded.Status != model.ProposalStatusApproved {
		t.Errorf("status = %s, want approved to stay terminal", reloaded.Status)
	}
}

func TestSubmitForbiddenForNonMembers(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	member := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	outsider := createProfile(t, db, model.RoleStudent, "Eko Prasetyo")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	team := createTeamWith(t, db, member)

	_, err := svc.Submit(context.Background(), sessionFor(outsider), SubmitProposalInput{
		TeamID:        team.ID,
		Title:         "t",
		Description:   "d",
		SupervisorIDs: []uuid.UUID{supervisor.ID},
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}

	var count int64
	db.Model(&model.Proposal{}).Where("team_id = ?", team.ID).Count(&count)
	if count != 0 {
		t.Errorf("outsider submission created %d proposal rows", count)
	}
}

func TestApproveActivatesTeamRegistrations(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	alpha := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	beta := createProfile(t, db, model.RoleStudent, "Dewi Lestari")
	outsider := createProfile(t, db, model.RoleStudent, "Eko Prasetyo")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	coordinator := createProfile(t, db, model.RoleCoordinator, "Dr. Siti Rahayu")
	team := createTeamWith(t, db, alpha, beta)

	for _, student := range []*model.Profile{alpha, beta, outsider} {
		reg := model.KpRegistration{
			StudentID:             student.ID,
			Semester:              6,
			IPK:                   3.4,
			TotalCompletedCredits: 110,
			RegistrationStatus:    model.RegistrationApproved,
			Status:                model.RegistrationPending,
		}
		if err := db.Create(&reg).Error; err != nil {
			t.Fatalf("failed to create registration: %v", err)
		}
	}

	proposal, err := svc.Submit(context.Background(), sessionFor(alpha), SubmitProposalInput{
		TeamID:        team.ID,
		Title:         "t",
		Description:   "d",
		SupervisorIDs: []uuid.UUID{supervisor.ID},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	approved, err := svc.Approve(context.Background(), sessionFor(coordinator), proposal.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != model.ProposalStatusApproved {
		t.Errorf("status = %s, want approved", approved.Status)
	}

	var active int64
	db.Model(&model.KpRegistration{}).Where("status = ?", model.RegistrationActive).Count(&active)
	if active != 2 {
		t.Errorf("got %d active registrations, want 2 (team members only)", active)
	}

	var outsiderReg model.KpRegistration
	db.Where("student_id = ?", outsider.ID).First(&outsiderReg)
	if outsiderReg.Status != model.RegistrationPending {
		t.Errorf("outsider registration was activated: %s", outsiderReg.Status)
	}
}

func TestReviewTransitionsRefusedFromDraft(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	coordinator := createProfile(t, db, model.RoleCoordinator, "Dr. Siti Rahayu")
	team := createTeamWith(t, db, student)

	proposal, err := svc.Submit(context.Background(), sessionFor(student), SubmitProposalInput{
		TeamID:        team.ID,
		Title:         "t",
		Description:   "d",
		SupervisorIDs: []uuid.UUID{supervisor.ID},
		Draft:         true,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	sess := sessionFor(coordinator)
	if _, err := svc.Approve(context.Background(), sess, proposal.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Approve from draft: got %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.Reject(context.Background(), sess, proposal.ID, "r"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Reject from draft: got %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.MarkReviewed(context.Background(), sess, proposal.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("MarkReviewed from draft: got %v, want ErrInvalidTransition", err)
	}
}

func TestDecideAfterMarkReviewed(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	other := createProfile(t, db, model.RoleStudent, "Dewi Lestari")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	coordinator := createProfile(t, db, model.RoleCoordinator, "Dr. Siti Rahayu")
	sess := sessionFor(coordinator)

	in := SubmitProposalInput{
		Title:         "t",
		Description:   "d",
		SupervisorIDs: []uuid.UUID{supervisor.ID},
	}

	// reviewed → approved
	teamA := createTeamWith(t, db, student)
	in.TeamID = teamA.ID
	first, err := svc.Submit(context.Background(), sessionFor(student), in)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := svc.MarkReviewed(context.Background(), sess, first.ID); err != nil {
		t.Fatalf("MarkReviewed failed: %v", err)
	}
	approved, err := svc.Approve(context.Background(), sess, first.ID)
	if err != nil {
		t.Fatalf("Approve from reviewed failed: %v", err)
	}
	if approved.Status != model.ProposalStatusApproved {
		t.Errorf("status = %s, want approved", approved.Status)
	}

	// reviewed → rejected
	teamB := createTeamWith(t, db, other)
	in.TeamID = teamB.ID
	second, err := svc.Submit(context.Background(), sessionFor(other), in)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := svc.MarkReviewed(context.Background(), sess, second.ID); err != nil {
		t.Fatalf("MarkReviewed failed: %v", err)
	}
	rejected, err := svc.Reject(context.Background(), sess, second.ID, "scope too broad")
	if err != nil {
		t.Fatalf("Reject from reviewed failed: %v", err)
	}
	if rejected.Status != model.ProposalStatusRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}
}

func TestReviewActionsForbiddenForStudents(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	sess := sessionFor(student)

	if _, err := svc.Approve(context.Background(), sess, uuid.New()); !errors.Is(err, ErrForbidden) {
		t.Errorf("Approve: got %v, want ErrForbidden", err)
	}
	if _, err := svc.Reject(context.Background(), sess, uuid.New(), "r"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Reject: got %v, want ErrForbidden", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	coordinator := createProfile(t, db, model.RoleCoordinator, "Dr. Siti Rahayu")
	_, err := svc.Reject(context.Background(), sessionFor(coordinator), uuid.New(), "")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}
}

func TestRejectRecordsReasonAsFeedback(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	coordinator := createProfile(t, db, model.RoleCoordinator, "Dr. Siti Rahayu")
	team := createTeamWith(t, db, student)

	proposal, err := svc.Submit(context.Background(), sessionFor(student), SubmitProposalInput{
		TeamID:        team.ID,
		Title:         "t",
		Description:   "d",
		SupervisorIDs: []uuid.UUID{supervisor.ID},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	rejected, err := svc.Reject(context.Background(), sessionFor(coordinator), proposal.ID, "needs a clearer scope")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.RejectionReason != "needs a clearer scope" {
		t.Errorf("reason = %q", rejected.RejectionReason)
	}

	detail, err := svc.GetDetail(context.Background(), proposal.ID)
	if err != nil {
		t.Fatalf("GetDetail failed: %v", err)
	}
	found := false
	for _, entry := range detail.Feedback {
		if entry.Action == model.ActionProposalRejected && entry.Detail == "needs a clearer scope" {
			found = true
		}
	}
	if !found {
		t.Error("rejection reason missing from feedback trail")
	}
}

func TestGetDetailAggregates(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	student := createProfile(t, db, model.RoleStudent, "Ahmad Fauzi")
	supervisor := createProfile(t, db, model.RoleSupervisor, "Budi Santoso")
	team := createTeamWith(t, db, student)

	proposal, err := svc.Submit(context.Background(), sessionFor(student), SubmitProposalInput{
		TeamID:        team.ID,
		Title:         "t",
		Description:   "d",
		SupervisorIDs: []uuid.UUID{supervisor.ID},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	detail, err := svc.GetDetail(context.Background(), proposal.ID)
	if err != nil {
		t.Fatalf("GetDetail failed: %v", err)
	}
	if len(detail.Members) != 1 {
		t.Errorf("got %d members, want 1", len(detail.Members))
	}
	if len(detail.Supervisors) != 1 {
		t.Errorf("got %d supervisors, want 1", len(detail.Supervisors))
	}
	if detail.DisplayStatus != model.ProposalStatusSubmitted {
		t.Errorf("display status = %s, want submitted", detail.DisplayStatus)
	}
}

func TestGetDetailMissingProposal(t *testing.T) {
	db := newTestDB(t)
	svc := NewProposalService(db, NewActivityService(db))

	_, err := svc.GetDetail(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDisplayStatusRevisionProjection(t *testing.T) {
	p := model.Proposal{Status: model.ProposalStatusSubmitted, RejectionReason: "fix the timeline"}
	if got := p.DisplayStatus(); got != model.ProposalStatusRevision {
		t.Errorf("got %s, want revision", got)
	}

	p.RejectionReason = ""
	if got := p.DisplayStatus(); got != model.ProposalStatusSubmitted {
		t.Errorf("got %s, want submitted", got)
	}

	p.Status = model.ProposalStatusRejected
	p.RejectionReason = "fix the timeline"
	if got := p.DisplayStatus(); got != model.ProposalStatusRejected {
		t.Errorf("got %s, want rejected", got)
	}
}
