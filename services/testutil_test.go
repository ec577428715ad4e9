package services

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/utils/auth"
)

// newTestDB opens an isolated in-memory database and migrates the schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Profile{},
		&model.Team{},
		&model.TeamMember{},
		&model.TeamSupervisor{},
		&model.Proposal{},
		&model.ProposalDocument{},
		&model.Evaluation{},
		&model.DigitalSignature{},
		&model.KpRegistration{},
		&model.StudentTimesheet{},
		&model.GuidanceSession{},
		&model.GuidanceReport{},
		&model.SystemActivityLog{},
		&model.JWTTokenBlacklist{},
		&model.CronJobLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createProfile(t *testing.T, db *gorm.DB, role model.Role, name string) *model.Profile {
	t.Helper()

	profile := &model.Profile{
		FullName:     name,
		Email:        fmt.Sprintf("%s@test.local", uuid.NewString()),
		PasswordHash: "x",
		Role:         role,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create %s profile: %v", role, err)
	}
	return profile
}

func createTeamWith(t *testing.T, db *gorm.DB, students ...*model.Profile) *model.Team {
	t.Helper()

	team := &model.Team{Name: "Tim KP"}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	for _, student := range students {
		member := model.TeamMember{TeamID: team.ID, StudentID: student.ID}
		if err := db.Create(&member).Error; err != nil {
			t.Fatalf("failed to add member: %v", err)
		}
	}
	return team
}

func sessionFor(p *model.Profile) auth.Session {
	return auth.Session{UserID: p.ID, Role: p.Role}
}

// fakeObjectStore records uploads in memory and hands back deterministic URLs
type fakeObjectStore struct {
	uploads map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{uploads: map[string][]byte{}}
}

func (f *fakeObjectStore) UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	return f.UploadBytes(ctx, key, content, contentType)
}

func (f *fakeObjectStore) UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.uploads[key] = data
	return "https://cdn.test/" + key, nil
}
