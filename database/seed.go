package database

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/utils/auth"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedSampleProfiles(); err != nil {
		return fmt.Errorf("failed to seed sample profiles: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.Profile{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.Profile{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		FullName:     "System Administrator",
		Role:         model.RoleAdmin,
		TokenVersion: 0,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin user: %s\n", admin.Email)
	return nil
}

// SeedSampleProfiles creates a coordinator, supervisors and students for
// local development. Skipped outside development environments.
func (s *Seeder) SeedSampleProfiles() error {
	if os.Getenv("GO_ENV") == "production" {
		log.Println("⏭️  Production environment, skipping sample profiles...")
		return nil
	}

	var count int64
	if err := s.db.Model(&model.Profile{}).Where("role <> ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Sample profiles already exist, skipping...")
		return nil
	}

	passwordHash, err := auth.HashPassword("password123")
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	profiles := []model.Profile{
		{
			Email:        "koordinator.kp@university.ac.id",
			PasswordHash: passwordHash,
			FullName:     "Dr. Siti Rahayu",
			Role:         model.RoleCoordinator,
			NIP:          "197502121999032001",
		},
		{
			Email:        "budi.santoso@university.ac.id",
			PasswordHash: passwordHash,
			FullName:     "Budi Santoso, M.Kom",
			Role:         model.RoleSupervisor,
			NIP:          "198103042006041002",
		},
		{
			Email:        "rina.wijaya@university.ac.id",
			PasswordHash: passwordHash,
			FullName:     "Rina Wijaya, M.T",
			Role:         model.RoleSupervisor,
			NIP:          "198607182012122003",
		},
		{
			Email:        "ahmad.fauzi@student.university.ac.id",
			PasswordHash: passwordHash,
			FullName:     "Ahmad Fauzi",
			Role:         model.RoleStudent,
			NIM:          "2021081001",
		},
		{
			Email:        "dewi.lestari@student.university.ac.id",
			PasswordHash: passwordHash,
			FullName:     "Dewi Lestari",
			Role:         model.RoleStudent,
			NIM:          "2021081002",
		},
		{
			Email:        "eko.prasetyo@student.university.ac.id",
			PasswordHash: passwordHash,
			FullName:     "Eko Prasetyo",
			Role:         model.RoleStudent,
			NIM:          "2021081003",
		},
	}

	if err := s.db.Create(&profiles).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d sample profiles\n", len(profiles))
	return nil
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}
