// Command seed provisions the admin account so that the admin surface is
// reachable on a fresh install. It is idempotent: re-running updates the
// existing admin's password instead of failing on the unique email.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"userhub/internal/config"
	"userhub/internal/db"
	"userhub/internal/model"
	"userhub/internal/repository"
)

func main() {
	log.Println("Starting seed script...")

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)

	created, err := seedAdmin(ctx, userRepo, cfg.Admin)
	if err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	if created {
		log.Printf("Admin user created: %s", cfg.Admin.Email)
	} else {
		log.Printf("Admin user updated: %s", cfg.Admin.Email)
	}
	log.Println("Seed completed successfully!")
}

// seedAdmin creates the admin user, or resets its password and role when the
// email already exists. The repository hashes the plaintext before persisting.
func seedAdmin(ctx context.Context, repo repository.UserRepository, admin config.AdminConfig) (created bool, err error) {
	existing, err := repo.FindByEmail(ctx, admin.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if existing != nil {
		existing.Password = admin.Password
		existing.Role = model.RoleAdmin
		return false, repo.Update(ctx, existing)
	}

	user := &model.User{
		ID:        uuid.New().String(),
		FirstName: "Admin",
		LastName:  "User",
		Email:     admin.Email,
		Password:  admin.Password,
		Role:      model.RoleAdmin,
		Phone:     admin.Phone,
		DOB:       time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	return true, repo.Create(ctx, user)
}
