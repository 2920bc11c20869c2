package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/solocreator/planner/errs"
	"github.com/solocreator/planner/models"
)

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errs.NewDatabaseError("migrate", "schema", err)
	}
	return nil
}

// SeedAdmin creates the administrator account unless a user with that email exists.
func SeedAdmin(ctx context.Context, db *gorm.DB, email, password string, now time.Time) error {
	users := NewUserRepo(db)
	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewDatabaseError("look up", "admin user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errs.NewInternalErrorWithCause("hash admin password", err)
	}
	user := models.User{Email: email, PasswordHash: string(hash), CreatedAt: now.UTC()}
	if err := users.Add(ctx, &user); err != nil {
		return errs.NewDatabaseError("create", "admin user", err)
	}
	log.Info().Str("email", email).Msg("Seeded admin user")
	return nil
}
