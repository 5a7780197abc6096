package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"findhome/internal/auth"
	"findhome/internal/config"
	"findhome/internal/models"
)

// Bootstrap creates the configured superuser when missing and gives every
// superuser without a profile an admin profile.
func Bootstrap(ctx context.Context, db *gorm.DB, su config.SuperuserConfig) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", su.Username).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, err := auth.HashPassword(su.Password)
			if err != nil {
				return err
			}
			user := models.User{
				Username:     su.Username,
				Email:        su.Email,
				PasswordHash: hash,
				IsActive:     true,
				IsSuperuser:  true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create superuser: %w", err)
			}
			log.Info().Str("username", user.Username).Msg("Superuser created")
		case err != nil:
			return fmt.Errorf("failed to look up superuser: %w", err)
		default:
			log.Debug().Str("username", existing.Username).Msg("Superuser already exists")
		}

		var superusers []models.User
		if err := tx.Where("is_superuser = ?", true).Find(&superusers).Error; err != nil {
			return fmt.Errorf("failed to list superusers: %w", err)
		}

		for _, user := range superusers {
			var count int64
			if err := tx.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			profile := models.UserProfile{UserID: user.ID, UserType: models.UserTypeAdmin}
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("failed to create profile for %s: %w", user.Username, err)
			}
			log.Info().Str("username", user.Username).Msg("Created admin profile for superuser")
		}
		return nil
	})
}
