package repository

import (
	"context"
	"fmt"

	"findhome/internal/models"
)

// GetUserByID retrieves a user and its profile
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Profile").Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UsernameExists reports whether the username is taken
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// GetProfile retrieves the profile of a user
func (r *Repository) GetProfile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// CreateUserWithProfile inserts a user and its profile atomically
func (r *Repository) CreateUserWithProfile(ctx context.Context, user *models.User, profile *models.UserProfile) error {
	return r.Transaction(ctx, func(tx *Repository) error {
		if err := tx.db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		profile.UserID = user.ID
		if err := tx.db.Create(profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		user.Profile = profile
		return nil
	})
}

// ToggleUserActive flips is_active and returns the updated user
func (r *Repository) ToggleUserActive(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.Transaction(ctx, func(tx *Repository) error {
		if err := tx.db.First(&user, id).Error; err != nil {
			return notFound(err)
		}
		user.IsActive = !user.IsActive
		return tx.db.Model(&user).Update("is_active", user.IsActive).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CountUsersByType counts users whose profile has one of the given types
func (r *Repository) CountUsersByType(ctx context.Context, types ...models.UserType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN user_profiles ON user_profiles.user_id = users.id").
		Where("user_profiles.user_type IN ?", types).
		Count(&count).Error
	return count, err
}

// RecentUsersByType returns the newest users whose profile has one of the given types
func (r *Repository) RecentUsersByType(ctx context.Context, limit int, types ...models.UserType) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Joins("JOIN user_profiles ON user_profiles.user_id = users.id").
		Where("user_profiles.user_type IN ?", types).
		Order("users.date_joined DESC, users.id DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
