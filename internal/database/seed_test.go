package database

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"findhome/internal/auth"
	"findhome/internal/config"
	"findhome/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func TestBootstrapCreatesSuperuser(t *testing.T) {
	db := setupTestDB(t)
	su := config.SuperuserConfig{Username: "admin", Password: "adminpass", Email: "admin@example.com"}

	if err := Bootstrap(context.Background(), db, su); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	var user models.User
	if err := db.Preload("Profile").Where("username = ?", "admin").First(&user).Error; err != nil {
		t.Fatalf("superuser not created: %v", err)
	}
	if !user.IsSuperuser || !user.IsActive {
		t.Errorf("expected active superuser, got %+v", user)
	}
	if !auth.CheckPassword(user.PasswordHash, "adminpass") {
		t.Error("expected password to be hashed from config")
	}
	if user.Profile == nil || user.Profile.UserType != models.UserTypeAdmin {
		t.Errorf("expected admin profile, got %+v", user.Profile)
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	su := config.SuperuserConfig{Username: "admin", Password: "adminpass", Email: "admin@example.com"}

	for i := 0; i < 2; i++ {
		if err := Bootstrap(context.Background(), db, su); err != nil {
			t.Fatalf("Bootstrap run %d failed: %v", i, err)
		}
	}

	var users, profiles int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.UserProfile{}).Count(&profiles)
	if users != 1 || profiles != 1 {
		t.Errorf("expected 1 user and 1 profile, got %d and %d", users, profiles)
	}
}

func TestBootstrapBackfillsExistingSuperusers(t *testing.T) {
	db := setupTestDB(t)

	legacy := models.User{Username: "root", PasswordHash: "x", IsActive: true, IsSuperuser: true}
	if err := db.Create(&legacy).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	owner := models.User{Username: "owner", PasswordHash: "x", IsActive: true}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := db.Create(&models.UserProfile{UserID: owner.ID, UserType: models.UserTypeOwner}).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	su := config.SuperuserConfig{Username: "admin", Password: "adminpass"}
	if err := Bootstrap(context.Background(), db, su); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	var profile models.UserProfile
	if err := db.Where("user_id = ?", legacy.ID).First(&profile).Error; err != nil {
		t.Fatalf("expected backfilled profile: %v", err)
	}
	if profile.UserType != models.UserTypeAdmin {
		t.Errorf("expected admin profile, got %s", profile.UserType)
	}

	var ownerProfile models.UserProfile
	db.Where("user_id = ?", owner.ID).First(&ownerProfile)
	if ownerProfile.UserType != models.UserTypeOwner {
		t.Errorf("owner profile should be untouched, got %s", ownerProfile.UserType)
	}
}
