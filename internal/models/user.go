package models

import (
	"fmt"
	"strings"
	"time"
)

// UserType is the closed set of roles a profile can carry
type UserType string

const (
	UserTypeRenter UserType = "renter"
	UserTypeOwner  UserType = "owner"
	UserTypeAdmin  UserType = "admin"
)

// ParseUserType converts a raw string into a UserType
func ParseUserType(raw string) (UserType, error) {
	switch t := UserType(strings.TrimSpace(raw)); t {
	case UserTypeRenter, UserTypeOwner, UserTypeAdmin:
		return t, nil
	default:
		return "", fmt.Errorf("unknown user type %q", raw)
	}
}

// Label returns the human readable name of the role
func (t UserType) Label() string {
	switch t {
	case UserTypeRenter:
		return "Renter"
	case UserTypeOwner:
		return "Owner"
	case UserTypeAdmin:
		return "Admin"
	}
	return string(t)
}

// User represents an account in the system
type User struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName    string       `gorm:"size:150" json:"first_name"`
	LastName     string       `gorm:"size:150" json:"last_name"`
	Email        string       `gorm:"size:254" json:"email"`
	PasswordHash string       `gorm:"size:255;not null" json:"-"`
	IsActive     bool         `gorm:"default:true;index" json:"is_active"`
	IsSuperuser  bool         `gorm:"default:false" json:"is_superuser"`
	Profile      *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	DateJoined   time.Time    `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// FullName returns first and last name joined by a space
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName returns the full name, or the username when no name is set
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}

// UserProfile carries the role of a user. Exactly one per user.
type UserProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	UserType  UserType  `gorm:"size:10;not null;index" json:"user_type"`
	Phone     string    `gorm:"size:15" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for UserProfile model
func (UserProfile) TableName() string {
	return "user_profiles"
}
