package models

import (
	"time"

	"gorm.io/datatypes"
)

// Moderation actions recorded in the admin log
const (
	AdminActionRemoveListing  = "REMOVE_LISTING"
	AdminActionDismissReport  = "DISMISS_REPORT"
	AdminActionToggleUser     = "TOGGLE_USER"
	AdminActionToggleReported = "TOGGLE_LISTING_REPORTED"
	AdminResourceReport       = "REPORT"
	AdminResourceUser         = "USER"
	AdminResourceListing      = "LISTING"
)

// AdminLog records admin actions for audit trail
type AdminLog struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	AdminID      uint              `gorm:"not null;index" json:"admin_id"`
	Admin        *User             `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"admin,omitempty"`
	Action       string            `gorm:"size:100;not null" json:"action"`
	ResourceType string            `gorm:"size:50" json:"resource_type"`
	ResourceID   *uint             `json:"resource_id"`
	Details      datatypes.JSONMap `json:"details"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}

// AllModels returns every persisted model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&UserProfile{},
		&HouseListing{},
		&HouseImage{},
		&SavedListing{},
		&Interest{},
		&Comment{},
		&ChatMessage{},
		&Report{},
		&AdminLog{},
	}
}
