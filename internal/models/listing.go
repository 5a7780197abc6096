package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HouseType is the kind of tenant a listing targets
type HouseType string

const (
	HouseTypeBachelorMale   HouseType = "bachelor_male"
	HouseTypeBachelorFemale HouseType = "bachelor_female"
	HouseTypeFamily         HouseType = "family"
)

// HouseTypes lists every valid house type in display order
var HouseTypes = []HouseType{HouseTypeBachelorMale, HouseTypeBachelorFemale, HouseTypeFamily}

// ParseHouseType converts a raw string into a HouseType
func ParseHouseType(raw string) (HouseType, error) {
	switch t := HouseType(strings.TrimSpace(raw)); t {
	case HouseTypeBachelorMale, HouseTypeBachelorFemale, HouseTypeFamily:
		return t, nil
	default:
		return "", fmt.Errorf("unknown house type %q", raw)
	}
}

// Label returns the human readable name of the house type
func (t HouseType) Label() string {
	switch t {
	case HouseTypeBachelorMale:
		return "Bachelor Male"
	case HouseTypeBachelorFemale:
		return "Bachelor Female"
	case HouseTypeFamily:
		return "Family"
	}
	return string(t)
}

// ListingStatus is the availability state of a listing
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusBooked    ListingStatus = "booked"
)

// ParseListingStatus converts a raw string into a ListingStatus
func ParseListingStatus(raw string) (ListingStatus, error) {
	switch s := ListingStatus(strings.TrimSpace(raw)); s {
	case ListingStatusAvailable, ListingStatusBooked:
		return s, nil
	default:
		return "", fmt.Errorf("unknown listing status %q", raw)
	}
}

// HouseListing represents a rental offer posted by an owner
type HouseListing struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OwnerID      uint            `gorm:"not null;index" json:"owner_id"`
	Owner        *User           `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	Title        string          `gorm:"size:200;not null" json:"title"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	HouseType    HouseType       `gorm:"size:15;not null;index" json:"house_type"`
	Address      string          `gorm:"type:text;not null" json:"address"`
	Area         string          `gorm:"size:100;not null" json:"area"`
	Rent         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"rent"`
	Status       ListingStatus   `gorm:"size:10;default:available;index" json:"status"`
	ContactPhone string          `gorm:"size:15;not null" json:"contact_phone"`
	ContactEmail string          `gorm:"size:254;not null" json:"contact_email"`
	IsReported   bool            `gorm:"default:false;index" json:"is_reported"`
	Images       []HouseImage    `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for HouseListing model
func (HouseListing) TableName() string {
	return "house_listings"
}

// IsVisible reports whether the listing may appear in public search
func (l *HouseListing) IsVisible() bool {
	return l.Status == ListingStatusAvailable && !l.IsReported
}

// HouseImage references a listing photo hosted by the media provider
type HouseImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ListingID  uint      `gorm:"not null;index" json:"listing_id"`
	ObjectKey  string    `gorm:"size:255;not null" json:"object_key"`
	URL        string    `gorm:"size:1024" json:"url"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// TableName specifies the table name for HouseImage model
func (HouseImage) TableName() string {
	return "house_images"
}
