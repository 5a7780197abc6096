package models

import (
	"time"
)

// SavedListing is a user's bookmark of a listing
type SavedListing struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"not null;uniqueIndex:idx_saved_user_listing" json:"user_id"`
	User      *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ListingID uint          `gorm:"not null;uniqueIndex:idx_saved_user_listing;index" json:"listing_id"`
	Listing   *HouseListing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
	SavedAt   time.Time     `gorm:"autoCreateTime" json:"saved_at"`
}

func (SavedListing) TableName() string {
	return "saved_listings"
}

// Interest records a renter's declared interest in a listing
type Interest struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	RenterID  uint          `gorm:"not null;uniqueIndex:idx_interest_renter_listing" json:"renter_id"`
	Renter    *User         `gorm:"foreignKey:RenterID;constraint:OnDelete:CASCADE" json:"renter,omitempty"`
	ListingID uint          `gorm:"not null;uniqueIndex:idx_interest_renter_listing;index" json:"listing_id"`
	Listing   *HouseListing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
	Message   string        `gorm:"type:text" json:"message"`
	IsRead    bool          `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time     `json:"created_at"`
}

func (Interest) TableName() string {
	return "interests"
}

// Comment is a public remark on a listing, optionally replying to another comment
type Comment struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	ListingID uint          `gorm:"not null;index" json:"listing_id"`
	Listing   *HouseListing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  uint          `gorm:"not null;index" json:"author_id"`
	Author    *User         `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	ParentID  *uint         `gorm:"index" json:"parent_id,omitempty"`
	Replies   []Comment     `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// ChatMessage is one message of a per-listing conversation between two users
type ChatMessage struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	ListingID  uint          `gorm:"not null;index:idx_chat_thread" json:"listing_id"`
	Listing    *HouseListing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
	SenderID   uint          `gorm:"not null;index:idx_chat_thread" json:"sender_id"`
	Sender     *User         `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	ReceiverID uint          `gorm:"not null;index:idx_chat_thread" json:"receiver_id"`
	Receiver   *User         `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver,omitempty"`
	Message    string        `gorm:"type:text;not null" json:"message"`
	Timestamp  time.Time     `gorm:"autoCreateTime;index" json:"timestamp"`
	IsRead     bool          `gorm:"default:false" json:"is_read"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// Report flags a listing as a possible false advertisement
type Report struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	ListingID  uint          `gorm:"not null;index" json:"listing_id"`
	Listing    *HouseListing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
	ReporterID uint          `gorm:"not null;index" json:"reporter_id"`
	Reporter   *User         `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"reporter,omitempty"`
	Reason     string        `gorm:"type:text;not null" json:"reason"`
	IsResolved bool          `gorm:"default:false;index" json:"is_resolved"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}
