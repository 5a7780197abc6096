package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"findhome/internal/models"
)

// ToggleSaved removes the saved pair if present, otherwise creates it.
// It returns whether the listing is saved afterwards.
func (r *Repository) ToggleSaved(ctx context.Context, userID, listingID uint) (bool, error) {
	saved := false
	err := r.Transaction(ctx, func(tx *Repository) error {
		res := tx.db.Where("user_id = ? AND listing_id = ?", userID, listingID).Delete(&models.SavedListing{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		saved = true
		return tx.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "listing_id"}},
			DoNothing: true,
		}).Create(&models.SavedListing{UserID: userID, ListingID: listingID}).Error
	})
	return saved, err
}

// IsSaved reports whether userID saved listingID
func (r *Repository) IsSaved(ctx context.Context, userID, listingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SavedListing{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Count(&count).Error
	return count > 0, err
}

// ListSaved returns the saved entries of a user with their listings
func (r *Repository) ListSaved(ctx context.Context, userID uint) ([]models.SavedListing, error) {
	var saved []models.SavedListing
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Images").
		Where("user_id = ?", userID).
		Order("saved_at DESC, id DESC").
		Find(&saved).Error
	return saved, err
}

// CreateInterestIfAbsent inserts the interest unless the renter already has one
// for that listing. It reports whether a row was created.
func (r *Repository) CreateInterestIfAbsent(ctx context.Context, interest *models.Interest) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "renter_id"}, {Name: "listing_id"}},
			DoNothing: true,
		}).
		Create(interest)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListRenterInterests returns the interests a renter has shown
func (r *Repository) ListRenterInterests(ctx context.Context, renterID uint) ([]models.Interest, error) {
	var interests []models.Interest
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("renter_id = ?", renterID).
		Order("created_at DESC, id DESC").
		Find(&interests).Error
	return interests, err
}

// ListUnreadInterestsForOwner returns unread interests on an owner's listings
func (r *Repository) ListUnreadInterestsForOwner(ctx context.Context, ownerID uint) ([]models.Interest, error) {
	var interests []models.Interest
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Renter").
		Joins("JOIN house_listings ON house_listings.id = interests.listing_id").
		Where("house_listings.owner_id = ? AND interests.is_read = ?", ownerID, false).
		Order("interests.created_at DESC, interests.id DESC").
		Find(&interests).Error
	return interests, err
}

// MarkInterestRead sets is_read on an interest whose listing belongs to ownerID
func (r *Repository) MarkInterestRead(ctx context.Context, interestID, ownerID uint) (*models.Interest, error) {
	var interest models.Interest
	err := r.Transaction(ctx, func(tx *Repository) error {
		err := tx.db.
			Joins("JOIN house_listings ON house_listings.id = interests.listing_id").
			Where("interests.id = ? AND house_listings.owner_id = ?", interestID, ownerID).
			First(&interest).Error
		if err != nil {
			return notFound(err)
		}
		if interest.IsRead {
			return nil
		}
		interest.IsRead = true
		return tx.db.Model(&interest).Update("is_read", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &interest, nil
}

// GetComment retrieves a comment by ID
func (r *Repository) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &comment, nil
}

// CreateComment inserts a comment
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// ListTopLevelComments returns the comments of a listing that are not replies,
// newest first, each carrying its whole reply tree. Replies are loaded level by
// level on parent_id alone, so a reply filed against another listing still
// shows under its parent.
func (r *Repository) ListTopLevelComments(ctx context.Context, listingID uint) ([]models.Comment, error) {
	var roots []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("listing_id = ? AND parent_id IS NULL", listingID).
		Order("created_at DESC, id DESC").
		Find(&roots).Error
	if err != nil {
		return nil, err
	}

	byParent := make(map[uint][]models.Comment)
	frontier := commentIDs(roots)
	for len(frontier) > 0 {
		var replies []models.Comment
		err := r.db.WithContext(ctx).
			Preload("Author").
			Where("parent_id IN ?", frontier).
			Order("created_at DESC, id DESC").
			Find(&replies).Error
		if err != nil {
			return nil, err
		}
		for _, reply := range replies {
			byParent[*reply.ParentID] = append(byParent[*reply.ParentID], reply)
		}
		frontier = commentIDs(replies)
	}

	return attachReplies(roots, byParent), nil
}

func commentIDs(comments []models.Comment) []uint {
	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	return ids
}

func attachReplies(comments []models.Comment, byParent map[uint][]models.Comment) []models.Comment {
	for i := range comments {
		if replies := byParent[comments[i].ID]; len(replies) > 0 {
			comments[i].Replies = attachReplies(replies, byParent)
		}
	}
	return comments
}

// ChatThread returns the messages exchanged between two users on a listing, oldest first
func (r *Repository) ChatThread(ctx context.Context, listingID, userA, userB uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("listing_id = ?", listingID).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))", userA, userB, userB, userA).
		Order(`"timestamp" ASC, id ASC`).
		Find(&messages).Error
	return messages, err
}

// MarkChatRead marks unread messages from sender to receiver on a listing as read
func (r *Repository) MarkChatRead(ctx context.Context, listingID, senderID, receiverID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("listing_id = ? AND sender_id = ? AND receiver_id = ? AND is_read = ?", listingID, senderID, receiverID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// CreateChatMessage inserts a chat message
func (r *Repository) CreateChatMessage(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// CreateReport inserts a report
func (r *Repository) CreateReport(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// GetReport retrieves a report by ID
func (r *Repository) GetReport(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &report, nil
}

// ResolveReport marks a report as resolved
func (r *Repository) ResolveReport(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Update("is_resolved", true).Error
}

// ListUnresolvedReports returns open reports, newest first
func (r *Repository) ListUnresolvedReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Reporter").
		Where("is_resolved = ?", false).
		Order("created_at DESC, id DESC").
		Find(&reports).Error
	return reports, err
}

// CountUnresolvedReports counts open reports
func (r *Repository) CountUnresolvedReports(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).Where("is_resolved = ?", false).Count(&count).Error
	return count, err
}

// CreateAdminLog records an admin action
func (r *Repository) CreateAdminLog(ctx context.Context, entry *models.AdminLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListAdminLogs returns admin log entries, newest first
func (r *Repository) ListAdminLogs(ctx context.Context, limit, offset int) ([]models.AdminLog, error) {
	var logs []models.AdminLog
	err := r.db.WithContext(ctx).
		Preload("Admin").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}
