package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"findhome/internal/models"
)

// ListingFilter narrows the public listing search. Nil fields are not applied.
type ListingFilter struct {
	Query     string
	HouseType *models.HouseType
	MinRent   *decimal.Decimal
	MaxRent   *decimal.Decimal
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CreateListing inserts a listing together with its images
func (r *Repository) CreateListing(ctx context.Context, listing *models.HouseListing) error {
	return r.Transaction(ctx, func(tx *Repository) error {
		images := listing.Images
		listing.Images = nil
		if err := tx.db.Create(listing).Error; err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}
		for i := range images {
			images[i].ListingID = listing.ID
		}
		if len(images) > 0 {
			if err := tx.db.Create(&images).Error; err != nil {
				return fmt.Errorf("failed to create listing images: %w", err)
			}
		}
		listing.Images = images
		return nil
	})
}

// GetListing retrieves a listing with its owner and images
func (r *Repository) GetListing(ctx context.Context, id uint) (*models.HouseListing, error) {
	var listing models.HouseListing
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&listing, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

// GetOwnedListing retrieves a listing only if ownerID owns it
func (r *Repository) GetOwnedListing(ctx context.Context, id, ownerID uint) (*models.HouseListing, error) {
	var listing models.HouseListing
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&listing).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

// UpdateListingStatus sets the availability of a listing
func (r *Repository) UpdateListingStatus(ctx context.Context, id uint, status models.ListingStatus) error {
	return r.db.WithContext(ctx).Model(&models.HouseListing{}).Where("id = ?", id).Update("status", status).Error
}

// ToggleListingReported flips the reported flag and returns the updated listing
func (r *Repository) ToggleListingReported(ctx context.Context, id uint) (*models.HouseListing, error) {
	var listing models.HouseListing
	err := r.Transaction(ctx, func(tx *Repository) error {
		if err := tx.db.First(&listing, id).Error; err != nil {
			return notFound(err)
		}
		listing.IsReported = !listing.IsReported
		return tx.db.Model(&listing).Update("is_reported", listing.IsReported).Error
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// DeleteListing removes a listing and every row that depends on it.
// It returns the media keys of the removed images.
func (r *Repository) DeleteListing(ctx context.Context, id uint) ([]string, error) {
	var keys []string
	err := r.Transaction(ctx, func(tx *Repository) error {
		var listing models.HouseListing
		if err := tx.db.Select("id").First(&listing, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.db.Model(&models.HouseImage{}).Where("listing_id = ?", id).Pluck("object_key", &keys).Error; err != nil {
			return err
		}

		dependents := []interface{}{
			&models.Report{},
			&models.ChatMessage{},
			&models.Interest{},
			&models.SavedListing{},
			&models.HouseImage{},
		}
		for _, model := range dependents {
			if err := tx.db.Where("listing_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete %T rows: %w", model, err)
			}
		}
		commentIDs, err := tx.commentTree(id)
		if err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.db.Where("id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
				return fmt.Errorf("failed to delete comments: %w", err)
			}
		}
		return tx.db.Delete(&models.HouseListing{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// commentTree collects the comments of a listing plus every reply below them,
// including replies attached to other listings.
func (r *Repository) commentTree(listingID uint) ([]uint, error) {
	var frontier []uint
	if err := r.db.Model(&models.Comment{}).Where("listing_id = ?", listingID).Pluck("id", &frontier).Error; err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{}, len(frontier))
	all := make([]uint, 0, len(frontier))
	for len(frontier) > 0 {
		var next []uint
		for _, id := range frontier {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
			next = append(next, id)
		}
		if len(next) == 0 {
			break
		}
		frontier = nil
		if err := r.db.Model(&models.Comment{}).Where("parent_id IN ?", next).Pluck("id", &frontier).Error; err != nil {
			return nil, err
		}
	}
	return all, nil
}

func (r *Repository) visibleListings(ctx context.Context, filter *ListingFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.HouseListing{}).
		Where("status = ? AND is_reported = ?", models.ListingStatusAvailable, false)
	if filter == nil {
		return q
	}
	if filter.Query != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.Query)) + "%"
		q = q.Where(`(LOWER(area) LIKE ? ESCAPE '\' OR LOWER(address) LIKE ? ESCAPE '\' OR LOWER(title) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}
	if filter.HouseType != nil {
		q = q.Where("house_type = ?", *filter.HouseType)
	}
	if filter.MinRent != nil {
		q = q.Where("rent >= ?", *filter.MinRent)
	}
	if filter.MaxRent != nil {
		q = q.Where("rent <= ?", *filter.MaxRent)
	}
	return q
}

// CountVisibleListings counts searchable listings matching filter
func (r *Repository) CountVisibleListings(ctx context.Context, filter *ListingFilter) (int64, error) {
	var count int64
	err := r.visibleListings(ctx, filter).Count(&count).Error
	return count, err
}

// FindVisibleListings returns one page of searchable listings, newest first
func (r *Repository) FindVisibleListings(ctx context.Context, filter *ListingFilter, offset, limit int) ([]models.HouseListing, error) {
	var listings []models.HouseListing
	err := r.visibleListings(ctx, filter).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

// ListOwnerListings returns every listing of an owner, newest first
func (r *Repository) ListOwnerListings(ctx context.Context, ownerID uint) ([]models.HouseListing, error) {
	var listings []models.HouseListing
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&listings).Error
	return listings, err
}

// RecentListings returns the newest listings with their owners
func (r *Repository) RecentListings(ctx context.Context, limit int) ([]models.HouseListing, error) {
	var listings []models.HouseListing
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

// CountListings counts all listings
func (r *Repository) CountListings(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.HouseListing{}).Count(&count).Error
	return count, err
}

// CountListingsCreatedBetween counts listings created in [from, to)
func (r *Repository) CountListingsCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.HouseListing{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}
