package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"findhome/internal/media"
	"findhome/internal/models"
	"findhome/internal/repository"
)

// ListingInput is the create-listing form
type ListingInput struct {
	Title        string `form:"title" json:"title" validate:"required,max=200"`
	Description  string `form:"description" json:"description" validate:"required"`
	HouseType    string `form:"house_type" json:"house_type" validate:"required,oneof=bachelor_male bachelor_female family"`
	Address      string `form:"address" json:"address" validate:"required"`
	Area         string `form:"area" json:"area" validate:"required,max=100"`
	Rent         string `form:"rent" json:"rent" validate:"required"`
	ContactPhone string `form:"contact_phone" json:"contact_phone" validate:"required,max=15"`
	ContactEmail string `form:"contact_email" json:"contact_email" validate:"required,email,max=254"`
}

func (in *ListingInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.HouseType = strings.TrimSpace(in.HouseType)
	in.Address = strings.TrimSpace(in.Address)
	in.Area = strings.TrimSpace(in.Area)
	in.Rent = strings.TrimSpace(in.Rent)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
}

// toListing validates the input and builds the listing it describes
func (in ListingInput) toListing(ownerID uint) (*models.HouseListing, error) {
	in.normalize()
	verr := validateStruct(in)

	houseType, _ := models.ParseHouseType(in.HouseType)
	rent, err := ParseRent(in.Rent)
	if in.Rent != "" && err != nil {
		verr.add("rent", err.Error())
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	return &models.HouseListing{
		OwnerID:      ownerID,
		Title:        in.Title,
		Description:  in.Description,
		HouseType:    houseType,
		Address:      in.Address,
		Area:         in.Area,
		Rent:         rent,
		Status:       models.ListingStatusAvailable,
		ContactPhone: in.ContactPhone,
		ContactEmail: in.ContactEmail,
	}, nil
}

// ListingDetail is a listing with its discussion and the viewer's saved state
type ListingDetail struct {
	Listing  *models.HouseListing `json:"listing"`
	Comments []models.Comment     `json:"comments"`
	IsSaved  bool                 `json:"is_saved"`
}

type ListingService struct {
	repo   *repository.Repository
	policy *AccessPolicy
	store  media.Store
}

func NewListingService(repo *repository.Repository, policy *AccessPolicy, store media.Store) *ListingService {
	if store == nil {
		store = media.Disabled{}
	}
	return &ListingService{repo: repo, policy: policy, store: store}
}

// CanCreate checks that userID may create listings
func (s *ListingService) CanCreate(ctx context.Context, userID uint) error {
	_, err := s.policy.Require(ctx, userID, CapCreateListing, MsgOnlyOwnersCreate)
	return err
}

// Create stores the uploads and inserts the listing with one image row per upload.
// Uploaded objects are removed again when the insert fails.
func (s *ListingService) Create(ctx context.Context, ownerID uint, input ListingInput, uploads []media.Upload) (*models.HouseListing, error) {
	if err := s.CanCreate(ctx, ownerID); err != nil {
		return nil, err
	}

	listing, err := input.toListing(ownerID)
	if err != nil {
		return nil, err
	}

	stored := make([]media.Object, 0, len(uploads))
	for _, upload := range uploads {
		obj, err := s.store.Put(ctx, upload)
		if err != nil {
			s.discard(stored)
			return nil, fmt.Errorf("failed to store image %s: %w", upload.Filename, err)
		}
		stored = append(stored, obj)
	}

	for _, obj := range stored {
		listing.Images = append(listing.Images, models.HouseImage{ObjectKey: obj.Key, URL: obj.URL})
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		s.discard(stored)
		return nil, err
	}

	log.Info().
		Uint("listing_id", listing.ID).
		Uint("owner_id", ownerID).
		Int("images", len(stored)).
		Msg("Listing created")
	return listing, nil
}

func (s *ListingService) discard(objects []media.Object) {
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	s.deleteMedia(keys)
}

// deleteMedia removes stored objects. Failures are logged and otherwise ignored.
func (s *ListingService) deleteMedia(keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(context.Background(), key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to delete media object")
		}
	}
}

// UpdateStatus changes the status of a listing owned by ownerID. Unknown
// status values leave the listing untouched and report applied=false.
func (s *ListingService) UpdateStatus(ctx context.Context, ownerID, listingID uint, raw string) (bool, models.ListingStatus, error) {
	listing, err := s.repo.GetOwnedListing(ctx, listingID, ownerID)
	if err != nil {
		return false, "", err
	}

	status, err := models.ParseListingStatus(raw)
	if err != nil {
		return false, listing.Status, nil
	}
	if err := s.repo.UpdateListingStatus(ctx, listing.ID, status); err != nil {
		return false, listing.Status, fmt.Errorf("failed to update listing status: %w", err)
	}
	return true, status, nil
}

// Detail returns a listing with its top level comments. viewerID is zero for anonymous viewers.
func (s *ListingService) Detail(ctx context.Context, listingID, viewerID uint) (*ListingDetail, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.ListTopLevelComments(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	detail := &ListingDetail{Listing: listing, Comments: comments}
	if viewerID != 0 {
		detail.IsSaved, err = s.repo.IsSaved(ctx, viewerID, listing.ID)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// Report files a false advertisement report. It returns false when the reason is blank.
func (s *ListingService) Report(ctx context.Context, reporterID, listingID uint, reason string) (bool, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return false, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return false, nil
	}

	report := &models.Report{ListingID: listing.ID, ReporterID: reporterID, Reason: reason}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return false, fmt.Errorf("failed to create report: %w", err)
	}
	return true, nil
}

// Delete removes a listing with everything attached to it, then its media objects
func (s *ListingService) Delete(ctx context.Context, listingID uint) error {
	keys, err := s.repo.DeleteListing(ctx, listingID)
	if err != nil {
		return err
	}
	s.deleteMedia(keys)
	return nil
}
