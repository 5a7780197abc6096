package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"findhome/internal/models"
	"findhome/internal/repository"
)

// User visible interaction messages
const (
	MsgInterestShown     = "Interest shown successfully!"
	MsgInterestDuplicate = "You have already shown interest in this property."
	MsgReportSubmitted   = "Report submitted successfully."
	MsgReportInvalid     = "Please provide a valid reason for reporting."
)

type InteractionService struct {
	repo   *repository.Repository
	policy *AccessPolicy
}

func NewInteractionService(repo *repository.Repository, policy *AccessPolicy) *InteractionService {
	return &InteractionService{repo: repo, policy: policy}
}

// ToggleSave saves the listing for userID, or unsaves it when already saved
func (s *InteractionService) ToggleSave(ctx context.Context, userID, listingID uint) (bool, error) {
	if _, err := s.repo.GetListing(ctx, listingID); err != nil {
		return false, err
	}
	saved, err := s.repo.ToggleSaved(ctx, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle saved listing: %w", err)
	}
	return saved, nil
}

// ShowInterest records a renter's interest in a listing. It returns false
// without error when the renter already showed interest.
func (s *InteractionService) ShowInterest(ctx context.Context, renterID, listingID uint) (bool, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return false, err
	}
	if _, err := s.policy.Require(ctx, renterID, CapShowInterest, MsgOnlyRentersInterest); err != nil {
		return false, err
	}

	renter, err := s.repo.GetUserByID(ctx, renterID)
	if err != nil {
		return false, err
	}

	interest := &models.Interest{
		RenterID:  renterID,
		ListingID: listing.ID,
		Message:   fmt.Sprintf("%s is interested in visiting your property.", renter.DisplayName()),
	}
	created, err := s.repo.CreateInterestIfAbsent(ctx, interest)
	if err != nil {
		return false, fmt.Errorf("failed to record interest: %w", err)
	}
	return created, nil
}

// MarkInterestRead marks an interest on one of ownerID's listings as read
func (s *InteractionService) MarkInterestRead(ctx context.Context, ownerID, interestID uint) (*models.Interest, error) {
	return s.repo.MarkInterestRead(ctx, interestID, ownerID)
}

// CommentInput is the add-comment form
type CommentInput struct {
	Content  string `form:"content" json:"content"`
	ParentID string `form:"parent_id" json:"parent_id"`
}

// AddComment posts a comment, optionally as a reply. It returns nil and no
// error when the content is blank. A parent id that does not resolve to an
// existing comment is ErrNotFound.
func (s *InteractionService) AddComment(ctx context.Context, authorID, listingID uint, input CommentInput) (*models.Comment, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, nil
	}

	comment := &models.Comment{ListingID: listing.ID, AuthorID: authorID, Content: content}

	if raw := strings.TrimSpace(input.ParentID); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parent comment %q: %w", raw, ErrNotFound)
		}
		parent, err := s.repo.GetComment(ctx, uint(id))
		if err != nil {
			return nil, fmt.Errorf("parent comment %d: %w", id, err)
		}
		comment.ParentID = &parent.ID
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}
