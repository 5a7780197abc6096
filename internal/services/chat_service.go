package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"findhome/internal/models"
	"findhome/internal/repository"
)

// ChatThread is the conversation between the viewer and one other user on a listing
type ChatThread struct {
	Listing   *models.HouseListing `json:"listing"`
	OtherUser *models.User         `json:"other_user"`
	Messages  []models.ChatMessage `json:"messages"`
}

type ChatService struct {
	repo   *repository.Repository
	policy *AccessPolicy
}

func NewChatService(repo *repository.Repository, policy *AccessPolicy) *ChatService {
	return &ChatService{repo: repo, policy: policy}
}

// Thread loads the conversation for viewerID and marks what the other party
// sent to the viewer as read. Renters talk to the listing owner; the owner
// picks the renter with renterID.
func (s *ChatService) Thread(ctx context.Context, viewerID, listingID uint, renterID string) (*ChatThread, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	profile, err := s.policy.Profile(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	var other *models.User
	switch {
	case CapabilitiesOf(profile.UserType).Has(CapChatAsRenter):
		other = listing.Owner
		if other == nil {
			if other, err = s.repo.GetUserByID(ctx, listing.OwnerID); err != nil {
				return nil, err
			}
		}
	case profile.UserType == models.UserTypeOwner && listing.OwnerID == viewerID:
		raw := strings.TrimSpace(renterID)
		if raw == "" {
			return nil, &AccessError{Message: MsgRenterNotSpecified}
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("renter %q: %w", raw, ErrNotFound)
		}
		if other, err = s.repo.GetUserByID(ctx, uint(id)); err != nil {
			return nil, err
		}
	default:
		return nil, &AccessError{Message: MsgUnauthorized}
	}

	messages, err := s.repo.ChatThread(ctx, listing.ID, viewerID, other.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	if _, err := s.repo.MarkChatRead(ctx, listing.ID, other.ID, viewerID); err != nil {
		return nil, fmt.Errorf("failed to mark chat read: %w", err)
	}

	return &ChatThread{Listing: listing, OtherUser: other, Messages: messages}, nil
}

// MessageInput is the send-message form
type MessageInput struct {
	ReceiverID string `form:"receiver_id" json:"receiver_id"`
	Message    string `form:"message" json:"message"`
}

// Send stores a chat message. It returns nil and no error when the receiver
// or the message is missing.
func (s *ChatService) Send(ctx context.Context, senderID, listingID uint, input MessageInput) (*models.ChatMessage, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	rawReceiver := strings.TrimSpace(input.ReceiverID)
	if rawReceiver == "" || strings.TrimSpace(input.Message) == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(rawReceiver, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("receiver %q: %w", rawReceiver, ErrNotFound)
	}
	receiver, err := s.repo.GetUserByID(ctx, uint(id))
	if err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		ListingID:  listing.ID,
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		Message:    input.Message,
	}
	if err := s.repo.CreateChatMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}
