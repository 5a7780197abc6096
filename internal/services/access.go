package services

import (
	"context"
	"fmt"

	"findhome/internal/models"
	"findhome/internal/repository"
)

// Capability is a set of actions a role may perform
type Capability uint8

const (
	CapCreateListing Capability = 1 << iota
	CapShowInterest
	CapChatAsRenter
	CapModerate
)

// Has reports whether every capability in want is present
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// CapabilitiesOf returns what a role is allowed to do
func CapabilitiesOf(t models.UserType) Capability {
	switch t {
	case models.UserTypeRenter:
		return CapShowInterest | CapChatAsRenter
	case models.UserTypeOwner:
		return CapCreateListing
	case models.UserTypeAdmin:
		return CapModerate
	}
	return 0
}

// User visible messages for rejected actions
const (
	MsgOnlyOwnersCreate    = "Only owners can create listings."
	MsgOnlyRentersInterest = "Only renters can show interest"
	MsgUnauthorized        = "Unauthorized access."
	MsgRenterNotSpecified  = "Renter not specified."
)

// AccessPolicy resolves a user's profile and checks role capabilities
type AccessPolicy struct {
	repo *repository.Repository
}

func NewAccessPolicy(repo *repository.Repository) *AccessPolicy {
	return &AccessPolicy{repo: repo}
}

// Profile returns the profile of userID, or ErrNotFound when it has none
func (p *AccessPolicy) Profile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	profile, err := p.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile of user %d: %w", userID, err)
	}
	return profile, nil
}

// Require returns the profile of userID if its role grants want.
// Otherwise it fails with an AccessError carrying message.
func (p *AccessPolicy) Require(ctx context.Context, userID uint, want Capability, message string) (*models.UserProfile, error) {
	profile, err := p.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !CapabilitiesOf(profile.UserType).Has(want) {
		return profile, &AccessError{Message: message}
	}
	return profile, nil
}
