package services

import (
	"context"
	"fmt"

	"findhome/internal/models"
	"findhome/internal/repository"
)

// RenterDashboard lists what a renter saved and asked about
type RenterDashboard struct {
	SavedListings []models.SavedListing `json:"saved_listings"`
	Interests     []models.Interest     `json:"interests"`
}

// OwnerDashboard lists an owner's listings and the interests they have not read yet
type OwnerDashboard struct {
	Listings     []models.HouseListing `json:"listings"`
	NewInterests []models.Interest     `json:"new_interests"`
}

// Dashboard is the role specific landing page. Exactly one branch is set.
type Dashboard struct {
	UserType models.UserType  `json:"user_type"`
	Renter   *RenterDashboard `json:"renter,omitempty"`
	Owner    *OwnerDashboard  `json:"owner,omitempty"`
	Admin    *AdminStats      `json:"admin,omitempty"`
}

type DashboardService struct {
	repo   *repository.Repository
	policy *AccessPolicy
	admin  *AdminService
}

func NewDashboardService(repo *repository.Repository, policy *AccessPolicy, admin *AdminService) *DashboardService {
	return &DashboardService{repo: repo, policy: policy, admin: admin}
}

// Build assembles the dashboard for userID according to its role
func (s *DashboardService) Build(ctx context.Context, userID uint) (*Dashboard, error) {
	profile, err := s.policy.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{UserType: profile.UserType}
	switch profile.UserType {
	case models.UserTypeRenter:
		saved, err := s.repo.ListSaved(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load saved listings: %w", err)
		}
		interests, err := s.repo.ListRenterInterests(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load interests: %w", err)
		}
		dashboard.Renter = &RenterDashboard{SavedListings: saved, Interests: interests}

	case models.UserTypeOwner:
		listings, err := s.repo.ListOwnerListings(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load listings: %w", err)
		}
		interests, err := s.repo.ListUnreadInterestsForOwner(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load interests: %w", err)
		}
		dashboard.Owner = &OwnerDashboard{Listings: listings, NewInterests: interests}

	case models.UserTypeAdmin:
		stats, err := s.admin.Stats(ctx)
		if err != nil {
			return nil, err
		}
		dashboard.Admin = stats

	default:
		return nil, fmt.Errorf("profile of user %d has unknown type %q: %w", userID, profile.UserType, ErrNotFound)
	}
	return dashboard, nil
}
