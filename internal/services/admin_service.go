package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"findhome/internal/models"
	"findhome/internal/repository"
)

// Report resolution actions
const (
	ResolveActionRemove  = "remove"
	ResolveActionDismiss = "dismiss"
)

// User visible moderation messages
const (
	MsgListingRemoved  = "False advertisement removed."
	MsgReportDismissed = "Report dismissed."
)

// recentLimit bounds the recent listings and users shown to admins
const recentLimit = 10

var nonAdminTypes = []models.UserType{models.UserTypeRenter, models.UserTypeOwner}

// AdminStats is the admin dashboard
type AdminStats struct {
	TotalListings    int64                 `json:"total_listings"`
	TotalUsers       int64                 `json:"total_users"`
	PendingReports   int64                 `json:"pending_reports"`
	NewListingsToday int64                 `json:"new_listings_today"`
	RecentListings   []models.HouseListing `json:"recent_listings"`
	RecentUsers      []models.User         `json:"recent_users"`
	Reports          []models.Report       `json:"reports"`
}

type AdminService struct {
	repo     *repository.Repository
	policy   *AccessPolicy
	listings *ListingService
	now      func() time.Time
}

func NewAdminService(repo *repository.Repository, policy *AccessPolicy, listings *ListingService) *AdminService {
	return &AdminService{
		repo:     repo,
		policy:   policy,
		listings: listings,
		now:      time.Now,
	}
}

// RequireAdmin checks that userID has the admin role
func (s *AdminService) RequireAdmin(ctx context.Context, userID uint) error {
	_, err := s.policy.Require(ctx, userID, CapModerate, MsgUnauthorized)
	return err
}

// Stats computes the admin dashboard aggregates
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	var (
		stats AdminStats
		err   error
	)

	if stats.TotalListings, err = s.repo.CountListings(ctx); err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}
	if stats.TotalUsers, err = s.repo.CountUsersByType(ctx, nonAdminTypes...); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.PendingReports, err = s.repo.CountUnresolvedReports(ctx); err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	// Days are counted in UTC regardless of the server's zone
	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if stats.NewListingsToday, err = s.repo.CountListingsCreatedBetween(ctx, startOfDay, startOfDay.AddDate(0, 0, 1)); err != nil {
		return nil, fmt.Errorf("failed to count new listings: %w", err)
	}

	if stats.RecentListings, err = s.repo.RecentListings(ctx, recentLimit); err != nil {
		return nil, fmt.Errorf("failed to load recent listings: %w", err)
	}
	if stats.RecentUsers, err = s.repo.RecentUsersByType(ctx, recentLimit, nonAdminTypes...); err != nil {
		return nil, fmt.Errorf("failed to load recent users: %w", err)
	}
	if stats.Reports, err = s.repo.ListUnresolvedReports(ctx); err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	return &stats, nil
}

// ResolveReport applies a moderation action to a report. It returns the
// message to show, empty when the action is not recognised.
func (s *AdminService) ResolveReport(ctx context.Context, adminID, reportID uint, action string) (string, error) {
	if err := s.RequireAdmin(ctx, adminID); err != nil {
		return "", err
	}
	report, err := s.repo.GetReport(ctx, reportID)
	if err != nil {
		return "", err
	}

	switch strings.TrimSpace(action) {
	case ResolveActionRemove:
		if err := s.listings.Delete(ctx, report.ListingID); err != nil {
			return "", fmt.Errorf("failed to remove listing %d: %w", report.ListingID, err)
		}
		s.LogAdminAction(ctx, adminID, models.AdminActionRemoveListing, models.AdminResourceListing, &report.ListingID, map[string]interface{}{
			"report_id": report.ID,
			"reason":    report.Reason,
		})
		log.Info().Uint("listing_id", report.ListingID).Uint("admin_id", adminID).Msg("Listing removed after report")
		return MsgListingRemoved, nil

	case ResolveActionDismiss:
		if err := s.repo.ResolveReport(ctx, report.ID); err != nil {
			return "", fmt.Errorf("failed to dismiss report: %w", err)
		}
		s.LogAdminAction(ctx, adminID, models.AdminActionDismissReport, models.AdminResourceReport, &report.ID, map[string]interface{}{
			"listing_id": report.ListingID,
		})
		return MsgReportDismissed, nil
	}
	return "", nil
}

// ToggleUserActive flips the active flag of a user and returns the message to show
func (s *AdminService) ToggleUserActive(ctx context.Context, adminID, userID uint) (string, error) {
	if err := s.RequireAdmin(ctx, adminID); err != nil {
		return "", err
	}
	user, err := s.repo.ToggleUserActive(ctx, userID)
	if err != nil {
		return "", err
	}

	status := "deactivated"
	if user.IsActive {
		status = "activated"
	}
	s.LogAdminAction(ctx, adminID, models.AdminActionToggleUser, models.AdminResourceUser, &user.ID, map[string]interface{}{
		"is_active": user.IsActive,
	})
	return fmt.Sprintf("User %s has been %s.", user.Username, status), nil
}

// ToggleListingReported flips the reported flag that hides a listing from search
func (s *AdminService) ToggleListingReported(ctx context.Context, adminID, listingID uint) (string, error) {
	if err := s.RequireAdmin(ctx, adminID); err != nil {
		return "", err
	}
	listing, err := s.repo.ToggleListingReported(ctx, listingID)
	if err != nil {
		return "", err
	}

	s.LogAdminAction(ctx, adminID, models.AdminActionToggleReported, models.AdminResourceListing, &listing.ID, map[string]interface{}{
		"is_reported": listing.IsReported,
	})
	if listing.IsReported {
		return fmt.Sprintf("Listing %q is now hidden from search.", listing.Title), nil
	}
	return fmt.Sprintf("Listing %q is visible in search again.", listing.Title), nil
}

// LogAdminAction logs an admin action. Failures are logged and do not fail the action.
func (s *AdminService) LogAdminAction(ctx context.Context, adminID uint, action string, resourceType string,
	resourceID *uint, details map[string]interface{}) {

	adminLog := models.AdminLog{
		AdminID:      adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      datatypes.JSONMap(details),
	}

	if err := s.repo.CreateAdminLog(ctx, &adminLog); err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to write admin log")
	}
}

// GetAdminLogs returns admin activity logs
func (s *AdminService) GetAdminLogs(ctx context.Context, adminID uint, limit, offset int) ([]models.AdminLog, error) {
	if err := s.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	logs, err := s.repo.ListAdminLogs(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin logs: %w", err)
	}
	return logs, nil
}
