package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"findhome/internal/models"
	"findhome/internal/repository"
)

// PageSize is the number of listings per search page
const PageSize = 12

const (
	maxQueryLength = 100
	rentMaxDigits  = 10
	rentDecimals   = 2
)

// SearchParams are the raw search query values
type SearchParams struct {
	Query     string `form:"query" json:"query"`
	HouseType string `form:"house_type" json:"house_type"`
	MinRent   string `form:"min_rent" json:"min_rent"`
	MaxRent   string `form:"max_rent" json:"max_rent"`
	Page      string `form:"page" json:"-"`
}

// SearchResult is one page of visible listings
type SearchResult struct {
	Listings       []models.HouseListing `json:"listings"`
	Page           int                   `json:"page"`
	TotalPages     int                   `json:"total_pages"`
	Total          int64                 `json:"total"`
	HasNext        bool                  `json:"has_next"`
	HasPrevious    bool                  `json:"has_previous"`
	Filters        SearchParams          `json:"filters"`
	FiltersApplied bool                  `json:"filters_applied"`
}

type SearchService struct {
	repo *repository.Repository
}

func NewSearchService(repo *repository.Repository) *SearchService {
	return &SearchService{repo: repo}
}

// Search returns the requested page of available, unreported listings.
// Invalid filters are dropped as a whole; the base listing set is returned instead.
func (s *SearchService) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	filter, err := ParseSearchFilter(params)
	applied := err == nil
	if !applied {
		filter = nil
	}

	total, err := s.repo.CountVisibleListings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	totalPages := int((total + PageSize - 1) / PageSize)
	if totalPages == 0 {
		totalPages = 1
	}
	page := resolvePage(params.Page, totalPages)

	listings, err := s.repo.FindVisibleListings(ctx, filter, (page-1)*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	if listings == nil {
		listings = []models.HouseListing{}
	}

	return &SearchResult{
		Listings:       listings,
		Page:           page,
		TotalPages:     totalPages,
		Total:          total,
		HasNext:        page < totalPages,
		HasPrevious:    page > 1,
		Filters:        params,
		FiltersApplied: applied,
	}, nil
}

// resolvePage maps the raw page value onto [1, totalPages]. Non numeric
// values give the first page, out of range values give the last one.
func resolvePage(raw string, totalPages int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	if page < 1 || page > totalPages {
		return totalPages
	}
	return page
}

// ParseSearchFilter validates the raw filter values
func ParseSearchFilter(params SearchParams) (*repository.ListingFilter, error) {
	verr := &ValidationError{}
	filter := &repository.ListingFilter{}

	query := strings.TrimSpace(params.Query)
	if utf8.RuneCountInString(query) > maxQueryLength {
		verr.add("query", fmt.Sprintf("Ensure this value has at most %d characters.", maxQueryLength))
	}
	filter.Query = query

	if raw := strings.TrimSpace(params.HouseType); raw != "" {
		houseType, err := models.ParseHouseType(raw)
		if err != nil {
			verr.add("house_type", "Select a valid choice.")
		} else {
			filter.HouseType = &houseType
		}
	}

	if raw := strings.TrimSpace(params.MinRent); raw != "" {
		amount, err := ParseRent(raw)
		if err != nil {
			verr.add("min_rent", err.Error())
		} else if !amount.IsZero() {
			filter.MinRent = &amount
		}
	}
	if raw := strings.TrimSpace(params.MaxRent); raw != "" {
		amount, err := ParseRent(raw)
		if err != nil {
			verr.add("max_rent", err.Error())
		} else if !amount.IsZero() {
			filter.MaxRent = &amount
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return filter, nil
}

// ParseRent parses a currency amount with at most 10 digits, 2 of them decimals
func ParseRent(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errors.New("Enter a number.")
	}

	digits := len(amount.Coefficient().String())
	if amount.Coefficient().Sign() < 0 {
		digits--
	}
	exp := int(amount.Exponent())

	var decimals int
	switch {
	case exp >= 0:
		digits += exp
	case -exp > digits:
		digits = -exp
		decimals = -exp
	default:
		decimals = -exp
	}

	switch {
	case digits > rentMaxDigits:
		return decimal.Zero, fmt.Errorf("Ensure that there are no more than %d digits in total.", rentMaxDigits)
	case decimals > rentDecimals:
		return decimal.Zero, fmt.Errorf("Ensure that there are no more than %d decimal places.", rentDecimals)
	case digits-decimals > rentMaxDigits-rentDecimals:
		return decimal.Zero, fmt.Errorf("Ensure that there are no more than %d digits before the decimal point.", rentMaxDigits-rentDecimals)
	}
	return amount, nil
}
