package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"findhome/internal/auth"
	"findhome/internal/models"
	"findhome/internal/repository"
)

// Account messages
const (
	MsgRegistered      = "Registration successful!"
	MsgLoggedOut       = "You have been logged out successfully."
	MsgInvalidLogin    = "Please enter a correct username and password."
	MsgDuplicateUser   = "A user with that username already exists."
	MsgPasswordNumeric = "This password is entirely numeric."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterInput is the registration form
type RegisterInput struct {
	Username  string `form:"username" json:"username" validate:"required,max=150"`
	FirstName string `form:"first_name" json:"first_name" validate:"required,max=30"`
	LastName  string `form:"last_name" json:"last_name" validate:"required,max=30"`
	Email     string `form:"email" json:"email" validate:"required,email,max=254"`
	Password1 string `form:"password1" json:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" json:"password2" validate:"required,eqfield=Password1"`
	UserType  string `form:"user_type" json:"user_type" validate:"required,oneof=renter owner"`
	Phone     string `form:"phone" json:"phone" validate:"max=15"`
}

// LoginInput is the login form
type LoginInput struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Session is an authenticated user with its bearer token
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles registration and login
type AuthService struct {
	repo *repository.Repository
}

// NewAuthService creates a new AuthService
func NewAuthService(repo *repository.Repository) *AuthService {
	return &AuthService{repo: repo}
}

// Register creates a user and its profile and signs the user in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.UserType = strings.TrimSpace(input.UserType)
	input.Phone = strings.TrimSpace(input.Phone)

	verr := validateStruct(input)
	if input.Username != "" && !usernamePattern.MatchString(input.Username) {
		verr.add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if input.Password1 != "" && strings.Trim(input.Password1, "0123456789") == "" {
		verr.add("password1", MsgPasswordNumeric)
	}
	if input.Username != "" {
		taken, err := s.repo.UsernameExists(ctx, input.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			verr.add("username", MsgDuplicateUser)
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	userType, err := models.ParseUserType(input.UserType)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"user_type": "Select a valid choice."}}
	}

	hash, err := auth.HashPassword(input.Password1)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	profile := &models.UserProfile{UserType: userType, Phone: input.Phone}
	if err := s.repo.CreateUserWithProfile(ctx, user, profile); err != nil {
		return nil, err
	}

	log.Info().Uint("user_id", user.ID).Str("user_type", string(userType)).Msg("New user registered")
	return s.session(user)
}

// Login checks the credentials of an active user and issues a token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	invalid := &ValidationError{Fields: map[string]string{"form": MsgInvalidLogin}}

	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, invalid
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, invalid
	}

	log.Info().Uint("user_id", user.ID).Msg("User logged in")
	return s.session(user)
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}
