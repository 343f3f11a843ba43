package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicdesk/backend/internal/logger"
	"github.com/civicdesk/backend/internal/models"
	"github.com/civicdesk/backend/internal/store"
)

var (
	// ErrEmailExists rejects a registration reusing an email, compared
	// case-insensitively against all users.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown email and a failed
	// password check; callers never learn which.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IdentityService owns registration, login and the session pointer. All
// state lives in the record store; the service holds no caches.
type IdentityService struct {
	store store.RecordStore
}

func NewIdentityService(s store.RecordStore) *IdentityService {
	return &IdentityService{store: s}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Mobile   string
	Address  string
	Aadhaar  string
	Gender   string
}

// CheckEmailExists scans users for a case-insensitive email match.
func (s *IdentityService) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// Register creates a citizen account and opens a session for it. Public
// registration always yields the Citizen role; employee and admin accounts
// only come from seeding.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	exists, err := s.CheckEmailExists(ctx, in.Email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, fmt.Errorf("%w: %s", ErrEmailExists, in.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Role:     models.RoleCitizen,
		Mobile:   in.Mobile,
		Address:  in.Address,
		Aadhaar:  in.Aadhaar,
		Gender:   in.Gender,
		Avatar:   avatarURL(in.Name),
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		return models.User{}, err
	}
	if err := s.store.SetCurrentUser(ctx, user); err != nil {
		return models.User{}, err
	}

	logger.WithUser(user.ID).Info("Registered new citizen account")
	return user, nil
}

// Login resolves the email case-insensitively and verifies the password
// against the stored bcrypt hash. On success the session pointer is set to
// the matched user.
func (s *IdentityService) Login(ctx context.Context, email, password string) (models.User, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
			return models.User{}, ErrInvalidCredentials
		}
		if err := s.store.SetCurrentUser(ctx, u); err != nil {
			return models.User{}, err
		}
		return u, nil
	}
	return models.User{}, ErrInvalidCredentials
}

// Logout clears the session pointer.
func (s *IdentityService) Logout(ctx context.Context) error {
	return s.store.ClearCurrentUser(ctx)
}

// CurrentUser reads the session pointer; nil means no active session.
func (s *IdentityService) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.store.CurrentUser(ctx)
}

// SaveUser upserts a full user record. The store refreshes the session
// pointer when the saved record is the session's own user, so a self-edit
// never leaves stale profile data behind.
func (s *IdentityService) SaveUser(ctx context.Context, u models.User) error {
	return s.store.SaveUser(ctx, u)
}

// UserByID returns the user with the given id, or store.ErrNotFound.
func (s *IdentityService) UserByID(ctx context.Context, id string) (models.User, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("%w: user %s", store.ErrNotFound, id)
}

// Users returns the full user collection.
func (s *IdentityService) Users(ctx context.Context) ([]models.User, error) {
	return s.store.Users(ctx)
}

// Employees returns users with the Employee role, for assignment views.
func (s *IdentityService) Employees(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	employees := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Role == models.RoleEmployee {
			employees = append(employees, u)
		}
	}
	return employees, nil
}

// DeleteUser removes a user record. Not part of any portal flow today.
func (s *IdentityService) DeleteUser(ctx context.Context, id string) error {
	return s.store.DeleteUser(ctx, id)
}

// avatarURL builds a deterministic placeholder avatar from the user's name.
func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}
