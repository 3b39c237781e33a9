package service

import (
	"context"
	"strings"

	"qawala/internal/models"
	"qawala/internal/repository"
	"qawala/internal/validation"
)

// UserService manages profiles and roles.
type UserService struct {
	users repository.UserRepository
}

// ProfileInput is what a signed-in user may change about themselves.
type ProfileInput struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, uid string) (*models.User, error) {
	return s.users.GetByUID(ctx, uid)
}

// SaveProfile registers or refreshes the caller's profile. New profiles get the user role.
func (s *UserService) SaveProfile(ctx context.Context, uid string, in ProfileInput) (*models.User, error) {
	if uid == "" {
		return nil, models.NewUnauthenticatedError("Authorization required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	user := &models.User{UID: uid, Email: email, DisplayName: strings.TrimSpace(in.DisplayName), Role: models.RoleUser}
	if err := s.users.UpsertProfile(ctx, user); err != nil {
		return nil, err
	}
	return s.users.GetByUID(ctx, uid)
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.users.List(ctx, limit, offset)
}

// SetRole changes a user's role. Admins cannot demote themselves.
func (s *UserService) SetRole(ctx context.Context, actorUID, uid, role string) error {
	if err := validation.ValidateRole(role); err != nil {
		return models.NewValidationError(err.Error())
	}
	if actorUID == uid && role != models.RoleAdmin {
		return models.NewForbiddenError("Admins cannot remove their own admin role")
	}
	return s.users.SetRole(ctx, uid, role)
}

// IsAdmin reports whether uid holds the admin role. Unknown users are not admins.
func (s *UserService) IsAdmin(ctx context.Context, uid string) (bool, error) {
	if uid == "" {
		return false, nil
	}
	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		if models.StatusFor(err) == 404 {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin(), nil
}
