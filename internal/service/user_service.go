package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/njerikim/baraza/internal/domain"
	"github.com/njerikim/baraza/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	postRepo repository.PostRepository,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		postRepo:   postRepo,
	}
}

// GetProfile returns the user together with their profile-page counts.
func (s *UserService) GetProfile(ctx context.Context, username string) (*domain.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Profile{
		User:           *user,
		FollowersCount: followers,
		FollowingCount: following,
		PostsCount:     posts,
	}, nil
}

type UpdateProfileInput struct {
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UpdateProfile changes bio and/or avatar; nil fields are left untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Bio != nil {
		user.Bio = input.Bio
	}
	if input.AvatarURL != nil {
		user.AvatarURL = input.AvatarURL
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return user, nil
}

// ListOthers returns every other user, for the recipient picker.
func (s *UserService) ListOthers(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	users, err := s.userRepo.ListOthers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
