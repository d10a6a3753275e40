package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njerikim/baraza/internal/domain"
	"github.com/njerikim/baraza/internal/repository"
	"github.com/njerikim/baraza/internal/util"
)

var ErrCannotFollowSelf = errors.New("cannot follow yourself")

type FollowService struct {
	followRepo    repository.FollowRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
) *FollowService {
	return &FollowService{
		followRepo:    followRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// Follow adds an edge follower -> followed. Idempotent; only a new edge
// notifies the followed user.
func (s *FollowService) Follow(ctx context.Context, followerID uuid.UUID, username string) (*domain.User, error) {
	followed, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if followed == nil {
		return nil, ErrUserNotFound
	}
	if followed.ID == followerID {
		return nil, ErrCannotFollowSelf
	}

	added, err := s.followRepo.Create(ctx, &domain.Follow{
		FollowerID: followerID,
		FollowedID: followed.ID,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating follow: %w", err)
	}

	// The edge is already persisted; the notification is best-effort.
	if added && s.notifications != nil {
		follower, err := s.userRepo.GetByID(ctx, followerID)
		if err != nil || follower == nil {
			util.Logger.Warn("follow notification skipped", zap.Error(err))
			return followed, nil
		}
		content := fmt.Sprintf("@%s started following you", follower.Username)
		if _, err := s.notifications.Notify(ctx, followed.ID, content); err != nil {
			util.Logger.Warn("follow notification failed", zap.Error(err))
		}
	}

	return followed, nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID uuid.UUID, username string) error {
	followed, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if followed == nil {
		return ErrUserNotFound
	}
	if followed.ID == followerID {
		return ErrCannotFollowSelf
	}

	return s.followRepo.Delete(ctx, followerID, followed.ID)
}

func (s *FollowService) Followers(ctx context.Context, username string) ([]domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	followers, err := s.followRepo.ListFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if followers == nil {
		followers = []domain.User{}
	}
	return followers, nil
}

func (s *FollowService) Following(ctx context.Context, username string) ([]domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	following, err := s.followRepo.ListFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if following == nil {
		following = []domain.User{}
	}
	return following, nil
}
