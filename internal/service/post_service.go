package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njerikim/baraza/internal/domain"
	"github.com/njerikim/baraza/internal/repository"
	"github.com/njerikim/baraza/internal/util"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrNotPostOwner    = errors.New("only the author can delete this post")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("only the author can delete this comment")
)

type PostService struct {
	postRepo      repository.PostRepository
	userRepo      repository.UserRepository
	moderator     Moderator
	notifications *NotificationService
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	moderator Moderator,
	notifications *NotificationService,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		userRepo:      userRepo,
		moderator:     moderator,
		notifications: notifications,
	}
}

// Create runs the moderation gate and persists the post.
func (s *PostService) Create(ctx context.Context, userID uuid.UUID, content string, mediaURL *string) (*domain.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	if err := moderate(ctx, s.moderator, content); err != nil {
		return nil, err
	}

	post := &domain.Post{
		UserID:    userID,
		Content:   content,
		MediaURL:  mediaURL,
		CreatedAt: time.Now(),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// Feed returns the user's timeline: own posts plus followed users' posts,
// newest first.
func (s *PostService) Feed(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Post, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	posts, err := s.postRepo.ListFeed(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

func (s *PostService) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Post, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	posts, err := s.postRepo.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

func (s *PostService) Delete(ctx context.Context, userID uuid.UUID, postID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != userID {
		return ErrNotPostOwner
	}

	return s.postRepo.Delete(ctx, postID)
}

// Like is idempotent; only a first-time like notifies the author.
func (s *PostService) Like(ctx context.Context, userID uuid.UUID, postID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	added, err := s.postRepo.AddLike(ctx, postID, userID)
	if err != nil {
		return fmt.Errorf("adding like: %w", err)
	}

	// The like row already exists; the notification is best-effort.
	if added && post.UserID != userID && s.notifications != nil {
		liker, err := s.userRepo.GetByID(ctx, userID)
		if err != nil || liker == nil {
			util.Logger.Warn("like notification skipped", zap.Error(err))
			return nil
		}
		content := fmt.Sprintf("@%s liked your post", liker.Username)
		if _, err := s.notifications.Notify(ctx, post.UserID, content); err != nil {
			util.Logger.Warn("like notification failed", zap.Error(err))
		}
	}

	return nil
}

func (s *PostService) Unlike(ctx context.Context, userID uuid.UUID, postID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	return s.postRepo.RemoveLike(ctx, postID, userID)
}

func (s *PostService) Comment(ctx context.Context, userID uuid.UUID, postID int64, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comment := &domain.Comment{
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := s.postRepo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	full, err := s.postRepo.GetCommentByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	// The comment is already persisted; the notification is best-effort.
	if post.UserID != userID && s.notifications != nil {
		content := fmt.Sprintf("@%s commented on your post", full.AuthorUsername)
		if _, err := s.notifications.Notify(ctx, post.UserID, content); err != nil {
			util.Logger.Warn("comment notification failed", zap.Error(err))
		}
	}

	return full, nil
}

func (s *PostService) DeleteComment(ctx context.Context, userID uuid.UUID, commentID int64) error {
	comment, err := s.postRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.UserID != userID {
		return ErrNotCommentOwner
	}

	return s.postRepo.DeleteComment(ctx, commentID)
}

func (s *PostService) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comments, err := s.postRepo.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}
