package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/njerikim/baraza/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListOthers(ctx context.Context, userID uuid.UUID) ([]domain.User, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	// ListConversation returns messages between the unordered pair
	// {userID, otherID}, ascending by (created_at, id).
	ListConversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]domain.Message, error)
	Latest(ctx context.Context, userID, otherID uuid.UUID) (*domain.Message, error)
	MarkRead(ctx context.Context, id int64) error
	Search(ctx context.Context, userID, otherID uuid.UUID, query string) ([]domain.Message, error)
	DeleteConversation(ctx context.Context, userID, otherID uuid.UUID) (int64, error)
	// ListInbox returns, per counterpart of userID, the message with the
	// highest id among all messages between the pair, newest first.
	ListInbox(ctx context.Context, userID uuid.UUID) ([]domain.InboxEntry, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Post, error)
	ListFeed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Post, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	AddLike(ctx context.Context, postID int64, userID uuid.UUID) (bool, error)
	RemoveLike(ctx context.Context, postID int64, userID uuid.UUID) error
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetCommentByID(ctx context.Context, id int64) (*domain.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	ListComments(ctx context.Context, postID int64) ([]domain.Comment, error)
}

type FollowRepository interface {
	Create(ctx context.Context, follow *domain.Follow) (bool, error)
	Delete(ctx context.Context, followerID, followedID uuid.UUID) error
	Exists(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]domain.User, error)
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]domain.User, error)
	CountFollowers(ctx context.Context, userID uuid.UUID) (int, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
