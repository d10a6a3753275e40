package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/njerikim/baraza/internal/domain"
	"github.com/njerikim/baraza/internal/repository"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotNotificationOwner = errors.New("notification belongs to another user")
)

type NotificationService struct {
	notificationRepo repository.NotificationRepository
	notifier         Notifier
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *NotificationService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Notify persists a notification for userID and pushes it to their room.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, content string) (*domain.Notification, error) {
	n := &domain.Notification{
		UserID:    userID,
		Content:   content,
		Read:      false,
		CreatedAt: time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNotification(n)
	}

	return n, nil
}

// List returns the user's notifications, newest first, and marks them all
// read in one batch. The returned entries keep the read flags they had when
// fetched, so the caller can still highlight what was unread.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return nil, fmt.Errorf("marking notifications read: %w", err)
	}

	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return notifications, nil
}

// MarkRead marks a single notification read; only its owner may do so.
func (s *NotificationService) MarkRead(ctx context.Context, id int64, userID uuid.UUID) error {
	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.UserID != userID {
		return ErrNotNotificationOwner
	}

	return s.notificationRepo.MarkRead(ctx, id)
}
