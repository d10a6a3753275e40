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
	ErrEmptyContent      = errors.New("content cannot be empty")
	ErrMessageNotFound   = errors.New("message not found")
	ErrNotRecipient      = errors.New("only the recipient can mark a message as read")
	ErrCannotMessageSelf = errors.New("cannot send a message to yourself")
	ErrEmptyConversation = errors.New("no messages in this conversation yet")
)

type MessageService struct {
	messageRepo   repository.MessageRepository
	userRepo      repository.UserRepository
	moderator     Moderator
	suggester     Suggester
	notifications *NotificationService
	notifier      Notifier
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	moderator Moderator,
	suggester Suggester,
	notifications *NotificationService,
) *MessageService {
	return &MessageService{
		messageRepo:   messageRepo,
		userRepo:      userRepo,
		moderator:     moderator,
		suggester:     suggester,
		notifications: notifications,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send validates and moderates the content, persists the message, fans the
// new_message event out to both participants and notifies the recipient.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID uuid.UUID, content string, mediaURL *string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if senderID == recipientID {
		return nil, ErrCannotMessageSelf
	}

	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrUserNotFound
	}

	if err := moderate(ctx, s.moderator, content); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		MediaURL:    mediaURL,
		CreatedAt:   time.Now(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	// Re-fetch for the joined sender fields.
	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}
	// The message is already persisted and broadcast; a notification
	// failure must not turn a delivered send into a 500 (a client retry
	// would duplicate the message).
	if s.notifications != nil {
		content := fmt.Sprintf("New message from @%s", full.SenderUsername)
		if _, err := s.notifications.Notify(ctx, recipientID, content); err != nil {
			util.Logger.Warn("message notification failed", zap.Error(err))
		}
	}

	return full, nil
}

// ListConversation returns one page of the chat log between userID and
// otherID, oldest first. The pair filter is unordered, so both participants
// see the same messages.
func (s *MessageService) ListConversation(ctx context.Context, userID, otherID uuid.UUID, page, pageSize int) ([]domain.Message, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	messages, err := s.messageRepo.ListConversation(ctx, userID, otherID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// MarkRead flips the read flag. Only the recipient may do this; repeating
// the call is safe and re-emits the receipt at most once per call.
func (s *MessageService) MarkRead(ctx context.Context, messageID int64, userID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	if msg.RecipientID != userID {
		return nil, ErrNotRecipient
	}

	if !msg.Read {
		if err := s.messageRepo.MarkRead(ctx, messageID); err != nil {
			return nil, fmt.Errorf("marking message read: %w", err)
		}
		msg.Read = true
	}

	if s.notifier != nil {
		s.notifier.NotifyMessageRead(msg)
	}

	return msg, nil
}

// Search finds messages in the conversation whose content contains the query,
// case-insensitively, newest first.
func (s *MessageService) Search(ctx context.Context, userID, otherID uuid.UUID, query string) ([]domain.Message, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.Message{}, nil
	}

	messages, err := s.messageRepo.Search(ctx, userID, otherID, query)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// DeleteConversation removes every message between the pair, both
// directions. Irreversible.
func (s *MessageService) DeleteConversation(ctx context.Context, userID, otherID uuid.UUID) (int64, error) {
	return s.messageRepo.DeleteConversation(ctx, userID, otherID)
}

// Inbox returns one entry per counterpart with the latest message exchanged,
// freshest conversation first.
func (s *MessageService) Inbox(ctx context.Context, userID uuid.UUID) ([]domain.InboxEntry, error) {
	entries, err := s.messageRepo.ListInbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.InboxEntry{}
	}
	return entries, nil
}

// SuggestReply proposes a reply to the most recent message in the
// conversation. Best-effort: the suggestion may vary between calls.
func (s *MessageService) SuggestReply(ctx context.Context, userID, otherID uuid.UUID) (string, error) {
	last, err := s.messageRepo.Latest(ctx, userID, otherID)
	if err != nil {
		return "", err
	}
	if last == nil {
		return "", ErrEmptyConversation
	}
	return s.suggester.SuggestReply(ctx, last.Content), nil
}

// SuggestStarters proposes conversation starters based on both users' bios.
func (s *MessageService) SuggestStarters(ctx context.Context, userID, otherID uuid.UUID) ([]string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if user == nil || other == nil {
		return nil, ErrUserNotFound
	}

	return s.suggester.SuggestStarters(ctx, bioOf(user), bioOf(other)), nil
}

func bioOf(u *domain.User) string {
	if u.Bio == nil || *u.Bio == "" {
		return "(no bio)"
	}
	return *u.Bio
}
