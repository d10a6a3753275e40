package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/njerikim/baraza/internal/domain"
)

func newMessageServiceForTest() (*MessageService, *MockMessageRepo, *MockUserRepo, *MockModerator, *MockSuggester, *MockNotificationRepo, *MockNotifier) {
	messageRepo := new(MockMessageRepo)
	userRepo := new(MockUserRepo)
	moderator := new(MockModerator)
	suggester := new(MockSuggester)
	notificationRepo := new(MockNotificationRepo)
	notifier := new(MockNotifier)

	notifications := NewNotificationService(notificationRepo)
	notifications.SetNotifier(notifier)

	svc := NewMessageService(messageRepo, userRepo, moderator, suggester, notifications)
	svc.SetNotifier(notifier)

	return svc, messageRepo, userRepo, moderator, suggester, notificationRepo, notifier
}

func TestSendDeliversToBothParticipants(t *testing.T) {
	svc, messageRepo, userRepo, moderator, _, notificationRepo, notifier := newMessageServiceForTest()

	alice := uuid.New()
	bob := uuid.New()

	userRepo.On("GetByID", mock.Anything, bob).Return(&domain.User{ID: bob, Username: "bob"}, nil)
	moderator.On("Moderate", mock.Anything, "hi bob!").Return(cleanVerdict(), nil)
	messageRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Message).ID = 42
	}).Return(nil)
	stored := &domain.Message{ID: 42, SenderID: alice, RecipientID: bob, Content: "hi bob!", SenderUsername: "alice"}
	messageRepo.On("GetByID", mock.Anything, int64(42)).Return(stored, nil)
	notifier.On("NotifyNewMessage", stored).Once()
	notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
	notifier.On("NotifyNotification", mock.AnythingOfType("*domain.Notification")).Once()

	msg, err := svc.Send(context.Background(), alice, bob, "hi bob!", nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), msg.ID)
	notifier.AssertExpectations(t)

	// The persisted notification targets the recipient.
	created := notificationRepo.Calls[0].Arguments.Get(1).(*domain.Notification)
	assert.Equal(t, bob, created.UserID)
	assert.Equal(t, "New message from @alice", created.Content)
}

func TestSendSucceedsWhenNotificationFails(t *testing.T) {
	svc, messageRepo, userRepo, moderator, _, notificationRepo, notifier := newMessageServiceForTest()

	alice := uuid.New()
	bob := uuid.New()

	userRepo.On("GetByID", mock.Anything, bob).Return(&domain.User{ID: bob, Username: "bob"}, nil)
	moderator.On("Moderate", mock.Anything, "hi bob!").Return(cleanVerdict(), nil)
	messageRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Message).ID = 42
	}).Return(nil)
	stored := &domain.Message{ID: 42, SenderID: alice, RecipientID: bob, Content: "hi bob!", SenderUsername: "alice"}
	messageRepo.On("GetByID", mock.Anything, int64(42)).Return(stored, nil)
	notifier.On("NotifyNewMessage", stored).Once()
	notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(errors.New("notifications table gone"))

	// The message is persisted and broadcast before the notification write;
	// a notification failure must not surface as a send failure.
	msg, err := svc.Send(context.Background(), alice, bob, "hi bob!", nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), msg.ID)
	notifier.AssertExpectations(t)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	svc, _, _, _, _, _, _ := newMessageServiceForTest()

	_, err := svc.Send(context.Background(), uuid.New(), uuid.New(), "   \n ", nil)

	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestSendRejectsSelfMessage(t *testing.T) {
	svc, _, _, _, _, _, _ := newMessageServiceForTest()
	id := uuid.New()

	_, err := svc.Send(context.Background(), id, id, "hello me", nil)

	assert.ErrorIs(t, err, ErrCannotMessageSelf)
}

func TestSendRejectsUnknownRecipient(t *testing.T) {
	svc, _, userRepo, _, _, _, _ := newMessageServiceForTest()
	bob := uuid.New()
	userRepo.On("GetByID", mock.Anything, bob).Return(nil, nil)

	_, err := svc.Send(context.Background(), uuid.New(), bob, "hello", nil)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendBlocksFlaggedContent(t *testing.T) {
	svc, messageRepo, userRepo, moderator, _, _, _ := newMessageServiceForTest()
	bob := uuid.New()

	userRepo.On("GetByID", mock.Anything, bob).Return(&domain.User{ID: bob, Username: "bob"}, nil)
	moderator.On("Moderate", mock.Anything, "awful insult").Return(flaggedVerdict(), nil)

	_, err := svc.Send(context.Background(), uuid.New(), bob, "awful insult", nil)

	var violation *GuidelineViolationError
	assert.ErrorAs(t, err, &violation)
	assert.Equal(t, "contains harassment", violation.Verdict.Explanation)
	messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMarkReadOnlyRecipient(t *testing.T) {
	svc, messageRepo, _, _, _, _, _ := newMessageServiceForTest()
	sender := uuid.New()
	recipient := uuid.New()

	messageRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Message{
		ID: 7, SenderID: sender, RecipientID: recipient,
	}, nil)

	_, err := svc.MarkRead(context.Background(), 7, sender)

	assert.ErrorIs(t, err, ErrNotRecipient)
	messageRepo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc, messageRepo, _, _, _, _, notifier := newMessageServiceForTest()
	sender := uuid.New()
	recipient := uuid.New()

	messageRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Message{
		ID: 7, SenderID: sender, RecipientID: recipient, Read: true,
	}, nil)
	notifier.On("NotifyMessageRead", mock.AnythingOfType("*domain.Message")).Twice()

	for i := 0; i < 2; i++ {
		msg, err := svc.MarkRead(context.Background(), 7, recipient)
		assert.NoError(t, err)
		assert.True(t, msg.Read)
	}

	// The flag write is skipped for an already-read message; only the
	// receipt is re-emitted.
	messageRepo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
	notifier.AssertExpectations(t)
}

func TestMarkReadEmitsReceiptToSender(t *testing.T) {
	svc, messageRepo, _, _, _, _, notifier := newMessageServiceForTest()
	sender := uuid.New()
	recipient := uuid.New()

	messageRepo.On("GetByID", mock.Anything, int64(9)).Return(&domain.Message{
		ID: 9, SenderID: sender, RecipientID: recipient,
	}, nil)
	messageRepo.On("MarkRead", mock.Anything, int64(9)).Return(nil)
	notifier.On("NotifyMessageRead", mock.MatchedBy(func(msg *domain.Message) bool {
		return msg.ID == 9 && msg.Read
	})).Once()

	msg, err := svc.MarkRead(context.Background(), 9, recipient)

	assert.NoError(t, err)
	assert.True(t, msg.Read)
	notifier.AssertExpectations(t)
}

func TestMarkReadUnknownMessage(t *testing.T) {
	svc, messageRepo, _, _, _, _, _ := newMessageServiceForTest()
	messageRepo.On("GetByID", mock.Anything, int64(404)).Return(nil, nil)

	_, err := svc.MarkRead(context.Background(), 404, uuid.New())

	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestListConversationClampsPaging(t *testing.T) {
	svc, messageRepo, _, _, _, _, _ := newMessageServiceForTest()
	alice := uuid.New()
	bob := uuid.New()

	messageRepo.On("ListConversation", mock.Anything, alice, bob, 20, 0).Return([]domain.Message{}, nil)

	msgs, err := svc.ListConversation(context.Background(), alice, bob, -3, 500)

	assert.NoError(t, err)
	assert.NotNil(t, msgs)
	messageRepo.AssertExpectations(t)
}

func TestSearchBlankQueryShortCircuits(t *testing.T) {
	svc, messageRepo, _, _, _, _, _ := newMessageServiceForTest()

	msgs, err := svc.Search(context.Background(), uuid.New(), uuid.New(), "   ")

	assert.NoError(t, err)
	assert.Empty(t, msgs)
	messageRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSuggestReplyEmptyConversation(t *testing.T) {
	svc, messageRepo, _, _, _, _, _ := newMessageServiceForTest()
	alice := uuid.New()
	bob := uuid.New()
	messageRepo.On("Latest", mock.Anything, alice, bob).Return(nil, nil)

	_, err := svc.SuggestReply(context.Background(), alice, bob)

	assert.ErrorIs(t, err, ErrEmptyConversation)
}

func TestSuggestReplyUsesLatestMessage(t *testing.T) {
	svc, messageRepo, _, _, suggester, _, _ := newMessageServiceForTest()
	alice := uuid.New()
	bob := uuid.New()

	messageRepo.On("Latest", mock.Anything, alice, bob).Return(&domain.Message{
		ID: 3, SenderID: bob, RecipientID: alice, Content: "coffee tomorrow?",
	}, nil)
	suggester.On("SuggestReply", mock.Anything, "coffee tomorrow?").Return("Sounds great, what time?")

	reply, err := svc.SuggestReply(context.Background(), alice, bob)

	assert.NoError(t, err)
	assert.Equal(t, "Sounds great, what time?", reply)
}

func TestSuggestStartersSubstitutesMissingBios(t *testing.T) {
	svc, _, userRepo, _, suggester, _, _ := newMessageServiceForTest()
	alice := uuid.New()
	bob := uuid.New()
	bio := "climber and baker"

	userRepo.On("GetByID", mock.Anything, alice).Return(&domain.User{ID: alice, Bio: &bio}, nil)
	userRepo.On("GetByID", mock.Anything, bob).Return(&domain.User{ID: bob}, nil)
	suggester.On("SuggestStarters", mock.Anything, bio, "(no bio)").Return([]string{"Been climbing lately?"})

	starters, err := svc.SuggestStarters(context.Background(), alice, bob)

	assert.NoError(t, err)
	assert.Equal(t, []string{"Been climbing lately?"}, starters)
}
