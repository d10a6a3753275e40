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

func newPostServiceForTest() (*PostService, *MockPostRepo, *MockUserRepo, *MockModerator, *MockNotificationRepo, *MockNotifier) {
	postRepo := new(MockPostRepo)
	userRepo := new(MockUserRepo)
	moderator := new(MockModerator)
	notificationRepo := new(MockNotificationRepo)
	notifier := new(MockNotifier)

	notifications := NewNotificationService(notificationRepo)
	notifications.SetNotifier(notifier)

	svc := NewPostService(postRepo, userRepo, moderator, notifications)
	return svc, postRepo, userRepo, moderator, notificationRepo, notifier
}

func TestCreatePostPassesModeration(t *testing.T) {
	svc, postRepo, _, moderator, _, _ := newPostServiceForTest()
	author := uuid.New()

	moderator.On("Moderate", mock.Anything, "lovely sunset today").Return(cleanVerdict(), nil)
	postRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Post")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Post).ID = 5
	}).Return(nil)
	postRepo.On("GetByID", mock.Anything, int64(5)).Return(&domain.Post{
		ID: 5, UserID: author, Content: "lovely sunset today", AuthorUsername: "alice",
	}, nil)

	post, err := svc.Create(context.Background(), author, "lovely sunset today", nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), post.ID)
	assert.Equal(t, "alice", post.AuthorUsername)
}

func TestCreatePostBlocksFlaggedContent(t *testing.T) {
	svc, postRepo, _, moderator, _, _ := newPostServiceForTest()

	moderator.On("Moderate", mock.Anything, "hateful rant").Return(flaggedVerdict(), nil)

	_, err := svc.Create(context.Background(), uuid.New(), "hateful rant", nil)

	var violation *GuidelineViolationError
	assert.ErrorAs(t, err, &violation)
	assert.Equal(t, []string{"try a kinder wording"}, violation.Verdict.Suggestions)
	postRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePostRejectsEmptyContent(t *testing.T) {
	svc, _, _, moderator, _, _ := newPostServiceForTest()

	_, err := svc.Create(context.Background(), uuid.New(), "  ", nil)

	assert.ErrorIs(t, err, ErrEmptyContent)
	moderator.AssertNotCalled(t, "Moderate", mock.Anything, mock.Anything)
}

func TestLikeNotifiesAuthorOnce(t *testing.T) {
	svc, postRepo, userRepo, _, notificationRepo, notifier := newPostServiceForTest()
	author := uuid.New()
	liker := uuid.New()

	postRepo.On("GetByID", mock.Anything, int64(3)).Return(&domain.Post{ID: 3, UserID: author}, nil)
	postRepo.On("AddLike", mock.Anything, int64(3), liker).Return(true, nil).Once()
	postRepo.On("AddLike", mock.Anything, int64(3), liker).Return(false, nil)
	userRepo.On("GetByID", mock.Anything, liker).Return(&domain.User{ID: liker, Username: "bob"}, nil)
	notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
	notifier.On("NotifyNotification", mock.AnythingOfType("*domain.Notification")).Once()

	assert.NoError(t, svc.Like(context.Background(), liker, 3))
	assert.NoError(t, svc.Like(context.Background(), liker, 3))

	notifier.AssertExpectations(t)
	created := notificationRepo.Calls[0].Arguments.Get(1).(*domain.Notification)
	assert.Equal(t, author, created.UserID)
	assert.Equal(t, "@bob liked your post", created.Content)
}

func TestLikeSucceedsWhenNotificationFails(t *testing.T) {
	svc, postRepo, userRepo, _, notificationRepo, _ := newPostServiceForTest()
	author := uuid.New()
	liker := uuid.New()

	postRepo.On("GetByID", mock.Anything, int64(3)).Return(&domain.Post{ID: 3, UserID: author}, nil)
	postRepo.On("AddLike", mock.Anything, int64(3), liker).Return(true, nil)
	userRepo.On("GetByID", mock.Anything, liker).Return(&domain.User{ID: liker, Username: "bob"}, nil)
	notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(errors.New("boom"))

	// The like row is already in place; the notification is best-effort.
	assert.NoError(t, svc.Like(context.Background(), liker, 3))
}

func TestCommentSucceedsWhenNotificationFails(t *testing.T) {
	svc, postRepo, _, _, notificationRepo, _ := newPostServiceForTest()
	author := uuid.New()
	commenter := uuid.New()

	postRepo.On("GetByID", mock.Anything, int64(3)).Return(&domain.Post{ID: 3, UserID: author}, nil)
	postRepo.On("CreateComment", mock.Anything, mock.AnythingOfType("*domain.Comment")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Comment).ID = 11
	}).Return(nil)
	postRepo.On("GetCommentByID", mock.Anything, int64(11)).Return(&domain.Comment{
		ID: 11, PostID: 3, UserID: commenter, Content: "great shot!", AuthorUsername: "bob",
	}, nil)
	notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(errors.New("boom"))

	comment, err := svc.Comment(context.Background(), commenter, 3, "great shot!")

	assert.NoError(t, err)
	assert.Equal(t, int64(11), comment.ID)
}

func TestLikeOwnPostDoesNotNotify(t *testing.T) {
	svc, postRepo, _, _, notificationRepo, _ := newPostServiceForTest()
	author := uuid.New()

	postRepo.On("GetByID", mock.Anything, int64(3)).Return(&domain.Post{ID: 3, UserID: author}, nil)
	postRepo.On("AddLike", mock.Anything, int64(3), author).Return(true, nil)

	assert.NoError(t, svc.Like(context.Background(), author, 3))

	notificationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLikeUnknownPost(t *testing.T) {
	svc, postRepo, _, _, _, _ := newPostServiceForTest()
	postRepo.On("GetByID", mock.Anything, int64(404)).Return(nil, nil)

	err := svc.Like(context.Background(), uuid.New(), 404)

	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletePostOwnerOnly(t *testing.T) {
	svc, postRepo, _, _, _, _ := newPostServiceForTest()
	author := uuid.New()

	postRepo.On("GetByID", mock.Anything, int64(8)).Return(&domain.Post{ID: 8, UserID: author}, nil)

	err := svc.Delete(context.Background(), uuid.New(), 8)

	assert.ErrorIs(t, err, ErrNotPostOwner)
	postRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCommentNotifiesPostAuthor(t *testing.T) {
	svc, postRepo, _, _, notificationRepo, notifier := newPostServiceForTest()
	author := uuid.New()
	commenter := uuid.New()

	postRepo.On("GetByID", mock.Anything, int64(3)).Return(&domain.Post{ID: 3, UserID: author}, nil)
	postRepo.On("CreateComment", mock.Anything, mock.AnythingOfType("*domain.Comment")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Comment).ID = 11
	}).Return(nil)
	postRepo.On("GetCommentByID", mock.Anything, int64(11)).Return(&domain.Comment{
		ID: 11, PostID: 3, UserID: commenter, Content: "great shot!", AuthorUsername: "bob",
	}, nil)
	notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
	notifier.On("NotifyNotification", mock.AnythingOfType("*domain.Notification")).Once()

	comment, err := svc.Comment(context.Background(), commenter, 3, "great shot!")

	assert.NoError(t, err)
	assert.Equal(t, "bob", comment.AuthorUsername)
	created := notificationRepo.Calls[0].Arguments.Get(1).(*domain.Notification)
	assert.Equal(t, author, created.UserID)
	assert.Equal(t, "@bob commented on your post", created.Content)
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	svc, postRepo, _, _, _, _ := newPostServiceForTest()
	commenter := uuid.New()

	postRepo.On("GetCommentByID", mock.Anything, int64(11)).Return(&domain.Comment{
		ID: 11, UserID: commenter,
	}, nil)

	err := svc.DeleteComment(context.Background(), uuid.New(), 11)

	assert.ErrorIs(t, err, ErrNotCommentOwner)
	postRepo.AssertNotCalled(t, "DeleteComment", mock.Anything, mock.Anything)
}
