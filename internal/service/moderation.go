package service

import (
	"context"
	"errors"

	"github.com/njerikim/baraza/internal/ai"
)

// Moderator gates user-authored content before it is persisted.
type Moderator interface {
	Moderate(ctx context.Context, text string) (ai.Verdict, error)
}

// Suggester produces best-effort AI suggestions; it never fails.
type Suggester interface {
	SuggestReply(ctx context.Context, lastMessage string) string
	SuggestStarters(ctx context.Context, bioA, bioB string) []string
}

// ErrModerationUnavailable surfaces only when the moderator runs fail-closed
// and the model could not be consulted.
var ErrModerationUnavailable = errors.New("content moderation is unavailable")

// GuidelineViolationError rejects content the model flagged; it carries the
// verdict so callers can show the explanation and suggested rewordings.
type GuidelineViolationError struct {
	Verdict ai.Verdict
}

func (e *GuidelineViolationError) Error() string {
	return "content violates community guidelines"
}

// moderate runs the gate shared by posts and messages.
func moderate(ctx context.Context, m Moderator, text string) error {
	verdict, err := m.Moderate(ctx, text)
	if err != nil {
		return ErrModerationUnavailable
	}
	if verdict.ViolatesGuidelines {
		return &GuidelineViolationError{Verdict: verdict}
	}
	return nil
}
