package ai

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/njerikim/baraza/internal/util"
)

const replyFallback = "Sorry, I couldn't generate a reply."

// generalStarters backs SuggestStarters when the model is unavailable, so
// the conversation view never renders empty.
var generalStarters = []string{
	"How's your day going so far?",
	"Any exciting plans for the weekend?",
	"What's your favorite way to relax after a long day?",
	"Have you read any good books or watched any interesting movies lately?",
	"If you could travel anywhere in the world right now, where would you go?",
	"What's the best piece of advice you've ever received?",
	"Do you have any hobbies or passions you'd like to share?",
	"What's your idea of a perfect day?",
	"If you could have dinner with any historical figure, who would it be and why?",
	"What's the most interesting place you've ever visited?",
}

// Suggester produces best-effort reply and conversation-starter suggestions.
// Failures degrade to fallbacks; they never surface as errors.
type Suggester struct {
	client Client
}

func NewSuggester(client Client) *Suggester {
	return &Suggester{client: client}
}

// SuggestReply proposes a ready-to-send reply to the last message of a
// conversation. Repeated calls may differ; that is expected.
func (s *Suggester) SuggestReply(ctx context.Context, lastMessage string) string {
	prompt := fmt.Sprintf(`Given the following message, suggest a thoughtful and engaging reply:
%q
Keep the reply concise and natural-sounding. Include appropriate emojis to make the message more engaging.
Do not use asterisks or any other formatting. The reply should be ready to send as-is.`, lastMessage)

	raw, err := s.client.Generate(ctx, prompt)
	if err != nil {
		util.Logger.Warn("reply suggestion failed", zap.Error(err))
		return replyFallback
	}

	reply := strings.TrimSpace(strings.ReplaceAll(raw, "*", ""))
	if reply == "" {
		return replyFallback
	}
	return reply
}

// SuggestStarters proposes conversation starters for two users based on
// their bios. On failure it returns a random handful of general starters.
func (s *Suggester) SuggestStarters(ctx context.Context, bioA, bioB string) []string {
	prompt := fmt.Sprintf(`Suggest 3 conversation starters for two users based on their profiles:

User 1: %s
User 2: %s

Provide engaging and relevant conversation starters that could help these users connect.
List one starter per line, with no numbering or formatting.`, bioA, bioB)

	raw, err := s.client.Generate(ctx, prompt)
	if err != nil {
		util.Logger.Warn("starter suggestion failed", zap.Error(err))
		return fallbackStarters()
	}

	starters := splitStarters(raw)
	if len(starters) == 0 {
		return fallbackStarters()
	}
	return starters
}

func splitStarters(raw string) []string {
	var starters []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line == "" {
			continue
		}
		starters = append(starters, line)
	}
	return starters
}

func fallbackStarters() []string {
	shuffled := make([]string, len(generalStarters))
	copy(shuffled, generalStarters)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:5]
}
