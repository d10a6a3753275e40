package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/njerikim/baraza/internal/util"
)

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Verdict is the structured result of one moderation check. It is never
// persisted; it only gates a write.
type Verdict struct {
	ViolatesGuidelines bool     `json:"violates_guidelines"`
	Explanation        string   `json:"explanation"`
	Sentiment          string   `json:"sentiment"`
	Suggestions        []string `json:"suggestions"`
}

// ErrUnavailable is returned instead of a verdict when the moderator runs
// fail-closed and the model could not be reached or understood.
var ErrUnavailable = errors.New("ai: moderation unavailable")

// defaultVerdict is what callers get when the model is unreachable or its
// reply cannot be parsed. Lenient on purpose; FailClosed flips the policy.
func defaultVerdict() Verdict {
	return Verdict{
		ViolatesGuidelines: false,
		Explanation:        "unable to analyze",
		Sentiment:          SentimentNeutral,
		Suggestions:        []string{},
	}
}

type ModeratorConfig struct {
	// CacheTTL bounds how long a verdict for the exact same text is reused.
	CacheTTL time.Duration
	// FailClosed makes Moderate return ErrUnavailable instead of the lenient
	// default verdict when the model cannot be consulted.
	FailClosed bool
}

// Moderator checks user-authored text against community guidelines via the
// generative model. Identical texts within the TTL share one verdict, and
// concurrent identical calls collapse into a single model request.
type Moderator struct {
	client Client
	cfg    ModeratorConfig

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	verdict Verdict
	expires time.Time
}

func NewModerator(client Client, cfg ModeratorConfig) *Moderator {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &Moderator{
		client: client,
		cfg:    cfg,
		cache:  make(map[string]cacheEntry),
	}
}

// Moderate always returns a usable Verdict. The error is non-nil only in
// fail-closed mode, when the model could not be consulted at all.
func (m *Moderator) Moderate(ctx context.Context, text string) (Verdict, error) {
	if v, ok := m.cached(text); ok {
		return v, nil
	}

	res, err, _ := m.group.Do(text, func() (any, error) {
		// Collapsed concurrent callers all ride this one flight; detach it
		// from the first caller's cancellation so one aborted request does
		// not hand everyone the fallback verdict. The client's own timeout
		// still bounds the call.
		raw, err := m.client.Generate(context.WithoutCancel(ctx), moderationPrompt(text))
		if err != nil {
			return Verdict{}, err
		}
		verdict, err := parseVerdict(raw)
		if err != nil {
			return Verdict{}, err
		}
		m.store(text, verdict)
		return verdict, nil
	})
	if err != nil {
		util.Logger.Warn("moderation fell back to default verdict", zap.Error(err))
		if m.cfg.FailClosed {
			return defaultVerdict(), ErrUnavailable
		}
		return defaultVerdict(), nil
	}

	return res.(Verdict), nil
}

func (m *Moderator) cached(text string) (Verdict, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.cache[text]
	if !ok || time.Now().After(entry.expires) {
		delete(m.cache, text)
		return Verdict{}, false
	}
	return entry.verdict, true
}

func (m *Moderator) store(text string, verdict Verdict) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[text] = cacheEntry{verdict: verdict, expires: time.Now().Add(m.cfg.CacheTTL)}
}

func moderationPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following content for appropriateness on a social media platform. Take into account common community guidelines, including but not limited to: harassment, hate speech, violence, explicit content, misinformation, and spam.

Content to analyze:
%q

Format your response as a JSON object with exactly these keys:
- "violates_guidelines": (boolean) true if the content violates guidelines, otherwise false.
- "explanation": (string) a brief explanation of why the content does or does not violate guidelines.
- "sentiment": (string) one of "positive", "neutral" or "negative".
- "suggestions": (array of strings) alternative wordings if the content needs improvement.

Respond with the JSON object only.`, text)
}

// parseVerdict decodes the model's reply: direct decode first, then a retry
// on the first brace-delimited substring. Model output is data, never code.
func parseVerdict(raw string) (Verdict, error) {
	raw = stripCodeFences(raw)

	verdict, err := decodeVerdict(raw)
	if err == nil {
		return verdict, nil
	}

	sub, ok := extractJSONObject(raw)
	if !ok {
		return Verdict{}, fmt.Errorf("ai: no JSON object in model response")
	}
	return decodeVerdict(sub)
}

// decodeVerdict requires all four keys; a reply missing any of them counts
// as malformed.
func decodeVerdict(s string) (Verdict, error) {
	var aux struct {
		ViolatesGuidelines *bool     `json:"violates_guidelines"`
		Explanation        *string   `json:"explanation"`
		Sentiment          *string   `json:"sentiment"`
		Suggestions        *[]string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(s), &aux); err != nil {
		return Verdict{}, err
	}
	if aux.ViolatesGuidelines == nil || aux.Explanation == nil || aux.Sentiment == nil || aux.Suggestions == nil {
		return Verdict{}, errors.New("ai: moderation result is missing required keys")
	}

	verdict := Verdict{
		ViolatesGuidelines: *aux.ViolatesGuidelines,
		Explanation:        *aux.Explanation,
		Sentiment:          strings.ToLower(strings.TrimSpace(*aux.Sentiment)),
		Suggestions:        *aux.Suggestions,
	}
	switch verdict.Sentiment {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
	default:
		verdict.Sentiment = SentimentNeutral
	}
	if verdict.Suggestions == nil {
		verdict.Suggestions = []string{}
	}
	return verdict, nil
}

// stripCodeFences unwraps ```json ... ``` style replies.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:] // drop the language tag line
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// extractJSONObject returns the first top-level {...} span of s.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
