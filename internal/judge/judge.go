// Package judge implements the semantic answer judge: an LLM call that
// decides whether a non-identical translation is nonetheless acceptable.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ALehav1/language-app-sub001/internal/llm"
	"github.com/ALehav1/language-app-sub001/internal/model"
)

const systemPrompt = "You are a strict but fair language-learning grader. " +
	"Decide whether the student's answer is an acceptable translation. " +
	"Minor spelling slips and synonyms are acceptable; wrong meanings are not. " +
	`Reply with JSON only, exactly {"correct": true|false, "feedback": "<one short sentence>"}.`

// Completer is the slice of the LLM client the judge needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Judge evaluates answers against an LLM, fronted by an inference cache so
// identical judgments are decided once.
type Judge struct {
	client Completer
	cache  InferenceCache
	logger *slog.Logger
}

func New(client Completer, cache InferenceCache, logger *slog.Logger) *Judge {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Judge{client: client, cache: cache, logger: logger}
}

// Judge implements exercise.Judge. Errors are returned to the engine, which
// converts them into a definite negative outcome; nothing is retried here.
func (j *Judge) Judge(ctx context.Context, userAnswer, correctAnswer, language string) (model.Verdict, error) {
	key := cacheKey(userAnswer, correctAnswer, language)
	if v, ok := j.cache.Get(ctx, key); ok {
		return v, nil
	}

	user := fmt.Sprintf(
		"Language: %s\nExpected translation: %q\nStudent answer: %q\nIs the student answer acceptable?",
		language, correctAnswer, userAnswer,
	)
	raw, err := j.client.Complete(ctx, systemPrompt, user)
	if err != nil {
		return model.Verdict{}, err
	}

	verdict, err := parseVerdict(raw)
	if err != nil {
		j.logger.Warn("judge returned unparseable verdict", "error", err)
		return model.Verdict{}, err
	}

	j.cache.Set(ctx, key, verdict)
	return verdict, nil
}

func cacheKey(userAnswer, correctAnswer, language string) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return norm(language) + "|" + norm(correctAnswer) + "|" + norm(userAnswer)
}

// parseVerdict validates the model's reply instead of trusting its shape.
// Both fields must be present; anything else is a malformed response.
func parseVerdict(raw string) (model.Verdict, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))

	var probe struct {
		Correct  *bool   `json:"correct"`
		Feedback *string `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return model.Verdict{}, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}
	if probe.Correct == nil || probe.Feedback == nil {
		return model.Verdict{}, fmt.Errorf("%w: missing correct or feedback field", model.ErrMalformedResponse)
	}
	return model.Verdict{Correct: *probe.Correct, Feedback: *probe.Feedback}, nil
}

// stripCodeFence removes a surrounding ```json fence, which chat models add
// even when told not to.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var _ Completer = (*llm.Client)(nil)
