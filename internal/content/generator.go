package content

import (
	"context"
	"fmt"
	"log/slog"
)

const generatorSystemPrompt = "You are a language-learning content author for %s learners. " +
	"Always include transliterations for Arabic. " +
	"Reply with JSON only, no prose, matching exactly the schema in the request."

var kindSchemas = map[Kind]string{
	KindWord:     `{"words": [{"term": "...", "translation": "...", "transliteration": "..."}]}`,
	KindSentence: `{"text": "...", "translation": "...", "transliteration": "...", "words": [{"term": "...", "translation": "...", "transliteration": "..."}]}`,
	KindDialog:   `{"title": "...", "turns": [{"speaker": "...", "text": "...", "translation": "..."}], "words": [{"term": "...", "translation": "...", "transliteration": "..."}]}`,
	KindPassage:  `{"title": "...", "text": "...", "translation": "...", "words": [{"term": "...", "translation": "...", "transliteration": "..."}]}`,
}

var kindInstructions = map[Kind]string{
	KindWord:     "Produce 8 useful vocabulary words about the topic.",
	KindSentence: "Produce one natural sentence about the topic and list its key vocabulary words.",
	KindDialog:   "Produce a short two-person dialog (4-6 turns) about the topic and list its key vocabulary words.",
	KindPassage:  "Produce a short reading passage (3-5 sentences) about the topic and list its key vocabulary words.",
}

// Completer is the slice of the LLM client the generator needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Generator struct {
	client Completer
	logger *slog.Logger
}

func NewGenerator(client Completer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, logger: logger}
}

// Generate asks the model for content of the given kind and validates the
// reply. Errors wrap ErrMalformedResponse when the model answered but the
// shape was unusable.
func (g *Generator) Generate(ctx context.Context, kind Kind, language, topic string) (*GeneratedContent, error) {
	system := fmt.Sprintf(generatorSystemPrompt, language)
	user := fmt.Sprintf("%s\nLanguage: %s\nTopic: %s\nSchema: %s",
		kindInstructions[kind], language, topic, kindSchemas[kind])

	raw, err := g.client.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("content: generate %s: %w", kind, err)
	}

	parsed, err := Parse(kind, raw)
	if err != nil {
		g.logger.Warn("generated content failed validation", "kind", kind, "error", err)
		return nil, err
	}
	return parsed, nil
}
