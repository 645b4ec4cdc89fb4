// Package content generates lesson material through the LLM and validates
// the replies at the boundary. Each content kind has its own concrete shape;
// GeneratedContent is a tagged union over them, never a free-form map.
package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ALehav1/language-app-sub001/internal/model"
)

type Kind string

const (
	KindWord     Kind = "word"
	KindSentence Kind = "sentence"
	KindDialog   Kind = "dialog"
	KindPassage  Kind = "passage"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindWord:
		return KindWord, nil
	case KindSentence:
		return KindSentence, nil
	case KindDialog:
		return KindDialog, nil
	case KindPassage:
		return KindPassage, nil
	}
	return "", fmt.Errorf("%w: unknown content kind %q", model.ErrInvalidInput, s)
}

// Word is one vocabulary entry. Every content kind carries a Words list so a
// lesson's item set can be built regardless of kind.
type Word struct {
	Term            string `json:"term"`
	Translation     string `json:"translation"`
	Transliteration string `json:"transliteration,omitempty"`
}

type Sentence struct {
	Text            string `json:"text"`
	Translation     string `json:"translation"`
	Transliteration string `json:"transliteration,omitempty"`
	Words           []Word `json:"words"`
}

type DialogTurn struct {
	Speaker     string `json:"speaker"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
}

type Dialog struct {
	Title string       `json:"title"`
	Turns []DialogTurn `json:"turns"`
	Words []Word       `json:"words"`
}

type Passage struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Words       []Word `json:"words"`
}

// GeneratedContent is the tagged union over the four content shapes. Exactly
// one payload field is set, matching Kind.
type GeneratedContent struct {
	Kind     Kind      `json:"kind"`
	Words    []Word    `json:"words,omitempty"`
	Sentence *Sentence `json:"sentence,omitempty"`
	Dialog   *Dialog   `json:"dialog,omitempty"`
	Passage  *Passage  `json:"passage,omitempty"`
}

// VocabWords returns the word list regardless of the content kind.
func (g *GeneratedContent) VocabWords() []Word {
	switch g.Kind {
	case KindWord:
		return g.Words
	case KindSentence:
		if g.Sentence != nil {
			return g.Sentence.Words
		}
	case KindDialog:
		if g.Dialog != nil {
			return g.Dialog.Words
		}
	case KindPassage:
		if g.Passage != nil {
			return g.Passage.Words
		}
	}
	return nil
}

// Parse decodes and validates a model reply for the given kind. Anything that
// does not match the expected shape fails with ErrMalformedResponse; callers
// never see a half-valid payload.
func Parse(kind Kind, raw string) (*GeneratedContent, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))
	dec := json.NewDecoder(strings.NewReader(cleaned))

	g := &GeneratedContent{Kind: kind}
	var err error
	switch kind {
	case KindWord:
		var payload struct {
			Words []Word `json:"words"`
		}
		if err = dec.Decode(&payload); err == nil {
			g.Words = payload.Words
		}
	case KindSentence:
		var payload Sentence
		if err = dec.Decode(&payload); err == nil {
			g.Sentence = &payload
		}
	case KindDialog:
		var payload Dialog
		if err = dec.Decode(&payload); err == nil {
			g.Dialog = &payload
		}
	case KindPassage:
		var payload Passage
		if err = dec.Decode(&payload); err == nil {
			g.Passage = &payload
		}
	default:
		return nil, fmt.Errorf("%w: unknown content kind %q", model.ErrInvalidInput, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GeneratedContent) validate() error {
	malformed := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", model.ErrMalformedResponse, fmt.Sprintf(format, args...))
	}

	checkWords := func(words []Word) error {
		if len(words) == 0 {
			return malformed("empty word list")
		}
		for i, w := range words {
			if strings.TrimSpace(w.Term) == "" || strings.TrimSpace(w.Translation) == "" {
				return malformed("word %d missing term or translation", i)
			}
		}
		return nil
	}

	switch g.Kind {
	case KindWord:
		return checkWords(g.Words)
	case KindSentence:
		if g.Sentence == nil || strings.TrimSpace(g.Sentence.Text) == "" || strings.TrimSpace(g.Sentence.Translation) == "" {
			return malformed("sentence missing text or translation")
		}
		return checkWords(g.Sentence.Words)
	case KindDialog:
		if g.Dialog == nil || len(g.Dialog.Turns) == 0 {
			return malformed("dialog missing turns")
		}
		for i, turn := range g.Dialog.Turns {
			if strings.TrimSpace(turn.Text) == "" || strings.TrimSpace(turn.Translation) == "" {
				return malformed("dialog turn %d missing text or translation", i)
			}
		}
		return checkWords(g.Dialog.Words)
	case KindPassage:
		if g.Passage == nil || strings.TrimSpace(g.Passage.Text) == "" || strings.TrimSpace(g.Passage.Translation) == "" {
			return malformed("passage missing text or translation")
		}
		return checkWords(g.Passage.Words)
	}
	return malformed("unknown kind %q", g.Kind)
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
