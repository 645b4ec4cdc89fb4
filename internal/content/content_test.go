package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALehav1/language-app-sub001/internal/model"
)

func TestParse_WordList(t *testing.T) {
	raw := `{"words": [
		{"term": "casa", "translation": "house"},
		{"term": "perro", "translation": "dog"}
	]}`

	got, err := Parse(KindWord, raw)

	require.NoError(t, err)
	assert.Equal(t, KindWord, got.Kind)
	require.Len(t, got.VocabWords(), 2)
	assert.Equal(t, "casa", got.VocabWords()[0].Term)
}

func TestParse_FencedPassage(t *testing.T) {
	raw := "```json\n" + `{
		"title": "El mercado",
		"text": "Fui al mercado.",
		"translation": "I went to the market.",
		"words": [{"term": "mercado", "translation": "market"}]
	}` + "\n```"

	got, err := Parse(KindPassage, raw)

	require.NoError(t, err)
	require.NotNil(t, got.Passage)
	assert.Equal(t, "El mercado", got.Passage.Title)
	assert.Len(t, got.VocabWords(), 1)
}

func TestParse_Dialog(t *testing.T) {
	raw := `{
		"title": "At the cafe",
		"turns": [
			{"speaker": "A", "text": "مرحبا", "translation": "Hello"},
			{"speaker": "B", "text": "أهلا", "translation": "Hi"}
		],
		"words": [{"term": "مرحبا", "translation": "hello", "transliteration": "marhaba"}]
	}`

	got, err := Parse(KindDialog, raw)

	require.NoError(t, err)
	require.NotNil(t, got.Dialog)
	assert.Len(t, got.Dialog.Turns, 2)
}

func TestParse_MalformedShapes(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		raw  string
	}{
		{name: "not json", kind: KindWord, raw: "here are some words: casa, perro"},
		{name: "empty word list", kind: KindWord, raw: `{"words": []}`},
		{name: "word missing translation", kind: KindWord, raw: `{"words": [{"term": "casa"}]}`},
		{name: "sentence missing text", kind: KindSentence, raw: `{"translation": "hi", "words": [{"term": "a", "translation": "b"}]}`},
		{name: "dialog with empty turn", kind: KindDialog, raw: `{"turns": [{"speaker": "A", "text": "", "translation": ""}], "words": [{"term": "a", "translation": "b"}]}`},
		{name: "passage without words", kind: KindPassage, raw: `{"title": "t", "text": "x", "translation": "y", "words": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.kind, tt.raw)

			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrMalformedResponse)
		})
	}
}

func TestParse_UnknownKind(t *testing.T) {
	_, err := Parse(Kind("poem"), `{}`)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	return s.reply, s.err
}

func TestGenerator_Generate(t *testing.T) {
	gen := NewGenerator(&stubCompleter{
		reply: `{"words": [{"term": "شاي", "translation": "tea", "transliteration": "shay"}]}`,
	}, nil)

	got, err := gen.Generate(context.Background(), KindWord, "arabic", "drinks")

	require.NoError(t, err)
	require.Len(t, got.Words, 1)
	assert.Equal(t, "shay", got.Words[0].Transliteration)
}

func TestGenerator_MalformedReply(t *testing.T) {
	gen := NewGenerator(&stubCompleter{reply: "Sure! Here are some words..."}, nil)

	_, err := gen.Generate(context.Background(), KindWord, "arabic", "drinks")

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMalformedResponse)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Dialog ")
	require.NoError(t, err)
	assert.Equal(t, KindDialog, k)

	_, err = ParseKind("poem")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
