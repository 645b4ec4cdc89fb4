package model

// Phase is the state of a practice session. There are no other states: a
// session is either waiting for an answer, showing the result of one, or done.
type Phase string

const (
	PhasePrompting Phase = "prompting"
	PhaseFeedback  Phase = "feedback"
	PhaseComplete  Phase = "complete"
)

// ProgressVersion is the on-disk format version of PersistedProgress. Records
// with any other version are ignored on read, never treated as an error.
const ProgressVersion = 2

// ExerciseItem is the engine's read-only view of a vocabulary item.
type ExerciseItem struct {
	ID              string `json:"id"`
	Term            string `json:"term"`
	Translation     string `json:"translation"`
	Transliteration string `json:"transliteration,omitempty"`
	Language        string `json:"language"`
}

// AnswerRecord is appended exactly once per answered (non-skipped) item, in
// completion order.
type AnswerRecord struct {
	ItemID        string `json:"item_id"`
	Correct       bool   `json:"correct"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Feedback      string `json:"feedback,omitempty"`
}

// Verdict is what the semantic judge returns for a non-exact answer.
type Verdict struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}

// PersistedProgress is the serialized session blob written to the progress
// store after every state-changing operation.
type PersistedProgress struct {
	Version int            `json:"version"`
	Queue   []string       `json:"queue"`
	Answers []AnswerRecord `json:"answers"`
	SavedAt int64          `json:"savedAt"` // unix millis
}

// ExerciseState is the read-only snapshot the engine exposes to callers.
type ExerciseState struct {
	SessionID        string         `json:"session_id,omitempty"`
	Phase            Phase          `json:"phase"`
	CurrentItem      *ExerciseItem  `json:"current_item,omitempty"`
	CurrentIndex     int            `json:"current_index"`
	TotalItems       int            `json:"total_items"`
	Answers          []AnswerRecord `json:"answers"`
	LastAnswer       *AnswerRecord  `json:"last_answer,omitempty"`
	CorrectCount     int            `json:"correct_count"`
	IsValidating     bool           `json:"is_validating"`
	HasSavedProgress bool           `json:"has_saved_progress"`
	IsHydrated       bool           `json:"is_hydrated"`
}

type CreateExerciseSessionRequest struct {
	LessonID   string `json:"lesson_id" validate:"required,uuid4"`
	SessionKey string `json:"session_key,omitempty" validate:"omitempty,min=1,max=128"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

type GoToItemRequest struct {
	Index int `json:"index" validate:"gte=0"`
}
