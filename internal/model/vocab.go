package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lesson groups vocabulary items for a single user. Kind records how the
// lesson was produced (manual entry, xlsx import, or model generation).
type Lesson struct {
	LessonID  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"lesson_id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	Title     string         `gorm:"not null" json:"title"`
	Language  string         `gorm:"not null" json:"language"`
	Kind      string         `gorm:"not null;default:manual" json:"kind"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Items []VocabItem `gorm:"foreignKey:LessonID;references:LessonID" json:"items,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// VocabItem is one term/translation pair. The exercise engine never mutates
// these; it only reads them through ExerciseItem.
type VocabItem struct {
	ItemID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"item_id"`
	LessonID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	Term            string         `gorm:"not null" json:"term"`
	Translation     string         `gorm:"not null" json:"translation"`
	Transliteration string         `json:"transliteration,omitempty"`
	Language        string         `gorm:"not null" json:"language"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (VocabItem) TableName() string {
	return "vocab_items"
}

// ToExerciseItem adapts a stored item to the immutable view the engine reads.
func (v *VocabItem) ToExerciseItem() ExerciseItem {
	return ExerciseItem{
		ID:              v.ItemID.String(),
		Term:            v.Term,
		Translation:     v.Translation,
		Transliteration: v.Transliteration,
		Language:        v.Language,
	}
}

type CreateLessonRequest struct {
	Title    string                   `json:"title" validate:"required,min=1,max=200"`
	Language string                   `json:"language" validate:"required,oneof=arabic spanish"`
	Items    []CreateVocabItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateVocabItemRequest struct {
	Term            string `json:"term" validate:"required,min=1"`
	Translation     string `json:"translation" validate:"required,min=1"`
	Transliteration string `json:"transliteration,omitempty"`
}

type PatchVocabItemRequest struct {
	Term            *string `json:"term,omitempty" validate:"omitempty,min=1"`
	Translation     *string `json:"translation,omitempty" validate:"omitempty,min=1"`
	Transliteration *string `json:"transliteration,omitempty"`
}

type GenerateLessonRequest struct {
	Language string `json:"language" validate:"required,oneof=arabic spanish"`
	Kind     string `json:"kind" validate:"required,oneof=word sentence dialog passage"`
	Topic    string `json:"topic" validate:"required,min=1,max=200"`
}
