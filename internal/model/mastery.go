package model

import (
	"time"

	"github.com/google/uuid"
)

// MasteryLevel classifies how well a user knows an item. Levels advance on
// fixed thresholds of cumulative correct answers; see service.MasteryService.
type MasteryLevel string

const (
	MasteryNew       MasteryLevel = "new"
	MasteryLearning  MasteryLevel = "learning"
	MasteryPracticed MasteryLevel = "practiced"
	MasteryMastered  MasteryLevel = "mastered"
)

// Mastery is the per-user spaced-repetition record for one vocab item. It is
// owned by the caller side of the exercise engine, never by the engine.
type Mastery struct {
	MasteryID       uuid.UUID    `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID    `gorm:"type:uuid;not null;index:idx_user_item,unique"`
	ItemID          uuid.UUID    `gorm:"type:uuid;not null;index:idx_user_item,unique"`
	Level           MasteryLevel `gorm:"not null;default:new"`
	CorrectCount    int          `gorm:"not null;default:0"`
	IncorrectCount  int          `gorm:"not null;default:0"`
	NextReviewAt    time.Time    `gorm:"not null;index"`
	LastPracticedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Item *VocabItem `gorm:"foreignKey:ItemID;references:ItemID" json:"-"`
}

func (Mastery) TableName() string {
	return "masteries"
}

// ReviewItemResponse is one due-for-review row.
type ReviewItemResponse struct {
	ItemID          uuid.UUID    `json:"item_id"`
	Term            string       `json:"term"`
	Translation     string       `json:"translation"`
	Transliteration string       `json:"transliteration,omitempty"`
	Level           MasteryLevel `json:"level"`
	NextReviewAt    time.Time    `json:"next_review_at"`
}
