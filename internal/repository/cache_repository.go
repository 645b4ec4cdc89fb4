package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ALehav1/language-app-sub001/internal/judge"
	"github.com/ALehav1/language-app-sub001/internal/middleware"
	"github.com/ALehav1/language-app-sub001/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InferenceRecord is one cached judge verdict keyed by the normalized
// (language, correct answer, user answer) triple.
type InferenceRecord struct {
	Key       string `gorm:"primaryKey"`
	Correct   bool   `gorm:"not null"`
	Feedback  string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (InferenceRecord) TableName() string {
	return "inference_cache"
}

// GormVerdictStore backs a judge.StoreCache with the database.
type GormVerdictStore struct {
	db *gorm.DB
}

func NewGormVerdictStore(db *gorm.DB) *GormVerdictStore {
	return &GormVerdictStore{db: db}
}

var _ judge.VerdictStore = (*GormVerdictStore)(nil)

func (s *GormVerdictStore) Find(ctx context.Context, key string) (*model.Verdict, error) {
	logger := middleware.GetLogger(ctx)
	var rec InferenceRecord
	result := s.db.WithContext(ctx).Where("key = ?", key).First(&rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Error loading cached verdict from DB", "error", result.Error)
		return nil, fmt.Errorf("GormVerdictStore.Find: %w", result.Error)
	}
	return &model.Verdict{Correct: rec.Correct, Feedback: rec.Feedback}, nil
}

func (s *GormVerdictStore) Upsert(ctx context.Context, key string, v model.Verdict) error {
	logger := middleware.GetLogger(ctx)
	rec := InferenceRecord{Key: key, Correct: v.Correct, Feedback: v.Feedback}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"correct", "feedback", "updated_at"}),
	}).Create(&rec)
	if result.Error != nil {
		logger.Error("Error upserting cached verdict in DB", "error", result.Error)
		return fmt.Errorf("GormVerdictStore.Upsert: %w", result.Error)
	}
	return nil
}

// DeleteOlderThan prunes cache entries not refreshed since cutoff.
func (s *GormVerdictStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&InferenceRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("GormVerdictStore.DeleteOlderThan: %w", result.Error)
	}
	return result.RowsAffected, nil
}
