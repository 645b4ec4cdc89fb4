package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ALehav1/language-app-sub001/internal/exercise"
	"github.com/ALehav1/language-app-sub001/internal/middleware"
	"github.com/ALehav1/language-app-sub001/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExerciseProgressRecord stores one serialized session snapshot per storage key.
type ExerciseProgressRecord struct {
	Key       string `gorm:"primaryKey"`
	Payload   []byte `gorm:"not null"`
	SavedAt   int64  `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ExerciseProgressRecord) TableName() string {
	return "exercise_progress"
}

// GormProgressStore is the durable ProgressStore backing resumable sessions.
type GormProgressStore struct {
	db *gorm.DB
}

func NewGormProgressStore(db *gorm.DB) *GormProgressStore {
	return &GormProgressStore{db: db}
}

var _ exercise.ProgressStore = (*GormProgressStore)(nil)

func (s *GormProgressStore) Load(ctx context.Context, key string) (*model.PersistedProgress, error) {
	logger := middleware.GetLogger(ctx)
	var rec ExerciseProgressRecord
	result := s.db.WithContext(ctx).Where("key = ?", key).First(&rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Error loading exercise progress from DB", "error", result.Error, "key", key)
		return nil, fmt.Errorf("GormProgressStore.Load: %w", result.Error)
	}

	var progress model.PersistedProgress
	if err := json.Unmarshal(rec.Payload, &progress); err != nil {
		logger.Error("Error decoding exercise progress payload", "error", err, "key", key)
		return nil, fmt.Errorf("GormProgressStore.Load: decode: %w", err)
	}
	return &progress, nil
}

func (s *GormProgressStore) Save(ctx context.Context, key string, p *model.PersistedProgress) error {
	logger := middleware.GetLogger(ctx)
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("GormProgressStore.Save: encode: %w", err)
	}

	rec := ExerciseProgressRecord{Key: key, Payload: payload, SavedAt: p.SavedAt}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "saved_at", "updated_at"}),
	}).Create(&rec)
	if result.Error != nil {
		logger.Error("Error saving exercise progress to DB", "error", result.Error, "key", key)
		return fmt.Errorf("GormProgressStore.Save: %w", result.Error)
	}
	return nil
}

func (s *GormProgressStore) Delete(ctx context.Context, key string) error {
	logger := middleware.GetLogger(ctx)
	result := s.db.WithContext(ctx).Where("key = ?", key).Delete(&ExerciseProgressRecord{})
	if result.Error != nil {
		logger.Error("Error deleting exercise progress from DB", "error", result.Error, "key", key)
		return fmt.Errorf("GormProgressStore.Delete: %w", result.Error)
	}
	return nil
}

// DeleteOlderThan removes records whose SavedAt is before cutoff. The
// scheduler runs this so abandoned sessions do not accumulate.
func (s *GormProgressStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("saved_at < ?", cutoff.UnixMilli()).
		Delete(&ExerciseProgressRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("GormProgressStore.DeleteOlderThan: %w", result.Error)
	}
	return result.RowsAffected, nil
}
