//go:generate mockery --name MasteryRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ALehav1/language-app-sub001/internal/middleware"
	"github.com/ALehav1/language-app-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MasteryRepository persists per-user spaced-repetition records.
type MasteryRepository interface {
	FindByUserAndItem(ctx context.Context, db *gorm.DB, userID, itemID uuid.UUID) (*model.Mastery, error)
	Create(ctx context.Context, tx *gorm.DB, mastery *model.Mastery) error
	Update(ctx context.Context, tx *gorm.DB, mastery *model.Mastery) error
	FindDueByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, now time.Time, limit int) ([]*model.Mastery, error)
	CountDueByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, now time.Time) (int64, error)
	CountAllDue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}

type gormMasteryRepository struct{}

func NewGormMasteryRepository() MasteryRepository {
	return &gormMasteryRepository{}
}

func (r *gormMasteryRepository) FindByUserAndItem(ctx context.Context, db *gorm.DB, userID, itemID uuid.UUID) (*model.Mastery, error) {
	logger := middleware.GetLogger(ctx)
	var mastery model.Mastery
	result := db.WithContext(ctx).Where("user_id = ? AND item_id = ?", userID, itemID).First(&mastery)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding mastery in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"item_id", itemID.String(),
		)
		return nil, fmt.Errorf("gormMasteryRepository.FindByUserAndItem: %w", result.Error)
	}
	return &mastery, nil
}

func (r *gormMasteryRepository) Create(ctx context.Context, tx *gorm.DB, mastery *model.Mastery) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(mastery)
	if result.Error != nil {
		logger.Error("Error creating mastery in DB",
			"error", result.Error,
			"user_id", mastery.UserID.String(),
			"item_id", mastery.ItemID.String(),
		)
		return fmt.Errorf("gormMasteryRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormMasteryRepository) Update(ctx context.Context, tx *gorm.DB, mastery *model.Mastery) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Save(mastery)
	if result.Error != nil {
		logger.Error("Error updating mastery in DB",
			"error", result.Error,
			"mastery_id", mastery.MasteryID.String(),
		)
		return fmt.Errorf("gormMasteryRepository.Update: %w", result.Error)
	}
	return nil
}

func (r *gormMasteryRepository) FindDueByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, now time.Time, limit int) ([]*model.Mastery, error) {
	logger := middleware.GetLogger(ctx)
	var masteries []*model.Mastery
	result := db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ? AND next_review_at <= ?", userID, now).
		Order("next_review_at ASC").
		Limit(limit).
		Find(&masteries)
	if result.Error != nil {
		logger.Error("Error finding due masteries in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormMasteryRepository.FindDueByUser: %w", result.Error)
	}
	return masteries, nil
}

func (r *gormMasteryRepository) CountDueByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, now time.Time) (int64, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	result := db.WithContext(ctx).Model(&model.Mastery{}).
		Where("user_id = ? AND next_review_at <= ?", userID, now).
		Count(&count)
	if result.Error != nil {
		logger.Error("Error counting due masteries in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return 0, fmt.Errorf("gormMasteryRepository.CountDueByUser: %w", result.Error)
	}
	return count, nil
}

func (r *gormMasteryRepository) CountAllDue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	result := db.WithContext(ctx).Model(&model.Mastery{}).
		Where("next_review_at <= ?", now).
		Count(&count)
	if result.Error != nil {
		logger.Error("Error counting due masteries in DB", "error", result.Error)
		return 0, fmt.Errorf("gormMasteryRepository.CountAllDue: %w", result.Error)
	}
	return count, nil
}
