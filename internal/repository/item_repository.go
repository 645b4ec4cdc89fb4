//go:generate mockery --name ItemRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ALehav1/language-app-sub001/internal/middleware"
	"github.com/ALehav1/language-app-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemRepository persists the vocabulary items within a lesson.
type ItemRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *model.VocabItem) error
	CreateBatch(ctx context.Context, tx *gorm.DB, items []*model.VocabItem) error
	FindByID(ctx context.Context, db *gorm.DB, lessonID, itemID uuid.UUID) (*model.VocabItem, error)
	FindByLesson(ctx context.Context, db *gorm.DB, lessonID uuid.UUID) ([]*model.VocabItem, error)
	Update(ctx context.Context, tx *gorm.DB, lessonID, itemID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, lessonID, itemID uuid.UUID) error
}

type gormItemRepository struct{}

func NewGormItemRepository() ItemRepository {
	return &gormItemRepository{}
}

func (r *gormItemRepository) Create(ctx context.Context, tx *gorm.DB, item *model.VocabItem) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(item)
	if result.Error != nil {
		logger.Error("Error creating vocab item in DB",
			"error", result.Error,
			"lesson_id", item.LessonID.String(),
			"term", item.Term,
		)
		return fmt.Errorf("gormItemRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormItemRepository) CreateBatch(ctx context.Context, tx *gorm.DB, items []*model.VocabItem) error {
	logger := middleware.GetLogger(ctx)
	if len(items) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Create(items)
	if result.Error != nil {
		logger.Error("Error creating vocab items in DB",
			"error", result.Error,
			"count", len(items),
		)
		return fmt.Errorf("gormItemRepository.CreateBatch: %w", result.Error)
	}
	return nil
}

func (r *gormItemRepository) FindByID(ctx context.Context, db *gorm.DB, lessonID, itemID uuid.UUID) (*model.VocabItem, error) {
	logger := middleware.GetLogger(ctx)
	var item model.VocabItem
	result := db.WithContext(ctx).Where("lesson_id = ? AND item_id = ?", lessonID, itemID).First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding vocab item by ID in DB",
			"error", result.Error,
			"lesson_id", lessonID.String(),
			"item_id", itemID.String(),
		)
		return nil, fmt.Errorf("gormItemRepository.FindByID: %w", result.Error)
	}
	return &item, nil
}

func (r *gormItemRepository) FindByLesson(ctx context.Context, db *gorm.DB, lessonID uuid.UUID) ([]*model.VocabItem, error) {
	logger := middleware.GetLogger(ctx)
	var items []*model.VocabItem
	result := db.WithContext(ctx).Where("lesson_id = ?", lessonID).Order("created_at ASC").Find(&items)
	if result.Error != nil {
		logger.Error("Error finding vocab items by lesson in DB",
			"error", result.Error,
			"lesson_id", lessonID.String(),
		)
		return nil, fmt.Errorf("gormItemRepository.FindByLesson: %w", result.Error)
	}
	return items, nil
}

func (r *gormItemRepository) Update(ctx context.Context, tx *gorm.DB, lessonID, itemID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.VocabItem{}).Where("lesson_id = ? AND item_id = ?", lessonID, itemID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating vocab item in DB",
			"error", result.Error,
			"lesson_id", lessonID.String(),
			"item_id", itemID.String(),
		)
		return fmt.Errorf("gormItemRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormItemRepository) Delete(ctx context.Context, tx *gorm.DB, lessonID, itemID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("lesson_id = ?", lessonID).Delete(&model.VocabItem{}, itemID)
	if result.Error != nil {
		logger.Error("Error deleting vocab item in DB",
			"error", result.Error,
			"lesson_id", lessonID.String(),
			"item_id", itemID.String(),
		)
		return fmt.Errorf("gormItemRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
