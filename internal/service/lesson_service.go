package service

import (
	"context"
	"errors"

	"github.com/ALehav1/language-app-sub001/internal/content"
	"github.com/ALehav1/language-app-sub001/internal/middleware"
	"github.com/ALehav1/language-app-sub001/internal/model"
	"github.com/ALehav1/language-app-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentGenerator produces structured lesson content from a topic prompt.
type ContentGenerator interface {
	Generate(ctx context.Context, kind content.Kind, language, topic string) (*content.GeneratedContent, error)
}

type LessonService interface {
	CreateLesson(ctx context.Context, userID uuid.UUID, req *model.CreateLessonRequest) (*model.Lesson, error)
	GetLesson(ctx context.Context, userID, lessonID uuid.UUID) (*model.Lesson, error)
	ListLessons(ctx context.Context, userID uuid.UUID) ([]*model.Lesson, error)
	DeleteLesson(ctx context.Context, userID, lessonID uuid.UUID) error
	UpdateItem(ctx context.Context, userID, lessonID, itemID uuid.UUID, req *model.PatchVocabItemRequest) (*model.VocabItem, error)
	DeleteItem(ctx context.Context, userID, lessonID, itemID uuid.UUID) error
	GenerateLesson(ctx context.Context, userID uuid.UUID, req *model.GenerateLessonRequest) (*model.Lesson, error)
	ImportItems(ctx context.Context, userID, lessonID uuid.UUID, items []model.CreateVocabItemRequest) (*model.Lesson, error)
}

type lessonService struct {
	db         *gorm.DB
	lessonRepo repository.LessonRepository
	itemRepo   repository.ItemRepository
	generator  ContentGenerator
}

func NewLessonService(db *gorm.DB, lessonRepo repository.LessonRepository, itemRepo repository.ItemRepository, generator ContentGenerator) LessonService {
	return &lessonService{
		db:         db,
		lessonRepo: lessonRepo,
		itemRepo:   itemRepo,
		generator:  generator,
	}
}

func (s *lessonService) CreateLesson(ctx context.Context, userID uuid.UUID, req *model.CreateLessonRequest) (*model.Lesson, error) {
	logger := middleware.GetLogger(ctx)

	lesson := &model.Lesson{
		LessonID: uuid.New(),
		UserID:   userID,
		Title:    req.Title,
		Language: req.Language,
		Kind:     "manual",
	}
	items := buildItems(lesson, req.Items)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lessonRepo.Create(ctx, tx, lesson); err != nil {
			return err
		}
		return s.itemRepo.CreateBatch(ctx, tx, items)
	})
	if err != nil {
		logger.Error("Transaction failed for CreateLesson", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}

	return s.lessonRepo.FindByID(ctx, s.db, userID, lesson.LessonID)
}

func (s *lessonService) GetLesson(ctx context.Context, userID, lessonID uuid.UUID) (*model.Lesson, error) {
	return s.lessonRepo.FindByID(ctx, s.db, userID, lessonID)
}

func (s *lessonService) ListLessons(ctx context.Context, userID uuid.UUID) ([]*model.Lesson, error) {
	logger := middleware.GetLogger(ctx)
	lessons, err := s.lessonRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		logger.Error("Error listing lessons", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}
	return lessons, nil
}

func (s *lessonService) DeleteLesson(ctx context.Context, userID, lessonID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.lessonRepo.Delete(ctx, tx, userID, lessonID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		logger.Error("Transaction failed for DeleteLesson", "error", err, "lesson_id", lessonID.String())
		return model.ErrInternalServer
	}
	return nil
}

func (s *lessonService) UpdateItem(ctx context.Context, userID, lessonID, itemID uuid.UUID, req *model.PatchVocabItemRequest) (*model.VocabItem, error) {
	logger := middleware.GetLogger(ctx)

	// Ownership check before touching the item.
	if _, err := s.lessonRepo.FindByID(ctx, s.db, userID, lessonID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Term != nil {
		updates["term"] = *req.Term
	}
	if req.Translation != nil {
		updates["translation"] = *req.Translation
	}
	if req.Transliteration != nil {
		updates["transliteration"] = *req.Transliteration
	}
	if len(updates) == 0 {
		return nil, model.ErrInvalidInput
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.itemRepo.Update(ctx, tx, lessonID, itemID, updates)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Transaction failed for UpdateItem", "error", err, "item_id", itemID.String())
		return nil, model.ErrInternalServer
	}

	return s.itemRepo.FindByID(ctx, s.db, lessonID, itemID)
}

func (s *lessonService) DeleteItem(ctx context.Context, userID, lessonID, itemID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	if _, err := s.lessonRepo.FindByID(ctx, s.db, userID, lessonID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.itemRepo.Delete(ctx, tx, lessonID, itemID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		logger.Error("Transaction failed for DeleteItem", "error", err, "item_id", itemID.String())
		return model.ErrInternalServer
	}
	return nil
}

// GenerateLesson asks the content generator for structured material and stores
// its vocabulary as a new lesson.
func (s *lessonService) GenerateLesson(ctx context.Context, userID uuid.UUID, req *model.GenerateLessonRequest) (*model.Lesson, error) {
	logger := middleware.GetLogger(ctx)

	kind, err := content.ParseKind(req.Kind)
	if err != nil {
		return nil, model.NewAppError("INVALID_KIND", "Unknown content kind.", "kind", model.ErrInvalidInput)
	}

	generated, err := s.generator.Generate(ctx, kind, req.Language, req.Topic)
	if err != nil {
		logger.Error("Content generation failed", "error", err, "kind", req.Kind, "topic", req.Topic)
		if errors.Is(err, model.ErrMalformedResponse) {
			return nil, err
		}
		return nil, model.ErrInternalServer
	}

	words := generated.VocabWords()
	if len(words) == 0 {
		return nil, model.NewAppError("EMPTY_GENERATION", "The generated content contained no vocabulary.", "", model.ErrMalformedResponse)
	}

	lesson := &model.Lesson{
		LessonID: uuid.New(),
		UserID:   userID,
		Title:    req.Topic,
		Language: req.Language,
		Kind:     req.Kind,
	}
	items := make([]*model.VocabItem, 0, len(words))
	for _, w := range words {
		items = append(items, &model.VocabItem{
			ItemID:          uuid.New(),
			LessonID:        lesson.LessonID,
			Term:            w.Term,
			Translation:     w.Translation,
			Transliteration: w.Transliteration,
			Language:        req.Language,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lessonRepo.Create(ctx, tx, lesson); err != nil {
			return err
		}
		return s.itemRepo.CreateBatch(ctx, tx, items)
	})
	if err != nil {
		logger.Error("Transaction failed for GenerateLesson", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}

	return s.lessonRepo.FindByID(ctx, s.db, userID, lesson.LessonID)
}

// ImportItems appends parsed spreadsheet rows to an existing lesson.
func (s *lessonService) ImportItems(ctx context.Context, userID, lessonID uuid.UUID, reqItems []model.CreateVocabItemRequest) (*model.Lesson, error) {
	logger := middleware.GetLogger(ctx)

	lesson, err := s.lessonRepo.FindByID(ctx, s.db, userID, lessonID)
	if err != nil {
		return nil, err
	}
	if len(reqItems) == 0 {
		return nil, model.ErrInvalidInput
	}

	items := buildItems(lesson, reqItems)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.itemRepo.CreateBatch(ctx, tx, items)
	})
	if err != nil {
		logger.Error("Transaction failed for ImportItems", "error", err, "lesson_id", lessonID.String())
		return nil, model.ErrInternalServer
	}

	return s.lessonRepo.FindByID(ctx, s.db, userID, lessonID)
}

func buildItems(lesson *model.Lesson, reqItems []model.CreateVocabItemRequest) []*model.VocabItem {
	items := make([]*model.VocabItem, 0, len(reqItems))
	for _, it := range reqItems {
		items = append(items, &model.VocabItem{
			ItemID:          uuid.New(),
			LessonID:        lesson.LessonID,
			Term:            it.Term,
			Translation:     it.Translation,
			Transliteration: it.Transliteration,
			Language:        lesson.Language,
		})
	}
	return items
}
