package service

import (
	"context"
	"errors"
	"time"

	"github.com/ALehav1/language-app-sub001/internal/config"
	"github.com/ALehav1/language-app-sub001/internal/middleware"
	"github.com/ALehav1/language-app-sub001/internal/model"
	"github.com/ALehav1/language-app-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Level thresholds on cumulative correct answers.
const (
	learningThreshold  = 1
	practicedThreshold = 3
	masteredThreshold  = 6
)

// Review intervals per level. An incorrect answer drops the item back to
// learning and schedules it for the next day.
var reviewIntervals = map[model.MasteryLevel]time.Duration{
	model.MasteryNew:       0,
	model.MasteryLearning:  24 * time.Hour,
	model.MasteryPracticed: 72 * time.Hour,
	model.MasteryMastered:  168 * time.Hour,
}

type MasteryService interface {
	RecordOutcomes(ctx context.Context, userID uuid.UUID, answers []model.AnswerRecord) error
	GetDueReviews(ctx context.Context, userID uuid.UUID) ([]model.ReviewItemResponse, error)
	CountDue(ctx context.Context, userID uuid.UUID) (int64, error)
	CountAllDue(ctx context.Context) (int64, error)
}

type masteryService struct {
	db          *gorm.DB
	masteryRepo repository.MasteryRepository
	cfg         config.Config
}

func NewMasteryService(db *gorm.DB, masteryRepo repository.MasteryRepository, cfg config.Config) MasteryService {
	return &masteryService{db: db, masteryRepo: masteryRepo, cfg: cfg}
}

// RecordOutcomes folds a completed session's answers into the per-item
// mastery records. Item ids the engine reports that are not UUIDs are
// skipped rather than failing the whole batch.
func (s *masteryService) RecordOutcomes(ctx context.Context, userID uuid.UUID, answers []model.AnswerRecord) error {
	logger := middleware.GetLogger(ctx)
	now := time.Now()

	for _, answer := range answers {
		itemID, err := uuid.Parse(answer.ItemID)
		if err != nil {
			logger.Warn("Skipping mastery update for non-UUID item id", "item_id", answer.ItemID)
			continue
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			mastery, err := s.masteryRepo.FindByUserAndItem(ctx, tx, userID, itemID)
			if err != nil {
				if !errors.Is(err, model.ErrNotFound) {
					return err
				}
				mastery = &model.Mastery{
					MasteryID: uuid.New(),
					UserID:    userID,
					ItemID:    itemID,
					Level:     model.MasteryNew,
				}
				if err := s.masteryRepo.Create(ctx, tx, mastery); err != nil {
					return err
				}
			}

			applyOutcome(mastery, answer.Correct, now)
			return s.masteryRepo.Update(ctx, tx, mastery)
		})
		if err != nil {
			logger.Error("Failed to record mastery outcome",
				"error", err,
				"user_id", userID.String(),
				"item_id", itemID.String(),
			)
			return model.ErrInternalServer
		}
	}
	return nil
}

// applyOutcome advances or demotes the mastery record in place. Correct counts
// are cumulative; a wrong answer demotes the level but keeps the counts.
func applyOutcome(m *model.Mastery, correct bool, now time.Time) {
	if correct {
		m.CorrectCount++
		m.Level = levelForCount(m.CorrectCount)
	} else {
		m.IncorrectCount++
		m.Level = model.MasteryLearning
	}
	m.NextReviewAt = now.Add(reviewIntervals[m.Level])
	m.LastPracticedAt = &now
}

func levelForCount(correctCount int) model.MasteryLevel {
	switch {
	case correctCount >= masteredThreshold:
		return model.MasteryMastered
	case correctCount >= practicedThreshold:
		return model.MasteryPracticed
	case correctCount >= learningThreshold:
		return model.MasteryLearning
	default:
		return model.MasteryNew
	}
}

func (s *masteryService) GetDueReviews(ctx context.Context, userID uuid.UUID) ([]model.ReviewItemResponse, error) {
	logger := middleware.GetLogger(ctx)

	masteries, err := s.masteryRepo.FindDueByUser(ctx, s.db, userID, time.Now(), s.cfg.App.ReviewLimit)
	if err != nil {
		logger.Error("Error fetching due reviews", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}

	reviews := make([]model.ReviewItemResponse, 0, len(masteries))
	for _, m := range masteries {
		if m.Item == nil {
			// The item was deleted after the mastery record was written.
			continue
		}
		reviews = append(reviews, model.ReviewItemResponse{
			ItemID:          m.ItemID,
			Term:            m.Item.Term,
			Translation:     m.Item.Translation,
			Transliteration: m.Item.Transliteration,
			Level:           m.Level,
			NextReviewAt:    m.NextReviewAt,
		})
	}
	return reviews, nil
}

func (s *masteryService) CountDue(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.masteryRepo.CountDueByUser(ctx, s.db, userID, time.Now())
	if err != nil {
		return 0, model.ErrInternalServer
	}
	return count, nil
}

// CountAllDue totals due reviews across every user; the scheduler logs it.
func (s *masteryService) CountAllDue(ctx context.Context) (int64, error) {
	count, err := s.masteryRepo.CountAllDue(ctx, s.db, time.Now())
	if err != nil {
		return 0, model.ErrInternalServer
	}
	return count, nil
}
