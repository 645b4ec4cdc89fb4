package service

import (
	"context"
	"testing"
	"time"

	"github.com/ALehav1/language-app-sub001/internal/config"
	"github.com/ALehav1/language-app-sub001/internal/model"
	"github.com/ALehav1/language-app-sub001/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDBMastery(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Mastery{}, &model.VocabItem{}))
	return db
}

func Test_levelForCount(t *testing.T) {
	tests := []struct {
		count int
		want  model.MasteryLevel
	}{
		{0, model.MasteryNew},
		{1, model.MasteryLearning},
		{2, model.MasteryLearning},
		{3, model.MasteryPracticed},
		{5, model.MasteryPracticed},
		{6, model.MasteryMastered},
		{10, model.MasteryMastered},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levelForCount(tt.count), "count=%d", tt.count)
	}
}

func Test_applyOutcome(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("correct answer advances level and schedules review", func(t *testing.T) {
		m := &model.Mastery{Level: model.MasteryNew, CorrectCount: 0}
		applyOutcome(m, true, now)

		assert.Equal(t, 1, m.CorrectCount)
		assert.Equal(t, model.MasteryLearning, m.Level)
		assert.Equal(t, now.Add(24*time.Hour), m.NextReviewAt)
		require.NotNil(t, m.LastPracticedAt)
		assert.Equal(t, now, *m.LastPracticedAt)
	})

	t.Run("incorrect answer demotes to learning but keeps counts", func(t *testing.T) {
		m := &model.Mastery{Level: model.MasteryMastered, CorrectCount: 7}
		applyOutcome(m, false, now)

		assert.Equal(t, 7, m.CorrectCount)
		assert.Equal(t, 1, m.IncorrectCount)
		assert.Equal(t, model.MasteryLearning, m.Level)
		assert.Equal(t, now.Add(24*time.Hour), m.NextReviewAt)
	})

	t.Run("recovering after a miss resumes the ladder from the counts", func(t *testing.T) {
		m := &model.Mastery{Level: model.MasteryLearning, CorrectCount: 5, IncorrectCount: 1}
		applyOutcome(m, true, now)

		assert.Equal(t, model.MasteryMastered, m.Level)
		assert.Equal(t, now.Add(168*time.Hour), m.NextReviewAt)
	})
}

func Test_masteryService_RecordOutcomes(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBMastery(t)
	userID := uuid.New()
	itemID := uuid.New()
	cfg := config.Config{App: config.AppConfig{ReviewLimit: 10}}

	t.Run("creates a record for a first-seen item", func(t *testing.T) {
		mockRepo := new(mocks.MasteryRepository)
		mockRepo.On("FindByUserAndItem", mock.Anything, mock.Anything, userID, itemID).
			Return(nil, model.ErrNotFound).Once()
		mockRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(m *model.Mastery) bool {
			return m.UserID == userID && m.ItemID == itemID
		})).Return(nil).Once()
		mockRepo.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(m *model.Mastery) bool {
			return m.CorrectCount == 1 && m.Level == model.MasteryLearning
		})).Return(nil).Once()

		svc := NewMasteryService(db, mockRepo, cfg)
		err := svc.RecordOutcomes(ctx, userID, []model.AnswerRecord{
			{ItemID: itemID.String(), Correct: true},
		})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("updates an existing record", func(t *testing.T) {
		existing := &model.Mastery{
			MasteryID: uuid.New(), UserID: userID, ItemID: itemID,
			Level: model.MasteryLearning, CorrectCount: 2,
		}
		mockRepo := new(mocks.MasteryRepository)
		mockRepo.On("FindByUserAndItem", mock.Anything, mock.Anything, userID, itemID).
			Return(existing, nil).Once()
		mockRepo.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(m *model.Mastery) bool {
			return m.CorrectCount == 3 && m.Level == model.MasteryPracticed
		})).Return(nil).Once()

		svc := NewMasteryService(db, mockRepo, cfg)
		err := svc.RecordOutcomes(ctx, userID, []model.AnswerRecord{
			{ItemID: itemID.String(), Correct: true},
		})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("skips non-UUID item ids without failing", func(t *testing.T) {
		mockRepo := new(mocks.MasteryRepository)

		svc := NewMasteryService(db, mockRepo, cfg)
		err := svc.RecordOutcomes(ctx, userID, []model.AnswerRecord{
			{ItemID: "not-a-uuid", Correct: true},
		})

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "FindByUserAndItem")
	})
}

func Test_masteryService_GetDueReviews(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBMastery(t)
	userID := uuid.New()
	itemID := uuid.New()
	cfg := config.Config{App: config.AppConfig{ReviewLimit: 10}}

	mockRepo := new(mocks.MasteryRepository)
	due := []*model.Mastery{
		{
			MasteryID: uuid.New(), UserID: userID, ItemID: itemID,
			Level: model.MasteryLearning, NextReviewAt: time.Now().Add(-time.Hour),
			Item: &model.VocabItem{ItemID: itemID, Term: "hola", Translation: "hello"},
		},
		// Item deleted since the mastery record was written.
		{
			MasteryID: uuid.New(), UserID: userID, ItemID: uuid.New(),
			Level: model.MasteryLearning, NextReviewAt: time.Now().Add(-time.Hour),
			Item: nil,
		},
	}
	mockRepo.On("FindDueByUser", mock.Anything, mock.Anything, userID, mock.Anything, 10).
		Return(due, nil).Once()

	svc := NewMasteryService(db, mockRepo, cfg)
	reviews, err := svc.GetDueReviews(ctx, userID)

	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "hola", reviews[0].Term)
	assert.Equal(t, "hello", reviews[0].Translation)
	mockRepo.AssertExpectations(t)
}
