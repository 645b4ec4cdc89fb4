package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ALehav1/language-app-sub001/internal/config"
	"github.com/ALehav1/language-app-sub001/internal/exercise"
	"github.com/ALehav1/language-app-sub001/internal/middleware"
	"github.com/ALehav1/language-app-sub001/internal/model"
	"github.com/ALehav1/language-app-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExerciseService manages live practice sessions. Each session wraps one
// exercise.Engine; the registry keys them by an opaque session id handed to
// the client at creation.
type ExerciseService interface {
	CreateSession(ctx context.Context, userID uuid.UUID, req *model.CreateExerciseSessionRequest) (*model.ExerciseState, error)
	GetState(ctx context.Context, sessionID string) (*model.ExerciseState, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*model.ExerciseState, error)
	SkipQuestion(ctx context.Context, sessionID string) (*model.ExerciseState, error)
	ContinueToNext(ctx context.Context, sessionID string) (*model.ExerciseState, error)
	Reset(ctx context.Context, sessionID string) (*model.ExerciseState, error)
	StartFresh(ctx context.Context, sessionID string) (*model.ExerciseState, error)
	GoToItem(ctx context.Context, sessionID string, index int) (*model.ExerciseState, error)
	CloseSession(ctx context.Context, sessionID string) error
}

type exerciseService struct {
	db          *gorm.DB
	lessonRepo  repository.LessonRepository
	store       exercise.ProgressStore
	judge       exercise.Judge
	masterySvc  MasteryService
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[string]*exercise.Engine
}

func NewExerciseService(
	db *gorm.DB,
	lessonRepo repository.LessonRepository,
	store exercise.ProgressStore,
	judge exercise.Judge,
	masterySvc MasteryService,
	logger *slog.Logger,
) ExerciseService {
	return &exerciseService{
		db:         db,
		lessonRepo: lessonRepo,
		store:      store,
		judge:      judge,
		masterySvc: masterySvc,
		logger:     logger,
		sessions:   make(map[string]*exercise.Engine),
	}
}

// CreateSession loads the lesson's items and starts (or resumes) an engine.
// The session key, when given, scopes the persisted progress; clients that
// reuse the same key across visits get the resume behavior.
func (s *exerciseService) CreateSession(ctx context.Context, userID uuid.UUID, req *model.CreateExerciseSessionRequest) (*model.ExerciseState, error) {
	logger := middleware.GetLogger(ctx)

	lessonID, err := uuid.Parse(req.LessonID)
	if err != nil {
		return nil, model.NewAppError("INVALID_LESSON_ID", "Lesson id must be a UUID.", "lesson_id", model.ErrInvalidInput)
	}

	lesson, err := s.lessonRepo.FindByID(ctx, s.db, userID, lessonID)
	if err != nil {
		return nil, err
	}
	if len(lesson.Items) == 0 {
		return nil, model.NewAppError("EMPTY_LESSON", "The lesson has no items to practice.", "", model.ErrInvalidInput)
	}

	items := make([]model.ExerciseItem, 0, len(lesson.Items))
	for i := range lesson.Items {
		items = append(items, lesson.Items[i].ToExerciseItem())
	}

	cfg := exercise.Config{
		Judge:  s.judge,
		Logger: s.logger,
		// Mastery is recorded with a background context; the request that
		// triggered completion may be gone by the time answers are folded in.
		OnComplete: func(answers []model.AnswerRecord) {
			if err := s.masterySvc.RecordOutcomes(context.Background(), userID, answers); err != nil {
				s.logger.Error("Failed to record session outcomes", "error", err, "user_id", userID.String())
			}
		},
	}
	if req.SessionKey != "" {
		cfg.SessionKey = config.ProgressKeyPrefix + req.SessionKey
		cfg.Store = s.store
	}

	engine, err := exercise.NewEngine(ctx, items, cfg)
	if err != nil {
		logger.Error("Failed to start exercise session", "error", err, "lesson_id", lessonID.String())
		return nil, model.ErrInternalServer
	}

	sessionID := uuid.New().String()
	s.mu.Lock()
	s.sessions[sessionID] = engine
	s.mu.Unlock()

	return s.snapshot(sessionID, engine), nil
}

func (s *exerciseService) GetState(ctx context.Context, sessionID string) (*model.ExerciseState, error) {
	engine, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(sessionID, engine), nil
}

func (s *exerciseService) SubmitAnswer(ctx context.Context, sessionID, answer string) (*model.ExerciseState, error) {
	engine, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	engine.SubmitAnswer(ctx, answer)
	return s.snapshot(sessionID, engine), nil
}

func (s *exerciseService) SkipQuestion(ctx context.Context, sessionID string) (*model.ExerciseState, error) {
	engine, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	engine.SkipQuestion(ctx)
	return s.snapshot(sessionID, engine), nil
}

func (s *exerciseService) ContinueToNext(ctx context.Context, sessionID string) (*model.ExerciseState, error) {
	engine, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	engine.ContinueToNext(ctx)
	return s.snapshot(sessionID, engine), nil
}

func (s *exerciseService) Reset(ctx context.Context, sessionID string) (*model.ExerciseState, error) {
	engine, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	engine.Reset(ctx)
	return s.snapshot(sessionID, engine), nil
}

func (s *exerciseService) StartFresh(ctx context.Context, sessionID string) (*model.ExerciseState, error) {
	engine, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	engine.StartFresh(ctx)
	return s.snapshot(sessionID, engine), nil
}

func (s *exerciseService) GoToItem(ctx context.Context, sessionID string, index int) (*model.ExerciseState, error) {
	engine, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	engine.GoToItem(index)
	return s.snapshot(sessionID, engine), nil
}

func (s *exerciseService) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	engine, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return model.ErrNotFound
	}
	engine.Close()
	return nil
}

func (s *exerciseService) lookup(sessionID string) (*exercise.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	engine, ok := s.sessions[sessionID]
	if !ok {
		return nil, model.NewAppError("SESSION_NOT_FOUND", "No active exercise session with that id.", "session_id", model.ErrNotFound)
	}
	return engine, nil
}

func (s *exerciseService) snapshot(sessionID string, engine *exercise.Engine) *model.ExerciseState {
	st := engine.Snapshot()
	st.SessionID = sessionID
	return &st
}
