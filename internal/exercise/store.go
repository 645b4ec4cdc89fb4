package exercise

import (
	"context"
	"sync"

	"github.com/ALehav1/language-app-sub001/internal/model"
)

// ProgressStore persists one session blob per key. Load returns (nil, nil)
// when no record exists; the engine treats a Load error the same way.
type ProgressStore interface {
	Load(ctx context.Context, key string) (*model.PersistedProgress, error)
	Save(ctx context.Context, key string, p *model.PersistedProgress) error
	Delete(ctx context.Context, key string) error
}

// Judge decides whether a non-exact answer is nonetheless acceptable. It may
// fail; the engine converts any error into a definite negative outcome.
type Judge interface {
	Judge(ctx context.Context, userAnswer, correctAnswer, language string) (model.Verdict, error)
}

// MemoryStore is a ProgressStore for sessions without a durable backend and
// for tests. Last writer wins, same as the durable implementations.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]model.PersistedProgress
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.PersistedProgress)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*model.PersistedProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	cp := rec
	cp.Queue = append([]string(nil), rec.Queue...)
	cp.Answers = append([]model.AnswerRecord(nil), rec.Answers...)
	return &cp, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, p *model.PersistedProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.Queue = append([]string(nil), p.Queue...)
	cp.Answers = append([]model.AnswerRecord(nil), p.Answers...)
	s.records[key] = cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
