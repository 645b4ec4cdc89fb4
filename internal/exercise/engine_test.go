package exercise

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALehav1/language-app-sub001/internal/model"
)

// --- test helpers ---

type judgeCall struct {
	userAnswer    string
	correctAnswer string
	language      string
}

// fakeJudge records calls and answers with a scripted verdict or error. An
// optional gate channel lets tests hold a judgment in flight.
type fakeJudge struct {
	mu      sync.Mutex
	calls   []judgeCall
	verdict model.Verdict
	err     error
	gate    chan struct{}
}

func (j *fakeJudge) Judge(ctx context.Context, userAnswer, correctAnswer, language string) (model.Verdict, error) {
	j.mu.Lock()
	j.calls = append(j.calls, judgeCall{userAnswer, correctAnswer, language})
	gate := j.gate
	j.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return j.verdict, j.err
}

func (j *fakeJudge) callCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.calls)
}

func testItems() []model.ExerciseItem {
	return []model.ExerciseItem{
		{ID: "A", Term: "مرحبا", Translation: "a", Language: "arabic"},
		{ID: "B", Term: "شكرا", Translation: "b", Language: "arabic"},
		{ID: "C", Term: "بيت", Translation: "c", Language: "arabic"},
	}
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), testItems(), cfg)
	require.NoError(t, err)
	return e
}

// --- exact-match fast path ---

func TestEngine_SubmitAnswer_ExactMatchSkipsJudge(t *testing.T) {
	ctx := context.Background()
	judge := &fakeJudge{}

	tests := []struct {
		name   string
		answer string
	}{
		{name: "exact", answer: "a"},
		{name: "different case", answer: "A"},
		{name: "surrounding whitespace", answer: "  a \t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, Config{Judge: judge})

			rec, ok := e.SubmitAnswer(ctx, tt.answer)

			require.True(t, ok)
			assert.True(t, rec.Correct)
			assert.Equal(t, "A", rec.ItemID)
			assert.Equal(t, tt.answer, rec.UserAnswer)
			assert.Equal(t, 0, judge.callCount(), "exact match must never consult the judge")
			assert.Equal(t, model.PhaseFeedback, e.Snapshot().Phase)
		})
	}
}

// --- judge fallback ---

func TestEngine_SubmitAnswer_JudgeFallback(t *testing.T) {
	ctx := context.Background()
	judge := &fakeJudge{verdict: model.Verdict{Correct: true, Feedback: "close enough"}}
	e := newTestEngine(t, Config{Judge: judge})

	rec, ok := e.SubmitAnswer(ctx, "x")

	require.True(t, ok)
	assert.True(t, rec.Correct)
	assert.Equal(t, "close enough", rec.Feedback)
	require.Equal(t, 1, judge.callCount(), "judge consulted exactly once")
	assert.Equal(t, judgeCall{userAnswer: "x", correctAnswer: "a", language: "arabic"}, judge.calls[0])
}

func TestEngine_SubmitAnswer_JudgeFailureYieldsDefiniteOutcome(t *testing.T) {
	ctx := context.Background()
	judge := &fakeJudge{err: errors.New("llm timeout")}
	e := newTestEngine(t, Config{Judge: judge})

	rec, ok := e.SubmitAnswer(ctx, "x")

	require.True(t, ok, "judge failure must not block the session")
	assert.False(t, rec.Correct)
	assert.Equal(t, JudgeFailureFeedback, rec.Feedback)
	assert.Equal(t, model.PhaseFeedback, e.Snapshot().Phase)
}

func TestEngine_SubmitAnswer_NoJudgeConfigured(t *testing.T) {
	e := newTestEngine(t, Config{})

	rec, ok := e.SubmitAnswer(context.Background(), "not the answer")

	require.True(t, ok)
	assert.False(t, rec.Correct)
	assert.Equal(t, JudgeFailureFeedback, rec.Feedback)
}

// --- skip rotation ---

func TestEngine_SkipQuestion_FullRotationReturnsToHead(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})

	for i := 0; i < len(testItems()); i++ {
		require.True(t, e.SkipQuestion(ctx))
	}

	st := e.Snapshot()
	assert.Equal(t, model.PhasePrompting, st.Phase)
	require.NotNil(t, st.CurrentItem)
	assert.Equal(t, "A", st.CurrentItem.ID, "N skips on an N-item queue come back around")
	assert.Empty(t, st.Answers, "skips never create answer records")
}

func TestEngine_SkipQuestion_SingleItemRepresents(t *testing.T) {
	ctx := context.Background()
	e, err := NewEngine(ctx, testItems()[:1], Config{})
	require.NoError(t, err)

	require.True(t, e.SkipQuestion(ctx))

	st := e.Snapshot()
	assert.Equal(t, model.PhasePrompting, st.Phase, "single-item skip must not complete the session")
	require.NotNil(t, st.CurrentItem)
	assert.Equal(t, "A", st.CurrentItem.ID)
}

func TestEngine_SkipQuestion_IgnoredDuringFeedback(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})
	_, ok := e.SubmitAnswer(ctx, "a")
	require.True(t, ok)

	assert.False(t, e.SkipQuestion(ctx))
	assert.Equal(t, model.PhaseFeedback, e.Snapshot().Phase)
}

// --- answer/queue accounting & completion ---

func TestEngine_Completion_ExactlyOnceOnContinue(t *testing.T) {
	ctx := context.Background()
	var completions [][]model.AnswerRecord
	e, err := NewEngine(ctx, testItems()[:1], Config{
		OnComplete: func(answers []model.AnswerRecord) {
			completions = append(completions, answers)
		},
	})
	require.NoError(t, err)

	_, ok := e.SubmitAnswer(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, model.PhaseFeedback, e.Snapshot().Phase)
	assert.Empty(t, completions, "submit alone never completes")

	require.True(t, e.ContinueToNext(ctx))
	assert.Equal(t, model.PhaseComplete, e.Snapshot().Phase)
	require.Len(t, completions, 1)
	assert.Len(t, completions[0], 1)

	// Terminal: nothing transitions out of complete except reset/startFresh.
	_, ok = e.SubmitAnswer(ctx, "a")
	assert.False(t, ok)
	assert.False(t, e.ContinueToNext(ctx))
	assert.False(t, e.SkipQuestion(ctx))
	assert.Len(t, completions, 1)
}

func TestEngine_FullScenario_ThreeItems(t *testing.T) {
	ctx := context.Background()
	judge := &fakeJudge{verdict: model.Verdict{Correct: false, Feedback: "no"}}
	var final []model.AnswerRecord
	e, err := NewEngine(ctx, testItems(), Config{
		Judge:      judge,
		OnComplete: func(answers []model.AnswerRecord) { final = answers },
	})
	require.NoError(t, err)

	// Item A: exact match.
	rec, ok := e.SubmitAnswer(ctx, "a")
	require.True(t, ok)
	assert.True(t, rec.Correct)
	require.True(t, e.ContinueToNext(ctx))
	st := e.Snapshot()
	assert.Equal(t, model.PhasePrompting, st.Phase)
	assert.Equal(t, "B", st.CurrentItem.ID)
	assert.Len(t, st.Answers, 1)

	// Item B: judged incorrect.
	rec, ok = e.SubmitAnswer(ctx, "x")
	require.True(t, ok)
	assert.False(t, rec.Correct)
	require.Equal(t, 1, judge.callCount())
	assert.Equal(t, judgeCall{userAnswer: "x", correctAnswer: "b", language: "arabic"}, judge.calls[0])
	require.True(t, e.ContinueToNext(ctx))
	st = e.Snapshot()
	assert.Equal(t, "C", st.CurrentItem.ID)
	assert.Len(t, st.Answers, 2)

	// Item C: exact match, then completion.
	rec, ok = e.SubmitAnswer(ctx, "c")
	require.True(t, ok)
	assert.True(t, rec.Correct)
	require.True(t, e.ContinueToNext(ctx))

	st = e.Snapshot()
	assert.Equal(t, model.PhaseComplete, st.Phase)
	assert.Nil(t, st.CurrentItem)
	require.Len(t, final, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{final[0].ItemID, final[1].ItemID, final[2].ItemID})
	assert.Equal(t, 2, st.CorrectCount)
}

// --- goToItem ---

func TestEngine_GoToItem(t *testing.T) {
	e := newTestEngine(t, Config{})

	require.True(t, e.GoToItem(2))
	st := e.Snapshot()
	assert.Equal(t, "C", st.CurrentItem.ID)
	assert.Equal(t, 2, st.CurrentIndex)

	// Display-only: queue length and answers untouched.
	assert.Len(t, st.Answers, 0)
	assert.Equal(t, 3, st.TotalItems)
}

func TestEngine_GoToItem_GuardedDuringFeedback(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})
	_, ok := e.SubmitAnswer(ctx, "a")
	require.True(t, ok)

	before := e.Snapshot().CurrentIndex
	assert.False(t, e.GoToItem(2))
	assert.Equal(t, before, e.Snapshot().CurrentIndex, "goToItem in feedback must leave the cursor alone")
}

func TestEngine_GoToItem_AnsweredItemRejected(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})
	_, ok := e.SubmitAnswer(ctx, "a")
	require.True(t, ok)
	require.True(t, e.ContinueToNext(ctx))

	assert.False(t, e.GoToItem(0), "item A was answered and left the queue")
	assert.True(t, e.GoToItem(2))
}

// --- persistence & hydration ---

func TestEngine_PersistsAfterStateChanges(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	e := newTestEngine(t, Config{SessionKey: "sess-1", Store: store})

	_, ok := e.SubmitAnswer(ctx, "a")
	require.True(t, ok)

	rec, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, model.ProgressVersion, rec.Version)
	assert.Len(t, rec.Queue, 3, "head is removed only on continue, not on submit")
	assert.Len(t, rec.Answers, 1)

	require.True(t, e.ContinueToNext(ctx))
	rec, err = store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, rec.Queue, 2)
}

func TestEngine_HydrationFreshnessWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name      string
		savedAt   time.Time
		wantSaved bool
		wantQueue int
	}{
		{name: "one second old", savedAt: now.Add(-time.Second), wantSaved: true, wantQueue: 2},
		{name: "twenty five hours old", savedAt: now.Add(-25 * time.Hour), wantSaved: false, wantQueue: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			require.NoError(t, store.Save(ctx, "sess-1", &model.PersistedProgress{
				Version: model.ProgressVersion,
				Queue:   []string{"B", "C"},
				Answers: []model.AnswerRecord{{ItemID: "A", Correct: true, UserAnswer: "a", CorrectAnswer: "a"}},
				SavedAt: tt.savedAt.UnixMilli(),
			}))

			e, err := NewEngine(ctx, testItems(), Config{
				SessionKey: "sess-1",
				Store:      store,
				Now:        func() time.Time { return now },
			})
			require.NoError(t, err)

			st := e.Snapshot()
			assert.True(t, st.IsHydrated)
			assert.Equal(t, tt.wantSaved, st.HasSavedProgress)
			if tt.wantSaved {
				assert.Len(t, st.Answers, 1)
				assert.Equal(t, "B", st.CurrentItem.ID)
			} else {
				assert.Empty(t, st.Answers)
				assert.Equal(t, "A", st.CurrentItem.ID)
			}
			assert.Equal(t, tt.wantQueue, st.TotalItems-len(st.Answers), "queue plus answers account for every item")
			assert.Equal(t, 3, st.TotalItems)
		})
	}
}

func TestEngine_HydrationRejectsBadRecords(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name string
		rec  *model.PersistedProgress
	}{
		{
			name: "wrong version",
			rec: &model.PersistedProgress{
				Version: 1, Queue: []string{"B", "C"},
				Answers: []model.AnswerRecord{{ItemID: "A"}},
				SavedAt: now.UnixMilli(),
			},
		},
		{
			name: "unknown item id",
			rec: &model.PersistedProgress{
				Version: model.ProgressVersion, Queue: []string{"Z", "C"},
				Answers: []model.AnswerRecord{{ItemID: "A"}},
				SavedAt: now.UnixMilli(),
			},
		},
		{
			name: "duplicate id across queue and answers",
			rec: &model.PersistedProgress{
				Version: model.ProgressVersion, Queue: []string{"A", "B"},
				Answers: []model.AnswerRecord{{ItemID: "A"}},
				SavedAt: now.UnixMilli(),
			},
		},
		{
			name: "accounting mismatch",
			rec: &model.PersistedProgress{
				Version: model.ProgressVersion, Queue: []string{"B"},
				Answers: []model.AnswerRecord{{ItemID: "A"}},
				SavedAt: now.UnixMilli(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			require.NoError(t, store.Save(ctx, "sess-1", tt.rec))

			e, err := NewEngine(ctx, testItems(), Config{SessionKey: "sess-1", Store: store})
			require.NoError(t, err)

			st := e.Snapshot()
			assert.False(t, st.HasSavedProgress)
			assert.Empty(t, st.Answers)
			assert.Equal(t, "A", st.CurrentItem.ID)
		})
	}
}

func TestEngine_HydrationResumesCompletedSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "sess-1", &model.PersistedProgress{
		Version: model.ProgressVersion,
		Queue:   []string{},
		Answers: []model.AnswerRecord{
			{ItemID: "A", Correct: true}, {ItemID: "B"}, {ItemID: "C", Correct: true},
		},
		SavedAt: time.Now().UnixMilli(),
	}))

	fired := 0
	e, err := NewEngine(ctx, testItems(), Config{
		SessionKey: "sess-1",
		Store:      store,
		OnComplete: func([]model.AnswerRecord) { fired++ },
	})
	require.NoError(t, err)

	st := e.Snapshot()
	assert.Equal(t, model.PhaseComplete, st.Phase)
	assert.Equal(t, 0, fired, "a replayed completion does not re-fire the callback")
}

func TestEngine_StartFreshClearsStorage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	e := newTestEngine(t, Config{SessionKey: "sess-1", Store: store})
	_, ok := e.SubmitAnswer(ctx, "a")
	require.True(t, ok)

	require.True(t, e.StartFresh(ctx))

	rec, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	st := e.Snapshot()
	assert.Equal(t, model.PhasePrompting, st.Phase)
	assert.Empty(t, st.Answers)
	assert.False(t, st.HasSavedProgress)
	assert.Equal(t, "A", st.CurrentItem.ID)
}

func TestEngine_ResetLeavesStorage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	e := newTestEngine(t, Config{SessionKey: "sess-1", Store: store})
	_, ok := e.SubmitAnswer(ctx, "a")
	require.True(t, ok)

	require.True(t, e.Reset(ctx))

	rec, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.NotNil(t, rec, "reset must not touch the progress store")
	assert.Empty(t, e.Snapshot().Answers)
}

func TestEngine_PersistenceFailureDoesNotAbortSession(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{SessionKey: "sess-1", Store: failingStore{}})

	rec, ok := e.SubmitAnswer(ctx, "a")
	require.True(t, ok)
	assert.True(t, rec.Correct)
	require.True(t, e.ContinueToNext(ctx))
	assert.Equal(t, model.PhasePrompting, e.Snapshot().Phase)
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (*model.PersistedProgress, error) {
	return nil, errors.New("store unavailable")
}
func (failingStore) Save(context.Context, string, *model.PersistedProgress) error {
	return errors.New("store unavailable")
}
func (failingStore) Delete(context.Context, string) error {
	return errors.New("store unavailable")
}

// --- in-flight guard & teardown ---

func TestEngine_SubmitAnswer_SecondCallWhileValidatingIgnored(t *testing.T) {
	ctx := context.Background()
	judge := &fakeJudge{verdict: model.Verdict{Correct: true, Feedback: "ok"}, gate: make(chan struct{})}
	e := newTestEngine(t, Config{Judge: judge})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, ok := e.SubmitAnswer(ctx, "x")
		assert.True(t, ok)
	}()

	// Wait for the judge call to be in flight.
	require.Eventually(t, func() bool { return e.Snapshot().IsValidating }, time.Second, time.Millisecond)

	_, ok := e.SubmitAnswer(ctx, "y")
	assert.False(t, ok, "second submission while validating must be ignored")

	close(judge.gate)
	<-done

	st := e.Snapshot()
	assert.Len(t, st.Answers, 1, "no duplicate answer records")
	assert.Equal(t, 1, judge.callCount())
	assert.False(t, st.IsValidating)
}

func TestEngine_LateJudgeResolutionAfterStartFreshIsDropped(t *testing.T) {
	ctx := context.Background()
	judge := &fakeJudge{verdict: model.Verdict{Correct: true, Feedback: "ok"}, gate: make(chan struct{})}
	store := NewMemoryStore()
	e := newTestEngine(t, Config{SessionKey: "sess-1", Store: store, Judge: judge})

	done := make(chan struct{})
	var accepted bool
	go func() {
		defer close(done)
		_, accepted = e.SubmitAnswer(ctx, "x")
	}()
	require.Eventually(t, func() bool { return e.Snapshot().IsValidating }, time.Second, time.Millisecond)

	require.True(t, e.StartFresh(ctx))
	close(judge.gate)
	<-done

	assert.False(t, accepted, "resolution against a restarted session is a no-op")
	st := e.Snapshot()
	assert.Empty(t, st.Answers)
	assert.Equal(t, model.PhasePrompting, st.Phase)
	assert.False(t, st.IsValidating)
}

func TestEngine_LateJudgeResolutionAfterCloseIsDropped(t *testing.T) {
	ctx := context.Background()
	judge := &fakeJudge{verdict: model.Verdict{Correct: true, Feedback: "ok"}, gate: make(chan struct{})}
	e := newTestEngine(t, Config{Judge: judge})

	done := make(chan struct{})
	var accepted bool
	go func() {
		defer close(done)
		_, accepted = e.SubmitAnswer(ctx, "x")
	}()
	require.Eventually(t, func() bool { return e.Snapshot().IsValidating }, time.Second, time.Millisecond)

	e.Close()
	close(judge.gate)
	<-done

	assert.False(t, accepted)
	assert.Empty(t, e.Snapshot().Answers)
}

// --- constructor validation ---

func TestNewEngine_RejectsBadItemSets(t *testing.T) {
	ctx := context.Background()

	_, err := NewEngine(ctx, nil, Config{})
	assert.Error(t, err)

	_, err = NewEngine(ctx, []model.ExerciseItem{{ID: "A"}, {ID: "A"}}, Config{})
	assert.Error(t, err)

	_, err = NewEngine(ctx, []model.ExerciseItem{{ID: ""}}, Config{})
	assert.Error(t, err)
}

func TestEngine_AnswerAccountingInvariant(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})

	answers := []string{"a", "b", "c"}
	for i, ans := range answers {
		st := e.Snapshot()
		assert.Equal(t, i, len(st.Answers))

		_, ok := e.SubmitAnswer(ctx, ans)
		require.True(t, ok)
		require.True(t, e.ContinueToNext(ctx))

		st = e.Snapshot()
		assert.Equal(t, i+1, len(st.Answers), "answers grow by exactly one per continue")
	}
	assert.Equal(t, model.PhaseComplete, e.Snapshot().Phase)
}
