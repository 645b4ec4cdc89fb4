// Package exercise implements the practice session state machine: a queue of
// vocabulary items the user works through, free-text answer evaluation with
// an exact-match fast path and a semantic-judge fallback, and resumable
// progress persistence.
package exercise

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ALehav1/language-app-sub001/internal/model"
)

// JudgeFailureFeedback is the feedback attached when the judge errors out.
// Judge failure never blocks the session; it just reads as a wrong answer.
const JudgeFailureFeedback = "Unable to verify answer."

// DefaultFreshness is how long a persisted record stays resumable. Older
// records are ignored on hydration, not deleted.
const DefaultFreshness = 24 * time.Hour

// Config wires the engine's collaborators. Everything is optional: with no
// SessionKey or Store the engine runs purely in memory, with no Judge every
// non-exact answer is judged incorrect (with the failure feedback).
type Config struct {
	SessionKey string
	Store      ProgressStore
	Judge      Judge
	OnComplete func(answers []model.AnswerRecord)
	Logger     *slog.Logger
	Freshness  time.Duration
	Now        func() time.Time
}

// Engine owns a single session. All methods are safe for concurrent use, but
// the intended caller is a single user driving one session; a SubmitAnswer
// arriving while another is validating is ignored rather than queued.
type Engine struct {
	mu sync.Mutex

	byID  map[string]model.ExerciseItem
	order []string // original item order; queue is restored from this on reset

	queue    []string
	cursor   int
	answers  []model.AnswerRecord
	answered map[string]bool
	phase    model.Phase

	validating bool
	hydrated   bool
	hasSaved   bool
	closed     bool
	fired      bool   // completion callback fired
	gen        uint64 // bumped on reset/startFresh/close to invalidate in-flight judge results

	sessionKey string
	store      ProgressStore
	judge      Judge
	onComplete func([]model.AnswerRecord)
	logger     *slog.Logger
	freshness  time.Duration
	now        func() time.Time
}

// NewEngine builds the session and hydrates it from the progress store when a
// session key is configured. Hydration is synchronous: by the time NewEngine
// returns, IsHydrated is true and the snapshot reflects any resumed state.
// A stale, corrupt, or version-mismatched record is treated as absent.
func NewEngine(ctx context.Context, items []model.ExerciseItem, cfg Config) (*Engine, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("exercise: no items")
	}

	e := &Engine{
		byID:       make(map[string]model.ExerciseItem, len(items)),
		order:      make([]string, 0, len(items)),
		answered:   make(map[string]bool),
		phase:      model.PhasePrompting,
		sessionKey: cfg.SessionKey,
		store:      cfg.Store,
		judge:      cfg.Judge,
		onComplete: cfg.OnComplete,
		logger:     cfg.Logger,
		freshness:  cfg.Freshness,
		now:        cfg.Now,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.freshness <= 0 {
		e.freshness = DefaultFreshness
	}
	if e.now == nil {
		e.now = time.Now
	}
	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("exercise: item with empty id")
		}
		if _, dup := e.byID[it.ID]; dup {
			return nil, fmt.Errorf("exercise: duplicate item id %q", it.ID)
		}
		e.byID[it.ID] = it
		e.order = append(e.order, it.ID)
	}
	e.queue = append([]string(nil), e.order...)

	e.hydrate(ctx)
	e.hydrated = true
	return e, nil
}

// hydrate restores queue and answers from a fresh persisted record. It never
// fails: anything unusable degrades to a fresh session.
func (e *Engine) hydrate(ctx context.Context) {
	if e.sessionKey == "" || e.store == nil {
		return
	}
	rec, err := e.store.Load(ctx, e.sessionKey)
	if err != nil {
		e.logger.Warn("failed to read saved progress, starting fresh", "session_key", e.sessionKey, "error", err)
		return
	}
	if rec == nil || rec.Version != model.ProgressVersion {
		return
	}
	age := e.now().Sub(time.UnixMilli(rec.SavedAt))
	if age > e.freshness || age < 0 {
		return
	}
	if !e.recordConsistent(rec) {
		e.logger.Warn("saved progress inconsistent with item set, starting fresh", "session_key", e.sessionKey)
		return
	}

	e.queue = append([]string(nil), rec.Queue...)
	e.answers = append([]model.AnswerRecord(nil), rec.Answers...)
	for _, a := range e.answers {
		e.answered[a.ItemID] = true
	}
	e.cursor = 0
	if len(e.queue) == 0 {
		// The session finished but the caller's cleanup never ran. Resume as
		// complete; the callback is not re-fired for a replayed completion.
		e.phase = model.PhaseComplete
		e.fired = true
	}
	e.hasSaved = true
}

// recordConsistent verifies the saved record against the current item set:
// every id known, no duplicates, answers and queue disjoint, and together
// accounting for every item exactly once.
func (e *Engine) recordConsistent(rec *model.PersistedProgress) bool {
	if len(rec.Queue)+len(rec.Answers) != len(e.order) {
		return false
	}
	seen := make(map[string]bool, len(e.order))
	for _, id := range rec.Queue {
		if _, ok := e.byID[id]; !ok || seen[id] {
			return false
		}
		seen[id] = true
	}
	for _, a := range rec.Answers {
		if _, ok := e.byID[a.ItemID]; !ok || seen[a.ItemID] {
			return false
		}
		seen[a.ItemID] = true
	}
	return true
}

// SubmitAnswer evaluates the user's answer for the current item. Exact
// matches (after trimming and case-folding) are decided locally; everything
// else goes to the judge. The returned bool is false when the call was
// ignored (wrong phase, another submission validating, torn-down engine).
func (e *Engine) SubmitAnswer(ctx context.Context, text string) (model.AnswerRecord, bool) {
	e.mu.Lock()
	if !e.submittable() {
		e.mu.Unlock()
		return model.AnswerRecord{}, false
	}
	item := e.byID[e.queue[e.cursor]]

	if answersMatch(text, item.Translation) {
		rec := e.recordAnswerLocked(ctx, item, text, model.Verdict{Correct: true})
		e.mu.Unlock()
		return rec, true
	}

	// Judge call happens outside the lock; the phase stays prompting and the
	// validating flag keeps other submissions out.
	e.validating = true
	gen := e.gen
	e.mu.Unlock()

	verdict, err := e.consultJudge(ctx, text, item)
	if err != nil {
		e.logger.Warn("semantic judge failed, recording answer as incorrect",
			"item_id", item.ID, "error", err)
		verdict = model.Verdict{Correct: false, Feedback: JudgeFailureFeedback}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		// Reset, startFresh, or Close raced with the judge call; that path
		// already cleared the validating flag. Drop the stale result.
		return model.AnswerRecord{}, false
	}
	e.validating = false
	if e.closed || e.phase != model.PhasePrompting || len(e.queue) == 0 || e.queue[e.cursor] != item.ID {
		return model.AnswerRecord{}, false
	}
	rec := e.recordAnswerLocked(ctx, item, text, verdict)
	return rec, true
}

func (e *Engine) submittable() bool {
	return e.hydrated && !e.closed && !e.validating &&
		e.phase == model.PhasePrompting && len(e.queue) > 0
}

func (e *Engine) consultJudge(ctx context.Context, text string, item model.ExerciseItem) (model.Verdict, error) {
	if e.judge == nil {
		return model.Verdict{}, fmt.Errorf("exercise: no judge configured")
	}
	return e.judge.Judge(ctx, text, item.Translation, item.Language)
}

// recordAnswerLocked appends the AnswerRecord, moves to feedback, and
// persists. The queue head is only removed later, on ContinueToNext.
func (e *Engine) recordAnswerLocked(ctx context.Context, item model.ExerciseItem, text string, v model.Verdict) model.AnswerRecord {
	rec := model.AnswerRecord{
		ItemID:        item.ID,
		Correct:       v.Correct,
		UserAnswer:    text,
		CorrectAnswer: item.Translation,
		Feedback:      v.Feedback,
	}
	e.answers = append(e.answers, rec)
	e.answered[item.ID] = true
	e.phase = model.PhaseFeedback
	e.persistLocked(ctx)
	return rec
}

// SkipQuestion rotates the current item to the back of the queue. The item
// stays in play; no AnswerRecord is created. On a single-item queue this
// re-presents the same item rather than completing the session.
func (e *Engine) SkipQuestion(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.submittable() {
		return false
	}
	if len(e.queue) > 1 {
		id := e.queue[e.cursor]
		e.queue = append(append(e.queue[:e.cursor:e.cursor], e.queue[e.cursor+1:]...), id)
		if e.cursor >= len(e.queue)-1 {
			// Skipped the tail item; wrap back to the front of the queue.
			e.cursor = 0
		}
	}
	e.persistLocked(ctx)
	return true
}

// ContinueToNext removes the just-answered item and either advances to the
// next prompt or completes the session. The completion callback fires exactly
// once, with the full ordered answer list.
func (e *Engine) ContinueToNext(ctx context.Context) bool {
	e.mu.Lock()
	if e.closed || !e.hydrated || e.phase != model.PhaseFeedback {
		e.mu.Unlock()
		return false
	}
	e.queue = append(e.queue[:e.cursor:e.cursor], e.queue[e.cursor+1:]...)
	if len(e.queue) == 0 {
		e.phase = model.PhaseComplete
		e.persistLocked(ctx)
		var cb func([]model.AnswerRecord)
		var answers []model.AnswerRecord
		if !e.fired && e.onComplete != nil {
			e.fired = true
			cb = e.onComplete
			answers = append([]model.AnswerRecord(nil), e.answers...)
		}
		e.mu.Unlock()
		if cb != nil {
			cb(answers)
		}
		return true
	}
	if e.cursor >= len(e.queue) {
		e.cursor = 0
	}
	e.phase = model.PhasePrompting
	e.persistLocked(ctx)
	e.mu.Unlock()
	return true
}

// Reset restores the original queue order and clears answers. The progress
// store is left untouched.
func (e *Engine) Reset(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.hydrated {
		return false
	}
	e.resetLocked()
	return true
}

// StartFresh is Reset plus deletion of the persisted record, so a later
// reload will not offer to resume.
func (e *Engine) StartFresh(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.hydrated {
		return false
	}
	e.resetLocked()
	e.hasSaved = false
	if e.sessionKey != "" && e.store != nil {
		if err := e.store.Delete(ctx, e.sessionKey); err != nil {
			e.logger.Warn("failed to delete saved progress", "session_key", e.sessionKey, "error", err)
		}
	}
	return true
}

func (e *Engine) resetLocked() {
	e.gen++
	e.validating = false
	e.queue = append([]string(nil), e.order...)
	e.cursor = 0
	e.answers = nil
	e.answered = make(map[string]bool)
	e.phase = model.PhasePrompting
}

// GoToItem repositions the prompt on the item at the given index in the
// original item list. It is display-only: queue membership and answers are
// untouched. Ignored outside prompting (navigating away mid-feedback would
// corrupt the answer accounting) and for items already answered.
func (e *Engine) GoToItem(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.submittable() || index < 0 || index >= len(e.order) {
		return false
	}
	id := e.order[index]
	for pos, qid := range e.queue {
		if qid == id {
			e.cursor = pos
			return true
		}
	}
	return false
}

// Close tears the engine down. A judge resolution arriving afterwards is
// dropped silently. Close never touches the progress store.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.validating = false
	e.gen++
}

// Snapshot returns the observable state. The answer slice is a copy.
func (e *Engine) Snapshot() model.ExerciseState {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := model.ExerciseState{
		Phase:            e.phase,
		CurrentIndex:     -1,
		TotalItems:       len(e.order),
		Answers:          append([]model.AnswerRecord(nil), e.answers...),
		IsValidating:     e.validating,
		HasSavedProgress: e.hasSaved,
		IsHydrated:       e.hydrated,
	}
	for _, a := range e.answers {
		if a.Correct {
			st.CorrectCount++
		}
	}
	if len(e.answers) > 0 {
		last := e.answers[len(e.answers)-1]
		st.LastAnswer = &last
	}
	if e.phase != model.PhaseComplete && len(e.queue) > 0 {
		cur := e.byID[e.queue[e.cursor]]
		st.CurrentItem = &cur
		for i, id := range e.order {
			if id == cur.ID {
				st.CurrentIndex = i
				break
			}
		}
	}
	return st
}

// persistLocked writes the current state under the session key. Persistence
// failure degrades resume capability but never the in-memory session.
func (e *Engine) persistLocked(ctx context.Context) {
	if e.sessionKey == "" || e.store == nil {
		return
	}
	p := &model.PersistedProgress{
		Version: model.ProgressVersion,
		Queue:   append([]string(nil), e.queue...),
		Answers: append([]model.AnswerRecord(nil), e.answers...),
		SavedAt: e.now().UnixMilli(),
	}
	if err := e.store.Save(ctx, e.sessionKey, p); err != nil {
		e.logger.Warn("failed to persist exercise progress", "session_key", e.sessionKey, "error", err)
	}
}

// answersMatch is the exact-match fast path: trim whitespace, case-fold,
// compare. It is the only way a submission is decided without the judge.
func answersMatch(user, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(user), strings.TrimSpace(expected))
}
