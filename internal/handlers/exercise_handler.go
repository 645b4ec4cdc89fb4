package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ALehav1/language-app-sub001/internal/model"
	"github.com/ALehav1/language-app-sub001/internal/service"
	"github.com/ALehav1/language-app-sub001/internal/webutil"

	"github.com/go-chi/chi/v5"
)

type ExerciseHandler struct {
	service service.ExerciseService
	logger  *slog.Logger
}

func NewExerciseHandler(s service.ExerciseService, logger *slog.Logger) *ExerciseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExerciseHandler{service: s, logger: logger}
}

func (h *ExerciseHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "CreateSession"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}

	var req model.CreateExerciseSessionRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	state, err := h.service.CreateSession(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Error creating exercise session", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Exercise session created", slog.String("session_id", state.SessionID))
	webutil.RespondWithJSON(w, http.StatusCreated, state)
}

func (h *ExerciseHandler) GetState(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetState"))
	h.respondState(w, r, logger, func(sessionID string) (*model.ExerciseState, error) {
		return h.service.GetState(r.Context(), sessionID)
	})
}

func (h *ExerciseHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "SubmitAnswer"))

	var req model.SubmitAnswerRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	h.respondState(w, r, logger, func(sessionID string) (*model.ExerciseState, error) {
		return h.service.SubmitAnswer(r.Context(), sessionID, req.Answer)
	})
}

func (h *ExerciseHandler) SkipQuestion(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "SkipQuestion"))
	h.respondState(w, r, logger, func(sessionID string) (*model.ExerciseState, error) {
		return h.service.SkipQuestion(r.Context(), sessionID)
	})
}

func (h *ExerciseHandler) ContinueToNext(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ContinueToNext"))
	h.respondState(w, r, logger, func(sessionID string) (*model.ExerciseState, error) {
		return h.service.ContinueToNext(r.Context(), sessionID)
	})
}

func (h *ExerciseHandler) Reset(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Reset"))
	h.respondState(w, r, logger, func(sessionID string) (*model.ExerciseState, error) {
		return h.service.Reset(r.Context(), sessionID)
	})
}

func (h *ExerciseHandler) StartFresh(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "StartFresh"))
	h.respondState(w, r, logger, func(sessionID string) (*model.ExerciseState, error) {
		return h.service.StartFresh(r.Context(), sessionID)
	})
}

func (h *ExerciseHandler) GoToItem(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GoToItem"))

	var req model.GoToItemRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	h.respondState(w, r, logger, func(sessionID string) (*model.ExerciseState, error) {
		return h.service.GoToItem(r.Context(), sessionID, req.Index)
	})
}

func (h *ExerciseHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "CloseSession"))

	if _, ok := requireUserID(w, r, logger); !ok {
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.service.CloseSession(r.Context(), sessionID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// respondState runs op against the session in the URL and writes the
// resulting snapshot. Operations the engine ignores still return the current
// state; the client re-renders from whatever comes back.
func (h *ExerciseHandler) respondState(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op func(sessionID string) (*model.ExerciseState, error)) {
	if _, ok := requireUserID(w, r, logger); !ok {
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	state, err := op(sessionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, state)
}
