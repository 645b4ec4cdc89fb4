package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ALehav1/language-app-sub001/internal/service"
	"github.com/ALehav1/language-app-sub001/internal/webutil"
)

type ReviewHandler struct {
	service service.MasteryService
	logger  *slog.Logger
}

func NewReviewHandler(s service.MasteryService, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{service: s, logger: logger}
}

// GetReviews returns the items due for spaced-repetition review.
func (h *ReviewHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetReviews"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}

	reviews, err := h.service.GetDueReviews(r.Context(), userID)
	if err != nil {
		logger.Error("Error fetching due reviews", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, reviews)
}

// GetReviewCount returns how many items are currently due.
func (h *ReviewHandler) GetReviewCount(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetReviewCount"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}

	count, err := h.service.CountDue(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]int64{"due": count})
}
