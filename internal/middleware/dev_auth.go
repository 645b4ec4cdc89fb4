package middleware

import (
	"context"
	"net/http"

	"github.com/ALehav1/language-app-sub001/internal/model"
	"github.com/ALehav1/language-app-sub001/internal/webutil"

	"github.com/google/uuid"
)

// DevUserContextMiddleware is a development-only stand-in for JWT auth.
// It reads the user id from the X-User-ID header without any validation
// against the database.
func DevUserContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		userIDStr := r.Header.Get("X-User-ID")
		if userIDStr == "" {
			logger.Warn("Dev auth failed: X-User-ID header missing")
			appErr := model.NewAppError("UNAUTHORIZED", "X-User-ID header is required in dev mode.", "", model.ErrForbidden)
			webutil.HandleError(w, logger, appErr)
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			logger.Warn("Dev auth failed: Invalid X-User-ID format", "value", userIDStr)
			appErr := model.NewAppError("UNAUTHORIZED", "X-User-ID header must be a UUID.", "", model.ErrForbidden)
			webutil.HandleError(w, logger, appErr)
			return
		}

		ctx := context.WithValue(r.Context(), model.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
