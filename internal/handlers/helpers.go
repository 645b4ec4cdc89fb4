package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ALehav1/language-app-sub001/internal/middleware"
	"github.com/ALehav1/language-app-sub001/internal/model"
	"github.com/ALehav1/language-app-sub001/internal/webutil"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// decodeAndValidate decodes the JSON body into req and runs struct validation.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, req interface{}) bool {
	if err := webutil.DecodeJSONBody(r, req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "The request body is malformed.", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return false
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed", slog.Any("errors", validationErrors.Error()))

			firstErr := validationErrors[0]
			appErr := model.NewAppError(
				"VALIDATION_ERROR",
				firstErr.Translate(webutil.Trans),
				firstErr.Field(),
				model.ErrInvalidInput,
			)
			webutil.HandleError(w, logger, appErr)
		} else {
			logger.Error("Unexpected error during validation", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
		}
		return false
	}
	return true
}

// requireUserID pulls the authenticated user out of the context, writing the
// error response itself when the middleware did not run.
func requireUserID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Authentication is required.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a chi URL parameter as a UUID.
func pathUUID(w http.ResponseWriter, logger *slog.Logger, name, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("Invalid UUID in path", slog.String("param", name), slog.String("value", raw))
		appErr := model.NewAppError("INVALID_PATH_PARAM", "The "+name+" path parameter must be a UUID.", name, model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return uuid.Nil, false
	}
	return id, true
}
