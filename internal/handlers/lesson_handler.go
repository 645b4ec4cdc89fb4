package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ALehav1/language-app-sub001/internal/importer"
	"github.com/ALehav1/language-app-sub001/internal/model"
	"github.com/ALehav1/language-app-sub001/internal/service"
	"github.com/ALehav1/language-app-sub001/internal/webutil"

	"github.com/go-chi/chi/v5"
)

// maxImportSize caps uploaded spreadsheet size at 5 MiB.
const maxImportSize = 5 << 20

type LessonHandler struct {
	service service.LessonService
	logger  *slog.Logger
}

func NewLessonHandler(s service.LessonService, logger *slog.Logger) *LessonHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LessonHandler{service: s, logger: logger}
}

func (h *LessonHandler) PostLesson(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostLesson"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}

	var req model.CreateLessonRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	lesson, err := h.service.CreateLesson(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Error creating lesson in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Lesson created", slog.String("lesson_id", lesson.LessonID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, lesson)
}

func (h *LessonHandler) GetLessons(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetLessons"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}

	lessons, err := h.service.ListLessons(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, lessons)
}

func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetLesson"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	lessonID, ok := pathUUID(w, logger, "lessonID", chi.URLParam(r, "lessonID"))
	if !ok {
		return
	}

	lesson, err := h.service.GetLesson(r.Context(), userID, lessonID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, lesson)
}

func (h *LessonHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteLesson"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	lessonID, ok := pathUUID(w, logger, "lessonID", chi.URLParam(r, "lessonID"))
	if !ok {
		return
	}

	if err := h.service.DeleteLesson(r.Context(), userID, lessonID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LessonHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchItem"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	lessonID, ok := pathUUID(w, logger, "lessonID", chi.URLParam(r, "lessonID"))
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, logger, "itemID", chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	var req model.PatchVocabItemRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	item, err := h.service.UpdateItem(r.Context(), userID, lessonID, itemID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, item)
}

func (h *LessonHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteItem"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	lessonID, ok := pathUUID(w, logger, "lessonID", chi.URLParam(r, "lessonID"))
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, logger, "itemID", chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), userID, lessonID, itemID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LessonHandler) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GenerateLesson"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}

	var req model.GenerateLessonRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	lesson, err := h.service.GenerateLesson(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Error generating lesson in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Lesson generated", slog.String("lesson_id", lesson.LessonID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, lesson)
}

// ImportItems accepts a multipart upload under the "file" field and appends
// the parsed rows to the lesson.
func (h *LessonHandler) ImportItems(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ImportItems"))

	userID, ok := requireUserID(w, r, logger)
	if !ok {
		return
	}
	lessonID, ok := pathUUID(w, logger, "lessonID", chi.URLParam(r, "lessonID"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		logger.Warn("Failed to parse multipart form", slog.Any("error", err))
		appErr := model.NewAppError("INVALID_UPLOAD", "Expected a multipart upload with a 'file' field.", "file", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		appErr := model.NewAppError("INVALID_UPLOAD", "The 'file' field is missing.", "file", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	defer file.Close()

	result, err := importer.Parse(header.Filename, file)
	if err != nil {
		logger.Warn("Failed to parse uploaded file", slog.Any("error", err), slog.String("filename", header.Filename))
		webutil.HandleError(w, logger, err)
		return
	}

	lesson, err := h.service.ImportItems(r.Context(), userID, lessonID, result.Items)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Items imported",
		slog.String("lesson_id", lessonID.String()),
		slog.Int("imported", len(result.Items)),
		slog.Int("skipped", result.Skipped),
		slog.Int("row_errors", len(result.Errors)),
	)
	webutil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"lesson":     lesson,
		"imported":   len(result.Items),
		"skipped":    result.Skipped,
		"row_errors": result.Errors,
	})
}
