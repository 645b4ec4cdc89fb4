package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"github.com/ALehav1/language-app-sub001/internal/config"
	"github.com/ALehav1/language-app-sub001/internal/content"
	"github.com/ALehav1/language-app-sub001/internal/handlers"
	"github.com/ALehav1/language-app-sub001/internal/judge"
	"github.com/ALehav1/language-app-sub001/internal/llm"
	"github.com/ALehav1/language-app-sub001/internal/middleware"
	"github.com/ALehav1/language-app-sub001/internal/model"
	"github.com/ALehav1/language-app-sub001/internal/repository"
	"github.com/ALehav1/language-app-sub001/internal/scheduler"
	"github.com/ALehav1/language-app-sub001/internal/seed"
	"github.com/ALehav1/language-app-sub001/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := buildLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("Application starting...", slog.String("version", config.AppVersion))

	db, err := repository.NewDB(cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	if err := db.AutoMigrate(
		&model.User{},
		&model.Lesson{},
		&model.VocabItem{},
		&model.Mastery{},
		&repository.ExerciseProgressRecord{},
		&repository.InferenceRecord{},
	); err != nil {
		slog.Error("Error running migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewGormUserRepository()
	lessonRepo := repository.NewGormLessonRepository()
	itemRepo := repository.NewGormItemRepository()
	masteryRepo := repository.NewGormMasteryRepository()
	progressStore := repository.NewGormProgressStore(db)
	verdictStore := repository.NewGormVerdictStore(db)

	// LLM-backed collaborators share one HTTP client.
	llmClient := llm.NewClient(cfg.LLM)
	inferenceCache := judge.NewStoreCache(verdictStore)
	answerJudge := judge.New(llmClient, inferenceCache, logger)
	generator := content.NewGenerator(llmClient, logger)

	var mailer service.Mailer
	if cfg.Mail.Provider == "ses" {
		mailer = service.NewSESMailer(cfg)
	} else {
		mailer = &service.LogMailer{}
	}

	// Services
	authService := service.NewAuthService(db, userRepo, mailer, cfg)
	lessonService := service.NewLessonService(db, lessonRepo, itemRepo, generator)
	masteryService := service.NewMasteryService(db, masteryRepo, *cfg)
	exerciseService := service.NewExerciseService(db, lessonRepo, progressStore, answerJudge, masteryService, logger)

	// Starter library
	if cfg.App.SeedDir != "" {
		if err := seed.Apply(context.Background(), db, lessonRepo, itemRepo, cfg.App.SeedDir, logger); err != nil {
			slog.Error("Error installing seed lessons", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	lessonHandler := handlers.NewLessonHandler(lessonService, logger)
	exerciseHandler := handlers.NewExerciseHandler(exerciseService, logger)
	reviewHandler := handlers.NewReviewHandler(masteryService, logger)

	// Maintenance jobs
	ttl := time.Duration(cfg.App.ProgressTTLHours) * time.Hour
	jobs := scheduler.New(progressStore, inferenceCache, masteryService, ttl, logger)
	jobs.Start()
	defer jobs.Stop()

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
				slog.Warn("Applying DEV auth middleware; X-User-ID header is trusted")
				r.Use(middleware.DevUserContextMiddleware)
			} else {
				r.Use(middleware.JWTAuthMiddleware(cfg))
			}

			r.Get("/auth/me", authHandler.Me)

			r.Route("/lessons", func(r chi.Router) {
				r.Post("/", lessonHandler.PostLesson)
				r.Get("/", lessonHandler.GetLessons)
				r.Post("/generate", lessonHandler.GenerateLesson)
				r.Get("/{lessonID}", lessonHandler.GetLesson)
				r.Delete("/{lessonID}", lessonHandler.DeleteLesson)
				r.Post("/{lessonID}/import", lessonHandler.ImportItems)
				r.Patch("/{lessonID}/items/{itemID}", lessonHandler.PatchItem)
				r.Delete("/{lessonID}/items/{itemID}", lessonHandler.DeleteItem)
			})

			r.Route("/exercises", func(r chi.Router) {
				r.Post("/", exerciseHandler.CreateSession)
				r.Get("/{sessionID}", exerciseHandler.GetState)
				r.Delete("/{sessionID}", exerciseHandler.CloseSession)
				r.Post("/{sessionID}/answer", exerciseHandler.SubmitAnswer)
				r.Post("/{sessionID}/skip", exerciseHandler.SkipQuestion)
				r.Post("/{sessionID}/continue", exerciseHandler.ContinueToNext)
				r.Post("/{sessionID}/reset", exerciseHandler.Reset)
				r.Post("/{sessionID}/start-fresh", exerciseHandler.StartFresh)
				r.Post("/{sessionID}/goto", exerciseHandler.GoToItem)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", reviewHandler.GetReviews)
				r.Get("/count", reviewHandler.GetReviewCount)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := sqlDB.PingContext(req.Context()); err != nil {
			slog.ErrorContext(req.Context(), "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	// Flush any verdicts still buffered in memory.
	if err := inferenceCache.Persist(context.Background()); err != nil {
		slog.Error("Failed to flush inference cache on shutdown", slog.Any("error", err))
	}

	slog.Info("Server exiting")
}

func buildLogger(cfg *config.Config) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
	}
	return slog.New(handler)
}
