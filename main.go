package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flashdeck/app"
	"flashdeck/config"
	"flashdeck/database"
	"flashdeck/handlers"
	"flashdeck/middleware"
	"flashdeck/notify"
	"flashdeck/services"
	"flashdeck/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.Load()

	logger := setupLogger()
	slog.SetDefault(logger)

	// Initialize SQLite database
	db, err := database.New(config.AppConfig.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// A failed migration leaves the store unopenable; there is no automatic
	// repair, so surface it and stop.
	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database initialized", "path", config.AppConfig.DBPath)

	repo := database.NewRepository(db)

	// Load user preferences
	store, err := settings.NewStore(config.AppConfig.SettingsPath)
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	sink := &notify.LogSink{Logger: logger}
	exchange := services.NewExchangeService(repo, sink, nil)

	// Start the background job runner for bulk import/export work
	jobs := services.NewExchangeWorker(logger)
	jobs.Start()

	// Start the quiz session; it follows the change feed so the active pool
	// tracks every deck/card write.
	quizCtx, stopQuiz := context.WithCancel(context.Background())
	quiz := services.NewQuizService(repo, store)
	quiz.Start(quizCtx, repo.Notifier(), logger)
	logger.Info("quiz session started")

	application := app.New(repo, quiz, exchange, jobs, store, logger)

	fiberApp := fiber.New(fiber.Config{
		ReadTimeout:           time.Second * 30,
		WriteTimeout:          time.Second * 30,
		IdleTimeout:           time.Second * 60,
		DisableStartupMessage: config.AppConfig.Env == "production",
		ErrorHandler:          customErrorHandler(logger),
	})

	fiberApp.Use(
		recover.New(),
		middleware.StructuredLogger(logger),
		middleware.Security(),
		cors.New(cors.Config{
			AllowOrigins:     config.GetEnv("CORS_ORIGINS", "*"),
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "Origin,Content-Type,Accept",
			AllowCredentials: false,
			MaxAge:           86400,
		}),
		limiter.New(limiter.Config{
			Max:        200,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}),
	)

	fiberApp.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	api := fiberApp.Group("/api")
	api.Get("/decks", handlers.GetDecks(application))
	api.Post("/decks", handlers.CreateDeck(application))
	api.Put("/decks/:id", handlers.UpdateDeck(application))
	api.Delete("/decks/:id", handlers.DeleteDeck(application))
	api.Get("/decks/:id/cards", handlers.GetDeckCards(application))
	api.Get("/decks/:id/export", handlers.ExportDeck(application))

	api.Post("/cards", handlers.CreateCard(application))
	api.Put("/cards/:id", handlers.UpdateCard(application))
	api.Delete("/cards/:id", handlers.DeleteCard(application))
	api.Get("/cards/search", handlers.SearchCards(application))

	api.Get("/quiz", handlers.GetQuiz(application))
	api.Post("/quiz/answer", handlers.SubmitAnswer(application))
	api.Post("/quiz/hint", handlers.RevealHint(application))

	api.Post("/import", handlers.ImportDeck(application))
	api.Get("/jobs/:id", handlers.GetJob(application))
	api.Get("/browse", handlers.BrowseCatalog(application))
	api.Post("/browse/import", handlers.ImportFromURL(application))

	api.Get("/settings", handlers.GetSettings(application))
	api.Put("/settings", handlers.UpdateSettings(application))

	api.Get("/events", handlers.Events(application))

	logger.Info("starting server", "port", config.AppConfig.Port, "env", config.AppConfig.Env)

	go func() {
		if err := fiberApp.Listen(":" + config.AppConfig.Port); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server gracefully")

	stopQuiz()
	jobs.Stop()
	logger.Info("background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func setupLogger() *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     getLogLevel(),
		AddSource: config.AppConfig.Env == "development",
	}

	if config.AppConfig.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func getLogLevel() slog.Level {
	level := config.GetEnv("LOG_LEVEL", "info")
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func customErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		requestID := ""
		if id, ok := c.Locals("requestID").(string); ok {
			requestID = id
		}

		logger.Error("request failed",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"error", err,
		)

		return c.Status(code).JSON(fiber.Map{
			"error":      message,
			"request_id": requestID,
		})
	}
}
