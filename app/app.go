package app

import (
	"log/slog"

	"flashdeck/database"
	"flashdeck/services"
	"flashdeck/settings"
	"flashdeck/validator"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	Repo      *database.Repository
	Decks     *services.DeckService
	Cards     *services.CardService
	Quiz      *services.QuizService
	Exchange  *services.ExchangeService
	Jobs      *services.ExchangeWorker
	Settings  *settings.Store
	Validator *validator.Validator
	Logger    *slog.Logger
}

// New creates a new App instance with all dependencies
func New(repo *database.Repository, quiz *services.QuizService, exchange *services.ExchangeService, jobs *services.ExchangeWorker, store *settings.Store, logger *slog.Logger) *App {
	return &App{
		Repo:      repo,
		Decks:     services.NewDeckService(repo),
		Cards:     services.NewCardService(repo),
		Quiz:      quiz,
		Exchange:  exchange,
		Jobs:      jobs,
		Settings:  store,
		Validator: validator.New(),
		Logger:    logger,
	}
}
