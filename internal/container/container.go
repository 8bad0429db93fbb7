package container

import (
	"context"
	"database/sql"
	"log/slog"

	database "github.com/FACorreiaa/go-tourist-guide/app/db"
	appMiddleware "github.com/FACorreiaa/go-tourist-guide/app/middleware"
	"github.com/FACorreiaa/go-tourist-guide/config"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/auth"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/corpus"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/feedback"
	generativeAI "github.com/FACorreiaa/go-tourist-guide/internal/api/generative_ai"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/itinerary"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/poi"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	DB               *sql.DB
	Sessions         *appMiddleware.SessionStore
	AI               *generativeAI.ServiceImpl
	AuthHandler      *auth.HandlerImpl
	PlaceHandler     *poi.HandlerImpl
	FeedbackHandler  *feedback.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
}

// NewContainer opens the local store, builds the remote client and the
// generation chain, and wires services into handlers.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open local database", slog.Any("error", err))
		return nil, err
	}

	client := corpus.NewClient(cfg.Corpus, logger)

	// Storage gets a nil API when the remote is switched off, so every
	// call goes straight to the local store.
	var remote corpus.API
	if cfg.Corpus.UseAPI {
		remote = client
	} else {
		logger.Info("Remote API disabled, using local storage only")
	}

	ai, err := generativeAI.NewServiceFromConfig(ctx, cfg.AI, logger)
	if err != nil {
		_ = db.Close()
		logger.Error("Failed to initialise itinerary generation", slog.Any("error", err))
		return nil, err
	}
	logger.Info("Itinerary generation chain ready", slog.Any("strategies", ai.Strategies()))

	sessions := appMiddleware.NewSessionStore(cfg.App.SessionTTL, cfg.Corpus.AccessToken)

	authService := auth.NewServiceImpl(corpus.NewOTPClient(client, cfg.Corpus), sessions, logger)
	authHandler := auth.NewHandlerImpl(authService, logger)

	poiRepo := poi.NewRepositoryImpl(db, logger)
	poiService := poi.NewServiceImpl(poiRepo, remote, cfg.Corpus.Endpoints.Places, cfg.App.MaxFileSize, logger)
	poiHandler := poi.NewHandlerImpl(poiService, cfg.App.MaxFileSize, logger)

	feedbackRepo := feedback.NewRepositoryImpl(db, logger)
	feedbackService := feedback.NewServiceImpl(feedbackRepo, remote, cfg.Corpus.Endpoints.Feedback, logger)
	feedbackHandler := feedback.NewHandlerImpl(feedbackService, logger)

	itineraryRepo := itinerary.NewRepositoryImpl(db, logger)
	itineraryService := itinerary.NewServiceImpl(itineraryRepo, remote, cfg.Corpus.Endpoints.Itineraries, ai, logger)
	itineraryHandler := itinerary.NewHandlerImpl(itineraryService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		DB:               db,
		Sessions:         sessions,
		AI:               ai,
		AuthHandler:      authHandler,
		PlaceHandler:     poiHandler,
		FeedbackHandler:  feedbackHandler,
		ItineraryHandler: itineraryHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Error("Failed to close local database", slog.Any("error", err))
		}
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.DB, c.Logger)
}
