package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	appMiddleware "github.com/FACorreiaa/go-tourist-guide/app/middleware"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/auth"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/feedback"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/itinerary"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/poi"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler      *auth.HandlerImpl
	PlaceHandler     *poi.HandlerImpl
	FeedbackHandler  *feedback.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
	Sessions         *appMiddleware.SessionStore
	AllowedOrigins   []string
	// OTPRateLimit is the number of OTP calls allowed per client IP per minute.
	OTPRateLimit int
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8501"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	otpLimit := cfg.OTPRateLimit
	if otpLimit <= 0 {
		otpLimit = 5
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(appMiddleware.Session(cfg.Sessions))

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(httprate.LimitByIP(otpLimit, time.Minute))
				r.Post("/otp/send", cfg.AuthHandler.SendOTP)
				r.Post("/otp/verify", cfg.AuthHandler.VerifyOTP)
			})
			r.Get("/session", cfg.AuthHandler.GetSession)
			r.Post("/logout", cfg.AuthHandler.Logout)
		})

		r.Route("/places", func(r chi.Router) {
			r.Get("/", cfg.PlaceHandler.GetPlaces)
			r.Post("/", cfg.PlaceHandler.CreatePlace)
			r.Post("/image", cfg.PlaceHandler.UploadImage)
		})

		r.Route("/feedback", func(r chi.Router) {
			r.Get("/", cfg.FeedbackHandler.GetFeedback)
			r.Post("/", cfg.FeedbackHandler.CreateFeedback)
		})

		r.Route("/itineraries", func(r chi.Router) {
			r.Get("/", cfg.ItineraryHandler.GetItineraries)
			r.Post("/", cfg.ItineraryHandler.CreateItinerary)
			r.Post("/generate", cfg.ItineraryHandler.GenerateItinerary)
		})
	})

	return r
}
