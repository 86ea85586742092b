package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bettercallhomme/voiceline/internal/http/handlers"
	httpmiddleware "github.com/bettercallhomme/voiceline/internal/http/middleware"
	"github.com/bettercallhomme/voiceline/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	VoiceHandler       *handlers.VoiceHandler
	DashboardHandler   *handlers.DashboardHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (Twilio webhooks, health, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.DashboardHandler.Health)
		public.Route("/voice", func(r chi.Router) {
			r.Post("/", cfg.VoiceHandler.HandleIncomingCall)
			r.Post("/speech", cfg.VoiceHandler.HandleSpeech)
			r.Post("/status", cfg.VoiceHandler.HandleStatus)
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Dashboard API
	r.Route("/api", func(api chi.Router) {
		api.Route("/appointments", func(r chi.Router) {
			r.Get("/", cfg.DashboardHandler.ListAppointments)
			r.Get("/{id}", cfg.DashboardHandler.GetAppointment)
			r.Patch("/{id}/status", cfg.DashboardHandler.UpdateAppointmentStatus)
		})
		api.Route("/conversations", func(r chi.Router) {
			r.Get("/", cfg.DashboardHandler.ListConversations)
			r.Get("/{callSid}", cfg.DashboardHandler.GetConversation)
			r.Get("/{callSid}/summary", cfg.DashboardHandler.GetConversationSummary)
		})
		api.Get("/analytics", cfg.DashboardHandler.GetAnalytics)
		api.Get("/technicians", cfg.DashboardHandler.ListTechnicians)
	})

	return r
}
