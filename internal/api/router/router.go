package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/appointments"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/clients"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/dialogue"
	httpmiddleware "github.com/devSereneMINDS/Backend-Serene-MINDS/internal/http/middleware"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/notify"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/otp"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/payments"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/professionals"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger               *logging.Logger
	WebhookHandler       *dialogue.Handler
	ClientsHandler       *clients.Handler
	ClientsRepo          *clients.Repository
	ProfessionalsHandler *professionals.Handler
	StatsHandler         *professionals.StatsHandler
	AppointmentsHandler  *appointments.Handler
	PaymentsHandler      *payments.Handler
	OTPHandler           *otp.Handler
	NotifyHandler        *notify.Handler
	MetricsHandler       http.Handler
	AuthJWTSecret        string
	CORSAllowedOrigins   []string
}

// New creates the chi router. The dialogue webhook, health check, metrics,
// and OTP endpoints are public; everything else sits behind client auth.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

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

	// Public endpoints. The webhook is reached directly by the
	// conversational platform and carries no bearer token.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.WebhookHandler != nil {
			public.Post("/api/webhook", cfg.WebhookHandler.Webhook)
		}
		if cfg.OTPHandler != nil {
			public.Route("/api/otp", func(r chi.Router) {
				r.Post("/generate", cfg.OTPHandler.Generate)
				r.Post("/verify", cfg.OTPHandler.Verify)
			})
		}
		// Payment verification is called by the checkout page before the
		// user holds a session token.
		if cfg.PaymentsHandler != nil {
			public.Post("/api/payments/verify", cfg.PaymentsHandler.Verify)
		}
		// Intake form submissions arrive from the public website.
		if cfg.ClientsHandler != nil {
			public.Post("/api/clients/intake", cfg.ClientsHandler.SubmitIntakeForm)
		}
	})

	// Token-protected API surface.
	r.Group(func(private chi.Router) {
		if cfg.AuthJWTSecret != "" && cfg.ClientsRepo != nil {
			private.Use(httpmiddleware.ClientAuth(cfg.AuthJWTSecret, cfg.ClientsRepo))
		}

		if cfg.ClientsHandler != nil {
			private.Route("/api/clients", func(r chi.Router) {
				r.Get("/", cfg.ClientsHandler.List)
				r.Post("/", cfg.ClientsHandler.Create)
				r.Get("/email/{email}", cfg.ClientsHandler.GetByEmail)
				r.Get("/{clientID}", cfg.ClientsHandler.Get)
				r.Put("/{clientID}", cfg.ClientsHandler.Update)
				r.Delete("/{clientID}", cfg.ClientsHandler.Delete)
			})
		}

		if cfg.ProfessionalsHandler != nil {
			private.Route("/api/professionals", func(r chi.Router) {
				r.Get("/", cfg.ProfessionalsHandler.List)
				r.Post("/", cfg.ProfessionalsHandler.Create)
				r.Get("/{professionalID}", cfg.ProfessionalsHandler.Get)
				r.Put("/{professionalID}", cfg.ProfessionalsHandler.Update)
				r.Delete("/{professionalID}", cfg.ProfessionalsHandler.Delete)
				if cfg.StatsHandler != nil {
					r.Get("/{professionalID}/stats", cfg.StatsHandler.GetStats)
					r.Get("/{professionalID}/earnings", cfg.StatsHandler.GetEarnings)
				}
			})
		}

		if cfg.AppointmentsHandler != nil {
			private.Route("/api/appointments", func(r chi.Router) {
				r.Post("/", cfg.AppointmentsHandler.Create)
				r.Get("/{id}", cfg.AppointmentsHandler.Get)
				r.Patch("/{id}/status", cfg.AppointmentsHandler.UpdateStatus)
				r.Delete("/{id}", cfg.AppointmentsHandler.Delete)
				r.Get("/client/{id}", cfg.AppointmentsHandler.ListByClient)
				r.Get("/professional/{id}", cfg.AppointmentsHandler.ListByProfessional)
			})
		}

		if cfg.PaymentsHandler != nil {
			private.Post("/api/payments/order", cfg.PaymentsHandler.CreateOrder)
		}

		if cfg.NotifyHandler != nil {
			private.Route("/api/send", func(r chi.Router) {
				r.Post("/invitation", cfg.NotifyHandler.SendInvitation)
				r.Post("/custom", cfg.NotifyHandler.SendCustomEmail)
			})
			private.Post("/api/whatsapp", cfg.NotifyHandler.SendWhatsApp)
		}
	})

	return r
}
