package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"registrationdesk/internal/delivery/http/controllers"
	"registrationdesk/internal/delivery/http/helpers"
	"registrationdesk/internal/delivery/http/middleware"
	"registrationdesk/internal/domain"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Controllers groups every HTTP controller mounted by the router.
type Controllers struct {
	Auth          *controllers.AuthController
	Events        *controllers.EventController
	Contacts      *controllers.ContactController
	Attendees     *controllers.AttendeeController
	Emails        *controllers.EmailController
	Registrations *controllers.RegistrationController
	Badges        *controllers.BadgeController
}

// RouterConfig holds the cross-cutting dependencies of the router.
type RouterConfig struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	DB             Pinger
	AllowedOrigins []string
}

// NewRouter initializes the HTTP router with all application routes and the middleware chain.
func NewRouter(c Controllers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)

	// Auth
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/logout", c.Auth.Logout)
	mux.HandleFunc("GET /auth/me", auth(c.Auth.Me))

	// Events
	mux.HandleFunc("GET /events", auth(c.Events.ListEvents))
	mux.HandleFunc("POST /events", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Events.GetEvent))
	mux.HandleFunc("PUT /events/{eventID}", auth(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Events.DeleteEvent))
	mux.HandleFunc("GET /events/{eventID}/statistics", auth(c.Events.GetStatistics))

	// Contacts
	mux.HandleFunc("GET /events/{eventID}/contacts", auth(c.Contacts.ListContacts))
	mux.HandleFunc("POST /events/{eventID}/contacts", auth(c.Contacts.CreateContact))
	mux.HandleFunc("POST /events/{eventID}/contacts/import", auth(c.Contacts.ImportContacts))
	mux.HandleFunc("GET /events/{eventID}/contacts/export", auth(c.Contacts.ExportContacts))
	mux.HandleFunc("GET /events/{eventID}/contacts/{contactID}", auth(c.Contacts.GetContact))
	mux.HandleFunc("PUT /events/{eventID}/contacts/{contactID}", auth(c.Contacts.UpdateContact))
	mux.HandleFunc("DELETE /events/{eventID}/contacts/{contactID}", auth(c.Contacts.DeleteContact))

	// Attendees
	mux.HandleFunc("GET /events/{eventID}/attendees", auth(c.Attendees.GetAttendees))
	mux.HandleFunc("POST /events/{eventID}/attendees/send-email", auth(c.Attendees.SendEmail))

	// Email templates and campaigns
	mux.HandleFunc("GET /events/{eventID}/emails/templates", auth(c.Emails.ListTemplates))
	mux.HandleFunc("POST /events/{eventID}/emails/templates", auth(c.Emails.CreateTemplate))
	mux.HandleFunc("GET /events/{eventID}/emails/templates/{templateID}", auth(c.Emails.GetTemplate))
	mux.HandleFunc("PUT /events/{eventID}/emails/templates/{templateID}", auth(c.Emails.UpdateTemplate))
	mux.HandleFunc("DELETE /events/{eventID}/emails/templates/{templateID}", auth(c.Emails.DeleteTemplate))
	mux.HandleFunc("GET /events/{eventID}/emails/campaigns", auth(c.Emails.ListCampaigns))
	mux.HandleFunc("POST /events/{eventID}/emails/campaigns", auth(c.Emails.CreateCampaign))
	mux.HandleFunc("GET /events/{eventID}/emails/campaigns/{campaignID}", auth(c.Emails.GetCampaign))
	mux.HandleFunc("DELETE /events/{eventID}/emails/campaigns/{campaignID}", auth(c.Emails.DeleteCampaign))
	mux.HandleFunc("POST /events/{eventID}/emails/campaigns/{campaignID}/send", auth(c.Emails.SendCampaign))

	// Registrations
	mux.HandleFunc("GET /events/{eventID}/registrations", auth(c.Registrations.ListRegistrations))
	mux.HandleFunc("GET /events/{eventID}/registrations/stats", auth(c.Registrations.GetStats))
	mux.HandleFunc("GET /events/{eventID}/registrations/export", auth(c.Registrations.ExportRegistrations))

	// Badges
	mux.HandleFunc("POST /events/{eventID}/badges/generate", auth(c.Badges.GenerateBadges))
	mux.HandleFunc("POST /events/{eventID}/badges/send", auth(c.Badges.SendBadges))
	mux.HandleFunc("GET /events/{eventID}/badges/template", auth(c.Badges.GetTemplate))
	mux.HandleFunc("PUT /events/{eventID}/badges/template", auth(c.Badges.UpdateTemplate))

	// Public
	mux.HandleFunc("GET /register/{eventSlug}", c.Registrations.GetRegistrationPage)
	mux.HandleFunc("POST /register/{eventSlug}", c.Registrations.Register)
	mux.HandleFunc("GET /badges/{confirmationCode}", c.Badges.ViewBadge)

	// Operations
	mux.HandleFunc("GET /healthz", healthz(cfg.DB))
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = middleware.Metrics(mux)
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(cfg.Logger, handler)
	handler = chimw.Recoverer(handler)
	handler = chimw.RealIP(handler)
	handler = chimw.RequestID(handler)
	return handler
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeInternalError, "database unavailable")
				return
			}
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
