package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/app"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
)

// Services regroupe ce que l'API expose. Tout champ nil désactive ses routes.
type Services struct {
	Reading       *app.ReadingService
	Settings      *app.SettingsService
	Tracking      *app.TrackingService
	Notifications *app.NotificationCenter
	AniList       *app.AniListTracker
}

type Server struct {
	logger zerolog.Logger
	svc    Services
	bus    ports.EventBus
}

func NewServer(logger zerolog.Logger, svc Services, bus ports.EventBus) *Server {
	return &Server{logger: logger, svc: svc, bus: bus}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/events", s.handleEvents)

		// Le flux SSE reste ouvert: pas de timeout sur /events.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(defaultRequestTimeout))

			r.Get("/health", s.handleHealth)
			r.Get("/version", s.handleVersion)
			r.Get("/openapi.json", s.handleOpenAPI)

			if s.svc.Reading != nil {
				NewSessionsHandler(s.svc.Reading).Routes(r)
			}
			if s.svc.Settings != nil {
				NewSettingsHandler(s.svc.Settings).Routes(r)
			}
			if s.svc.Tracking != nil {
				NewTrackersHandler(s.svc.Tracking, s.svc.AniList).Routes(r)
			}
			if s.svc.Notifications != nil {
				NewNotificationsHandler(s.svc.Notifications).Routes(r)
			}
		})
	})

	return r
}
