package http

import (
	"net/http"

	"github.com/apula/responder-api/internal/application/dispatch"
	"github.com/apula/responder-api/internal/application/verification"
	"github.com/apula/responder-api/internal/config"
	"github.com/apula/responder-api/internal/transport/http/handler"
	appmiddleware "github.com/apula/responder-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to write endpoints reachable
	// without authentication.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	verificationSvc := verification.NewService(verification.ServiceDeps{
		UserRepo: deps.UserRepo,
		Mailer:   deps.Mailer,
		SMS:      deps.SMSSender,
	})
	dispatchSvc := dispatch.NewService(dispatch.ServiceDeps{
		DispatchRepo:     deps.DispatchRepo,
		TokenRepo:        deps.TokenRepo,
		NotificationRepo: deps.NotificationRepo,
		Push:             deps.PushSender,
	})

	healthH := handler.NewHealthHandler()
	verificationH := handler.NewVerificationHandler(verificationSvc)
	dispatchH := handler.NewDispatchHandler(dispatchSvc)
	tokenH := handler.NewDeviceTokenHandler(deps.TokenRepo)
	notifH := handler.NewNotificationHandler(deps.NotificationRepo)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/send-verification", verificationH.SendCode)
		r.With(sensitiveRL.Limit).Post("/dispatches", dispatchH.Create)
		r.Get("/dispatches/{id}", dispatchH.Get)
		r.Put("/device-tokens", tokenH.Register)
		r.Get("/notifications", notifH.List)
	})

	// Unversioned alias kept for older mobile clients.
	r.With(sensitiveRL.Limit).Post("/send-verification", verificationH.SendCode)

	return r
}
