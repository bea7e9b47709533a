package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/leadfunnel/internal/config"
	"github.com/xavierca1/leadfunnel/internal/infra/http/handlers"
	"github.com/xavierca1/leadfunnel/internal/infra/http/middleware"
)

type routeHandlers struct {
	health       *handlers.HealthHandler
	lead         *handlers.LeadHandler
	chat         *handlers.ChatHandler
	flow         *handlers.FlowHandler
	checkout     *handlers.CheckoutHandler
	notification *handlers.NotificationHandler
	webhook      *handlers.WebhookHandler
	admin        *handlers.AdminHandler
}

func newRouter(cfg *config.Config, h routeHandlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))

		r.Post("/leads", h.lead.CaptureLead)
		r.Post("/chat", h.chat.Handle)
		r.Post("/checkout", h.checkout.Handle)
		r.Post("/notifications", h.notification.Handle)

		r.Route("/flow/sessions", func(r chi.Router) {
			r.Post("/", h.flow.Start)
			r.Get("/{id}", h.flow.Get)
			r.Post("/{id}/select", h.flow.Select)
			r.Post("/{id}/text", h.flow.Text)
			r.Post("/{id}/contact", h.flow.Contact)
		})
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/stripe", h.webhook.Stripe)
		r.Get("/whatsapp", h.webhook.WhatsAppVerify)
		r.Post("/whatsapp", h.webhook.WhatsApp)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth([]byte(cfg.AdminJWTSecret)))

		r.Get("/leads", h.admin.ListLeads)
		r.Post("/leads", h.admin.CreateLead)
		r.Get("/leads/{id}", h.admin.GetLead)
		r.Put("/leads/{id}/status", h.admin.SetStatus)
		r.Post("/leads/{id}/rescore", h.admin.Rescore)
		r.Post("/leads/{id}/outreach", h.admin.TriggerOutreach)
		r.Post("/leads/{id}/response", h.admin.HandleResponse)
		r.Post("/leads/{id}/convert", h.admin.Convert)
		r.Get("/stats", h.admin.Stats)
		r.Get("/export.xlsx", h.admin.Export)
	})

	return r
}
