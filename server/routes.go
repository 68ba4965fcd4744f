package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.healthCheckHandler)
	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	s.app.Post("/messages", s.ingestHandler)
	s.app.Post("/webhooks/inbound-message", s.ingestHandler)

	analytics := s.app.Group("/analytics")
	analytics.Get("/dashboard", s.dashboardHandler)
	analytics.Post("/dashboard/snapshot", s.snapshotHandler)
	analytics.Get("/weekly", s.weeklyHandler)

	api := s.app.Group("/api/v1")
	api.Use(func(c fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.Next()
	})
	api.Get("/conversations", s.listConversationsHandler)
	api.Get("/conversations/:id", s.getConversationHandler)
	api.Put("/conversations/:id/close", s.closeConversationHandler)
	api.Get("/messages", s.listMessagesHandler)
	api.Get("/channels", s.listChannelsHandler)
	api.Get("/channels/:name", s.getChannelHandler)
	api.Get("/channels/:name/stats", s.channelStatsHandler)
	api.Post("/send", s.sendHandler)
}
