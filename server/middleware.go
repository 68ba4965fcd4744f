package server

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/nrednav/cuid2"
)

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())

	s.app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))

	s.app.Use(logger.New())

	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
	}))

	if s.metrics != nil {
		s.app.Use(s.metricsMiddleware)
	}
}

// metricsMiddleware records one observation per request, labelled with the
// route pattern so ids in paths do not explode cardinality.
func (s *Server) metricsMiddleware(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = fiber.StatusInternalServerError
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
	}

	route := c.Route().Path
	if route == "" {
		route = "unmatched"
	}
	s.metrics.RecordHTTPRequest(c.Method(), route, status, time.Since(start))
	return err
}
