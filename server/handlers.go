package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/inbox-analytics/model"
	"github.com/NextMind-AI/inbox-analytics/processor"
	"github.com/NextMind-AI/inbox-analytics/zone"
)

func respondError(c fiber.Ctx, status int, code, message string, details interface{}) error {
	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondFailure maps a domain error to its status code.
func respondFailure(c fiber.Ctx, err error, message string) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return respondError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), fiber.Map{"field": verr.Field})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg(message)
	return respondError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

func errorHandler(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "INTERNAL_ERROR"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		switch status {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusBadRequest:
			code = "BAD_REQUEST"
		}
	}
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	}
	return respondError(c, status, code, err.Error(), nil)
}

func (s *Server) ingestHandler(c fiber.Ctx) error {
	var message processor.InboundMessage
	if err := c.Bind().JSON(&message); err != nil {
		log.Error().Err(err).Msg("Error parsing JSON")
		return respondError(c, fiber.StatusBadRequest, "INVALID_BODY", "Error parsing JSON", nil)
	}

	ack, err := s.messageProcessor.Ingest(c.Context(), message)
	if err != nil {
		return respondFailure(c, err, "Failed to ingest message")
	}
	return c.JSON(ack)
}

func (s *Server) sendHandler(c fiber.Ctx) error {
	var req processor.SendRequest
	if err := c.Bind().JSON(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "INVALID_BODY", "Error parsing JSON", nil)
	}

	res, err := s.messageProcessor.Send(c.Context(), req)
	if err != nil {
		return respondFailure(c, err, "Failed to send message")
	}
	return c.JSON(res)
}

func (s *Server) dashboardHandler(c fiber.Ctx) error {
	start := time.Now()
	dashboard, err := s.analytics.Dashboard(c.Context())
	if err != nil {
		return respondFailure(c, err, "Failed to compute dashboard")
	}
	if s.metrics != nil {
		s.metrics.ObserveDashboard(time.Since(start))
	}
	return c.JSON(dashboard)
}

// weeklyHandler serves the week that contains week_start, or the current
// week when the parameter is absent.
func (s *Server) weeklyHandler(c fiber.Ctx) error {
	day := s.zone.Today(s.now())
	if raw := c.Query("week_start"); raw != "" {
		d, err := zone.ParseDate(raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "INVALID_PARAMETER", "week_start must be a YYYY-MM-DD date", fiber.Map{"week_start": raw})
		}
		day = d
	}

	weekly, err := s.analytics.Week(c.Context(), day)
	if err != nil {
		return respondFailure(c, err, "Failed to compute weekly report")
	}
	return c.JSON(weekly)
}

func (s *Server) snapshotHandler(c fiber.Ctx) error {
	if s.archive == nil {
		return respondError(c, fiber.StatusServiceUnavailable, "ARCHIVE_DISABLED", "Dashboard archive is not configured", nil)
	}

	generatedAt := s.now().UTC()
	dashboard, err := s.analytics.DashboardAt(c.Context(), generatedAt)
	if err != nil {
		return respondFailure(c, err, "Failed to compute dashboard")
	}
	body, err := json.Marshal(dashboard)
	if err != nil {
		return respondFailure(c, err, "Failed to encode dashboard")
	}

	snap, err := s.archive.UploadDashboard(c.Context(), body, generatedAt)
	if err != nil {
		log.Error().Err(err).Msg("Error uploading dashboard snapshot")
		return respondError(c, fiber.StatusBadGateway, "ARCHIVE_ERROR", "Failed to upload dashboard snapshot", nil)
	}

	return c.Status(fiber.StatusCreated).JSON(SnapshotResponse{
		Bucket:      snap.Bucket,
		Key:         snap.Key,
		URL:         snap.URL,
		GeneratedAt: generatedAt,
	})
}

func (s *Server) healthCheckHandler(c fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:           "ok",
		Store:            s.config.StoreBackend,
		Timezone:         s.zone.Name(),
		LiveSegmentation: s.config.LiveSegmentation,
	})
}
