// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"viralvibes/internal/app/service"
	"viralvibes/internal/domain"
	"viralvibes/internal/transport/httpserver/dto"
	"viralvibes/internal/validator"
)

// PlaylistHandler handles playlist analysis HTTP requests.
type PlaylistHandler struct {
	service   *service.PlaylistService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewPlaylistHandler creates a new PlaylistHandler.
func NewPlaylistHandler(svc *service.PlaylistService, v *validator.Validator, logger *zap.Logger) *PlaylistHandler {
	return &PlaylistHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Analyze handles POST /api/v1/playlists/analyze
func (h *PlaylistHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	result, err := h.service.Analyze(c.Context(), req.URL)
	if err != nil {
		return h.domainError(c, err, "analyze failed")
	}

	// A queued job is reported with 202 so clients know to poll.
	status := fiber.StatusOK
	if result.Status == service.StatusPending {
		status = fiber.StatusAccepted
	}

	return c.Status(status).JSON(dto.FromAnalyzeResult(result))
}

// Stats handles GET /api/v1/playlists/stats
func (h *PlaylistHandler) Stats(c *fiber.Ctx) error {
	var req dto.StatsRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	stats, videos, err := h.service.Stats(c.Context(), req.URL, req.IncludeVideos())
	if err != nil {
		return h.domainError(c, err, "stats lookup failed")
	}

	return c.JSON(dto.FromStatsAndVideos(stats, videos))
}

// domainError maps domain errors to HTTP responses.
func (h *PlaylistHandler) domainError(c *fiber.Ctx, err error, msg string) error {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		rateLimitErr  *domain.RateLimitedError
		upstreamErr   *domain.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: validationErr.Error(),
			Code:  "INVALID_PLAYLIST",
		})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: notFoundErr.Error(),
			Code:  "NOT_FOUND",
		})
	case errors.As(err, &rateLimitErr):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: "upstream rate limited, try again later",
			Code:  "UPSTREAM_RATE_LIMITED",
		})
	case errors.As(err, &upstreamErr):
		h.logger.Warn(msg, zap.Error(err))

		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: "upstream fetch failed",
			Code:  "UPSTREAM_ERROR",
		})
	default:
		h.logger.Error(msg, zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: msg,
			Code:  "INTERNAL_ERROR",
		})
	}
}
