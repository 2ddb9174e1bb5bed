package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"viralvibes/internal/app/service"
	"viralvibes/internal/transport/httpserver/dto"
	"viralvibes/internal/validator"
)

// JobsHandler handles job inspection HTTP requests.
type JobsHandler struct {
	service   *service.PlaylistService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(svc *service.PlaylistService, v *validator.Validator, logger *zap.Logger) *JobsHandler {
	return &JobsHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Pending handles GET /api/v1/jobs/pending
func (h *JobsHandler) Pending(c *fiber.Ctx) error {
	var req dto.PendingJobsRequest
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

	jobs, err := h.service.PendingJobs(c.Context(), req.Limit)
	if err != nil {
		h.logger.Error("pending jobs lookup failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to list pending jobs",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromJobs(jobs))
}
