package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/modguard/modguard/internal/dto"
	"github.com/modguard/modguard/internal/middleware"
	"github.com/modguard/modguard/internal/services"
)

type ReportHandler struct {
	intake *services.IntakeService
}

func NewReportHandler(intake *services.IntakeService) *ReportHandler {
	return &ReportHandler{intake: intake}
}

// Submit accepts an abuse report, runs triage and returns the
// reporter-facing feedback. Internal score details stay internal.
func (h *ReportHandler) Submit(c *fiber.Ctx) error {
	reporterID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, decision, err := h.intake.Submit(c.Context(), reporterID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "missing required fields",
			})
		case errors.Is(err, services.ErrInvalidTarget):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrDuplicateReport):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "already reported within 24 hours",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to submit report",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SubmitReportResponse{
		Success:       true,
		ReportID:      report.ID,
		Message:       decision.Feedback.Message,
		EstimatedTime: decision.Feedback.EstimatedTime,
		Priority:      string(decision.Priority),
	})
}
