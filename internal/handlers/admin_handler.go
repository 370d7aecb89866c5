package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/modguard/modguard/internal/dto"
	"github.com/modguard/modguard/internal/middleware"
	"github.com/modguard/modguard/internal/services"
)

// AdminHandler serves the moderation panel: report lists, aggregates,
// workflow transitions and triage-config tuning.
type AdminHandler struct {
	stats      *services.StatsService
	resolution *services.ResolutionService
	settings   *services.SettingsService
}

func NewAdminHandler(stats *services.StatsService, resolution *services.ResolutionService, settings *services.SettingsService) *AdminHandler {
	return &AdminHandler{stats: stats, resolution: resolution, settings: settings}
}

func (h *AdminHandler) ListReports(c *fiber.Ctx) error {
	status := c.Query("status", "")
	priority := c.Query("priority", "")
	category := c.Query("category", "")
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	if limit > 100 {
		limit = 100
	}

	reports, total, err := h.stats.ListReports(c.Context(), status, priority, category, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	return c.JSON(dto.ListReportsResponse{
		Reports: reports,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

func (h *AdminHandler) ReportStats(c *fiber.Ctx) error {
	stats, err := h.stats.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute report stats",
		})
	}
	return c.JSON(stats)
}

func (h *AdminHandler) TransitionReport(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		// Token-header admins have no user claim; attribute to the nil
		// UUID so the audit trail still records the action.
		adminID = uuid.Nil
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	var req dto.TransitionReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.resolution.Transition(c.Context(), reportID, adminID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrBadTransition),
			errors.Is(err, services.ErrInvalidSanction),
			errors.Is(err, services.ErrSanctionNoAuthor),
			errors.Is(err, services.ErrTargetNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to update report",
			})
		}
	}

	return c.JSON(report)
}

func (h *AdminHandler) GetTriageSettings(c *fiber.Ctx) error {
	settings, err := h.settings.All(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch triage settings",
		})
	}
	return c.JSON(fiber.Map{
		"version":  h.settings.Config().Version,
		"settings": settings,
	})
}

func (h *AdminHandler) SetTriageSetting(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		adminID = uuid.Nil
	}

	key := c.Params("key", "")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Key parameter is required",
		})
	}

	var req dto.SetTriageSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Value == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Value is required",
		})
	}

	if err := h.settings.Set(c.Context(), adminID, key, req.Value, req.Type); err != nil {
		var pe *services.PersistenceError
		if errors.As(err, &pe) {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to store setting",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Setting updated", "key": key})
}

func (h *AdminHandler) DeleteTriageSetting(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		adminID = uuid.Nil
	}

	key := c.Params("key", "")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Key parameter is required",
		})
	}

	if err := h.settings.Delete(c.Context(), adminID, key); err != nil {
		if errors.Is(err, services.ErrSettingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete setting",
		})
	}

	return c.JSON(fiber.Map{"message": "Setting deleted", "key": key})
}
