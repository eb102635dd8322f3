package handler

import (
	"errors"

	"velocity/internal/delivery/http/dto"
	"velocity/internal/delivery/http/middleware"
	"velocity/internal/domain/alert"
	"velocity/internal/jobsearch"
	"velocity/internal/pkg/response"
	"velocity/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type AlertsHandler struct {
	registry *usecase.AlertRegistry
	trigger  *usecase.AlertTrigger
}

type alertRequest struct {
	Title           string   `json:"title"`
	Keywords        []string `json:"keywords"`
	Location        string   `json:"location"`
	RemoteOnly      bool     `json:"remote_only"`
	EmploymentTypes []string `json:"employment_types"`
	UserName        string   `json:"user_name"`
	IsActive        *bool    `json:"is_active"`
}

func NewAlertsHandler(registry *usecase.AlertRegistry, trigger *usecase.AlertTrigger) *AlertsHandler {
	return &AlertsHandler{registry: registry, trigger: trigger}
}

func (h *AlertsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/:id", h.Get)
	r.Patch("/:id", h.Update)
	r.Delete("/:id", h.Deactivate)
	r.Post("/:id/trigger", h.Trigger)
}

func (h *AlertsHandler) Create(c fiber.Ctx) error {
	userID, email, err := identity(c)
	if err != nil {
		return err
	}

	var req alertRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	a, err := h.registry.Create(c.Context(), userID, email, usecase.AlertInput{
		Title:           req.Title,
		Keywords:        req.Keywords,
		Location:        req.Location,
		RemoteOnly:      req.RemoteOnly,
		EmploymentTypes: req.EmploymentTypes,
		UserName:        req.UserName,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, toAlertResponse(a))
}

func (h *AlertsHandler) List(c fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}

	alerts, err := h.registry.List(c.Context(), userID)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	res := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		res = append(res, toAlertResponse(a))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *AlertsHandler) Get(c fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}
	alertID, err := alertIDParam(c)
	if err != nil {
		return err
	}

	a, err := h.registry.Get(c.Context(), userID, alertID)
	if err != nil {
		return alertError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toAlertResponse(a))
}

func (h *AlertsHandler) Update(c fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}
	alertID, err := alertIDParam(c)
	if err != nil {
		return err
	}

	var req alertRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	a, err := h.registry.Update(c.Context(), userID, alertID, usecase.AlertInput{
		Title:           req.Title,
		Keywords:        req.Keywords,
		Location:        req.Location,
		RemoteOnly:      req.RemoteOnly,
		EmploymentTypes: req.EmploymentTypes,
		UserName:        req.UserName,
	}, req.IsActive)
	if err != nil {
		return alertError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toAlertResponse(a))
}

func (h *AlertsHandler) Deactivate(c fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}
	alertID, err := alertIDParam(c)
	if err != nil {
		return err
	}

	if err := h.registry.Deactivate(c.Context(), userID, alertID); err != nil {
		return alertError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *AlertsHandler) Trigger(c fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}
	alertID, err := alertIDParam(c)
	if err != nil {
		return err
	}

	// Ownership first; Trigger itself has no notion of a caller.
	if _, err := h.registry.Get(c.Context(), userID, alertID); err != nil {
		return alertError(err)
	}

	res, err := h.trigger.Trigger(c.Context(), alertID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAlertNotFound):
			return middleware.NewAppError(fiber.StatusNotFound, "Alert not found", nil, err)
		case errors.Is(err, usecase.ErrAlertInactive):
			return middleware.NewAppError(fiber.StatusConflict, "Alert is not active", nil, err)
		case errors.Is(err, jobsearch.ErrRateLimited):
			return middleware.NewAppError(fiber.StatusServiceUnavailable, "Job search provider is rate limiting requests", nil, err)
		default:
			return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
		}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.TriggerResponse{
		Success: res.Success,
		NewJobs: res.NewJobs,
	})
}

func identity(c fiber.Ctx) (uuid.UUID, string, error) {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, "", middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	email, _ := c.Locals(middleware.CtxEmailKey).(string)
	return userID, email, nil
}

func alertIDParam(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid alert id", nil, err)
	}
	return id, nil
}

func alertError(err error) error {
	if errors.Is(err, usecase.ErrAlertNotFound) {
		return middleware.NewAppError(fiber.StatusNotFound, "Alert not found", nil, err)
	}
	if errors.Is(err, usecase.ErrInvalidInput) {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
}

func toAlertResponse(a alert.Alert) dto.AlertResponse {
	return dto.AlertResponse{
		ID:              a.ID,
		Title:           a.Title,
		Keywords:        a.Keywords,
		Location:        a.Location,
		RemoteOnly:      a.RemoteOnly,
		EmploymentTypes: a.EmploymentTypes,
		IsActive:        a.IsActive,
		LastCheckedAt:   a.LastCheckedAt,
		TotalJobsFound:  a.TotalJobsFound,
		TotalEmailsSent: a.TotalEmailsSent,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
