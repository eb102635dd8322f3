package handler

import (
	"strconv"

	"velocity/internal/delivery/http/dto"
	"velocity/internal/delivery/http/middleware"
	"velocity/internal/pkg/response"
	"velocity/internal/repository"

	"github.com/gofiber/fiber/v3"
)

type NotificationsHandler struct {
	logs repository.NotificationLogRepository
}

func NewNotificationsHandler(logs repository.NotificationLogRepository) *NotificationsHandler {
	return &NotificationsHandler{logs: logs}
}

func (h *NotificationsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
}

func (h *NotificationsHandler) List(c fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}

	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	logs, err := h.logs.ListByUser(c.Context(), userID, limit, offset)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	res := make([]dto.NotificationLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, dto.NotificationLogResponse{
			ID:             l.ID,
			AlertID:        l.AlertID,
			JobListingID:   l.JobListingID,
			ExternalJobID:  l.ExternalJobID,
			EmailStatus:    l.EmailStatus,
			EmailMessageID: l.EmailMessageID,
			ErrorMessage:   l.ErrorMessage,
			CreatedAt:      l.CreatedAt,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func queryInt(c fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
