package middleware

import (
	"errors"
	"testing"

	"velocity/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

func TestNormalizeError_AppError(t *testing.T) {
	status, msg, _ := normalizeError(NewAppError(fiber.StatusNotFound, "Alert not found", nil, nil))
	if status != fiber.StatusNotFound || msg != "Alert not found" {
		t.Fatalf("unexpected mapping: %d %q", status, msg)
	}
}

func TestNormalizeError_CollapsesOpaque5xx(t *testing.T) {
	status, msg, data := normalizeError(NewAppError(fiber.StatusBadGateway, "upstream exploded", "detail", errors.New("boom")))
	if status != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if msg != response.MessageInternalServerError || data != nil {
		t.Fatalf("5xx details must not leak: %q %v", msg, data)
	}
}

func TestNormalizeError_ServiceUnavailablePassesThrough(t *testing.T) {
	status, msg, _ := normalizeError(NewAppError(fiber.StatusServiceUnavailable, "Job search provider is rate limiting requests", nil, nil))
	if status != fiber.StatusServiceUnavailable {
		t.Fatalf("503 must survive normalization, got %d", status)
	}
	if msg != "Job search provider is rate limiting requests" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestNormalizeError_Unknown(t *testing.T) {
	status, msg, _ := normalizeError(errors.New("who knows"))
	if status != fiber.StatusInternalServerError || msg != response.MessageInternalServerError {
		t.Fatalf("unexpected mapping: %d %q", status, msg)
	}
}
