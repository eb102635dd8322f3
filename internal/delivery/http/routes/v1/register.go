package v1

import (
	"velocity/internal/config"
	"velocity/internal/database"
	"velocity/internal/delivery/http/handler"
	"velocity/internal/delivery/http/middleware"
	"velocity/internal/pkg/jwt"
	"velocity/internal/repository"
	"velocity/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// Deps carries the shared infrastructure the v1 routes build on. The trigger
// usecase arrives prewired because its collaborators (search client, mailer,
// breaker) are owned by the application container.
type Deps struct {
	Cfg     config.Config
	DB      database.DB
	Trigger *usecase.AlertTrigger
}

func Register(r fiber.Router, d Deps) {
	if r == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(d.Cfg.JWT.AccessSecret)
	authMw := middleware.NewAuthMiddleware(jwtSvc)

	alertRepo := repository.NewPostgresAlertRepository(d.DB)
	logRepo := repository.NewPostgresNotificationLogRepository(d.DB)
	registry := usecase.NewAlertRegistry(alertRepo)

	alertsHandler := handler.NewAlertsHandler(registry, d.Trigger)
	notificationsHandler := handler.NewNotificationsHandler(logRepo)

	protected := r.Group("", authMw.Middleware())

	alertsHandler.RegisterRoutes(protected.Group("/alerts"))
	notificationsHandler.RegisterRoutes(protected.Group("/notifications"))
}
