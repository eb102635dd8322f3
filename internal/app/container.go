package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"velocity/internal/config"
	"velocity/internal/database"
	"velocity/internal/database/migration"
	dbpostgres "velocity/internal/database/postgres"
	"velocity/internal/infrastructure/cache"
	"velocity/internal/jobsearch"
	"velocity/internal/mailer"
	"velocity/internal/queue"
	"velocity/internal/repository"
	"velocity/internal/scheduler"
	"velocity/internal/seeder"
	"velocity/internal/usecase"
	"velocity/migrations"
)

// Container wires the alert pipeline: storage, search client, mailer,
// breaker, queue and scheduler. The HTTP layer only borrows from it.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB    database.DB
	Cache *cache.Redis

	AlertRepo repository.AlertRepository

	Processor *usecase.AlertProcessor
	Trigger   *usecase.AlertTrigger
	Breaker   *usecase.CircuitBreaker

	Dispatcher *queue.AsynqDispatcher // nil when Redis is unavailable
	Worker     *queue.Worker          // nil when Redis is unavailable
	Scheduler  *scheduler.Scheduler
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := (migration.Runner{FS: migrations.FS}).Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if cfg.App.Environment == "development" {
		seed := seeder.AlertSeeder{Email: cfg.SMTP.Username, Logger: logger}
		if err := seed.Run(ctx, db); err != nil {
			logger.Printf("[App] Demo seed skipped: %v", err)
		}
	}

	redis := cache.NewRedis(cfg.Redis, logger)

	var search jobsearch.Client = jobsearch.NewClient(cfg.JobSearch, logger)
	if redis.Available() {
		search = jobsearch.NewCachedClient(search, redis, 0)
	}

	mail := mailer.NewSMTPMailer(cfg.SMTP, logger)
	mail.Verify()

	var breaker *usecase.CircuitBreaker
	if redis.Available() {
		pauser := queue.NewPauser(cfg.Redis, logger)
		breaker = usecase.NewCircuitBreaker(pauser.Pause, pauser.Resume, logger)
	} else {
		breaker = usecase.NewCircuitBreaker(nil, nil, logger)
	}

	alertRepo := repository.NewPostgresAlertRepository(db)
	listingRepo := repository.NewPostgresJobListingRepository(db)
	logRepo := repository.NewPostgresNotificationLogRepository(db)

	processor := usecase.NewAlertProcessor(search, listingRepo, logRepo, alertRepo, mail, breaker, logger)
	trigger := usecase.NewAlertTrigger(alertRepo, processor)

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Cache:     redis,
		AlertRepo: alertRepo,
		Processor: processor,
		Trigger:   trigger,
		Breaker:   breaker,
	}

	var primary queue.Dispatcher
	if redis.Available() {
		c.Dispatcher = queue.NewAsynqDispatcher(cfg.Redis, logger)
		c.Worker = queue.NewWorker(cfg.Redis, cfg.Alerts, processor, logger)
		primary = c.Dispatcher
	} else {
		logger.Printf("[App] Redis unavailable, alerts will run without a durable queue")
	}

	direct := queue.NewDirectDispatcher(processor, breaker, cfg.Alerts.DirectRunDelay, logger)
	c.Scheduler = scheduler.New(alertRepo, primary, direct, cfg.Alerts, logger)

	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Dispatcher != nil {
		_ = c.Dispatcher.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
