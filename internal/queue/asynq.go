package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"velocity/internal/config"
	"velocity/internal/domain/alert"

	"github.com/hibiken/asynq"
	"golang.org/x/time/rate"
)

const (
	TypeAlertCheck = "alert:check"
	alertQueueName = "alerts"

	maxRetry    = 3
	taskTimeout = 2 * time.Minute
)

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
	}
}

// AsynqDispatcher enqueues one durable task per alert. Retry scheduling for
// failed runs is asynq's job, not ours.
type AsynqDispatcher struct {
	client *asynq.Client
	logger *log.Logger
}

func NewAsynqDispatcher(cfg config.RedisConfig, logger *log.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{
		client: asynq.NewClient(redisOpt(cfg)),
		logger: logger,
	}
}

func (d *AsynqDispatcher) Enqueue(ctx context.Context, tasks []alert.CheckTask) bool {
	if d == nil || d.client == nil || len(tasks) == 0 {
		return false
	}

	accepted := 0
	for _, t := range tasks {
		payload, err := json.Marshal(t)
		if err != nil {
			d.logf("[Queue] marshal task for alert %s: %v", t.AlertID, err)
			continue
		}
		_, err = d.client.EnqueueContext(ctx,
			asynq.NewTask(TypeAlertCheck, payload),
			asynq.Queue(alertQueueName),
			asynq.MaxRetry(maxRetry),
			asynq.Timeout(taskTimeout),
		)
		if err != nil {
			d.logf("[Queue] enqueue alert %s: %v", t.AlertID, err)
			continue
		}
		accepted++
	}

	if accepted > 0 {
		d.logf("[Queue] Enqueued %d/%d alert check(s)", accepted, len(tasks))
	}
	return accepted > 0
}

func (d *AsynqDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *AsynqDispatcher) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}

// Worker consumes alert check tasks with bounded concurrency and a shared
// tasks-per-minute ceiling.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	limiter *rate.Limiter
	proc    Processor
	logger  *log.Logger
}

func NewWorker(cfg config.RedisConfig, alerts config.AlertsConfig, proc Processor, logger *log.Logger) *Worker {
	concurrency := alerts.QueueConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	rpm := alerts.RequestsPerMinute
	if rpm < 1 {
		rpm = 1
	}

	w := &Worker{
		server: asynq.NewServer(redisOpt(cfg), asynq.Config{
			Concurrency: concurrency,
			Queues:      map[string]int{alertQueueName: 1},
		}),
		mux:     asynq.NewServeMux(),
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		proc:    proc,
		logger:  logger,
	}
	w.mux.HandleFunc(TypeAlertCheck, w.handleAlertCheck)
	return w
}

func (w *Worker) Start() error {
	if w == nil || w.server == nil {
		return fmt.Errorf("nil worker")
	}
	if w.logger != nil {
		w.logger.Printf("[Queue] Alert worker started")
	}
	return w.server.Start(w.mux)
}

func (w *Worker) Shutdown() {
	if w == nil || w.server == nil {
		return
	}
	w.server.Shutdown()
}

func (w *Worker) handleAlertCheck(ctx context.Context, t *asynq.Task) error {
	var task alert.CheckTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		// A malformed payload will never parse on retry.
		return fmt.Errorf("unmarshal alert check payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	res, err := w.proc.Process(ctx, task)
	if err != nil {
		// Rate-limit failures: let asynq's retry policy reschedule.
		return err
	}
	if w.logger != nil {
		w.logger.Printf("[Queue] Alert %s processed: %d new job(s)", task.AlertID, res.NewJobs)
	}
	return nil
}

// Pauser exposes queue pause/resume for the circuit breaker.
type Pauser struct {
	inspector *asynq.Inspector
	logger    *log.Logger
}

func NewPauser(cfg config.RedisConfig, logger *log.Logger) *Pauser {
	return &Pauser{inspector: asynq.NewInspector(redisOpt(cfg)), logger: logger}
}

func (p *Pauser) Pause() {
	if p == nil || p.inspector == nil {
		return
	}
	if err := p.inspector.PauseQueue(alertQueueName); err != nil && p.logger != nil {
		p.logger.Printf("[Queue] pause failed: %v", err)
	}
}

func (p *Pauser) Resume() {
	if p == nil || p.inspector == nil {
		return
	}
	if err := p.inspector.UnpauseQueue(alertQueueName); err != nil && p.logger != nil {
		p.logger.Printf("[Queue] resume failed: %v", err)
	}
}
