package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"admin_console_backend/platform/config"
	"admin_console_backend/platform/logger"
)

// staleAfter is how old a lead's last update may be before the nightly
// sweep rescores it. Freshness points decay with age, so stored scores
// drift without this.
const staleAfter = 24 * time.Hour

// staleBatchSize caps one sweep so a large lead book cannot starve the queue.
const staleBatchSize = 500

// LeadRescorer is the slice of the leads service the worker needs.
type LeadRescorer interface {
	RecomputeScore(ctx context.Context, leadID uuid.UUID) error
}

// StaleLeadSource lists leads whose scores need refreshing.
type StaleLeadSource interface {
	ListStaleLeadIDs(ctx context.Context, olderThan time.Duration, limit int) ([]uuid.UUID, error)
}

// Worker consumes rescore tasks from the queue.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	rescorer LeadRescorer
	stale    StaleLeadSource
	log      *logger.Logger
}

// NewWorker creates the asynq server with handlers registered.
func NewWorker(cfg config.WorkerConfig, rescorer LeadRescorer, stale StaleLeadSource, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetWorkerConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		rescorer: rescorer,
		stale:    stale,
		log:      log,
	}

	mux.HandleFunc(TaskLeadRescore, w.handleLeadRescore)
	mux.HandleFunc(TaskLeadRescoreStale, w.handleLeadRescoreStale)

	return w, nil
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("rescore worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadRescore(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadRescorePayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	return w.rescorer.RecomputeScore(ctx, leadID)
}

func (w *Worker) handleLeadRescoreStale(ctx context.Context, _ *asynq.Task) error {
	ids, err := w.stale.ListStaleLeadIDs(ctx, staleAfter, staleBatchSize)
	if err != nil {
		return err
	}

	var failed int
	for _, id := range ids {
		if err := w.rescorer.RecomputeScore(ctx, id); err != nil {
			failed++
			w.log.Warn("stale rescore failed", "lead_id", id, "error", err)
		}
	}
	w.log.Info("stale rescore sweep done", "total", len(ids), "failed", failed)
	return nil
}

// NewScheduler registers the nightly stale-score sweep. The caller runs it
// alongside the worker server.
func NewScheduler(cfg config.WorkerConfig, log *logger.Logger) (*asynq.Scheduler, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	if _, err := scheduler.Register("0 2 * * *", NewLeadRescoreStaleTask(), asynq.Queue(queue)); err != nil {
		return nil, err
	}
	log.Info("registered nightly stale rescore sweep")
	return scheduler, nil
}
