// Package worker runs the background polling loop that drains the playlist
// job queue.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"viralvibes/internal/domain"
	"viralvibes/pkg/locker"
)

// pollLockKey serializes whole poll cycles across instances when the
// distributed lock is enabled.
const pollLockKey = "worker:poll"

// Runner produces a playlist report. Satisfied by service.Pipeline.
type Runner interface {
	Run(ctx context.Context, playlistID string) (*domain.Report, error)
}

// Config holds worker loop settings.
type Config struct {
	// PollInterval is the sleep between poll cycles.
	PollInterval time.Duration

	// BatchSize caps how many jobs one cycle claims.
	BatchSize int

	// MaxRuntime bounds the whole invocation. The job being processed when
	// the bound passes finishes; no further jobs are started. Zero means
	// run until the context ends.
	MaxRuntime time.Duration

	// MaxAttempts is the total processing attempts a job gets before a
	// retryable failure becomes terminal.
	MaxAttempts int

	// JobTimeout bounds one job's pipeline run.
	JobTimeout time.Duration

	// UseLock serializes poll cycles across instances. Claim atomicity in
	// the store already prevents double processing; the lock only avoids
	// redundant polling.
	UseLock bool
}

// Worker claims pending jobs in batches and runs them through the pipeline.
type Worker struct {
	store  domain.Store
	runner Runner
	locker locker.DistributedLocker
	clock  clock.Clock
	cfg    Config
	logger *zap.Logger
}

// New creates a worker. lock may be nil when cross-instance serialization is
// disabled.
func New(store domain.Store, runner Runner, lock locker.DistributedLocker, cfg Config, logger *zap.Logger) *Worker {
	return &Worker{
		store:  store,
		runner: runner,
		locker: lock,
		clock:  clock.New(),
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes poll cycles until the context ends or MaxRuntime passes.
// Only store failures abort the loop; job failures are recorded on the job
// and the loop keeps going.
func (w *Worker) Run(ctx context.Context) error {
	var deadline time.Time
	if w.cfg.MaxRuntime > 0 {
		deadline = w.clock.Now().Add(w.cfg.MaxRuntime)
	}

	w.logger.Info("worker started",
		zap.Duration("poll_interval", w.cfg.PollInterval),
		zap.Int("batch_size", w.cfg.BatchSize),
		zap.Duration("max_runtime", w.cfg.MaxRuntime),
	)

	for {
		if err := w.pollCycle(ctx, deadline); err != nil {
			return err
		}

		if w.expired(deadline) {
			w.logger.Info("worker runtime bound reached")

			return nil
		}

		timer := w.clock.Timer(w.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("worker stopping", zap.Error(ctx.Err()))

			return nil
		case <-timer.C:
		}

		if w.expired(deadline) {
			w.logger.Info("worker runtime bound reached")

			return nil
		}
	}
}

// RunOnce executes a single poll cycle. Used by the one-shot CLI mode.
func (w *Worker) RunOnce(ctx context.Context) error {
	return w.pollCycle(ctx, time.Time{})
}

func (w *Worker) pollCycle(ctx context.Context, deadline time.Time) error {
	if w.locker != nil && w.cfg.UseLock {
		acquired, err := w.locker.Acquire(ctx, pollLockKey, w.cfg.PollInterval)
		if err != nil {
			w.logger.Warn("poll lock unavailable", zap.Error(err))

			return nil
		}
		if !acquired {
			return nil
		}
		defer func() {
			_ = w.locker.Release(ctx, pollLockKey)
		}()
	}

	jobs, err := w.store.ClaimPending(ctx, w.cfg.BatchSize)
	if err != nil {
		w.logger.Error("claiming jobs failed", zap.Error(err))

		return err
	}
	if len(jobs) == 0 {
		return nil
	}

	w.logger.Info("claimed jobs", zap.Int("count", len(jobs)))

	for i := range jobs {
		if err := w.processJob(ctx, &jobs[i]); err != nil {
			return err
		}

		// The in-flight job above was allowed to finish; stop before
		// starting another past the bound.
		if w.expired(deadline) {
			w.logger.Info("runtime bound reached mid-batch",
				zap.Int("processed", i+1),
				zap.Int("claimed", len(jobs)),
			)

			return w.requeueRemaining(ctx, jobs[i+1:])
		}
	}

	return nil
}

// processJob runs one job through the pipeline and records the outcome.
// The returned error is non-nil only for store failures.
func (w *Worker) processJob(ctx context.Context, job *domain.Job) error {
	jobCtx := ctx
	cancel := func() {}
	if w.cfg.JobTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, w.cfg.JobTimeout)
	}
	defer cancel()

	start := w.clock.Now()
	report, err := w.runner.Run(jobCtx, job.PlaylistID)
	elapsed := w.clock.Now().Sub(start)

	// The store still has to be reachable after a shutdown signal; record
	// outcomes on a fresh context once ctx is gone.
	storeCtx, storeCancel := w.recordCtx(ctx)
	defer storeCancel()

	if err != nil {
		// A run cut short by shutdown is not a failure: hand the claim
		// back without burning an attempt.
		if ctx.Err() != nil {
			w.logger.Info("job interrupted by shutdown, releasing claim",
				zap.String("job_id", job.ID),
				zap.String("playlist_id", job.PlaylistID),
			)

			return w.store.Release(storeCtx, job.ID)
		}

		retry := w.shouldRetry(job, err)
		w.logger.Warn("job failed",
			zap.String("job_id", job.ID),
			zap.String("playlist_id", job.PlaylistID),
			zap.Int("attempt", job.Attempts+1),
			zap.Bool("retry", retry),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)

		return w.store.MarkFailed(storeCtx, job.ID, err.Error(), retry)
	}

	w.logger.Info("job completed",
		zap.String("job_id", job.ID),
		zap.String("playlist_id", job.PlaylistID),
		zap.Int("videos", len(report.Videos)),
		zap.Duration("elapsed", elapsed),
	)

	return w.store.MarkDone(storeCtx, job.ID, report.Stats, report.Videos)
}

// recordCtx returns ctx while it is alive, or a short detached context so a
// finished attempt can still be recorded during shutdown.
func (w *Worker) recordCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx.Err() == nil {
		return ctx, func() {}
	}

	return context.WithTimeout(context.Background(), 10*time.Second)
}

// shouldRetry applies the attempt budget to retryable failures. Validation
// and not-found errors never retry.
func (w *Worker) shouldRetry(job *domain.Job, err error) bool {
	if !domain.Retryable(err) && !errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return job.Attempts+1 < w.cfg.MaxAttempts
}

// requeueRemaining returns unprocessed claimed jobs to pending so another
// invocation can pick them up. No attempt is recorded for them.
func (w *Worker) requeueRemaining(ctx context.Context, jobs []domain.Job) error {
	for i := range jobs {
		if err := w.store.Release(ctx, jobs[i].ID); err != nil {
			return err
		}
	}

	return nil
}

func (w *Worker) expired(deadline time.Time) bool {
	return !deadline.IsZero() && !w.clock.Now().Before(deadline)
}
