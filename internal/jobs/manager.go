// SPDX-License-Identifier: MIT

// Package jobs runs asynchronous cryptanalysis jobs on a bounded worker pool.
// Results are persisted to the store, cached, and exported as JSON reports.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kryptoslab/kryptos/internal/cache"
	"github.com/kryptoslab/kryptos/internal/crack"
	"github.com/kryptoslab/kryptos/internal/log"
	"github.com/kryptoslab/kryptos/internal/metrics"
	"github.com/kryptoslab/kryptos/internal/store"
	"github.com/kryptoslab/kryptos/internal/telemetry"
)

var (
	// ErrQueueFull is returned when the job queue has no free slot.
	ErrQueueFull = errors.New("jobs: queue full")
	// ErrNotFound is returned for an unknown job ID.
	ErrNotFound = errors.New("jobs: job not found")
	// ErrFinished is returned when cancelling a job that already finished.
	ErrFinished = errors.New("jobs: job already finished")
	// ErrActive is returned when deleting a job that is still queued or running.
	ErrActive = errors.New("jobs: job still active")
	// ErrUnknownCipher is returned for an unsupported breaker name.
	ErrUnknownCipher = errors.New("jobs: unknown cipher")
)

// Config holds job manager settings.
type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	ReportDir string
	CacheTTL  time.Duration
	// Retention bounds how long finished job records are kept.
	// Zero disables purging.
	Retention time.Duration
}

// purgeInterval is how often the retention sweep runs.
const purgeInterval = time.Hour

type task struct {
	id         string
	cipher     string
	ciphertext string
}

// Manager owns the job queue and worker pool.
type Manager struct {
	cfg    Config
	store  *store.Store
	cache  cache.Cache
	logger zerolog.Logger

	queue   chan task
	cancels cancelRegistry
}

// NewManager creates a job manager. Call Run to start the workers.
func NewManager(cfg Config, st *store.Store, c cache.Cache) *Manager {
	return &Manager{
		cfg:     cfg,
		store:   st,
		cache:   c,
		logger:  log.WithComponent("jobs"),
		queue:   make(chan task, cfg.QueueSize),
		cancels: newCancelRegistry(),
	}
}

// Run starts the worker pool and blocks until ctx is cancelled and all
// workers have drained.
func (m *Manager) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < m.cfg.Workers; i++ {
		g.Go(func() error {
			return m.worker(ctx)
		})
	}

	if m.cfg.Retention > 0 {
		g.Go(func() error {
			return m.purgeLoop(ctx)
		})
	}

	m.logger.Info().
		Int("workers", m.cfg.Workers).
		Int("queue_size", m.cfg.QueueSize).
		Msg("job workers started")

	return g.Wait()
}

// Submit persists a new queued job and hands it to the worker pool.
func (m *Manager) Submit(ctx context.Context, cipher, ciphertext string) (*store.Job, error) {
	if !knownCipher(cipher) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCipher, cipher)
	}

	job := store.Job{
		ID:         uuid.NewString(),
		Cipher:     cipher,
		Status:     store.JobQueued,
		Ciphertext: ciphertext,
		CreatedAt:  time.Now().UTC(),
	}

	if err := m.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	select {
	case m.queue <- task{id: job.ID, cipher: cipher, ciphertext: ciphertext}:
	default:
		// Undo the insert so the rejected job leaves no trace.
		if _, err := m.store.DeleteJob(ctx, job.ID); err != nil {
			m.logger.Warn().Err(err).Str("job_id", job.ID).Msg("failed to remove rejected job")
		}
		return nil, ErrQueueFull
	}

	metrics.JobsActive.Inc()
	m.logger.Info().
		Str("job_id", job.ID).
		Str("cipher", cipher).
		Int("ciphertext_len", len(ciphertext)).
		Msg("job queued")

	return &job, nil
}

// Get retrieves a job by ID.
func (m *Manager) Get(ctx context.Context, id string) (*store.Job, error) {
	job, err := m.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrNotFound
	}
	return job, nil
}

// Cancel stops a queued or running job.
func (m *Manager) Cancel(ctx context.Context, id string) error {
	job, err := m.store.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return ErrNotFound
	}
	if job.Status.Terminal() {
		return ErrFinished
	}

	if cancel, ok := m.cancels.get(id); ok {
		// Running: the worker observes the cancelled context and records
		// the canceled status itself.
		cancel()
		return nil
	}

	// Still queued: mark canceled now, the worker skips it on dequeue.
	if err := m.store.MarkCanceled(ctx, id, time.Now().UTC()); err != nil {
		return err
	}
	m.logger.Info().Str("job_id", id).Msg("queued job canceled")
	return nil
}

// Delete removes a finished job. Active jobs must be cancelled first.
func (m *Manager) Delete(ctx context.Context, id string) error {
	job, err := m.store.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return ErrNotFound
	}
	if !job.Status.Terminal() {
		return ErrActive
	}

	if _, err := m.store.DeleteJob(ctx, id); err != nil {
		return err
	}
	return nil
}

// List returns paginated jobs with the total count.
func (m *Manager) List(ctx context.Context, limit, offset int) ([]store.Job, int, error) {
	return m.store.ListJobs(ctx, limit, offset)
}

func (m *Manager) worker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-m.queue:
			m.process(ctx, t)
		}
	}
}

// purgeLoop periodically drops finished job records older than the
// configured retention window.
func (m *Manager) purgeLoop(ctx context.Context) error {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.purgeExpired(ctx)
		}
	}
}

func (m *Manager) purgeExpired(ctx context.Context) {
	cutoff := time.Now().Add(-m.cfg.Retention).UTC()
	n, err := m.store.PurgeFinishedBefore(ctx, cutoff)
	if err != nil {
		m.logger.Warn().Err(err).Msg("purge finished jobs")
		return
	}
	if n > 0 {
		m.logger.Info().Int64("purged", n).Time("cutoff", cutoff).Msg("purged finished jobs")
	}
}

func (m *Manager) process(ctx context.Context, t task) {
	defer metrics.JobsActive.Dec()

	logger := m.logger.With().Str("job_id", t.id).Str("cipher", t.cipher).Logger()

	// Cancel may have landed while the task sat in the queue.
	current, err := m.store.GetJob(ctx, t.id)
	if err != nil {
		logger.Error().Err(err).Msg("load job before run")
		return
	}
	if current == nil || current.Status != store.JobQueued {
		logger.Debug().Msg("skipping dequeued job that is no longer queued")
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	m.cancels.put(t.id, cancel)
	defer func() {
		m.cancels.remove(t.id)
		cancel()
	}()

	start := time.Now()
	if err := m.store.MarkRunning(ctx, t.id, start.UTC()); err != nil {
		logger.Error().Err(err).Msg("mark job running")
		return
	}
	logger.Info().Msg("job started")

	spanCtx, span := telemetry.Tracer("kryptos/jobs").Start(jobCtx, "job.crack",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(telemetry.CipherAttributes(t.cipher, 0)...),
	)

	candidates, err := m.solve(spanCtx, t)
	duration := time.Since(start)
	metrics.ObserveCrackDuration(t.cipher, duration)

	span.SetAttributes(telemetry.JobAttributes(t.id, statusForErr(err).String(), duration.Milliseconds())...)
	span.SetAttributes(telemetry.CrackAttributes(t.cipher, len(candidates))...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	switch {
	case err == nil:
		m.finish(ctx, logger, t, candidates, duration)
	case errors.Is(err, context.Canceled):
		metrics.IncCrack(t.cipher, false)
		if err := m.store.MarkCanceled(ctx, t.id, time.Now().UTC()); err != nil {
			logger.Error().Err(err).Msg("mark job canceled")
		}
		logger.Info().Dur("duration", duration).Msg("job canceled")
	case errors.Is(err, context.DeadlineExceeded):
		metrics.IncCrack(t.cipher, false)
		msg := fmt.Sprintf("timed out after %s", m.cfg.Timeout)
		if err := m.store.MarkFailed(ctx, t.id, msg, time.Now().UTC()); err != nil {
			logger.Error().Err(err).Msg("mark job failed")
		}
		logger.Warn().Dur("duration", duration).Msg("job timed out")
	default:
		metrics.IncCrack(t.cipher, false)
		if err := m.store.MarkFailed(ctx, t.id, err.Error(), time.Now().UTC()); err != nil {
			logger.Error().Err(err).Msg("mark job failed")
		}
		logger.Warn().Err(err).Dur("duration", duration).Msg("job failed")
	}
}

// statusForErr maps a solve outcome to the terminal job status.
func statusForErr(err error) store.JobStatus {
	switch {
	case err == nil:
		return store.JobDone
	case errors.Is(err, context.Canceled):
		return store.JobCanceled
	default:
		return store.JobFailed
	}
}

// finish records a successful result, caches it, and exports the report.
func (m *Manager) finish(ctx context.Context, logger zerolog.Logger, t task, candidates []crack.Candidate, duration time.Duration) {
	metrics.IncCrack(t.cipher, true)

	if err := m.store.MarkDone(ctx, t.id, candidates, time.Now().UTC()); err != nil {
		logger.Error().Err(err).Msg("mark job done")
		return
	}

	if data, err := json.Marshal(candidates); err == nil {
		m.cache.Set(cache.ResultKey(t.cipher, t.ciphertext, ""), data, m.cfg.CacheTTL)
	}

	if m.cfg.ReportDir != "" {
		job, err := m.store.GetJob(ctx, t.id)
		if err == nil && job != nil {
			if err := WriteReport(ctx, m.cfg.ReportDir, job); err != nil {
				logger.Warn().Err(err).Msg("write job report")
			}
		}
	}

	logger.Info().
		Dur("duration", duration).
		Int("candidates", len(candidates)).
		Msg("job done")
}

// solve runs the requested breaker, serving cached results when available.
func (m *Manager) solve(ctx context.Context, t task) ([]crack.Candidate, error) {
	key := cache.ResultKey(t.cipher, t.ciphertext, "")
	if data, ok := m.cache.Get(key); ok {
		var candidates []crack.Candidate
		if err := json.Unmarshal(data, &candidates); err == nil {
			metrics.IncCacheLookup(true)
			return candidates, nil
		}
	}
	metrics.IncCacheLookup(false)

	return RunBreaker(ctx, t.cipher, t.ciphertext)
}

// RunBreaker dispatches to the named ciphertext-only attack.
func RunBreaker(ctx context.Context, cipher, ciphertext string) ([]crack.Candidate, error) {
	switch cipher {
	case "auto":
		return crack.Auto(ctx, ciphertext)
	case "caesar":
		return crack.Caesar(ctx, ciphertext)
	case "affine":
		return crack.Affine(ctx, ciphertext)
	case "vigenere":
		return crack.Vigenere(ctx, ciphertext, crack.DefaultMaxKeyLength)
	case "substitution":
		return crack.Substitution(ctx, ciphertext, crack.DefaultRestarts)
	case "railfence":
		return crack.RailFence(ctx, ciphertext, crack.DefaultMaxRails)
	case "columnar":
		return crack.Columnar(ctx, ciphertext, crack.DefaultMaxColumns)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCipher, cipher)
	}
}

// Ciphers lists the breaker names accepted by Submit and RunBreaker.
func Ciphers() []string {
	return []string{"auto", "caesar", "affine", "vigenere", "substitution", "railfence", "columnar"}
}

func knownCipher(name string) bool {
	for _, c := range Ciphers() {
		if c == name {
			return true
		}
	}
	return false
}
