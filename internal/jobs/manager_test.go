// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kryptoslab/kryptos/internal/cache"
	"github.com/kryptoslab/kryptos/internal/cipher"
	"github.com/kryptoslab/kryptos/internal/crack"
	"github.com/kryptoslab/kryptos/internal/store"
	"github.com/kryptoslab/kryptos/internal/telemetry"
)

const jobPlaintext = "FOUR SCORE AND SEVEN YEARS AGO OUR FATHERS BROUGHT FORTH ON THIS " +
	"CONTINENT A NEW NATION CONCEIVED IN LIBERTY AND DEDICATED TO THE " +
	"PROPOSITION THAT ALL MEN ARE CREATED EQUAL"

type testEnv struct {
	manager *Manager
	store   *store.Store
	cache   cache.Cache
	reports string
}

// newTestEnv builds a manager around a temp store. When running is true the
// worker pool is started and torn down with the test.
func newTestEnv(t *testing.T, cfg Config, running bool) *testEnv {
	t.Helper()

	st, err := store.NewStore(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	c := cache.NewMemoryCache(0)

	if cfg.ReportDir == "" {
		cfg.ReportDir = filepath.Join(t.TempDir(), "reports")
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Minute
	}

	m := NewManager(cfg, st, c)

	if running {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = m.Run(ctx)
			close(done)
		}()
		t.Cleanup(func() {
			cancel()
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Error("workers did not stop")
			}
		})
	}

	return &testEnv{manager: m, store: st, cache: c, reports: cfg.ReportDir}
}

// waitForStatus polls until the job reaches status or the deadline passes.
func waitForStatus(t *testing.T, m *Manager, id string, status store.JobStatus) *store.Job {
	t.Helper()

	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		job, err := m.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if job.Status == status {
			return job
		}
		if job.Status.Terminal() {
			t.Fatalf("job reached %s, want %s (error: %s)", job.Status, status, job.Error)
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job did not reach status %s", status)
	return nil
}

func mustEncryptCaesar(t *testing.T, shift int, plaintext string) string {
	t.Helper()
	ct, err := cipher.NewCaesar(shift).Encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt fixture: %v", err)
	}
	return ct
}

func TestSubmitAndComplete(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 2, QueueSize: 8, Timeout: time.Minute}, true)
	ciphertext := mustEncryptCaesar(t, 7, jobPlaintext)

	job, err := env.manager.Submit(context.Background(), "caesar", ciphertext)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	done := waitForStatus(t, env.manager, job.ID, store.JobDone)
	if len(done.Candidates) == 0 {
		t.Fatal("expected candidates on finished job")
	}
	if done.Candidates[0].Plaintext != jobPlaintext {
		t.Errorf("top plaintext = %q, want recovered fixture", done.Candidates[0].Plaintext)
	}
	if done.Candidates[0].Key != "7" {
		t.Errorf("top key = %q, want 7", done.Candidates[0].Key)
	}
	if done.StartedAt == nil || done.FinishedAt == nil {
		t.Error("expected started/finished timestamps")
	}
}

func TestCompletedJobWritesReport(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 1, QueueSize: 4, Timeout: time.Minute}, true)
	ciphertext := mustEncryptCaesar(t, 3, jobPlaintext)

	job, err := env.manager.Submit(context.Background(), "caesar", ciphertext)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	waitForStatus(t, env.manager, job.ID, store.JobDone)

	path := filepath.Join(env.reports, job.ID+".json")

	// The report is written after the job is marked done, so allow a moment.
	var data []byte
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var readErr error
		data, readErr = os.ReadFile(path)
		if readErr == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(data) == 0 {
		t.Fatalf("report file %s was not written", path)
	}

	var decoded store.Job
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.ID != job.ID || decoded.Status != store.JobDone {
		t.Errorf("unexpected report contents: %+v", decoded)
	}
}

func TestCompletedJobPopulatesCache(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 1, QueueSize: 4, Timeout: time.Minute}, true)
	ciphertext := mustEncryptCaesar(t, 11, jobPlaintext)

	job, err := env.manager.Submit(context.Background(), "caesar", ciphertext)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	waitForStatus(t, env.manager, job.ID, store.JobDone)

	if _, ok := env.cache.Get(cache.ResultKey("caesar", ciphertext, "")); !ok {
		t.Error("expected result to be cached after completion")
	}
}

func TestCachedResultServedWithoutRecompute(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 1, QueueSize: 4, Timeout: time.Minute}, true)

	ciphertext := "KHOOR ZRUOG"
	sentinel := []crack.Candidate{
		{Cipher: "caesar", Key: "3", Plaintext: "CACHED RESULT", Score: 1},
	}
	data, err := json.Marshal(sentinel)
	if err != nil {
		t.Fatalf("marshal sentinel: %v", err)
	}
	env.cache.Set(cache.ResultKey("caesar", ciphertext, ""), data, time.Minute)

	job, err := env.manager.Submit(context.Background(), "caesar", ciphertext)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	done := waitForStatus(t, env.manager, job.ID, store.JobDone)
	if len(done.Candidates) != 1 || done.Candidates[0].Plaintext != "CACHED RESULT" {
		t.Errorf("expected cached sentinel result, got %+v", done.Candidates)
	}
}

func TestSubmitUnknownCipher(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 1, QueueSize: 4, Timeout: time.Minute}, false)

	if _, err := env.manager.Submit(context.Background(), "enigma", "XYZ"); !errors.Is(err, ErrUnknownCipher) {
		t.Errorf("Submit(enigma) error = %v, want ErrUnknownCipher", err)
	}
}

func TestSubmitQueueFull(t *testing.T) {
	// No workers running, so the queue never drains.
	env := newTestEnv(t, Config{Workers: 1, QueueSize: 1, Timeout: time.Minute}, false)
	ctx := context.Background()

	if _, err := env.manager.Submit(ctx, "caesar", "KHOOR"); err != nil {
		t.Fatalf("first Submit() error: %v", err)
	}

	job, err := env.manager.Submit(ctx, "caesar", "KHOOR")
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("second Submit() error = %v, want ErrQueueFull", err)
	}
	if job != nil {
		t.Error("expected nil job on rejection")
	}

	// The rejected job must leave no row behind.
	_, total, err := env.store.ListJobs(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListJobs() error: %v", err)
	}
	if total != 1 {
		t.Errorf("total jobs = %d, want 1", total)
	}
}

func TestCancelQueuedJob(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 1, QueueSize: 4, Timeout: time.Minute}, false)
	ctx := context.Background()

	job, err := env.manager.Submit(ctx, "caesar", "KHOOR")
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if err := env.manager.Cancel(ctx, job.ID); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}

	got, err := env.manager.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Status != store.JobCanceled {
		t.Errorf("Status = %s, want canceled", got.Status)
	}

	if err := env.manager.Cancel(ctx, job.ID); !errors.Is(err, ErrFinished) {
		t.Errorf("second Cancel() error = %v, want ErrFinished", err)
	}
}

func TestCancelUnknownJob(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 1, QueueSize: 4, Timeout: time.Minute}, false)

	if err := env.manager.Cancel(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cancel(missing) error = %v, want ErrNotFound", err)
	}
}

func TestJobTimeout(t *testing.T) {
	// Substitution hill climbing cannot finish within a 1ms budget.
	env := newTestEnv(t, Config{Workers: 1, QueueSize: 4, Timeout: time.Millisecond}, true)
	ciphertext := mustEncryptCaesar(t, 5, jobPlaintext)

	job, err := env.manager.Submit(context.Background(), "substitution", ciphertext)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	failed := waitForStatus(t, env.manager, job.ID, store.JobFailed)
	if failed.Error == "" {
		t.Error("expected timeout error message on failed job")
	}
}

func TestDeleteJob(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 1, QueueSize: 4, Timeout: time.Minute}, false)
	ctx := context.Background()

	job, err := env.manager.Submit(ctx, "caesar", "KHOOR")
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	// Active jobs cannot be deleted.
	if err := env.manager.Delete(ctx, job.ID); !errors.Is(err, ErrActive) {
		t.Fatalf("Delete(active) error = %v, want ErrActive", err)
	}

	if err := env.manager.Cancel(ctx, job.ID); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if err := env.manager.Delete(ctx, job.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := env.manager.Get(ctx, job.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestRunBreakerDispatch(t *testing.T) {
	ciphertext := mustEncryptCaesar(t, 7, jobPlaintext)

	candidates, err := RunBreaker(context.Background(), "caesar", ciphertext)
	if err != nil {
		t.Fatalf("RunBreaker(caesar) error: %v", err)
	}
	if len(candidates) != 26 {
		t.Errorf("len(candidates) = %d, want 26", len(candidates))
	}

	if _, err := RunBreaker(context.Background(), "rot13000", "XYZ"); !errors.Is(err, ErrUnknownCipher) {
		t.Errorf("RunBreaker(unknown) error = %v, want ErrUnknownCipher", err)
	}
}

func TestCiphersListMatchesDispatch(t *testing.T) {
	for _, name := range Ciphers() {
		if !knownCipher(name) {
			t.Errorf("cipher %s not accepted by knownCipher", name)
		}
	}
	if knownCipher("enigma") {
		t.Error("knownCipher(enigma) = true, want false")
	}
}

func TestProcessEmitsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
	})

	env := newTestEnv(t, Config{Workers: 1, QueueSize: 8, Timeout: time.Minute}, false)
	ciphertext := mustEncryptCaesar(t, 7, jobPlaintext)

	job, err := env.manager.Submit(context.Background(), "caesar", ciphertext)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	env.manager.process(context.Background(), task{id: job.ID, cipher: "caesar", ciphertext: ciphertext})

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "job.crack" {
		t.Errorf("unexpected span name %q", span.Name())
	}

	attrs := make(map[string]string)
	for _, attr := range span.Attributes() {
		attrs[string(attr.Key)] = attr.Value.Emit()
	}
	if attrs[telemetry.CipherNameKey] != "caesar" {
		t.Errorf("expected cipher attribute caesar, got %q", attrs[telemetry.CipherNameKey])
	}
	if attrs[telemetry.JobStatusKey] != store.JobDone.String() {
		t.Errorf("expected status attribute %s, got %q", store.JobDone, attrs[telemetry.JobStatusKey])
	}
	if attrs[telemetry.JobIDKey] != job.ID {
		t.Errorf("expected job id attribute %s, got %q", job.ID, attrs[telemetry.JobIDKey])
	}
}

func TestRetentionPurgesOldJobs(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 1, QueueSize: 8, Timeout: time.Minute, Retention: 24 * time.Hour}, false)
	ciphertext := mustEncryptCaesar(t, 7, jobPlaintext)

	old, err := env.manager.Submit(context.Background(), "caesar", ciphertext)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if err := env.store.MarkDone(context.Background(), old.ID, nil, time.Now().Add(-48*time.Hour).UTC()); err != nil {
		t.Fatalf("MarkDone() error: %v", err)
	}

	fresh, err := env.manager.Submit(context.Background(), "caesar", ciphertext+"X")
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if err := env.store.MarkDone(context.Background(), fresh.ID, nil, time.Now().UTC()); err != nil {
		t.Fatalf("MarkDone() error: %v", err)
	}

	env.manager.purgeExpired(context.Background())

	if _, err := env.manager.Get(context.Background(), old.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(old) error = %v, want ErrNotFound", err)
	}
	if _, err := env.manager.Get(context.Background(), fresh.ID); err != nil {
		t.Errorf("Get(fresh) error = %v, want kept", err)
	}
}
