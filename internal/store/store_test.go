// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kryptoslab/kryptos/internal/crack"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestJob(id string) Job {
	return Job{
		ID:         id,
		Cipher:     "caesar",
		Ciphertext: "WKLV LV D WHVW",
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestCreateAndGetJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job := newTestJob("job-1")
	if err := s.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error: %v", err)
	}

	got, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetJob() returned nil for existing job")
	}
	if got.Status != JobQueued {
		t.Errorf("Status = %s, want queued", got.Status)
	}
	if got.Cipher != "caesar" {
		t.Errorf("Cipher = %s, want caesar", got.Cipher)
	}
	if got.Ciphertext != job.Ciphertext {
		t.Errorf("Ciphertext = %q, want %q", got.Ciphertext, job.Ciphertext)
	}
	if !got.CreatedAt.Equal(job.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, job.CreatedAt)
	}
	if got.StartedAt != nil || got.FinishedAt != nil {
		t.Error("expected nil StartedAt/FinishedAt for queued job")
	}
}

func TestGetJobNotFound(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetJob(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetJob() error: %v", err)
	}
	if got != nil {
		t.Errorf("GetJob() = %+v, want nil for missing job", got)
	}
}

func TestJobLifecycleDone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := s.CreateJob(ctx, newTestJob("job-1")); err != nil {
		t.Fatalf("CreateJob() error: %v", err)
	}
	if err := s.MarkRunning(ctx, "job-1", now); err != nil {
		t.Fatalf("MarkRunning() error: %v", err)
	}

	candidates := []crack.Candidate{
		{Cipher: "caesar", Key: "3", Plaintext: "THIS IS A TEST", Score: -18.4},
	}
	if err := s.MarkDone(ctx, "job-1", candidates, now.Add(time.Second)); err != nil {
		t.Fatalf("MarkDone() error: %v", err)
	}

	got, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob() error: %v", err)
	}
	if got.Status != JobDone {
		t.Errorf("Status = %s, want done", got.Status)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(now) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, now)
	}
	if got.FinishedAt == nil {
		t.Fatal("FinishedAt is nil after MarkDone")
	}
	if len(got.Candidates) != 1 {
		t.Fatalf("len(Candidates) = %d, want 1", len(got.Candidates))
	}
	if got.Candidates[0].Key != "3" || got.Candidates[0].Plaintext != "THIS IS A TEST" {
		t.Errorf("unexpected candidate: %+v", got.Candidates[0])
	}
}

func TestJobLifecycleFailed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := s.CreateJob(ctx, newTestJob("job-1")); err != nil {
		t.Fatalf("CreateJob() error: %v", err)
	}
	if err := s.MarkRunning(ctx, "job-1", now); err != nil {
		t.Fatalf("MarkRunning() error: %v", err)
	}
	if err := s.MarkFailed(ctx, "job-1", "text too short", now.Add(time.Second)); err != nil {
		t.Fatalf("MarkFailed() error: %v", err)
	}

	got, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob() error: %v", err)
	}
	if got.Status != JobFailed {
		t.Errorf("Status = %s, want failed", got.Status)
	}
	if got.Error != "text too short" {
		t.Errorf("Error = %q, want 'text too short'", got.Error)
	}
}

func TestMarkCanceledOnlyAffectsActiveJobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := s.CreateJob(ctx, newTestJob("job-1")); err != nil {
		t.Fatalf("CreateJob() error: %v", err)
	}
	if err := s.MarkCanceled(ctx, "job-1", now); err != nil {
		t.Fatalf("MarkCanceled() error: %v", err)
	}

	got, _ := s.GetJob(ctx, "job-1")
	if got.Status != JobCanceled {
		t.Errorf("Status = %s, want canceled", got.Status)
	}

	// A finished job must not be re-canceled.
	if err := s.CreateJob(ctx, newTestJob("job-2")); err != nil {
		t.Fatalf("CreateJob() error: %v", err)
	}
	if err := s.MarkDone(ctx, "job-2", nil, now); err != nil {
		t.Fatalf("MarkDone() error: %v", err)
	}
	if err := s.MarkCanceled(ctx, "job-2", now); err != nil {
		t.Fatalf("MarkCanceled() error: %v", err)
	}

	got, _ = s.GetJob(ctx, "job-2")
	if got.Status != JobDone {
		t.Errorf("Status = %s, want done to remain done", got.Status)
	}
}

func TestMarkRunningRequiresQueued(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := s.CreateJob(ctx, newTestJob("job-1")); err != nil {
		t.Fatalf("CreateJob() error: %v", err)
	}
	if err := s.MarkCanceled(ctx, "job-1", now); err != nil {
		t.Fatalf("MarkCanceled() error: %v", err)
	}
	if err := s.MarkRunning(ctx, "job-1", now); err != nil {
		t.Fatalf("MarkRunning() error: %v", err)
	}

	got, _ := s.GetJob(ctx, "job-1")
	if got.Status != JobCanceled {
		t.Errorf("Status = %s, want canceled job to stay canceled", got.Status)
	}
}

func TestListJobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i, id := range []string{"job-a", "job-b", "job-c"} {
		job := newTestJob(id)
		job.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := s.CreateJob(ctx, job); err != nil {
			t.Fatalf("CreateJob(%s) error: %v", id, err)
		}
	}

	jobs, total, err := s.ListJobs(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListJobs() error: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2", len(jobs))
	}
	// Newest first.
	if jobs[0].ID != "job-c" || jobs[1].ID != "job-b" {
		t.Errorf("unexpected order: %s, %s", jobs[0].ID, jobs[1].ID)
	}

	jobs, _, err = s.ListJobs(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListJobs() offset error: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "job-a" {
		t.Errorf("unexpected page: %+v", jobs)
	}
}

func TestDeleteJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateJob(ctx, newTestJob("job-1")); err != nil {
		t.Fatalf("CreateJob() error: %v", err)
	}

	deleted, err := s.DeleteJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("DeleteJob() error: %v", err)
	}
	if !deleted {
		t.Error("DeleteJob() = false, want true")
	}

	deleted, err = s.DeleteJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("DeleteJob() second call error: %v", err)
	}
	if deleted {
		t.Error("DeleteJob() = true for missing job, want false")
	}
}

func TestPurgeFinishedBefore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := s.CreateJob(ctx, newTestJob("old-done")); err != nil {
		t.Fatalf("CreateJob() error: %v", err)
	}
	if err := s.MarkDone(ctx, "old-done", nil, now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("MarkDone() error: %v", err)
	}

	if err := s.CreateJob(ctx, newTestJob("fresh-done")); err != nil {
		t.Fatalf("CreateJob() error: %v", err)
	}
	if err := s.MarkDone(ctx, "fresh-done", nil, now); err != nil {
		t.Fatalf("MarkDone() error: %v", err)
	}

	if err := s.CreateJob(ctx, newTestJob("still-queued")); err != nil {
		t.Fatalf("CreateJob() error: %v", err)
	}

	purged, err := s.PurgeFinishedBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeFinishedBefore() error: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	if got, _ := s.GetJob(ctx, "old-done"); got != nil {
		t.Error("old-done should have been purged")
	}
	if got, _ := s.GetJob(ctx, "fresh-done"); got == nil {
		t.Error("fresh-done should remain")
	}
	if got, _ := s.GetJob(ctx, "still-queued"); got == nil {
		t.Error("still-queued should remain")
	}
}

func TestJobStatusTerminal(t *testing.T) {
	terminal := []JobStatus{JobDone, JobFailed, JobCanceled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}
	for _, s := range []JobStatus{JobQueued, JobRunning} {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
}
