// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/codes"

	"github.com/kryptoslab/kryptos/internal/crack"
	"github.com/kryptoslab/kryptos/internal/jobs"
	"github.com/kryptoslab/kryptos/internal/metrics"
	"github.com/kryptoslab/kryptos/internal/store"
	"github.com/kryptoslab/kryptos/internal/telemetry"
)

type crackRequest struct {
	Cipher     string `json:"cipher,omitempty"`
	Ciphertext string `json:"ciphertext"`
	Async      bool   `json:"async,omitempty"`
}

type crackResponse struct {
	Cipher     string            `json:"cipher"`
	Candidates []crack.Candidate `json:"candidates"`
	DurationMS int64             `json:"duration_ms"`
}

type jobResponse struct {
	Job *store.Job `json:"job"`
}

// handleCrack runs a ciphertext-only attack. Fast breakers answer inline;
// the substitution hill climb always goes through the job queue, as does any
// request that asks for async explicitly.
func (s *Server) handleCrack(w http.ResponseWriter, r *http.Request) {
	var req crackRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Ciphertext == "" {
		writeBadRequest(w, "ciphertext is required")
		return
	}
	if err := s.checkTextLength(req.Ciphertext); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	cipherName := req.Cipher
	if cipherName == "" {
		cipherName = "auto"
	}

	if req.Async || cipherName == "substitution" {
		s.submitCrackJob(w, r, cipherName, req.Ciphertext)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Jobs.Timeout)
	defer cancel()

	ctx, span := telemetry.Tracer("kryptos/api").Start(ctx, "crack."+cipherName)
	defer span.End()

	start := time.Now()
	candidates, err := jobs.RunBreaker(ctx, cipherName, req.Ciphertext)
	duration := time.Since(start)
	span.SetAttributes(telemetry.CrackAttributes(cipherName, len(candidates))...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.IncCrack(cipherName, false)
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusGatewayTimeout, "attack timed out, retry with async set")
			return
		}
		writeError(w, statusForCrackError(err), err.Error())
		return
	}
	metrics.IncCrack(cipherName, true)
	metrics.ObserveCrackDuration(cipherName, duration)

	writeJSON(w, http.StatusOK, crackResponse{
		Cipher:     cipherName,
		Candidates: candidates,
		DurationMS: duration.Milliseconds(),
	})
}

func (s *Server) submitCrackJob(w http.ResponseWriter, r *http.Request, cipherName, ciphertext string) {
	if s.jobs == nil {
		writeServiceUnavailable(w, "job queue not available")
		return
	}
	job, err := s.jobs.Submit(r.Context(), cipherName, ciphertext)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, jobResponse{Job: job})
	case errors.Is(err, jobs.ErrUnknownCipher):
		writeBadRequest(w, err.Error())
	case errors.Is(err, jobs.ErrQueueFull):
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusTooManyRequests, "job queue full, retry later")
	default:
		s.logger.Error().Err(err).Msg("job submission failed")
		writeError(w, http.StatusInternalServerError, "job submission failed")
	}
}

type jobListResponse struct {
	Jobs   []store.Job `json:"jobs"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func (s *Server) handleJobList(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		writeServiceUnavailable(w, "job queue not available")
		return
	}
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	list, total, err := s.jobs.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("job listing failed")
		writeError(w, http.StatusInternalServerError, "job listing failed")
		return
	}
	writeJSON(w, http.StatusOK, jobListResponse{Jobs: list, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleJobGet(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		writeServiceUnavailable(w, "job queue not available")
		return
	}
	id := chi.URLParam(r, "id")
	job, err := s.jobs.Get(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, jobResponse{Job: job})
	case errors.Is(err, jobs.ErrNotFound):
		writeNotFound(w, "job not found")
	default:
		s.logger.Error().Err(err).Str("job_id", id).Msg("job lookup failed")
		writeError(w, http.StatusInternalServerError, "job lookup failed")
	}
}

func (s *Server) handleJobCancel(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		writeServiceUnavailable(w, "job queue not available")
		return
	}
	id := chi.URLParam(r, "id")
	err := s.jobs.Cancel(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "canceling"})
	case errors.Is(err, jobs.ErrNotFound):
		writeNotFound(w, "job not found")
	case errors.Is(err, jobs.ErrFinished):
		writeConflict(w, "job already finished")
	default:
		s.logger.Error().Err(err).Str("job_id", id).Msg("job cancel failed")
		writeError(w, http.StatusInternalServerError, "job cancel failed")
	}
}

// handleJobDelete cancels an active job, or removes the record of a
// finished one.
func (s *Server) handleJobDelete(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		writeServiceUnavailable(w, "job queue not available")
		return
	}
	id := chi.URLParam(r, "id")

	err := s.jobs.Cancel(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "canceling"})
		return
	case errors.Is(err, jobs.ErrNotFound):
		writeNotFound(w, "job not found")
		return
	case errors.Is(err, jobs.ErrFinished):
		// Terminal job, fall through to deleting the record.
	default:
		s.logger.Error().Err(err).Str("job_id", id).Msg("job delete failed")
		writeError(w, http.StatusInternalServerError, "job delete failed")
		return
	}

	if err := s.jobs.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, jobs.ErrNotFound):
			writeNotFound(w, "job not found")
		case errors.Is(err, jobs.ErrActive):
			writeConflict(w, "job still active")
		default:
			s.logger.Error().Err(err).Str("job_id", id).Msg("job delete failed")
			writeError(w, http.StatusInternalServerError, "job delete failed")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
