// Package service coordinates alias resolution, registry lookup and
// inference dispatch, and shapes results for the HTTP layer.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"embedd/internal/catalog"
	"embedd/internal/executor"
	"embedd/internal/registry"
	"embedd/pkg/types"
)

// Service owns the immutable registry and the inference worker pool. It
// has no per-request mutable state, so one instance serves all requests.
type Service struct {
	log   zerolog.Logger
	reg   *registry.Registry
	pool  *executor.Pool
	start time.Time
}

// New wires the service from its startup-built collaborators.
func New(log zerolog.Logger, reg *registry.Registry, pool *executor.Pool) *Service {
	return &Service{log: log, reg: reg, pool: pool, start: time.Now()}
}

// Result is one completed embedding request, index-aligned with the
// normalized input.
type Result struct {
	// RequestedID is the id the client sent, aliases included.
	RequestedID string
	// CanonicalID is the registry key the request resolved to.
	CanonicalID string
	// Vectors holds one embedding per input text, in input order.
	Vectors [][]float32
	// Usage is the approximate token accounting for the inputs.
	Usage types.Usage
}

// Embed resolves the requested id, dispatches the batch to the worker
// pool, and returns index-aligned vectors. Inputs must already be
// schema-valid; the HTTP layer rejects malformed bodies before this
// point.
func (s *Service) Embed(ctx context.Context, requestedID string, inputs []string) (Result, error) {
	canonical := catalog.Resolve(requestedID)
	model, failure, known := s.reg.Lookup(canonical)
	if model == nil {
		// Same client-facing error either way; only logs tell the two
		// causes apart.
		evt := s.log.Warn().Str("model", requestedID).Str("canonical", canonical)
		if !known {
			evt.Str("cause", "never_configured").Msg("model not available")
		} else {
			evt.Str("cause", "load_failed").Str("reason", failure.Reason).Msg("model not available")
		}
		return Result{}, ErrModelNotAvailable(requestedID)
	}

	start := time.Now()
	var vectors [][]float32
	err := s.pool.Run(ctx, func() error {
		var encErr error
		vectors, encErr = model.Encode(inputs)
		return encErr
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Abandoned while still queued; nothing ran.
			return Result{}, err
		}
		s.log.Error().Str("model", canonical).Str("cause", truncate(err.Error(), 200)).
			Msg("inference failed")
		return Result{}, ErrInference(canonical, err)
	}

	s.log.Info().Str("model", canonical).Int("batch", len(inputs)).
		Dur("dur", time.Since(start)).Msg("embeddings generated")
	return Result{
		RequestedID: requestedID,
		CanonicalID: canonical,
		Vectors:     vectors,
		Usage:       estimateUsage(inputs),
	}, nil
}

// Loaded returns the canonical ids that loaded successfully.
func (s *Service) Loaded() []string { return s.reg.Loaded() }

// Ready reports whether at least one model is available.
func (s *Service) Ready() bool { return len(s.reg.Loaded()) > 0 }

// ListModels describes the loaded models for GET /models.
func (s *Service) ListModels() []types.ModelInfo {
	entries := s.reg.Entries()
	out := make([]types.ModelInfo, 0, len(entries))
	for _, e := range entries {
		if e.Ready {
			out = append(out, types.ModelInfo{ID: e.ID, Dimension: e.Dimension})
		}
	}
	return out
}

// Status builds the detailed status response for GET /status.
func (s *Service) Status() types.StatusResponse {
	entries := s.reg.Entries()
	models := make([]types.ModelStatus, 0, len(entries))
	for _, e := range entries {
		st := types.ModelStatus{ID: e.ID, LoadMillis: e.LoadTime.Milliseconds()}
		if e.Ready {
			st.State = "ready"
			st.Dimension = e.Dimension
		} else {
			st.State = "failed"
			st.Reason = e.Reason
		}
		models = append(models, st)
	}
	now := time.Now()
	return types.StatusResponse{
		Models:         models,
		Workers:        s.pool.Workers(),
		QueueLen:       s.pool.QueueLen(),
		QueueDepth:     s.pool.QueueDepth(),
		UptimeSeconds:  int64(now.Sub(s.start).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
