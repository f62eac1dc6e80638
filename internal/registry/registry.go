// Package registry loads the configured models once at startup and holds
// the result. The Registry is fully built before the server accepts
// requests and never changes afterwards, so concurrent readers need no
// locking.
package registry

import (
	"time"

	"github.com/rs/zerolog"

	"embedd/internal/catalog"
	"embedd/internal/encoder"
)

// LoadedModel owns the inference capability for one canonical id.
type LoadedModel struct {
	ID  string
	enc encoder.Encoder
	dim int
}

// Dimension returns the model's fixed embedding dimensionality.
func (m *LoadedModel) Dimension() int { return m.dim }

// Encode runs the underlying encoder. The call is synchronous and
// CPU-bound; callers offload it via the executor.
func (m *LoadedModel) Encode(texts []string) ([][]float32, error) {
	return m.enc.Encode(texts)
}

// LoadFailure records why a requested model could not be constructed.
type LoadFailure struct {
	ID     string
	Reason string
}

type entry struct {
	model    *LoadedModel
	failure  *LoadFailure
	loadTime time.Duration
}

// Registry maps canonical id -> loaded model or load failure. Read-only
// after Load returns.
type Registry struct {
	order   []string
	entries map[string]entry
}

// Load attempts to construct every model the catalog requests, in
// declaration order. A failure while loading one model is logged and
// recorded; it never aborts the remaining loads or the process. A
// registry where every load failed is still valid: the service starts
// degraded and dispatch reports each model as unavailable.
func Load(log zerolog.Logger, cat catalog.Catalog, open encoder.Opener) *Registry {
	ids := cat.Requested()
	log.Info().Strs("models", ids).Msgf("loading %d models", len(ids))

	reg := &Registry{order: ids, entries: make(map[string]entry, len(ids))}
	loaded := 0
	for _, id := range ids {
		start := time.Now()
		enc, err := open(id)
		dur := time.Since(start)
		if err != nil {
			log.Error().Str("model", id).Err(err).Msg("model load failed")
			reg.entries[id] = entry{
				failure:  &LoadFailure{ID: id, Reason: err.Error()},
				loadTime: dur,
			}
			continue
		}
		reg.entries[id] = entry{
			model:    &LoadedModel{ID: id, enc: enc, dim: enc.Dimension()},
			loadTime: dur,
		}
		loaded++
		log.Info().Str("model", id).Int("dimension", enc.Dimension()).
			Dur("dur", dur).Msg("model loaded")
	}

	if loaded == 0 && len(ids) > 0 {
		log.Warn().Msg("no models loaded; every request will fail until an operator intervenes")
	} else if loaded < len(ids) {
		log.Warn().Msgf("model loading finished degraded: %d/%d loaded", loaded, len(ids))
	} else {
		log.Info().Msgf("model loading finished: %d/%d loaded", loaded, len(ids))
	}
	return reg
}

// Lookup returns the loaded model for a canonical id, or the recorded
// failure if loading did not succeed. ok is false when the id was never
// requested at all.
func (r *Registry) Lookup(id string) (*LoadedModel, *LoadFailure, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, nil, false
	}
	return e.model, e.failure, true
}

// Loaded returns the canonical ids that loaded successfully, in catalog
// order.
func (r *Registry) Loaded() []string {
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if r.entries[id].model != nil {
			out = append(out, id)
		}
	}
	return out
}

// Entries reports per-model state in catalog order, for /status.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		st := Entry{ID: id, LoadTime: e.loadTime}
		if e.model != nil {
			st.Ready = true
			st.Dimension = e.model.dim
		} else if e.failure != nil {
			st.Reason = e.failure.Reason
		}
		out = append(out, st)
	}
	return out
}

// Entry is a read-only projection of one registry slot.
type Entry struct {
	ID        string
	Ready     bool
	Dimension int
	Reason    string
	LoadTime  time.Duration
}

// Close releases every loaded encoder. Called once at shutdown.
func (r *Registry) Close() {
	for _, id := range r.order {
		if e := r.entries[id]; e.model != nil {
			_ = e.model.enc.Close()
		}
	}
}
