//go:build llama

package encoder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

const defaultContextSize = 512

// DefaultOpener returns the llama.cpp-backed encoder factory. Model
// weights are expected as GGUF files under opts.ModelsDir, named after
// the last segment of the canonical id (e.g. "BAAI/bge-m3" -> bge-m3.gguf).
func DefaultOpener(opts Options) Opener {
	return func(id string) (Encoder, error) {
		path := ggufPath(opts.ModelsDir, id)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("model weights not found at %s: %w", path, err)
		}
		mo := []llama.ModelOption{
			llama.SetContext(ctxSize(opts.ContextSize)),
			llama.EnableEmbeddings,
		}
		if strings.EqualFold(opts.Device, "cuda") || strings.EqualFold(opts.Device, "gpu") {
			mo = append(mo, llama.SetGPULayers(-1))
		}
		m, err := llama.New(path, mo...)
		if err != nil {
			return nil, fmt.Errorf("llama load %s: %w", path, err)
		}
		// Dimension is fixed per model; probe it once at load time so the
		// registry can record it and every later call can trust it.
		probe, err := m.Embeddings(" ")
		if err != nil {
			m.Free()
			return nil, fmt.Errorf("llama embeddings probe %s: %w", id, err)
		}
		return &llamaEncoder{id: id, model: m, dim: len(probe), threads: opts.Threads}, nil
	}
}

// llamaEncoder wraps a loaded llama.cpp model. The binding is not safe
// for concurrent calls on one model, so encodes are serialized here.
type llamaEncoder struct {
	id      string
	mu      sync.Mutex
	model   *llama.LLama
	dim     int
	threads int
}

func (e *llamaEncoder) Dimension() int { return e.dim }

func (e *llamaEncoder) Encode(texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil, fmt.Errorf("encoder %s is closed", e.id)
	}
	var po []llama.PredictOption
	if e.threads > 0 {
		po = append(po, llama.SetThreads(e.threads))
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.model.Embeddings(t, po...)
		if err != nil {
			return nil, fmt.Errorf("embeddings for input %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func (e *llamaEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	return nil
}

func ggufPath(dir, id string) string {
	base := id
	if i := strings.LastIndex(id, "/"); i >= 0 {
		base = id[i+1:]
	}
	return filepath.Join(dir, base+".gguf")
}

func ctxSize(n int) int {
	if n <= 0 {
		return defaultContextSize
	}
	return n
}
