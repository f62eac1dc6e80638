package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embedd/internal/catalog"
	"embedd/internal/encoder"
	"embedd/internal/executor"
	"embedd/internal/registry"
)

type brokenEncoder struct{ dim int }

func (e brokenEncoder) Dimension() int { return e.dim }
func (e brokenEncoder) Encode(texts []string) ([][]float32, error) {
	return nil, errors.New("malformed input")
}
func (e brokenEncoder) Close() error { return nil }

type panicEncoder struct{ dim int }

func (e panicEncoder) Dimension() int { return e.dim }
func (e panicEncoder) Encode(texts []string) ([][]float32, error) {
	panic("index out of range")
}
func (e panicEncoder) Close() error { return nil }

func newService(t *testing.T, ids []string, open encoder.Opener) *Service {
	t.Helper()
	pool := executor.NewPool(2, 8)
	t.Cleanup(pool.Close)
	reg := registry.Load(zerolog.Nop(), catalog.New(ids), open)
	t.Cleanup(reg.Close)
	return New(zerolog.Nop(), reg, pool)
}

func hashOpener(id string) (encoder.Encoder, error) {
	return encoder.NewHash(id, catalog.Dimension(id)), nil
}

func TestEmbedIndexAlignment(t *testing.T) {
	svc := newService(t, []string{"sentence-transformers/all-MiniLM-L6-v2"}, hashOpener)
	res, err := svc.Embed(context.Background(), "sentence-transformers/all-MiniLM-L6-v2", []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, res.Vectors, 2)
	resp := NativeResponse(res)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 0, resp.Data[0].Index)
	assert.Equal(t, 1, resp.Data[1].Index)
}

func TestEmbedDimension384(t *testing.T) {
	svc := newService(t, []string{"sentence-transformers/all-MiniLM-L6-v2"}, hashOpener)
	res, err := svc.Embed(context.Background(), "sentence-transformers/all-MiniLM-L6-v2",
		[]string{"The quick brown fox jumps over the lazy dog."})
	require.NoError(t, err)
	require.Len(t, res.Vectors, 1)
	assert.Len(t, res.Vectors[0], 384)
}

func TestEmbedDeterministic(t *testing.T) {
	svc := newService(t, []string{"BAAI/bge-m3"}, hashOpener)
	a, err := svc.Embed(context.Background(), "BAAI/bge-m3", []string{"same text"})
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "BAAI/bge-m3", []string{"same text"})
	require.NoError(t, err)
	assert.InDeltaSlice(t, a.Vectors[0], b.Vectors[0], 1e-6)
}

func TestEmbedResolvesAlias(t *testing.T) {
	svc := newService(t, []string{"sentence-transformers/all-MiniLM-L6-v2"}, hashOpener)
	res, err := svc.Embed(context.Background(), "text-embedding-ada-002", []string{"hi"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-ada-002", res.RequestedID)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", res.CanonicalID)
	// Alias requests run against the canonical model's dimensionality.
	assert.Len(t, res.Vectors[0], 384)
}

func TestEmbedUnknownModel(t *testing.T) {
	svc := newService(t, []string{"BAAI/bge-m3"}, hashOpener)
	_, err := svc.Embed(context.Background(), "non-existent-model", []string{"hi"})
	require.Error(t, err)
	assert.True(t, IsModelNotAvailable(err))
}

func TestEmbedLoadFailedModelSameErrorAsUnknown(t *testing.T) {
	svc := newService(t, []string{"BAAI/bge-m3"}, func(id string) (encoder.Encoder, error) {
		return nil, errors.New("download failed")
	})
	_, errFailed := svc.Embed(context.Background(), "BAAI/bge-m3", []string{"hi"})
	_, errUnknown := svc.Embed(context.Background(), "never-configured", []string{"hi"})
	require.Error(t, errFailed)
	require.Error(t, errUnknown)
	// Clients cannot tell "failed to load" from "never configured".
	assert.True(t, IsModelNotAvailable(errFailed))
	assert.True(t, IsModelNotAvailable(errUnknown))
}

func TestEmbedAllModelsFailedToLoad(t *testing.T) {
	svc := newService(t, []string{"a", "b"}, func(id string) (encoder.Encoder, error) {
		return nil, errors.New("no backend")
	})
	assert.False(t, svc.Ready())
	assert.Empty(t, svc.Loaded())
	_, err := svc.Embed(context.Background(), "a", []string{"hi"})
	assert.True(t, IsModelNotAvailable(err))
}

func TestEmbedPartialFailureIsolation(t *testing.T) {
	svc := newService(t, []string{"good", "bad"}, func(id string) (encoder.Encoder, error) {
		if id == "bad" {
			return nil, errors.New("boom")
		}
		return encoder.NewHash(id, 16), nil
	})
	_, err := svc.Embed(context.Background(), "bad", []string{"hi"})
	assert.True(t, IsModelNotAvailable(err))
	res, err := svc.Embed(context.Background(), "good", []string{"hi"})
	require.NoError(t, err)
	assert.Len(t, res.Vectors, 1)
}

func TestEmbedInferenceError(t *testing.T) {
	svc := newService(t, []string{"m"}, func(id string) (encoder.Encoder, error) {
		return brokenEncoder{dim: 4}, nil
	})
	_, err := svc.Embed(context.Background(), "m", []string{"hi"})
	require.Error(t, err)
	assert.True(t, IsInferenceError(err))
	assert.False(t, IsModelNotAvailable(err))
}

func TestEmbedPanicBecomesInferenceError(t *testing.T) {
	svc := newService(t, []string{"m"}, func(id string) (encoder.Encoder, error) {
		return panicEncoder{dim: 4}, nil
	})
	_, err := svc.Embed(context.Background(), "m", []string{"hi"})
	require.Error(t, err)
	assert.True(t, IsInferenceError(err))
	// The pool must still serve healthy models after a panic.
	_, err = svc.Embed(context.Background(), "m", []string{"hi"})
	assert.True(t, IsInferenceError(err))
}

func TestListModelsAndStatus(t *testing.T) {
	svc := newService(t, []string{"sentence-transformers/all-MiniLM-L6-v2", "bad"}, func(id string) (encoder.Encoder, error) {
		if id == "bad" {
			return nil, errors.New("boom")
		}
		return hashOpener(id)
	})
	models := svc.ListModels()
	require.Len(t, models, 1)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", models[0].ID)
	assert.Equal(t, 384, models[0].Dimension)

	st := svc.Status()
	require.Len(t, st.Models, 2)
	assert.Equal(t, "ready", st.Models[0].State)
	assert.Equal(t, "failed", st.Models[1].State)
	assert.Equal(t, "boom", st.Models[1].Reason)
	assert.Equal(t, 2, st.Workers)
	assert.Equal(t, 8, st.QueueDepth)
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsModelNotAvailable(ErrModelNotAvailable("x")))
	assert.False(t, IsModelNotAvailable(errors.New("x")))
	assert.True(t, IsInferenceError(ErrInference("x", errors.New("cause"))))
	assert.False(t, IsInferenceError(ErrModelNotAvailable("x")))
	assert.ErrorContains(t, ErrInference("m", errors.New("c")), "m")
}
