//go:build !llama

package encoder

import "embedd/internal/catalog"

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = false

// DefaultOpener returns the encoder factory for builds without the
// 'llama' tag: a deterministic hashing encoder sized from the catalog's
// dimension table. This keeps default builds and CI CGO-free while
// preserving the full service contract (fixed dimension, determinism,
// index alignment).
func DefaultOpener(opts Options) Opener {
	return func(id string) (Encoder, error) {
		return NewHash(id, catalog.Dimension(id)), nil
	}
}
