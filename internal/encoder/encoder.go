// Package encoder abstracts the embedding computation behind a narrow
// capability interface so the rest of the service never depends on a
// concrete inference library.
package encoder

// Encoder produces fixed-size embedding vectors for text. Implementations
// must be safe for concurrent use and must return vectors of exactly
// Dimension() length.
type Encoder interface {
	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
	// Encode returns one vector per input text, index-aligned.
	Encode(texts []string) ([][]float32, error)
	// Close releases resources owned by the encoder.
	Close() error
}

// Options carries startup-time settings shared by encoder constructors.
type Options struct {
	// ModelsDir is where on-disk model weights live (llama builds).
	ModelsDir string
	// Device selects the inference device, e.g. "cpu" or "cuda".
	Device string
	// ContextSize is the token context for llama-backed encoders.
	ContextSize int
	// Threads bounds CPU threads per encode call; 0 lets the backend pick.
	Threads int
}

// Opener constructs an Encoder for one canonical model id. The registry
// calls it once per requested model at startup.
type Opener func(id string) (Encoder, error)

// Backend names the encoder implementation this binary was built with.
func Backend() string {
	if llamaBuilt {
		return "llama"
	}
	return "hash"
}
