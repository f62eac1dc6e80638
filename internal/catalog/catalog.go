// Package catalog holds the configured model set and the compiled-in
// alias table mapping foreign model identifiers to canonical ones.
package catalog

// aliases maps foreign (OpenAI-style) model ids to the canonical ids the
// registry keys on. Several foreign names may map to the same model.
var aliases = map[string]string{
	"text-embedding-ada-002": "sentence-transformers/all-MiniLM-L6-v2",
	"text-embedding-3-small": "BAAI/bge-m3",
	"text-embedding-3-large": "BAAI/bge-m3",
}

// knownDimensions records embedding dimensionality for models we know how
// to serve. Ids absent from this table fall back to defaultDimension.
var knownDimensions = map[string]int{
	"sentence-transformers/all-MiniLM-L6-v2":  384,
	"sentence-transformers/all-mpnet-base-v2": 768,
	"BAAI/bge-m3":                             1024,
	"BAAI/bge-small-en":                       384,
}

const defaultDimension = 384

// DefaultModels is used when configuration names no models at all.
var DefaultModels = []string{
	"BAAI/bge-m3",
	"sentence-transformers/all-MiniLM-L6-v2",
}

// Resolve maps a foreign alias to its canonical id. Ids that are already
// canonical, or simply unknown, pass through unchanged; rejection of
// unknown ids happens at dispatch, not here.
func Resolve(id string) string {
	if canonical, ok := aliases[id]; ok {
		return canonical
	}
	return id
}

// Dimension reports the embedding dimensionality for a canonical id.
func Dimension(id string) int {
	if d, ok := knownDimensions[id]; ok {
		return d
	}
	return defaultDimension
}

// Catalog is the immutable set of model ids requested at startup.
type Catalog struct {
	requested []string
}

// New builds a Catalog from the configured id list, deduplicating while
// preserving declaration order. An empty list falls back to DefaultModels.
func New(ids []string) Catalog {
	if len(ids) == 0 {
		ids = DefaultModels
	}
	seen := make(map[string]struct{}, len(ids))
	requested := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		requested = append(requested, id)
	}
	return Catalog{requested: requested}
}

// Requested returns the canonical ids to load, in declaration order.
func (c Catalog) Requested() []string {
	out := make([]string, len(c.requested))
	copy(out, c.requested)
	return out
}
