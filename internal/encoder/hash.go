package encoder

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// hashEncoder is a deterministic feature-hashing encoder. It projects
// token unigrams and bigrams onto a fixed-size vector and L2-normalizes
// the result. It carries no learned weights, so it is only a stand-in for
// a real model, but it honors every contract the service relies on:
// fixed dimensionality, index alignment, and bit-for-bit determinism.
type hashEncoder struct {
	id  string
	dim int
}

// NewHash returns a deterministic encoder with the given dimensionality.
func NewHash(id string, dim int) Encoder {
	if dim <= 0 {
		dim = 1
	}
	return &hashEncoder{id: id, dim: dim}
}

func (e *hashEncoder) Dimension() int { return e.dim }

func (e *hashEncoder) Encode(texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.encodeOne(t)
	}
	return out, nil
}

func (e *hashEncoder) Close() error { return nil }

func (e *hashEncoder) encodeOne(text string) []float32 {
	vec := make([]float32, e.dim)
	toks := tokenize(text)
	for i, tok := range toks {
		e.add(vec, tok)
		if i+1 < len(toks) {
			e.add(vec, tok+" "+toks[i+1])
		}
	}
	normalize(vec)
	return vec
}

// add folds one feature into the vector: the hash picks the bucket, a
// second hash bit picks the sign. The model id is part of the feature so
// different "models" disagree with each other like real ones would.
func (e *hashEncoder) add(vec []float32, feature string) {
	h := fnv.New64a()
	h.Write([]byte(e.id))
	h.Write([]byte{0})
	h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dim))
	if sum&(1<<63) != 0 {
		vec[idx]--
	} else {
		vec[idx]++
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
}
