package encoder

import (
	"math"
	"testing"
)

func TestHashEncoderDimension(t *testing.T) {
	e := NewHash("m", 384)
	if e.Dimension() != 384 {
		t.Fatalf("dimension=%d", e.Dimension())
	}
	vecs, err := e.Encode([]string{"hello world"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 384 {
		t.Fatalf("unexpected shape: %d x %d", len(vecs), len(vecs[0]))
	}
}

func TestHashEncoderBatchAlignment(t *testing.T) {
	e := NewHash("m", 64)
	in := []string{"a", "b", "c"}
	vecs, err := e.Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(vecs) != len(in) {
		t.Fatalf("got %d vectors for %d inputs", len(vecs), len(in))
	}
	for i, v := range vecs {
		if len(v) != 64 {
			t.Fatalf("vector %d has dimension %d", i, len(v))
		}
	}
}

func TestHashEncoderDeterministic(t *testing.T) {
	e := NewHash("m", 128)
	a, _ := e.Encode([]string{"the quick brown fox"})
	b, _ := e.Encode([]string{"the quick brown fox"})
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[0][i], b[0][i])
		}
	}
}

func TestHashEncoderModelsDisagree(t *testing.T) {
	a, _ := NewHash("model-a", 64).Encode([]string{"hello there"})
	b, _ := NewHash("model-b", 64).Encode([]string{"hello there"})
	same := true
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("distinct models produced identical vectors")
	}
}

func TestHashEncoderNormalized(t *testing.T) {
	vecs, _ := NewHash("m", 256).Encode([]string{"some text with several words in it"})
	var sum float64
	for _, v := range vecs[0] {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-4 {
		t.Fatalf("norm^2=%v, want 1", sum)
	}
}

func TestHashEncoderEmptyText(t *testing.T) {
	vecs, err := NewHash("m", 32).Encode([]string{"   "})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(vecs[0]) != 32 {
		t.Fatalf("dimension=%d", len(vecs[0]))
	}
}
