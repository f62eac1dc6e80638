package registry

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"embedd/internal/catalog"
	"embedd/internal/encoder"
)

// failOpener fails for ids present in bad, otherwise hands out a hashing
// encoder with a fixed dimension.
func failOpener(bad map[string]error) encoder.Opener {
	return func(id string) (encoder.Encoder, error) {
		if err, ok := bad[id]; ok {
			return nil, err
		}
		return encoder.NewHash(id, 8), nil
	}
}

func TestLoadAllSucceed(t *testing.T) {
	cat := catalog.New([]string{"m1", "m2"})
	reg := Load(zerolog.Nop(), cat, failOpener(nil))
	loaded := reg.Loaded()
	if len(loaded) != 2 || loaded[0] != "m1" || loaded[1] != "m2" {
		t.Fatalf("loaded=%v", loaded)
	}
	model, failure, ok := reg.Lookup("m1")
	if !ok || model == nil || failure != nil {
		t.Fatalf("lookup m1: model=%v failure=%v ok=%v", model, failure, ok)
	}
	if model.Dimension() != 8 {
		t.Fatalf("dimension=%d", model.Dimension())
	}
}

func TestLoadPartialFailureIsolated(t *testing.T) {
	cat := catalog.New([]string{"good", "broken", "also-good"})
	reg := Load(zerolog.Nop(), cat, failOpener(map[string]error{
		"broken": errors.New("weights corrupt"),
	}))
	loaded := reg.Loaded()
	if len(loaded) != 2 {
		t.Fatalf("loaded=%v", loaded)
	}
	model, failure, ok := reg.Lookup("broken")
	if !ok {
		t.Fatalf("failed model missing from registry")
	}
	if model != nil {
		t.Fatalf("failed model has a LoadedModel")
	}
	if failure == nil || failure.Reason != "weights corrupt" {
		t.Fatalf("failure=%v", failure)
	}
	// The failure must not affect the model loaded after it.
	if m, _, _ := reg.Lookup("also-good"); m == nil {
		t.Fatalf("model after the failed one did not load")
	}
}

func TestLoadAllFailStillBuildsRegistry(t *testing.T) {
	cat := catalog.New([]string{"a", "b"})
	reg := Load(zerolog.Nop(), cat, func(id string) (encoder.Encoder, error) {
		return nil, errors.New("no backend")
	})
	if got := reg.Loaded(); len(got) != 0 {
		t.Fatalf("loaded=%v", got)
	}
	// Every requested id is still present, as a failure.
	for _, id := range []string{"a", "b"} {
		if _, failure, ok := reg.Lookup(id); !ok || failure == nil {
			t.Fatalf("id %q not recorded as failure", id)
		}
	}
}

func TestLookupNeverRequested(t *testing.T) {
	reg := Load(zerolog.Nop(), catalog.New([]string{"m1"}), failOpener(nil))
	model, failure, ok := reg.Lookup("never-configured")
	if ok || model != nil || failure != nil {
		t.Fatalf("expected absent entry, got model=%v failure=%v ok=%v", model, failure, ok)
	}
}

func TestEntriesReportState(t *testing.T) {
	cat := catalog.New([]string{"ok", "bad"})
	reg := Load(zerolog.Nop(), cat, failOpener(map[string]error{"bad": errors.New("boom")}))
	entries := reg.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries=%v", entries)
	}
	if !entries[0].Ready || entries[0].Dimension != 8 {
		t.Fatalf("entry ok: %+v", entries[0])
	}
	if entries[1].Ready || entries[1].Reason != "boom" {
		t.Fatalf("entry bad: %+v", entries[1])
	}
}

func TestEncodeVectorsMatchDimension(t *testing.T) {
	reg := Load(zerolog.Nop(), catalog.New([]string{"m1"}), failOpener(nil))
	model, _, _ := reg.Lookup("m1")
	vecs, err := model.Encode([]string{"x", "y"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i, v := range vecs {
		if len(v) != model.Dimension() {
			t.Fatalf("vector %d dimension=%d, want %d", i, len(v), model.Dimension())
		}
	}
}
