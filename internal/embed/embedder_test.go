package embed

import (
	"context"
	"fmt"
	"testing"
)

// countingEmbedder counts backend calls per key.
type countingEmbedder struct {
	calls map[string]int
	fail  bool
}

func (e *countingEmbedder) Name() string { return "counting" }

func (e *countingEmbedder) Embed(ctx context.Context, text, pos string) ([]float32, error) {
	if e.calls == nil {
		e.calls = make(map[string]int)
	}
	e.calls[text+"|"+pos]++
	if e.fail {
		return nil, fmt.Errorf("backend down")
	}
	return []float32{1, 2, 3}, nil
}

func TestCached_HitsBackendOnce(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCached(inner)

	for i := 0; i < 3; i++ {
		vec, err := cached.Embed(context.Background(), "nước", "N")
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		if len(vec) != 3 {
			t.Fatalf("unexpected vector: %v", vec)
		}
	}
	if got := inner.calls["nước|N"]; got != 1 {
		t.Errorf("backend called %d times, want 1", got)
	}
}

func TestCached_KeyIncludesPOS(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCached(inner)

	_, _ = cached.Embed(context.Background(), "bảo", "N")
	_, _ = cached.Embed(context.Background(), "bảo", "V")

	if len(inner.calls) != 2 {
		t.Errorf("(text, pos) pairs must cache separately, calls: %v", inner.calls)
	}
}

func TestCached_FailuresNotCached(t *testing.T) {
	inner := &countingEmbedder{fail: true}
	cached := NewCached(inner)

	if _, err := cached.Embed(context.Background(), "nước", "N"); err == nil {
		t.Fatal("expected backend error")
	}
	inner.fail = false
	if _, err := cached.Embed(context.Background(), "nước", "N"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if got := inner.calls["nước|N"]; got != 2 {
		t.Errorf("backend called %d times, want 2 (failure retried)", got)
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero([]float32{0, 0, 0}) {
		t.Error("all-zero vector must report zero")
	}
	if IsZero([]float32{0, 0.1}) {
		t.Error("non-zero vector reported as zero")
	}
	if !IsZero(nil) {
		t.Error("empty vector counts as zero")
	}
}
