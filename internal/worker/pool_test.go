package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vietfact/mintgraph/internal/model"
	"github.com/vietfact/mintgraph/internal/pipeline"
)

// echoRunner succeeds unless the claim starts with "fail".
type echoRunner struct{}

func (echoRunner) Run(ctx context.Context, contextText, claimText string) (*pipeline.Result, error) {
	if strings.HasPrefix(claimText, "fail") {
		return nil, fmt.Errorf("boom: %s", claimText)
	}
	return &pipeline.Result{}, nil
}

func makeSamples(claims ...string) []model.Sample {
	out := make([]model.Sample, len(claims))
	for i, c := range claims {
		out[i] = model.Sample{Context: "ctx", Claim: c}
	}
	return out
}

func TestPool_OrderPreserved(t *testing.T) {
	pool := NewPool(4, func() Runner { return echoRunner{} })

	in := makeSamples("c0", "c1", "c2", "c3", "c4", "c5", "c6", "c7")
	results := pool.Process(context.Background(), in)

	if len(results) != len(in) {
		t.Fatalf("expected %d results, got %d", len(in), len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("result %d has index %d", i, res.Index)
		}
		if res.Sample.Claim != in[i].Claim {
			t.Errorf("result %d carries claim %q, want %q", i, res.Sample.Claim, in[i].Claim)
		}
		if res.Err != nil {
			t.Errorf("result %d unexpectedly failed: %v", i, res.Err)
		}
	}
}

func TestPool_FailuresAreIsolated(t *testing.T) {
	pool := NewPool(2, func() Runner { return echoRunner{} })

	results := pool.Process(context.Background(), makeSamples("ok", "fail-1", "ok", "fail-2"))

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed != 2 {
		t.Errorf("expected exactly 2 failures, got %d", failed)
	}
}

func TestPool_EmptyInput(t *testing.T) {
	pool := NewPool(2, func() Runner { return echoRunner{} })
	if results := pool.Process(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.json")
	samples := []model.Sample{
		{Context: "ctx", Claim: "ok claim", Evidence: "ev", Label: "SUPPORTED"},
		{Context: "ctx", Claim: "fail claim"},
	}
	data, err := json.Marshal(samples)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	pool := NewPool(2, func() Runner { return echoRunner{} })
	reports, err := ProcessFile(context.Background(), pool, path, 10)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].Label != "SUPPORTED" || reports[0].Error != "" {
		t.Errorf("first report = %+v", reports[0])
	}
	if reports[1].Error == "" {
		t.Error("second report must carry the pipeline error")
	}
	if reports[0].BeamEvidence == nil {
		t.Error("beam_evidence must serialize as a list, never null")
	}
}

func TestReadSamples_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("<<not JSON>>"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSamples(path); err == nil {
		t.Error("expected error for malformed dataset file")
	}
}
