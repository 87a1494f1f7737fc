package entity

import (
	"context"
	"fmt"
	"testing"

	"github.com/vietfact/mintgraph/internal/graph"
	"github.com/vietfact/mintgraph/internal/model"
)

type stubExtractor struct {
	entities []model.Entity
	err      error
}

func (s stubExtractor) Name() string { return "stub" }

func (s stubExtractor) IsAvailable(ctx context.Context) bool { return true }

func (s stubExtractor) Extract(ctx context.Context, contextText string) ([]model.Entity, error) {
	return s.entities, s.err
}

func linkGraph() *graph.Graph {
	g := graph.New()
	g.SetClaim("SAWACO ngưng cấp nước.")
	g.AddSentence("SAWACO thông_báo tạm ngưng cấp nước")
	g.AddSentence("thời_gian thực_hiện dự_kiến 22 giờ")
	g.AddSentence("SAWACO bảo_trì Nhà_máy nước Tân_Hiệp")
	return g
}

func TestLink_SubstringMatch(t *testing.T) {
	g := linkGraph()
	extractor := stubExtractor{entities: []model.Entity{{Name: "SAWACO", Type: "ORG"}}}

	var diag model.Diagnostics
	added := NewLinker(extractor, nil).Link(context.Background(), g, "context", &diag)
	if added != 1 {
		t.Fatalf("expected 1 entity added, got %d", added)
	}

	stats := g.Statistics()
	if stats.EntityNodes != 1 {
		t.Errorf("expected 1 entity node, got %d", stats.EntityNodes)
	}
	// Sentences 0 and 2 mention SAWACO; exactly one edge each.
	if stats.EntityEdges != 2 {
		t.Errorf("expected 2 entity edges, got %d", stats.EntityEdges)
	}
}

func TestLink_SegmentedMention(t *testing.T) {
	g := linkGraph()
	extractor := stubExtractor{entities: []model.Entity{{Name: "Nhà máy nước Tân Hiệp", Type: "LOC"}}}

	var diag model.Diagnostics
	NewLinker(extractor, nil).Link(context.Background(), g, "context", &diag)

	if got := g.Statistics().EntityEdges; got != 1 {
		t.Errorf("segmented sentence text must still match, got %d edges", got)
	}
}

func TestLink_ExtractionFailureDegrades(t *testing.T) {
	g := linkGraph()
	extractor := stubExtractor{err: fmt.Errorf("%w: not JSON", model.ErrExternalUnavailable)}

	var diag model.Diagnostics
	added := NewLinker(extractor, nil).Link(context.Background(), g, "context", &diag)
	if added != 0 {
		t.Errorf("failed extraction must add zero entities, got %d", added)
	}
	if diag.ExternalUnavailable != 1 {
		t.Errorf("expected one recorded external failure, got %d", diag.ExternalUnavailable)
	}
	if g.Statistics().SentenceNodes != 3 {
		t.Error("graph must stay fully populated after extractor failure")
	}
}

func TestLink_NilExtractor(t *testing.T) {
	g := linkGraph()
	var diag model.Diagnostics
	if added := NewLinker(nil, nil).Link(context.Background(), g, "context", &diag); added != 0 {
		t.Errorf("nil extractor must be a no-op, got %d", added)
	}
}

func TestMentions(t *testing.T) {
	tests := []struct {
		sentence string
		name     string
		want     bool
	}{
		{"SAWACO thông_báo tạm ngưng", "SAWACO", true},
		{"sawaco thông_báo", "SAWACO", true},
		{"SAWACO bảo_trì Nhà_máy nước Tân_Hiệp", "Nhà máy nước Tân Hiệp", true},
		{"Tổng Công_ty Cấp_nước Sài_Gòn", "Công ty Cấp nước", true},
		{"thời_gian thực_hiện", "SAWACO", false},
		{"nhà nước", "Nhà máy", false},
	}
	for _, tc := range tests {
		if got := Mentions(tc.sentence, tc.name); got != tc.want {
			t.Errorf("Mentions(%q, %q) = %v, want %v", tc.sentence, tc.name, got, tc.want)
		}
	}
}
