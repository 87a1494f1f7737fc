package beam

import (
	"math"
	"strings"
	"testing"

	"github.com/vietfact/mintgraph/internal/graph"
	"github.com/vietfact/mintgraph/internal/model"
)

func annotate(text string) model.AnnotatedSentence {
	var sent model.AnnotatedSentence
	for i, form := range strings.Fields(text) {
		sent = append(sent, model.AnnotatedToken{Index: i + 1, WordForm: form, PosTag: "N", Lemma: form, Head: 0})
	}
	return sent
}

func buildGraph(t *testing.T, contextTexts []string, claimText string) *graph.Graph {
	t.Helper()
	var contextSents []model.AnnotatedSentence
	for _, text := range contextTexts {
		contextSents = append(contextSents, annotate(text))
	}
	claimSents := []model.AnnotatedSentence{annotate(claimText)}
	g, err := graph.Build(contextSents, claimText, claimSents, graph.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func beamConfig(width, depth, paths int) model.BeamConfig {
	return model.BeamConfig{BeamWidth: width, MaxDepth: depth, MaxPaths: paths}
}

func TestFindPaths_ClaimToSentence(t *testing.T) {
	g := buildGraph(t,
		[]string{"SAWACO thông_báo tạm ngưng cấp nước"},
		"SAWACO ngưng cấp nước")

	f := NewFinder(g, beamConfig(5, 3, 10))
	paths := f.FindPaths()

	if len(paths) == 0 {
		t.Fatal("expected at least one path to the sentence")
	}

	found := false
	for _, p := range paths {
		if p.Pattern == "C->W->S" {
			found = true
			if !p.ReachedSentence {
				t.Error("sentence-terminated path must set reached_sentence")
			}
			if p.Score <= 5.0 {
				t.Errorf("C->W->S path score %v, want > 5.0", p.Score)
			}
		}
	}
	if !found {
		t.Errorf("expected a C->W->S path, got patterns %v", patterns(paths))
	}
}

func TestFindPaths_Acyclic(t *testing.T) {
	g := buildGraph(t,
		[]string{
			"SAWACO thông_báo tạm ngưng cấp nước",
			"nước sạch phục_vụ người dân",
		},
		"SAWACO ngưng cấp nước")

	f := NewFinder(g, beamConfig(10, 6, 20))
	for _, p := range f.FindPaths() {
		seen := make(map[string]bool)
		for _, id := range p.Nodes {
			if seen[id] {
				t.Fatalf("path revisits node %s: %v", id, p.Nodes)
			}
			seen[id] = true
		}
	}
}

func TestFindPaths_TwoSentencesSharedWord(t *testing.T) {
	g := buildGraph(t,
		[]string{
			"SAWACO ngưng cấp nước hôm_nay",
			"người dân thiếu nước sạch",
		},
		"SAWACO ngưng cấp nước")

	f := NewFinder(g, beamConfig(10, 4, 20))
	paths := f.FindPaths()

	reached := make(map[string]bool)
	for _, p := range paths {
		for _, id := range p.SentenceIDs(g) {
			reached[id] = true
		}
	}
	if len(reached) != 2 {
		t.Errorf("expected paths to both sentences via shared word, reached %v", reached)
	}
}

func TestFindPaths_EntityStep(t *testing.T) {
	g := buildGraph(t,
		[]string{
			"SAWACO ngưng cấp nước",
			"SAWACO bảo_trì nhà_máy",
		},
		"SAWACO ngưng cấp nước")
	eid := g.AddEntity("SAWACO", "ORG")
	for _, sentID := range g.SentenceIDs() {
		g.ConnectEntity(eid, sentID)
	}

	f := NewFinder(g, beamConfig(10, 6, 50))
	paths := f.FindPaths()

	var viaEntity *Path
	for _, p := range paths {
		if p.VisitedEntity {
			viaEntity = p
			break
		}
	}
	if viaEntity == nil {
		t.Fatal("expected a path stepping through the entity")
	}
	if !strings.Contains(viaEntity.Pattern, "E") {
		t.Errorf("entity path pattern %q must contain E", viaEntity.Pattern)
	}
}

func TestFindPaths_MaxDepthZero(t *testing.T) {
	g := buildGraph(t, []string{"SAWACO ngưng cấp nước"}, "SAWACO ngưng cấp nước")
	f := NewFinder(g, beamConfig(10, 0, 20))
	if paths := f.FindPaths(); len(paths) != 0 {
		t.Errorf("max_depth=0 must return zero completed paths, got %d", len(paths))
	}
}

func TestFindPaths_EmptyContext(t *testing.T) {
	g := buildGraph(t, nil, "SAWACO ngưng cấp nước")
	f := NewFinder(g, beamConfig(5, 3, 10))
	if paths := f.FindPaths(); len(paths) != 0 {
		t.Errorf("empty context must yield an empty path list, got %d", len(paths))
	}
}

func TestFindPaths_PartialFallback(t *testing.T) {
	g := buildGraph(t, nil, "SAWACO ngưng cấp nước")
	f := NewFinder(g, beamConfig(5, 3, 10))
	f.IncludePartials = true
	paths := f.FindPaths()
	if len(paths) == 0 {
		t.Fatal("partial fallback must surface unfinished paths")
	}
	for _, p := range paths {
		if p.ReachedSentence {
			t.Errorf("no sentence exists, yet path %s claims to have reached one", p.Pattern)
		}
	}
}

func TestFindPaths_ScoreIsPure(t *testing.T) {
	g := buildGraph(t,
		[]string{
			"SAWACO thông_báo tạm ngưng cấp nước",
			"nước sạch phục_vụ người dân",
		},
		"SAWACO ngưng cấp nước")
	a, _ := g.WordID("nước", "N")
	b, _ := g.WordID("sạch", "N")
	g.AddSemantic(a, b, 0.95)

	f := NewFinder(g, beamConfig(10, 6, 20))
	for _, p := range f.FindPaths() {
		rescored := f.Rescore(p)
		if math.Abs(rescored-p.Score) > 1e-9 {
			t.Errorf("path %s score %v but rescored %v", p.Pattern, p.Score, rescored)
		}
	}
}

func TestFindPaths_SemanticBonus(t *testing.T) {
	// Two words bridged only by a semantic edge; the step bonus is
	// similarity-weighted.
	g := graph.New()
	g.SetClaim("a")
	claimID := g.ClaimID()
	w1 := g.AddWord("a", "N", "")
	w2 := g.AddWord("b", "N", "")
	g.Connect(w1, claimID)
	sentID := g.AddSentence("b c")
	g.Connect(w2, sentID)
	g.AddSemantic(w1, w2, 0.9)

	f := NewFinder(g, beamConfig(10, 4, 10))
	paths := f.FindPaths()
	if len(paths) == 0 {
		t.Fatal("expected a path across the semantic bridge")
	}

	best := paths[0]
	if best.Pattern != "C->W->W->S" {
		t.Fatalf("expected C->W->W->S, got %s", best.Pattern)
	}
	// Steps: claim->a (-0.1 +1.0), a->b semantic (-0.1 +0.9*2), b->sentence
	// (-0.1 +5.0), terminal +3.0.
	want := (-0.1 + 1.0) + (-0.1 + 1.8) + (-0.1 + 5.0) + 3.0
	if math.Abs(best.Score-want) > 1e-9 {
		t.Errorf("score %v, want %v", best.Score, want)
	}
}

func TestFindPaths_Deterministic(t *testing.T) {
	build := func() []*Path {
		g := buildGraph(t,
			[]string{
				"SAWACO thông_báo tạm ngưng cấp nước",
				"nước sạch phục_vụ người dân",
			},
			"SAWACO ngưng cấp nước")
		f := NewFinder(g, beamConfig(10, 6, 20))
		return f.FindPaths()
	}

	first := build()
	second := build()
	if len(first) != len(second) {
		t.Fatalf("path counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Pattern != second[i].Pattern || first[i].Score != second[i].Score {
			t.Errorf("path %d differs between runs", i)
		}
	}
}

func patterns(paths []*Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.Pattern
	}
	return out
}
