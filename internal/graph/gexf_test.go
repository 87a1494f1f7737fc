package graph

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/vietfact/mintgraph/internal/model"
)

func buildSampleGraph(t *testing.T) *Graph {
	t.Helper()
	contextSents := []model.AnnotatedSentence{
		annotate("SAWACO thông_báo tạm ngưng cấp nước"),
		annotate("nước sạch phục_vụ người dân"),
	}
	claimSents := []model.AnnotatedSentence{annotate("SAWACO ngưng cấp nước")}

	g, err := Build(contextSents, "SAWACO ngưng cấp nước.", claimSents, DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	eid := g.AddEntity("SAWACO", "ORG")
	g.ConnectEntity(eid, g.SentenceIDs()[0])

	a, _ := g.WordID("nước", "N")
	b, _ := g.WordID("cấp", "N")
	g.AddSemantic(a, b, 0.9123)
	return g
}

func TestGEXF_RoundTrip(t *testing.T) {
	g := buildSampleGraph(t)

	data, err := g.MarshalGEXF()
	if err != nil {
		t.Fatalf("MarshalGEXF: %v", err)
	}

	loaded, err := UnmarshalGEXF(data)
	if err != nil {
		t.Fatalf("UnmarshalGEXF: %v", err)
	}

	// Node and edge sets with all attribute values must survive.
	orig := g.Nodes()
	got := loaded.Nodes()
	if len(orig) != len(got) {
		t.Fatalf("node count changed: %d -> %d", len(orig), len(got))
	}
	for i := range orig {
		if *orig[i] != *got[i] {
			t.Errorf("node %d changed: %+v -> %+v", i, orig[i], got[i])
		}
	}

	origEdges := g.Edges()
	gotEdges := loaded.Edges()
	if len(origEdges) != len(gotEdges) {
		t.Fatalf("edge count changed: %d -> %d", len(origEdges), len(gotEdges))
	}
	for i := range origEdges {
		if *origEdges[i] != *gotEdges[i] {
			t.Errorf("edge %d changed: %+v -> %+v", i, origEdges[i], gotEdges[i])
		}
	}

	// Serializing again must be byte-identical.
	again, err := loaded.MarshalGEXF()
	if err != nil {
		t.Fatalf("second MarshalGEXF: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("export -> import -> export is not byte-identical")
	}
}

func TestGEXF_RoundTripRebuildsLookups(t *testing.T) {
	g := buildSampleGraph(t)

	data, err := g.MarshalGEXF()
	if err != nil {
		t.Fatalf("MarshalGEXF: %v", err)
	}
	loaded, err := UnmarshalGEXF(data)
	if err != nil {
		t.Fatalf("UnmarshalGEXF: %v", err)
	}

	if loaded.ClaimID() != g.ClaimID() {
		t.Errorf("claim id changed: %s -> %s", g.ClaimID(), loaded.ClaimID())
	}
	if _, ok := loaded.WordID("nước", "N"); !ok {
		t.Error("word lookup not rebuilt after import")
	}
	if len(loaded.SentenceIDs()) != 2 {
		t.Errorf("expected 2 sentences after import, got %d", len(loaded.SentenceIDs()))
	}
}

func TestGEXF_MissingAttributesAreEmptyStrings(t *testing.T) {
	g := New()
	g.SetClaim("claim only")

	data, err := g.MarshalGEXF()
	if err != nil {
		t.Fatalf("MarshalGEXF: %v", err)
	}
	if bytes.Contains(data, []byte("null")) {
		t.Error("serialization must never emit a null sentinel")
	}

	loaded, err := UnmarshalGEXF(data)
	if err != nil {
		t.Fatalf("UnmarshalGEXF: %v", err)
	}
	claim := loaded.Claim()
	if claim == nil {
		t.Fatal("claim lost in round trip")
	}
	if claim.POS != "" || claim.Lemma != "" || claim.EntityType != "" {
		t.Errorf("missing attributes must round-trip as empty strings, got %+v", claim)
	}
}

func TestGEXF_File(t *testing.T) {
	g := buildSampleGraph(t)
	path := filepath.Join(t.TempDir(), "graph.gexf")
	if err := g.WriteGEXF(path); err != nil {
		t.Fatalf("WriteGEXF: %v", err)
	}
	loaded, err := ReadGEXF(path)
	if err != nil {
		t.Fatalf("ReadGEXF: %v", err)
	}
	if loaded.Statistics() != g.Statistics() {
		t.Errorf("statistics changed: %+v -> %+v", g.Statistics(), loaded.Statistics())
	}
}
