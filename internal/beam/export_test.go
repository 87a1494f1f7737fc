package beam

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExport_JSONShape(t *testing.T) {
	g := buildGraph(t,
		[]string{"SAWACO thông_báo tạm ngưng cấp nước"},
		"SAWACO ngưng cấp nước")

	f := NewFinder(g, beamConfig(5, 3, 10))
	paths := f.FindPaths()
	export := NewExport(g, f, paths)

	data, err := export.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	for _, key := range []string{"claim", "parameters", "paths"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("export document missing %q", key)
		}
	}

	var params Parameters
	if err := json.Unmarshal(doc["parameters"], &params); err != nil {
		t.Fatalf("parameters: %v", err)
	}
	if params.BeamWidth != 5 || params.MaxDepth != 3 || params.MaxPaths != 10 {
		t.Errorf("parameters = %+v", params)
	}

	var decoded []*Path
	if err := json.Unmarshal(doc["paths"], &decoded); err != nil {
		t.Fatalf("paths: %v", err)
	}
	if len(decoded) != len(paths) {
		t.Fatalf("path count changed in round trip: %d -> %d", len(paths), len(decoded))
	}
	for i := range decoded {
		if decoded[i].Pattern != paths[i].Pattern || decoded[i].Score != paths[i].Score {
			t.Errorf("path %d changed in round trip", i)
		}
		if len(decoded[i].Edges) != len(paths[i].Edges) {
			t.Errorf("path %d edge tuples changed", i)
		}
	}
}

func TestExport_EmptyPathsIsList(t *testing.T) {
	g := buildGraph(t, nil, "SAWACO ngưng cấp nước")
	f := NewFinder(g, beamConfig(5, 3, 10))
	export := NewExport(g, f, nil)

	data, err := export.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"paths": []`) {
		t.Errorf("empty path set must serialize as [], got:\n%s", data)
	}
}

func TestExport_SummaryStable(t *testing.T) {
	g := buildGraph(t,
		[]string{"SAWACO thông_báo tạm ngưng cấp nước"},
		"SAWACO ngưng cấp nước")
	f := NewFinder(g, beamConfig(5, 3, 10))
	export := NewExport(g, f, f.FindPaths())

	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")
	if err := export.WriteSummary(g, first, 10); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	if err := export.WriteSummary(g, second, 10); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if string(a) != string(b) {
		t.Error("summary layout must be stable for diffing")
	}
	if !strings.Contains(string(a), "PATH #1") {
		t.Error("summary must list the top paths")
	}
}
