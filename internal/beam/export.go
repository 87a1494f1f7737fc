package beam

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/vietfact/mintgraph/internal/graph"
	"github.com/vietfact/mintgraph/internal/model"
)

// Parameters echoes the search configuration into the export document.
type Parameters struct {
	BeamWidth int `json:"beam_width"`
	MaxDepth  int `json:"max_depth"`
	MaxPaths  int `json:"max_paths"`
}

// Export is the one-JSON-document-per-run path report.
type Export struct {
	Claim      string     `json:"claim"`
	Parameters Parameters `json:"parameters"`
	Paths      []*Path    `json:"paths"`
}

// NewExport assembles the export document for a finished search.
func NewExport(g *graph.Graph, f *Finder, paths []*Path) Export {
	claimText := ""
	if claim := g.Claim(); claim != nil {
		claimText = claim.Text
	}
	return Export{
		Claim: claimText,
		Parameters: Parameters{
			BeamWidth: f.BeamWidth,
			MaxDepth:  f.MaxDepth,
			MaxPaths:  f.MaxPaths,
		},
		Paths: paths,
	}
}

// Marshal renders the export as indented JSON. Path order is preserved, so
// identical inputs produce identical bytes.
func (e Export) Marshal() ([]byte, error) {
	if e.Paths == nil {
		e.Paths = []*Path{}
	}
	out, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSerialization, err)
	}
	return out, nil
}

// WriteJSON writes the export document to a file.
func (e Export) WriteJSON(path string) error {
	data, err := e.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", model.ErrSerialization, path, err)
	}
	return nil
}

// WriteSummary writes a human-readable listing of the top paths. The layout
// is stable across runs so reports can be diffed.
func (e Export) WriteSummary(g *graph.Graph, path string, top int) error {
	var b strings.Builder

	b.WriteString("BEAM SEARCH PATH ANALYSIS\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Claim: %s\n", e.Claim)
	fmt.Fprintf(&b, "Beam width: %d\n", e.Parameters.BeamWidth)
	fmt.Fprintf(&b, "Max depth: %d\n", e.Parameters.MaxDepth)
	fmt.Fprintf(&b, "Paths found: %d\n\n", len(e.Paths))

	for i, p := range e.Paths {
		if i >= top {
			break
		}
		fmt.Fprintf(&b, "PATH #%d (score %.3f)\n", i+1, p.Score)
		b.WriteString(strings.Repeat("-", 40) + "\n")
		fmt.Fprintf(&b, "Length: %d nodes\n", len(p.Nodes))
		fmt.Fprintf(&b, "Pattern: %s\n", p.Pattern)
		fmt.Fprintf(&b, "Reached sentence: %v\n", p.ReachedSentence)
		fmt.Fprintf(&b, "Visited entity: %v\n\n", p.VisitedEntity)

		for j, id := range p.Nodes {
			node := g.Node(id)
			text := ""
			kind := "unknown"
			if node != nil {
				kind = node.Kind.String()
				text = node.Text
				if runes := []rune(text); len(runes) > 50 {
					text = string(runes[:50])
				}
			}
			prefix := fmt.Sprintf("  %2d: ", j)
			if j == 0 {
				prefix = "  START: "
			}
			fmt.Fprintf(&b, "%s[%s] %s\n", prefix, strings.ToUpper(kind), text)
			if j < len(p.Edges) {
				fmt.Fprintf(&b, "       -- %s -->\n", p.Edges[j].Kind)
			}
		}
		b.WriteString("\n" + strings.Repeat("=", 60) + "\n\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", model.ErrSerialization, path, err)
	}
	return nil
}
