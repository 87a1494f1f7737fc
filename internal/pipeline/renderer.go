package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vietfact/mintgraph/internal/model"
	"github.com/vietfact/mintgraph/internal/rank"
)

// Renderer writes run outputs to files and prints the console summary.
type Renderer struct {
	Verbose bool
}

// NewRenderer creates a renderer.
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{Verbose: verbose}
}

// RenderPathsJSON writes the path export document.
func (r *Renderer) RenderPathsJSON(res *Result, path string) error {
	if err := res.Export.WriteJSON(path); err != nil {
		return err
	}
	if r.Verbose {
		fmt.Printf("Wrote paths JSON: %s\n", path)
	}
	return nil
}

// RenderPathsSummary writes the human-readable top-path listing.
func (r *Renderer) RenderPathsSummary(res *Result, path string) error {
	if err := res.Export.WriteSummary(res.Graph, path, 10); err != nil {
		return err
	}
	if r.Verbose {
		fmt.Printf("Wrote paths summary: %s\n", path)
	}
	return nil
}

// sentenceReport is the ranked-evidence output document.
type sentenceReport struct {
	Claim       string                 `json:"claim"`
	Method      string                 `json:"method"`
	Sentences   []model.RankedSentence `json:"sentences"`
	Diagnostics model.Diagnostics      `json:"diagnostics"`
}

// RenderSentencesJSON writes the ranked sentence list.
func (r *Renderer) RenderSentencesJSON(res *Result, method model.RankMethod, path string) error {
	report := sentenceReport{
		Claim:       res.Export.Claim,
		Method:      string(method),
		Sentences:   res.Sentences,
		Diagnostics: res.Diagnostics,
	}
	if report.Sentences == nil {
		report.Sentences = []model.RankedSentence{}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrSerialization, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", model.ErrSerialization, path, err)
	}
	if r.Verbose {
		fmt.Printf("Wrote sentence ranking: %s\n", path)
	}
	return nil
}

// RenderSummary prints the run overview to stdout.
func (r *Renderer) RenderSummary(res *Result) {
	stats := res.Graph.Statistics()

	fmt.Println()
	fmt.Println("Graph:")
	fmt.Printf("  Nodes: %d (words %d, sentences %d, claim %d, entities %d)\n",
		stats.TotalNodes, stats.WordNodes, stats.SentenceNodes, stats.ClaimNodes, stats.EntityNodes)
	fmt.Printf("  Edges: %d (structural %d, dependency %d, entity %d, semantic %d)\n",
		stats.TotalEdges, stats.StructuralEdges, stats.DependencyEdges, stats.EntityEdges, stats.SemanticEdges)

	if res.SemanticStats.Count > 0 {
		fmt.Println("Semantic similarity:")
		fmt.Printf("  Edges: %d, similarity %.4f..%.4f (avg %.4f)\n",
			res.SemanticStats.Count, res.SemanticStats.MinSimilarity,
			res.SemanticStats.MaxSimilarity, res.SemanticStats.AvgSimilarity)
	}

	fmt.Printf("Paths found: %d\n", len(res.Paths))
	fmt.Printf("Ranked sentences: %d\n", len(res.Sentences))
	for i, s := range res.Sentences {
		if i >= 5 {
			fmt.Printf("  ... and %d more\n", len(res.Sentences)-5)
			break
		}
		fmt.Printf("  %d. [freq %d, avg %.3f] %s\n", i+1, s.Frequency, s.AvgScore, truncate(s.Text, 80))
	}

	if res.Diagnostics.ExternalUnavailable > 0 || res.Diagnostics.Serialization > 0 {
		fmt.Printf("Recoverable failures: %d external, %d serialization\n",
			res.Diagnostics.ExternalUnavailable, res.Diagnostics.Serialization)
	}
}

// EvidenceTexts returns the top ranked sentence surfaces for batch reports.
func (r *Renderer) EvidenceTexts(res *Result, limit int) []string {
	return rank.EvidenceTexts(res.Sentences, limit)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
