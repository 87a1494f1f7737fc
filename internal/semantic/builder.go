package semantic

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vietfact/mintgraph/internal/embed"
	"github.com/vietfact/mintgraph/internal/graph"
	"github.com/vietfact/mintgraph/internal/model"
)

// Stats summarizes the semantic edges produced by one build.
type Stats struct {
	Count         int            `json:"count"`
	MinSimilarity float64        `json:"min_similarity"`
	AvgSimilarity float64        `json:"avg_similarity"`
	MaxSimilarity float64        `json:"max_similarity"`
	Histogram     map[string]int `json:"histogram"`
	SkippedWords  int            `json:"skipped_words"`
}

// Builder adds semantic similarity edges between word nodes that share a POS
// tag and whose normalized embedding cosine reaches the threshold.
type Builder struct {
	Threshold    float64
	TopK         int
	UseFastIndex bool

	embedder embed.Embedder
	logger   *log.Logger
}

// NewBuilder creates a builder with the given parameters. The embedder may
// be a cached wrapper; the builder does not cache on its own.
func NewBuilder(embedder embed.Embedder, cfg model.SemanticConfig, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		Threshold:    cfg.SimilarityThreshold,
		TopK:         cfg.TopK,
		UseFastIndex: cfg.UseFastIndex,
		embedder:     embedder,
		logger:       logger,
	}
}

// Build fetches embeddings for every word node, L2-normalizes them, and adds
// top-k same-POS similarity edges at or above the threshold. Embedding
// failures degrade to fewer (possibly zero) edges and are counted in diag.
func (b *Builder) Build(ctx context.Context, g *graph.Graph, diag *model.Diagnostics) (Stats, error) {
	stats := Stats{Histogram: make(map[string]int)}
	if b.TopK <= 0 {
		return stats, nil
	}

	words := g.NodesOfKind(graph.WordNode)
	if len(words) < 2 {
		return stats, nil
	}

	// Embed and normalize. Words with failed, zero, or zero-norm vectors
	// are dropped from the search space.
	var (
		vectors [][]float64
		kept    []*graph.Node
		dim     int
	)
	for _, w := range words {
		vec, err := b.embedder.Embed(ctx, w.Text, w.POS)
		if err != nil {
			stats.SkippedWords++
			diag.Record(model.ErrExternalUnavailable, fmt.Sprintf("embed %q: %v", w.Text, err))
			b.logger.Warn("embedding failed, word skipped", "word", w.Text, "err", err)
			continue
		}
		if len(vec) == 0 || embed.IsZero(vec) {
			stats.SkippedWords++
			continue
		}
		if dim == 0 {
			dim = len(vec)
		}
		if len(vec) != dim {
			stats.SkippedWords++
			diag.Record(model.ErrExternalUnavailable, fmt.Sprintf("embed %q: dimension %d != %d", w.Text, len(vec), dim))
			continue
		}

		v64 := make([]float64, dim)
		for i, x := range vec {
			v64[i] = float64(x)
		}
		norm := floats.Norm(v64, 2)
		if norm == 0 {
			stats.SkippedWords++
			continue
		}
		floats.Scale(1/norm, v64)
		vectors = append(vectors, v64)
		kept = append(kept, w)
	}

	if len(kept) < 2 {
		return stats, nil
	}

	var sims []float64
	if b.UseFastIndex {
		sims = b.searchIndexed(g, kept, vectors)
	} else {
		sims = b.searchBruteForce(g, kept, vectors)
	}

	stats.Count = len(sims)
	if len(sims) > 0 {
		stats.MinSimilarity = floats.Min(sims)
		stats.MaxSimilarity = floats.Max(sims)
		stats.AvgSimilarity = floats.Sum(sims) / float64(len(sims))
		for _, s := range sims {
			stats.Histogram[histogramBin(s, b.Threshold)]++
		}
	}
	return stats, nil
}

// searchIndexed queries an exact inner-product index per word.
func (b *Builder) searchIndexed(g *graph.Graph, kept []*graph.Node, vectors [][]float64) []float64 {
	index := newFlatIndex(vectors)
	var sims []float64
	for i, w := range kept {
		// +1 because the nearest match is the word itself.
		for _, cand := range index.search(vectors[i], b.TopK+1) {
			if sim, ok := b.tryEdge(g, w, kept[cand.index], cand.similarity); ok {
				sims = append(sims, sim)
			}
		}
	}
	return sims
}

// searchBruteForce computes the full similarity matrix in one product and
// takes per-row top-k.
func (b *Builder) searchBruteForce(g *graph.Graph, kept []*graph.Node, vectors [][]float64) []float64 {
	n, dim := len(vectors), len(vectors[0])
	flat := make([]float64, 0, n*dim)
	for _, v := range vectors {
		flat = append(flat, v...)
	}
	x := mat.NewDense(n, dim, flat)

	var sim mat.Dense
	sim.Mul(x, x.T())

	var sims []float64
	for i, w := range kept {
		for _, cand := range topRow(sim.RawRowView(i), b.TopK+1) {
			if s, ok := b.tryEdge(g, w, kept[cand.index], cand.similarity); ok {
				sims = append(sims, s)
			}
		}
	}
	return sims
}

// tryEdge applies the self / POS / threshold / duplicate gates and adds the
// edge, returning the rounded similarity on success.
func (b *Builder) tryEdge(g *graph.Graph, w, c *graph.Node, similarity float64) (float64, bool) {
	if w.ID == c.ID {
		return 0, false
	}
	if w.POS != c.POS {
		return 0, false
	}
	if similarity < b.Threshold {
		return 0, false
	}
	if g.HasEdge(w.ID, c.ID, graph.SemanticEdge) {
		return 0, false
	}
	rounded := math.Round(similarity*10000) / 10000
	g.AddSemantic(w.ID, c.ID, rounded)
	return rounded, true
}

// topRow selects the k highest entries of one similarity-matrix row with the
// same deterministic ordering as the index search.
func topRow(row []float64, k int) []neighbor {
	out := make([]neighbor, 0, len(row))
	for i, s := range row {
		out = append(out, neighbor{index: i, similarity: s})
	}
	sortNeighbors(out)
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// histogramBin labels the 0.05-wide bin that holds s, e.g. "0.85-0.90".
func histogramBin(s, threshold float64) string {
	lo := threshold
	// The epsilons absorb float drift from the repeated additions and keep
	// s = 1.0 in the top bin instead of opening a "1.00-1.00" bin.
	for lo+0.05 <= s+1e-9 && lo+0.05 < 1.0-1e-9 {
		lo += 0.05
	}
	hi := lo + 0.05
	if hi > 1.0 {
		hi = 1.0
	}
	return fmt.Sprintf("%.2f-%.2f", lo, hi)
}
