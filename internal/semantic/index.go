package semantic

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// flatIndex is an exact inner-product index over L2-normalized vectors, so
// inner product equals cosine similarity. Exhaustive search is fine at the
// word-table scale this pipeline sees (well under the ~10k switchover where
// an approximate index would start to pay off).
type flatIndex struct {
	vectors [][]float64
}

func newFlatIndex(vectors [][]float64) *flatIndex {
	return &flatIndex{vectors: vectors}
}

type neighbor struct {
	index      int
	similarity float64
}

// search returns the k most similar entries to the query vector, sorted by
// descending similarity with ties broken by ascending index for determinism.
func (ix *flatIndex) search(query []float64, k int) []neighbor {
	if k <= 0 {
		return nil
	}
	out := make([]neighbor, 0, len(ix.vectors))
	for i, vec := range ix.vectors {
		out = append(out, neighbor{index: i, similarity: floats.Dot(query, vec)})
	}
	sortNeighbors(out)
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// sortNeighbors orders by descending similarity, ascending index on ties.
func sortNeighbors(ns []neighbor) {
	sort.Slice(ns, func(a, b int) bool {
		if ns[a].similarity != ns[b].similarity {
			return ns[a].similarity > ns[b].similarity
		}
		return ns[a].index < ns[b].index
	})
}
