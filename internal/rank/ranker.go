package rank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vietfact/mintgraph/internal/beam"
	"github.com/vietfact/mintgraph/internal/graph"
	"github.com/vietfact/mintgraph/internal/model"
)

// Sentences aggregates the beam search paths into a ranked evidence list.
// Each sentence's frequency is the number of paths passing through it (a
// path is acyclic, so it counts at most once per path); score aggregates use
// those paths' scores. Ties break by ascending sentence id so the ordering
// is stable regardless of path input order.
func Sentences(g *graph.Graph, paths []*beam.Path, method model.RankMethod) ([]model.RankedSentence, error) {
	if !model.ValidRankMethod(method) {
		return nil, fmt.Errorf("unknown ranking method %q", method)
	}

	type accum struct {
		row   model.RankedSentence
		total float64
	}
	byID := make(map[int]*accum)

	for _, p := range paths {
		for _, id := range p.SentenceIDs(g) {
			node := g.Node(id)
			a, ok := byID[node.SentenceID]
			if !ok {
				a = &accum{row: model.RankedSentence{SentenceID: node.SentenceID, Text: node.Text}}
				byID[node.SentenceID] = a
			}
			a.row.Frequency++
			a.total += p.Score
			if p.Score > a.row.MaxScore || a.row.Frequency == 1 {
				a.row.MaxScore = p.Score
			}
		}
	}

	rows := make([]model.RankedSentence, 0, len(byID))
	for _, a := range byID {
		a.row.TotalScore = a.total
		a.row.AvgScore = a.total / float64(a.row.Frequency)
		a.row.CombinedScore = float64(a.row.Frequency) * a.row.AvgScore
		rows = append(rows, a.row)
	}

	key := sortKey(method)
	sort.Slice(rows, func(i, j int) bool {
		ki, kj := key(rows[i]), key(rows[j])
		if ki != kj {
			return ki > kj
		}
		return rows[i].SentenceID < rows[j].SentenceID
	})
	return rows, nil
}

func sortKey(method model.RankMethod) func(model.RankedSentence) float64 {
	switch method {
	case model.RankByAvgScore:
		return func(r model.RankedSentence) float64 { return r.AvgScore }
	case model.RankByMaxScore:
		return func(r model.RankedSentence) float64 { return r.MaxScore }
	case model.RankByTotalScore:
		return func(r model.RankedSentence) float64 { return r.TotalScore }
	case model.RankByCombined:
		return func(r model.RankedSentence) float64 { return r.CombinedScore }
	default:
		return func(r model.RankedSentence) float64 { return float64(r.Frequency) }
	}
}

// EvidenceTexts returns the top-n ranked sentence texts with segmentation
// underscores restored to spaces, the shape batch reports use.
func EvidenceTexts(rows []model.RankedSentence, n int) []string {
	out := make([]string, 0, n)
	for i, row := range rows {
		if i >= n {
			break
		}
		out = append(out, strings.ReplaceAll(row.Text, "_", " "))
	}
	return out
}
