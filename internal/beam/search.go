package beam

import (
	"sort"
	"strings"
	"unicode"

	"github.com/vietfact/mintgraph/internal/graph"
	"github.com/vietfact/mintgraph/internal/model"
)

// Weights are the tunable scoring knobs. The defaults were calibrated so the
// usual weak/medium/strong evidence cutoffs land near 5/10/15.
type Weights struct {
	StepPenalty      float64 // subtracted on every step
	WordOverlap      float64 // word node whose text is a claim token
	EntityBonus      float64 // stepping onto an entity node
	SentenceBonus    float64 // stepping onto a sentence node
	SemanticWeight   float64 // multiplied by the semantic edge similarity
	DependencyBonus  float64 // traversing a dependency edge
	TerminalSentence float64 // added once when a sentence-ending path is closed
}

// DefaultWeights returns the calibrated defaults.
func DefaultWeights() Weights {
	return Weights{
		StepPenalty:      0.1,
		WordOverlap:      1.0,
		EntityBonus:      2.0,
		SentenceBonus:    5.0,
		SemanticWeight:   2.0,
		DependencyBonus:  0.5,
		TerminalSentence: 3.0,
	}
}

// Finder runs beam search over a finished graph, from the claim node toward
// sentence nodes.
type Finder struct {
	BeamWidth int
	MaxDepth  int
	MaxPaths  int
	Weights   Weights

	// AdmissibilityMargin keeps the search alive while some live path's
	// optimistic bound beats the worst completed score by more than this
	// much. Generous on purpose.
	AdmissibilityMargin float64

	// IncludePartials returns the best unfinished paths when no sentence
	// was ever reached, instead of an empty list.
	IncludePartials bool

	graph       *graph.Graph
	claimTokens map[string]struct{}
	seq         int
}

// NewFinder creates a finder with the given search parameters.
func NewFinder(g *graph.Graph, cfg model.BeamConfig) *Finder {
	f := &Finder{
		BeamWidth:           cfg.BeamWidth,
		MaxDepth:            cfg.MaxDepth,
		MaxPaths:            cfg.MaxPaths,
		Weights:             DefaultWeights(),
		AdmissibilityMargin: 5.0,
		graph:               g,
	}
	f.claimTokens = claimTokenSet(g)
	return f
}

// claimTokenSet collects lowercase tokens of the claim surface text, with
// punctuation trimmed and underscore/space variants so segmented word forms
// still match the raw claim.
func claimTokenSet(g *graph.Graph) map[string]struct{} {
	tokens := make(map[string]struct{})
	claim := g.Claim()
	if claim == nil {
		return tokens
	}
	add := func(tok string) {
		tok = strings.TrimFunc(strings.ToLower(tok), func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if tok == "" {
			return
		}
		tokens[tok] = struct{}{}
		tokens[strings.ReplaceAll(tok, " ", "_")] = struct{}{}
		tokens[strings.ReplaceAll(tok, "_", " ")] = struct{}{}
	}
	for _, tok := range strings.Fields(claim.Text) {
		add(tok)
	}
	// Claim word nodes carry segmented forms the surface split misses.
	for _, text := range g.ClaimWordTexts() {
		add(text)
	}
	return tokens
}

// isClaimToken reports whether a word text matches the claim token set.
func (f *Finder) isClaimToken(text string) bool {
	lower := strings.ToLower(text)
	if _, ok := f.claimTokens[lower]; ok {
		return true
	}
	_, ok := f.claimTokens[strings.ReplaceAll(lower, "_", " ")]
	return ok
}

// stepScore returns the contribution of moving across edge onto node.
func (f *Finder) stepScore(edge *graph.Edge, node *graph.Node) float64 {
	score := -f.Weights.StepPenalty
	switch node.Kind {
	case graph.WordNode:
		if f.isClaimToken(node.Text) {
			score += f.Weights.WordOverlap
		}
	case graph.EntityNode:
		score += f.Weights.EntityBonus
	case graph.SentenceNode:
		score += f.Weights.SentenceBonus
	}
	switch edge.Kind {
	case graph.SemanticEdge:
		score += edge.Similarity * f.Weights.SemanticWeight
	case graph.DependencyEdge:
		score += f.Weights.DependencyBonus
	}
	return score
}

// maxStepGain is the largest score any single future step could add; used
// for the optimistic upper bound in the early-stop check.
func (f *Finder) maxStepGain() float64 {
	gain := f.Weights.SentenceBonus
	if f.Weights.EntityBonus > gain {
		gain = f.Weights.EntityBonus
	}
	return gain + f.Weights.SemanticWeight - f.Weights.StepPenalty
}

// FindPaths explores the graph and returns up to MaxPaths completed paths
// sorted by descending score. When no sentence is ever reached and
// IncludePartials is set, the best partial paths from the last non-empty
// frontier are returned instead; otherwise the result is empty, which is
// valid.
func (f *Finder) FindPaths() []*Path {
	start := f.graph.ClaimID()
	if start == "" {
		return nil
	}

	live := []*Path{newPath(start, graph.ClaimNode)}
	var completed []*Path

	for depth := 0; depth < f.MaxDepth && len(live) > 0; depth++ {
		var candidates []*Path

		for _, p := range live {
			last := p.last()
			for _, edge := range f.graph.Incident(last) {
				nextID := edge.Other(last)
				if p.contains(nextID) {
					continue
				}
				node := f.graph.Node(nextID)
				f.seq++
				next := p.extend(edge, node, f.seq)
				next.Score += f.stepScore(edge, node)

				if node.Kind == graph.SentenceNode {
					next.ReachedSentence = true
					done := next.clone()
					done.Score += f.Weights.TerminalSentence
					completed = append(completed, done)
				}
				if node.Kind == graph.EntityNode {
					next.VisitedEntity = true
				}
				// Sentences may relay as well as terminate, so the
				// extension stays in the pool either way.
				candidates = append(candidates, next)
			}
		}

		if len(candidates) == 0 {
			// Dead end: keep the last frontier for the partial fallback.
			break
		}
		sortPaths(candidates)
		if len(candidates) > f.BeamWidth {
			candidates = candidates[:f.BeamWidth]
		}
		live = candidates

		if f.shouldStop(live, completed, f.MaxDepth-depth-1) {
			break
		}
	}

	sortPaths(completed)
	if len(completed) > f.MaxPaths {
		completed = completed[:f.MaxPaths]
	}
	if len(completed) > 0 || !f.IncludePartials {
		return completed
	}

	// No sentence reached: surface the best partial paths.
	sortPaths(live)
	if len(live) > f.MaxPaths {
		live = live[:f.MaxPaths]
	}
	return live
}

// shouldStop applies the early-termination rule: enough completed paths and
// no live path whose optimistic bound beats the lowest completed score plus
// the admissibility margin.
func (f *Finder) shouldStop(live, completed []*Path, remainingDepth int) bool {
	if len(completed) < f.MaxPaths || len(live) == 0 {
		return false
	}
	lowest := completed[0].Score
	for _, p := range completed {
		if p.Score < lowest {
			lowest = p.Score
		}
	}
	bound := float64(remainingDepth)*f.maxStepGain() + f.Weights.TerminalSentence
	for _, p := range live {
		if p.Score+bound > lowest+f.AdmissibilityMargin {
			return false
		}
	}
	return true
}

// sortPaths orders by descending score; ties break by shorter length, then
// earlier insertion.
func sortPaths(paths []*Path) {
	sort.SliceStable(paths, func(i, j int) bool {
		if paths[i].Score != paths[j].Score {
			return paths[i].Score > paths[j].Score
		}
		if len(paths[i].Nodes) != len(paths[j].Nodes) {
			return len(paths[i].Nodes) < len(paths[j].Nodes)
		}
		return paths[i].seq < paths[j].seq
	})
}

// Rescore recomputes a path's score from its nodes and edges alone. It is a
// pure function of the path and is used to verify score integrity.
func (f *Finder) Rescore(p *Path) float64 {
	var score float64
	for i, step := range p.Edges {
		node := f.graph.Node(p.Nodes[i+1])
		kind, err := graph.ParseEdgeKind(step.Kind)
		if err != nil {
			continue
		}
		edge := &graph.Edge{Source: step.Source, Target: step.Target, Kind: kind}
		if kind == graph.SemanticEdge {
			if orig := f.edgeBetween(step.Source, step.Target, kind); orig != nil {
				edge.Similarity = orig.Similarity
			}
		}
		score += f.stepScore(edge, node)
	}
	if p.ReachedSentence && len(p.Nodes) > 0 {
		if n := f.graph.Node(p.last()); n != nil && n.Kind == graph.SentenceNode {
			score += f.Weights.TerminalSentence
		}
	}
	return score
}

func (f *Finder) edgeBetween(u, v string, kind graph.EdgeKind) *graph.Edge {
	for _, e := range f.graph.Incident(u) {
		if e.Kind == kind && e.Other(u) == v {
			return e
		}
	}
	return nil
}
