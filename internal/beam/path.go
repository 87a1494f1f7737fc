package beam

import (
	"encoding/json"
	"fmt"

	"github.com/vietfact/mintgraph/internal/graph"
)

// Step is one traversed edge: (from, to, kind).
type Step struct {
	Source string
	Target string
	Kind   string
}

// MarshalJSON renders the step as a ["from","to","kind"] tuple.
func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{s.Source, s.Target, s.Kind})
}

// UnmarshalJSON parses the tuple form.
func (s *Step) UnmarshalJSON(data []byte) error {
	var tuple [3]string
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	s.Source, s.Target, s.Kind = tuple[0], tuple[1], tuple[2]
	return nil
}

// Path is one explored route from the claim node. Score accumulates the
// per-step contributions; the terminal sentence bonus is added when the path
// is emitted as completed.
type Path struct {
	Nodes           []string `json:"nodes"`
	Edges           []Step   `json:"edges"`
	Score           float64  `json:"score"`
	ReachedSentence bool     `json:"reached_sentence"`
	VisitedEntity   bool     `json:"visited_entity"`
	Pattern         string   `json:"pattern"`

	seq     int                 // insertion order, for stable tie-breaks
	visited map[string]struct{} // nodes on the path, for O(1) revisit checks
}

func newPath(start string, kind graph.NodeKind) *Path {
	return &Path{
		Nodes:   []string{start},
		Pattern: kind.Letter(),
		visited: map[string]struct{}{start: {}},
	}
}

// contains reports whether id is already on the path.
func (p *Path) contains(id string) bool {
	_, ok := p.visited[id]
	return ok
}

// last returns the path's current endpoint.
func (p *Path) last() string {
	return p.Nodes[len(p.Nodes)-1]
}

// extend copies the path and appends one step.
func (p *Path) extend(edge *graph.Edge, node *graph.Node, seq int) *Path {
	next := &Path{
		Nodes:           append(append([]string(nil), p.Nodes...), node.ID),
		Edges:           append(append([]Step(nil), p.Edges...), Step{Source: p.last(), Target: node.ID, Kind: edge.Kind.String()}),
		Score:           p.Score,
		ReachedSentence: p.ReachedSentence,
		VisitedEntity:   p.VisitedEntity,
		Pattern:         p.Pattern + "->" + node.Kind.Letter(),
		seq:             seq,
		visited:         make(map[string]struct{}, len(p.visited)+1),
	}
	for id := range p.visited {
		next.visited[id] = struct{}{}
	}
	next.visited[node.ID] = struct{}{}
	return next
}

// clone returns a copy for the completed set so later extensions of the live
// path do not mutate it.
func (p *Path) clone() *Path {
	return &Path{
		Nodes:           append([]string(nil), p.Nodes...),
		Edges:           append([]Step(nil), p.Edges...),
		Score:           p.Score,
		ReachedSentence: p.ReachedSentence,
		VisitedEntity:   p.VisitedEntity,
		Pattern:         p.Pattern,
		seq:             p.seq,
	}
}

// Summary renders a short one-line description for logs.
func (p *Path) Summary() string {
	return fmt.Sprintf("%s (score %.3f, %d nodes)", p.Pattern, p.Score, len(p.Nodes))
}

// SentenceIDs returns ids of sentence nodes on the path, in path order.
func (p *Path) SentenceIDs(g *graph.Graph) []string {
	var out []string
	for _, id := range p.Nodes {
		if n := g.Node(id); n != nil && n.Kind == graph.SentenceNode {
			out = append(out, id)
		}
	}
	return out
}
