package graph

import "sort"

// Statistics holds the basic node and edge counters.
type Statistics struct {
	TotalNodes      int `json:"total_nodes"`
	TotalEdges      int `json:"total_edges"`
	WordNodes       int `json:"word_nodes"`
	SentenceNodes   int `json:"sentence_nodes"`
	ClaimNodes      int `json:"claim_nodes"`
	EntityNodes     int `json:"entity_nodes"`
	StructuralEdges int `json:"structural_edges"`
	DependencyEdges int `json:"dependency_edges"`
	EntityEdges     int `json:"entity_edges"`
	SemanticEdges   int `json:"semantic_edges"`
}

// Statistics counts nodes and edges by kind.
func (g *Graph) Statistics() Statistics {
	s := Statistics{TotalNodes: len(g.nodes), TotalEdges: len(g.edges)}
	for _, n := range g.nodes {
		switch n.Kind {
		case WordNode:
			s.WordNodes++
		case SentenceNode:
			s.SentenceNodes++
		case ClaimNode:
			s.ClaimNodes++
		case EntityNode:
			s.EntityNodes++
		}
	}
	for _, e := range g.edges {
		switch e.Kind {
		case StructuralEdge:
			s.StructuralEdges++
		case DependencyEdge:
			s.DependencyEdges++
		case EntityEdge:
			s.EntityEdges++
		case SemanticEdge:
			s.SemanticEdges++
		}
	}
	return s
}

// SharedWord is a word node connected to both a context sentence and the claim.
type SharedWord struct {
	Word   string `json:"word"`
	POS    string `json:"pos"`
	NodeID string `json:"node_id"`
}

// SharedWords returns the word nodes that occur in both the context and the
// claim, in node insertion order.
func (g *Graph) SharedWords() []SharedWord {
	var out []SharedWord
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		if n.Kind != WordNode {
			continue
		}
		var inSentence, inClaim bool
		for _, e := range g.Incident(id) {
			if e.Kind != StructuralEdge {
				continue
			}
			switch g.nodes[e.Other(id)].Kind {
			case SentenceNode:
				inSentence = true
			case ClaimNode:
				inClaim = true
			}
		}
		if inSentence && inClaim {
			out = append(out, SharedWord{Word: n.Text, POS: n.POS, NodeID: n.ID})
		}
	}
	return out
}

// DependencyRelationCounts returns the count of dependency edges per
// relation label, plus the labels sorted by descending count (ties by label).
func (g *Graph) DependencyRelationCounts() (map[string]int, []string) {
	counts := make(map[string]int)
	for _, key := range g.edgeOrder {
		e := g.edges[key]
		if e.Kind != DependencyEdge {
			continue
		}
		label := e.Relation
		if label == "" {
			label = "unknown"
		}
		counts[label]++
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return counts, labels
}

// EntitySummary describes one entity and its sentence coverage.
type EntitySummary struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	ConnectedSentences int    `json:"connected_sentences"`
}

// EntitySummaries lists entities with their connected-sentence counts, in
// insertion order.
func (g *Graph) EntitySummaries() []EntitySummary {
	var out []EntitySummary
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		if n.Kind != EntityNode {
			continue
		}
		count := 0
		for _, e := range g.Incident(id) {
			if e.Kind == EntityEdge {
				count++
			}
		}
		out = append(out, EntitySummary{Name: n.Text, Type: n.EntityType, ConnectedSentences: count})
	}
	return out
}

// DetailedStatistics extends Statistics with text-level analysis.
type DetailedStatistics struct {
	Statistics
	SharedWordsCount    int             `json:"shared_words_count"`
	SharedWords         []SharedWord    `json:"shared_words"`
	UniqueWords         int             `json:"unique_words"`
	AvgWordsPerSentence float64         `json:"average_words_per_sentence"`
	DependencyRelations map[string]int  `json:"dependency_relations"`
	Entities            []EntitySummary `json:"entities"`
}

// DetailedStatistics computes the full statistics bundle.
func (g *Graph) DetailedStatistics() DetailedStatistics {
	basic := g.Statistics()
	shared := g.SharedWords()
	relations, _ := g.DependencyRelationCounts()

	sentences := basic.SentenceNodes
	if sentences == 0 {
		sentences = 1
	}

	return DetailedStatistics{
		Statistics:          basic,
		SharedWordsCount:    len(shared),
		SharedWords:         shared,
		UniqueWords:         basic.WordNodes,
		AvgWordsPerSentence: float64(basic.WordNodes) / float64(sentences),
		DependencyRelations: relations,
		Entities:            g.EntitySummaries(),
	}
}
