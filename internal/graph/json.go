package graph

import (
	"encoding/json"
	"fmt"

	"github.com/vietfact/mintgraph/internal/model"
)

type jsonNode struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	POS   string `json:"pos"`
	Lemma string `json:"lemma"`
	Type  string `json:"type"`
}

type jsonEdge struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	Kind       string `json:"kind"`
	Relation   string `json:"relation"`
	Similarity string `json:"similarity"`
}

type jsonGraph struct {
	Nodes      []jsonNode         `json:"nodes"`
	Edges      []jsonEdge         `json:"edges"`
	Statistics DetailedStatistics `json:"statistics"`
}

// ExportJSON renders the graph and its statistics as indented JSON.
func (g *Graph) ExportJSON() ([]byte, error) {
	doc := jsonGraph{Statistics: g.DetailedStatistics()}

	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		doc.Nodes = append(doc.Nodes, jsonNode{
			ID:    n.ID,
			Kind:  n.Kind.String(),
			Text:  n.Text,
			POS:   n.POS,
			Lemma: n.Lemma,
			Type:  n.EntityType,
		})
	}

	for _, key := range g.edgeOrder {
		e := g.edges[key]
		doc.Edges = append(doc.Edges, jsonEdge{
			Source:     e.Source,
			Target:     e.Target,
			Kind:       e.Kind.String(),
			Relation:   e.Relation,
			Similarity: similarityString(e),
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSerialization, err)
	}
	return out, nil
}
