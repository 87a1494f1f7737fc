package graph

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vietfact/mintgraph/internal/model"
)

// GEXF serialization compatible with external graph tooling. Every node
// carries kind/text/pos/lemma/type attributes and every edge carries
// kind/relation/similarity; attributes that do not apply serialize as empty
// strings, never as a null sentinel, so round-trips are lossless.

const gexfNamespace = "http://www.gexf.net/1.2draft"

type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	XMLNS   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfGraph struct {
	Mode            string          `xml:"mode,attr"`
	DefaultEdgeType string          `xml:"defaultedgetype,attr"`
	Attributes      []gexfAttrClass `xml:"attributes"`
	Nodes           []gexfNode      `xml:"nodes>node"`
	Edges           []gexfEdge      `xml:"edges>edge"`
}

type gexfAttrClass struct {
	Class string     `xml:"class,attr"`
	Attrs []gexfAttr `xml:"attribute"`
}

type gexfAttr struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type gexfNode struct {
	ID        string          `xml:"id,attr"`
	Label     string          `xml:"label,attr"`
	AttValues []gexfAttrValue `xml:"attvalues>attvalue"`
}

type gexfEdge struct {
	ID        string          `xml:"id,attr"`
	Source    string          `xml:"source,attr"`
	Target    string          `xml:"target,attr"`
	AttValues []gexfAttrValue `xml:"attvalues>attvalue"`
}

type gexfAttrValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

var nodeAttrTitles = []string{"kind", "text", "pos", "lemma", "type"}
var edgeAttrTitles = []string{"kind", "relation", "similarity"}

func attrClass(class string, titles []string) gexfAttrClass {
	out := gexfAttrClass{Class: class}
	for i, title := range titles {
		out.Attrs = append(out.Attrs, gexfAttr{ID: strconv.Itoa(i), Title: title, Type: "string"})
	}
	return out
}

func similarityString(e *Edge) string {
	if e.Kind != SemanticEdge {
		return ""
	}
	return strconv.FormatFloat(e.Similarity, 'f', -1, 64)
}

// MarshalGEXF serializes the graph to GEXF bytes.
func (g *Graph) MarshalGEXF() ([]byte, error) {
	doc := gexfDoc{
		XMLNS:   gexfNamespace,
		Version: "1.2",
		Graph: gexfGraph{
			Mode:            "static",
			DefaultEdgeType: "undirected",
			Attributes: []gexfAttrClass{
				attrClass("node", nodeAttrTitles),
				attrClass("edge", edgeAttrTitles),
			},
		},
	}

	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		doc.Graph.Nodes = append(doc.Graph.Nodes, gexfNode{
			ID:    n.ID,
			Label: n.Text,
			AttValues: []gexfAttrValue{
				{For: "0", Value: n.Kind.String()},
				{For: "1", Value: n.Text},
				{For: "2", Value: n.POS},
				{For: "3", Value: n.Lemma},
				{For: "4", Value: n.EntityType},
			},
		})
	}

	for i, key := range g.edgeOrder {
		e := g.edges[key]
		doc.Graph.Edges = append(doc.Graph.Edges, gexfEdge{
			ID:     strconv.Itoa(i),
			Source: e.Source,
			Target: e.Target,
			AttValues: []gexfAttrValue{
				{For: "0", Value: e.Kind.String()},
				{For: "1", Value: e.Relation},
				{For: "2", Value: similarityString(e)},
			},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSerialization, err)
	}
	return append([]byte(xml.Header), out...), nil
}

// WriteGEXF writes the graph to a file.
func (g *Graph) WriteGEXF(path string) error {
	data, err := g.MarshalGEXF()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", model.ErrSerialization, path, err)
	}
	return nil
}

// UnmarshalGEXF parses GEXF bytes into a new graph, rebuilding the per-kind
// lookup maps.
func UnmarshalGEXF(data []byte) (*Graph, error) {
	var doc gexfDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSerialization, err)
	}

	nodeTitles, edgeTitles := attrTitleMaps(doc.Graph.Attributes)

	g := New()
	for _, gn := range doc.Graph.Nodes {
		attrs := attrValues(gn.AttValues, nodeTitles)
		kind, err := ParseNodeKind(attrs["kind"])
		if err != nil {
			return nil, fmt.Errorf("%w: node %s: %v", model.ErrSerialization, gn.ID, err)
		}
		n := &Node{
			ID:         gn.ID,
			Kind:       kind,
			Text:       attrs["text"],
			POS:        attrs["pos"],
			Lemma:      attrs["lemma"],
			EntityType: attrs["type"],
		}
		switch kind {
		case WordNode:
			g.words[wordKey{text: n.Text, pos: n.POS}] = n.ID
		case SentenceNode:
			idx, err := strconv.Atoi(strings.TrimPrefix(gn.ID, "sentence_"))
			if err != nil {
				return nil, fmt.Errorf("%w: sentence node id %q", model.ErrSerialization, gn.ID)
			}
			n.SentenceID = idx
			g.sentences = append(g.sentences, n.ID)
		case ClaimNode:
			g.claimID = n.ID
		case EntityNode:
			g.entities[n.Text] = n.ID
		}
		g.addNode(n)
	}

	for _, ge := range doc.Graph.Edges {
		attrs := attrValues(ge.AttValues, edgeTitles)
		kind, err := ParseEdgeKind(attrs["kind"])
		if err != nil {
			return nil, fmt.Errorf("%w: edge %s-%s: %v", model.ErrSerialization, ge.Source, ge.Target, err)
		}
		e := &Edge{Source: ge.Source, Target: ge.Target, Kind: kind, Relation: attrs["relation"]}
		if raw := attrs["similarity"]; raw != "" {
			sim, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: edge %s-%s similarity %q", model.ErrSerialization, ge.Source, ge.Target, raw)
			}
			e.Similarity = sim
		}
		g.addEdge(e)
	}

	return g, nil
}

// ReadGEXF loads a graph from a file.
func ReadGEXF(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", model.ErrSerialization, path, err)
	}
	return UnmarshalGEXF(data)
}

func attrTitleMaps(classes []gexfAttrClass) (node, edge map[string]string) {
	node = make(map[string]string)
	edge = make(map[string]string)
	for _, class := range classes {
		for _, attr := range class.Attrs {
			switch class.Class {
			case "node":
				node[attr.ID] = attr.Title
			case "edge":
				edge[attr.ID] = attr.Title
			}
		}
	}
	return node, edge
}

func attrValues(values []gexfAttrValue, titles map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for _, v := range values {
		if title, ok := titles[v.For]; ok {
			out[title] = v.Value
		}
	}
	return out
}
