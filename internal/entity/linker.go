package entity

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vietfact/mintgraph/internal/graph"
	"github.com/vietfact/mintgraph/internal/llm"
	"github.com/vietfact/mintgraph/internal/model"
)

// Linker adds entity nodes and sentence-mention edges from one extractor
// call over the full context. Extraction failures degrade to zero entities;
// the pipeline is never aborted from here.
type Linker struct {
	extractor llm.Extractor
	logger    *log.Logger
}

// NewLinker creates a linker. A nil extractor disables entity linking.
func NewLinker(extractor llm.Extractor, logger *log.Logger) *Linker {
	if logger == nil {
		logger = log.Default()
	}
	return &Linker{extractor: extractor, logger: logger}
}

// Link extracts entities and connects each to every sentence that mentions
// it. Returns the number of entity nodes added.
func (l *Linker) Link(ctx context.Context, g *graph.Graph, contextText string, diag *model.Diagnostics) int {
	if l.extractor == nil {
		return 0
	}

	entities, err := l.extractor.Extract(ctx, contextText)
	if err != nil {
		diag.Record(model.ErrExternalUnavailable, "entity extraction: "+err.Error())
		l.logger.Warn("entity extraction failed, continuing without entities", "err", err)
		return 0
	}
	if len(entities) == 0 {
		l.logger.Warn("entity extractor returned no entities")
		return 0
	}

	added := 0
	seen := make(map[string]bool, len(entities))
	for _, e := range entities {
		entityID := g.AddEntity(e.Name, e.Type)
		if !seen[entityID] {
			seen[entityID] = true
			added++
		}
		for _, sentID := range g.SentenceIDs() {
			sent := g.Node(sentID)
			if Mentions(sent.Text, e.Name) {
				g.ConnectEntity(entityID, sentID)
			}
		}
	}
	return added
}

// Mentions reports whether an entity name appears in a sentence. Sentence
// text from the annotator keeps segmentation underscores while extractor
// names use plain spaces, so matching tries the raw name, the
// space→underscore form, and finally requires every word of a multiword
// name in either form.
func Mentions(sentenceText, name string) bool {
	sentence := strings.ToLower(sentenceText)
	lower := strings.ToLower(name)

	if strings.Contains(sentence, lower) {
		return true
	}
	if strings.Contains(sentence, strings.ReplaceAll(lower, " ", "_")) {
		return true
	}

	words := strings.Fields(lower)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if !strings.Contains(sentence, w) && !strings.Contains(sentence, strings.ReplaceAll(w, " ", "_")) {
			return false
		}
	}
	return true
}
