package graph

import (
	"fmt"

	"github.com/vietfact/mintgraph/internal/model"
)

// BuildOptions controls which tokens become word nodes.
type BuildOptions struct {
	POSFilterEnabled bool
	POSFilterTags    []string
}

// DefaultBuildOptions enables POS filtering with the content POS set.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		POSFilterEnabled: true,
		POSFilterTags:    append([]string(nil), model.DefaultContentPOS...),
	}
}

func (o BuildOptions) keep(pos string) bool {
	if !o.POSFilterEnabled {
		return true
	}
	for _, tag := range o.POSFilterTags {
		if pos == tag {
			return true
		}
	}
	return false
}

// Build materializes word, sentence, and claim nodes plus structural and
// dependency edges from annotator output. Tokens filtered out by POS are
// neither added nor linked; dependencies survive only when both endpoints
// do. A dependency whose head index does not resolve is dropped.
func Build(contextSentences []model.AnnotatedSentence, claimText string, claimSentences []model.AnnotatedSentence, opts BuildOptions) (*Graph, error) {
	g := New()
	claimID := g.SetClaim(claimText)

	for si, sent := range contextSentences {
		if err := validateSentence(sent); err != nil {
			return nil, fmt.Errorf("context sentence %d: %w", si, err)
		}
		sentID := g.AddSentence(sent.Text())
		addUtterance(g, sent, sentID, opts)
	}

	for si, sent := range claimSentences {
		if err := validateSentence(sent); err != nil {
			return nil, fmt.Errorf("claim sentence %d: %w", si, err)
		}
		addUtterance(g, sent, claimID, opts)
	}

	return g, nil
}

// addUtterance adds the surviving tokens of one sentence, connects them to
// the utterance node, then emits intra-sentence dependency edges.
func addUtterance(g *Graph, sent model.AnnotatedSentence, utteranceID string, opts BuildOptions) {
	indexToNode := make(map[int]string, len(sent))

	for _, tok := range sent {
		if !opts.keep(tok.PosTag) {
			continue
		}
		wordID := g.AddWord(tok.WordForm, tok.PosTag, tok.Lemma)
		g.Connect(wordID, utteranceID)
		indexToNode[tok.Index] = wordID
	}

	for _, tok := range sent {
		if tok.Head <= 0 {
			continue // ROOT
		}
		depID, ok := indexToNode[tok.Index]
		if !ok {
			continue
		}
		headID, ok := indexToNode[tok.Head]
		if !ok {
			continue // head filtered out or inconsistent annotation
		}
		g.ConnectDependency(depID, headID, tok.DepLabel)
	}
}

func validateSentence(sent model.AnnotatedSentence) error {
	for i, tok := range sent {
		if tok.Index < 1 {
			return fmt.Errorf("%w: token %d has index %d", model.ErrAnnotatorInput, i, tok.Index)
		}
		if tok.WordForm == "" {
			return fmt.Errorf("%w: token %d has empty word form", model.ErrAnnotatorInput, i)
		}
		if tok.Head < 0 {
			return fmt.Errorf("%w: token %d has negative head %d", model.ErrAnnotatorInput, i, tok.Head)
		}
	}
	return nil
}
