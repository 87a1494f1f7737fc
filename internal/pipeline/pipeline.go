package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vietfact/mintgraph/internal/annotate"
	"github.com/vietfact/mintgraph/internal/beam"
	"github.com/vietfact/mintgraph/internal/embed"
	"github.com/vietfact/mintgraph/internal/entity"
	"github.com/vietfact/mintgraph/internal/graph"
	"github.com/vietfact/mintgraph/internal/llm"
	"github.com/vietfact/mintgraph/internal/model"
	"github.com/vietfact/mintgraph/internal/rank"
	"github.com/vietfact/mintgraph/internal/semantic"
)

// Pipeline runs the five stages for one (context, claim) pair: graph build,
// entity linking, semantic edges, beam search, sentence ranking. One
// pipeline processes one pair on one goroutine; independent pipelines may
// run in parallel with no shared state.
type Pipeline struct {
	annotator annotate.Annotator
	extractor llm.Extractor  // nil disables entity linking
	embedder  embed.Embedder // nil disables semantic edges
	config    *model.Config
	logger    *log.Logger
}

// New creates a pipeline. The embedder is wrapped with the process-lifetime
// embedding cache here so repeat words cost one external call.
func New(cfg *model.Config, annotator annotate.Annotator, extractor llm.Extractor, embedder embed.Embedder, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	if embedder != nil {
		embedder = embed.NewCached(embedder)
	}
	return &Pipeline{
		annotator: annotator,
		extractor: extractor,
		embedder:  embedder,
		config:    cfg,
		logger:    logger,
	}
}

// Result is everything one run produces: the finished graph and the ranked
// sentence list, possibly empty, plus diagnostics for recoverable failures.
type Result struct {
	Graph         *graph.Graph
	Paths         []*beam.Path
	Sentences     []model.RankedSentence
	SemanticStats semantic.Stats
	Diagnostics   model.Diagnostics
	Export        beam.Export
}

// Run processes one context+claim pair start to finish. Fatal errors abort
// with a tagged error; recoverable failures degrade features and are
// recorded in the result's diagnostics.
func (p *Pipeline) Run(ctx context.Context, contextText, claimText string) (*Result, error) {
	res := &Result{}

	// Annotate both texts.
	var contextSentences []model.AnnotatedSentence
	if strings.TrimSpace(contextText) != "" {
		sents, err := p.annotator.Annotate(ctx, contextText)
		if err != nil {
			return nil, fmt.Errorf("annotate context: %w", err)
		}
		contextSentences = sents
	}
	claimSentences, err := p.annotator.Annotate(ctx, claimText)
	if err != nil {
		return nil, fmt.Errorf("annotate claim: %w", err)
	}

	// Stage A: graph construction.
	opts := graph.BuildOptions{
		POSFilterEnabled: p.config.Graph.POSFilterEnabled,
		POSFilterTags:    p.config.Graph.POSFilterTags,
	}
	g, err := graph.Build(contextSentences, claimText, claimSentences, opts)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	res.Graph = g

	// Stage B: entity linking (recoverable).
	linker := entity.NewLinker(p.extractor, p.logger)
	added := linker.Link(ctx, g, contextText, &res.Diagnostics)
	if added > 0 {
		p.logger.Debug("entities linked", "count", added)
	}

	// Stage C: semantic edges (recoverable).
	if p.embedder != nil && p.config.Semantic.Enabled {
		builder := semantic.NewBuilder(p.embedder, p.config.Semantic, p.logger)
		stats, err := builder.Build(ctx, g, &res.Diagnostics)
		if err != nil {
			return nil, fmt.Errorf("semantic edges: %w", err)
		}
		res.SemanticStats = stats
	}

	// Optional graph export before search.
	if p.config.Graph.AutoSaveGraph {
		path := SubstituteTimestamp(p.config.Graph.AutoSavePath, time.Now())
		if err := g.WriteGEXF(path); err != nil {
			res.Diagnostics.Record(model.ErrSerialization, "auto-save graph: "+err.Error())
			p.logger.Warn("graph auto-save failed", "path", path, "err", err)
		}
	}

	// Stage D: beam search.
	finder := beam.NewFinder(g, p.config.Beam)
	res.Paths = finder.FindPaths()
	res.Export = beam.NewExport(g, finder, res.Paths)

	// Stage E: sentence ranking. An empty path list ranks to an empty list.
	method := model.RankMethod(p.config.Rank.Method)
	sentences, err := rank.Sentences(g, res.Paths, method)
	if err != nil {
		return nil, fmt.Errorf("rank sentences: %w", err)
	}
	res.Sentences = sentences

	return res, nil
}

// SubstituteTimestamp replaces the {timestamp} placeholder in a path
// template with t formatted as 20060102_150405.
func SubstituteTimestamp(path string, t time.Time) string {
	return strings.ReplaceAll(path, "{timestamp}", t.Format("20060102_150405"))
}
