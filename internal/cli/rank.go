package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vietfact/mintgraph/internal/annotate"
	"github.com/vietfact/mintgraph/internal/embed"
	"github.com/vietfact/mintgraph/internal/llm"
	"github.com/vietfact/mintgraph/internal/model"
	"github.com/vietfact/mintgraph/internal/pipeline"
)

var (
	inputFile   string
	contextText string
	claimText   string
	rankTimeout time.Duration

	posFilterOff  bool
	posTags       []string
	simThreshold  float64
	topK          int
	noFastIndex   bool
	beamWidth     int
	maxDepth      int
	maxPaths      int
	rankMethod    string
	autoSaveGraph bool
	autoSavePath  string

	annotatorURL  string
	llmProvider   string
	llmModel      string
	embedModel    string
	noEntities    bool
	noSemantic    bool
	rankOutputDir string
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank context sentences as evidence for a claim",
	Long: `Rank builds the text graph for one context+claim pair and runs the
beam search evidence ranking:
- Word/sentence/claim nodes with structural and dependency edges
- Entity nodes from an LLM extractor, linked to mentioning sentences
- Semantic similarity edges between same-POS words
- Beam search paths from the claim, aggregated into a sentence ranking

Example:
  mintgraph rank --input pair.json
  mintgraph rank --context "..." --claim "..." --method combined
  mintgraph rank --input pair.json --llm-provider openai --top-k 3`,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVar(&inputFile, "input", "", "JSON file with context and claim fields")
	rankCmd.Flags().StringVar(&contextText, "context", "", "context document text")
	rankCmd.Flags().StringVar(&claimText, "claim", "", "claim text")
	rankCmd.Flags().DurationVar(&rankTimeout, "timeout", 5*time.Minute, "overall run timeout")

	rankCmd.Flags().BoolVar(&posFilterOff, "no-pos-filter", false, "keep all tokens regardless of POS tag")
	rankCmd.Flags().StringSliceVar(&posTags, "pos-tags", nil, "override the retained POS tag set")
	rankCmd.Flags().Float64Var(&simThreshold, "similarity-threshold", 0.85, "semantic similarity threshold")
	rankCmd.Flags().IntVar(&topK, "top-k", 5, "semantic neighbors per word")
	rankCmd.Flags().BoolVar(&noFastIndex, "no-fast-index", false, "use brute-force similarity search")
	rankCmd.Flags().IntVar(&beamWidth, "beam-width", 10, "beam width")
	rankCmd.Flags().IntVar(&maxDepth, "max-depth", 6, "maximum path depth")
	rankCmd.Flags().IntVar(&maxPaths, "max-paths", 20, "maximum returned paths")
	rankCmd.Flags().StringVar(&rankMethod, "method", "frequency", "ranking method (frequency, avg_score, max_score, total_score, combined)")
	rankCmd.Flags().BoolVar(&autoSaveGraph, "save-graph", false, "export the graph after build")
	rankCmd.Flags().StringVar(&autoSavePath, "graph-path", "", "graph export path ({timestamp} is substituted)")

	rankCmd.Flags().StringVar(&annotatorURL, "annotator-url", "", "annotation service base URL")
	rankCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "entity extractor provider (openai, ollama)")
	rankCmd.Flags().StringVar(&llmModel, "llm-model", "", "entity extractor model name")
	rankCmd.Flags().StringVar(&embedModel, "embed-model", "", "embedding model name")
	rankCmd.Flags().BoolVar(&noEntities, "no-entities", false, "disable entity extraction")
	rankCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "disable semantic edges")
	rankCmd.Flags().StringVar(&rankOutputDir, "output-dir", "", "output directory for reports")
}

// buildConfig layers defaults, config file, environment, and flags.
func buildConfig(cmd *cobra.Command) *model.Config {
	cfg := model.DefaultConfig()
	_ = viper.Unmarshal(cfg)

	flags := cmd.Flags()
	if flags.Changed("no-pos-filter") {
		cfg.Graph.POSFilterEnabled = !posFilterOff
	}
	if flags.Changed("pos-tags") {
		cfg.Graph.POSFilterTags = posTags
	}
	if flags.Changed("similarity-threshold") {
		cfg.Semantic.SimilarityThreshold = simThreshold
	}
	if flags.Changed("top-k") {
		cfg.Semantic.TopK = topK
	}
	if flags.Changed("no-fast-index") {
		cfg.Semantic.UseFastIndex = !noFastIndex
	}
	if flags.Changed("beam-width") {
		cfg.Beam.BeamWidth = beamWidth
	}
	if flags.Changed("max-depth") {
		cfg.Beam.MaxDepth = maxDepth
	}
	if flags.Changed("max-paths") {
		cfg.Beam.MaxPaths = maxPaths
	}
	if flags.Changed("method") {
		cfg.Rank.Method = rankMethod
	}
	if flags.Changed("save-graph") {
		cfg.Graph.AutoSaveGraph = autoSaveGraph
	}
	if flags.Changed("graph-path") {
		cfg.Graph.AutoSavePath = autoSavePath
	}
	if flags.Changed("annotator-url") {
		cfg.Annotator.BaseURL = annotatorURL
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("embed-model") {
		cfg.Embed.Model = embedModel
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = rankOutputDir
	}
	if noEntities {
		cfg.LLM.Provider = ""
	}
	if noSemantic {
		cfg.Semantic.Enabled = false
	}
	cfg.Output.Verbose = verbose

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Embed.APIKey == "" {
		cfg.Embed.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg
}

// loadPair reads the context and claim from flags or the input file.
func loadPair() (string, string, error) {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", "", fmt.Errorf("read input: %w", err)
		}
		var pair model.Sample
		if err := json.Unmarshal(data, &pair); err != nil {
			return "", "", fmt.Errorf("parse input: %w", err)
		}
		if pair.Claim == "" {
			return "", "", fmt.Errorf("input file must contain a claim field")
		}
		return pair.Context, pair.Claim, nil
	}
	if claimText == "" {
		return "", "", fmt.Errorf("provide --input, or --context and --claim")
	}
	return contextText, claimText, nil
}

// newPipeline wires the external collaborators from configuration.
func newPipeline(cfg *model.Config, logger *log.Logger) (*pipeline.Pipeline, error) {
	annotator := annotate.NewHTTPAnnotator(cfg.Annotator)

	extractor, err := llm.NewExtractor(cfg.LLM)
	if err != nil {
		return nil, err
	}

	var embedder embed.Embedder
	if cfg.Semantic.Enabled {
		if cfg.Embed.APIKey == "" {
			logger.Warn("no embedder API key, semantic edges disabled")
		} else {
			e, err := embed.NewOpenAIEmbedder(cfg.Embed)
			if err != nil {
				return nil, err
			}
			embedder = e
		}
	}

	return pipeline.New(cfg, annotator, extractor, embedder, logger), nil
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rankTimeout)
	defer cancel()

	cfg := buildConfig(cmd)
	if !model.ValidRankMethod(model.RankMethod(cfg.Rank.Method)) {
		return fmt.Errorf("unknown ranking method %q", cfg.Rank.Method)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	contextDoc, claim, err := loadPair()
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, contextDoc, claim)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	renderer := pipeline.NewRenderer(verbose)
	if err := renderer.RenderPathsJSON(result, filepath.Join(cfg.Output.Dir, "beam_search_paths_"+stamp+".json")); err != nil {
		return err
	}
	if err := renderer.RenderPathsSummary(result, filepath.Join(cfg.Output.Dir, "beam_search_summary_"+stamp+".txt")); err != nil {
		return err
	}
	if err := renderer.RenderSentencesJSON(result, model.RankMethod(cfg.Rank.Method), filepath.Join(cfg.Output.Dir, "sentence_ranking_"+stamp+".json")); err != nil {
		return err
	}

	renderer.RenderSummary(result)
	return nil
}
