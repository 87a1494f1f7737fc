package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vietfact/mintgraph/internal/pipeline"
	"github.com/vietfact/mintgraph/internal/worker"
)

var (
	concurrency   int
	batchOutput   string
	batchTimeout  time.Duration
	evidenceLimit int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Rank evidence for a dataset of context+claim samples in parallel",
	Long: `Batch processes a dataset file (JSON array of records with context,
claim, and optional evidence/label fields):
- One pipeline per worker, samples fanned out over a worker pool
- Each record gains a beam_evidence list of top ranked sentences
- Results are written as one aggregate JSON file in input order

Example:
  mintgraph batch raw_test.json
  mintgraph batch raw_test.json --concurrency 8 --output results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "aggregate output path (default: output/batch_{timestamp}.json)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().IntVar(&evidenceLimit, "evidence-limit", 10, "ranked sentences kept per sample")

	batchCmd.Flags().StringVar(&annotatorURL, "annotator-url", "", "annotation service base URL")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "entity extractor provider (openai, ollama)")
	batchCmd.Flags().Float64Var(&simThreshold, "similarity-threshold", 0.85, "semantic similarity threshold")
	batchCmd.Flags().IntVar(&topK, "top-k", 5, "semantic neighbors per word")
	batchCmd.Flags().BoolVar(&noEntities, "no-entities", false, "disable entity extraction")
	batchCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "disable semantic edges")
	batchCmd.Flags().StringVar(&rankMethod, "method", "frequency", "ranking method")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := buildConfig(cmd)
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	pool := worker.NewPool(concurrency, func() worker.Runner {
		p, err := newPipeline(cfg, logger)
		if err != nil {
			logger.Error("pipeline setup failed", "err", err)
			return failingRunner{err: err}
		}
		return p
	})

	reports, err := worker.ProcessFile(ctx, pool, file, evidenceLimit)
	if err != nil {
		return err
	}

	out := batchOutput
	if out == "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		out = filepath.Join(cfg.Output.Dir, pipeline.SubstituteTimestamp("batch_{timestamp}.json", time.Now()))
	}
	if err := worker.WriteReports(reports, out); err != nil {
		return err
	}

	succeeded := 0
	for _, r := range reports {
		if r.Error == "" {
			succeeded++
		}
	}
	fmt.Printf("Processed %d samples (%d succeeded), results in %s\n", len(reports), succeeded, out)
	return nil
}

// failingRunner surfaces a pipeline construction error on every sample
// instead of crashing the whole batch.
type failingRunner struct {
	err error
}

func (f failingRunner) Run(ctx context.Context, contextText, claimText string) (*pipeline.Result, error) {
	return nil, f.err
}
