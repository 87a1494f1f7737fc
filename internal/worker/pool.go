package worker

import (
	"context"
	"sync"

	"github.com/vietfact/mintgraph/internal/model"
	"github.com/vietfact/mintgraph/internal/pipeline"
)

// RankJob is one dataset sample to push through a pipeline.
type RankJob struct {
	Index  int
	Sample model.Sample
}

// RankResult pairs a job with its pipeline output or error.
type RankResult struct {
	Index  int
	Sample model.Sample
	Result *pipeline.Result
	Err    error
}

// Runner processes one sample start to finish.
type Runner interface {
	Run(ctx context.Context, contextText, claimText string) (*pipeline.Result, error)
}

// Pool fans RankJobs out over a fixed number of workers. Each worker owns
// its jobs end to end, so pipelines never share mutable state.
type Pool struct {
	workers int
	factory func() Runner
	jobs    chan RankJob
	results chan RankResult
	wg      sync.WaitGroup
}

// NewPool creates a pool. factory is called once per worker so every worker
// gets its own pipeline (and embedding cache).
func NewPool(workers int, factory func() Runner) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		factory: factory,
		jobs:    make(chan RankJob, workers*2),
		results: make(chan RankResult, workers*2),
	}
}

// Process runs all samples and returns results ordered by sample index.
func (p *Pool) Process(ctx context.Context, samples []model.Sample) []RankResult {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}

	go func() {
		defer close(p.jobs)
		for i, sample := range samples {
			select {
			case <-ctx.Done():
				return
			case p.jobs <- RankJob{Index: i, Sample: sample}:
			}
		}
	}()

	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	ordered := make([]RankResult, len(samples))
	done := make([]bool, len(samples))
	for res := range p.results {
		ordered[res.Index] = res
		done[res.Index] = true
	}
	// Samples dropped by cancellation surface as context errors.
	for i := range ordered {
		if !done[i] {
			ordered[i] = RankResult{Index: i, Sample: samples[i], Err: ctx.Err()}
		}
	}
	return ordered
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	runner := p.factory()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result, err := runner.Run(ctx, job.Sample.Context, job.Sample.Claim)
			out := RankResult{Index: job.Index, Sample: job.Sample, Result: result, Err: err}
			select {
			case p.results <- out:
			case <-ctx.Done():
				return
			}
		}
	}
}
