package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vietfact/mintgraph/internal/model"
	"github.com/vietfact/mintgraph/internal/rank"
)

// BatchReport is one record of the aggregate batch output: the input sample
// plus the ranked evidence sentences the beam search surfaced.
type BatchReport struct {
	Context      string   `json:"context"`
	Claim        string   `json:"claim"`
	Evidence     string   `json:"evidence,omitempty"`
	BeamEvidence []string `json:"beam_evidence"`
	Label        string   `json:"label,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// ReadSamples loads a dataset file: a JSON array of context/claim records.
func ReadSamples(path string) ([]model.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	var samples []model.Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("parse samples: %w", err)
	}
	return samples, nil
}

// ProcessFile runs every sample of a dataset file through the pool and
// assembles the batch reports in input order.
func ProcessFile(ctx context.Context, pool *Pool, path string, evidenceLimit int) ([]BatchReport, error) {
	samples, err := ReadSamples(path)
	if err != nil {
		return nil, err
	}

	results := pool.Process(ctx, samples)
	reports := make([]BatchReport, len(results))
	for i, res := range results {
		report := BatchReport{
			Context:      res.Sample.Context,
			Claim:        res.Sample.Claim,
			Evidence:     res.Sample.Evidence,
			Label:        res.Sample.Label,
			BeamEvidence: []string{},
		}
		if res.Err != nil {
			report.Error = res.Err.Error()
		} else if res.Result != nil {
			report.BeamEvidence = rank.EvidenceTexts(res.Result.Sentences, evidenceLimit)
		}
		reports[i] = report
	}
	return reports, nil
}

// WriteReports writes the aggregate batch output file.
func WriteReports(reports []BatchReport, path string) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrSerialization, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", model.ErrSerialization, path, err)
	}
	return nil
}
