package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vietfact/mintgraph/internal/model"
)

// Annotator segments text into sentences of annotated tokens (word form,
// POS tag, lemma, dependency head and label). Head indices are 1-based
// within the sentence, 0 for ROOT.
type Annotator interface {
	Annotate(ctx context.Context, text string) ([]model.AnnotatedSentence, error)
}

// HTTPAnnotator talks to a VnCoreNLP-style annotation service over JSON.
type HTTPAnnotator struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPAnnotator creates a client for the annotation service.
func NewHTTPAnnotator(cfg model.AnnotatorConfig) *HTTPAnnotator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAnnotator{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type annotateRequest struct {
	Text string `json:"text"`
}

type annotateResponse struct {
	Sentences []model.AnnotatedSentence `json:"sentences"`
}

// Annotate posts text to the service and validates the token records it
// returns. Malformed records are an annotator input error, which is fatal
// to the graph build.
func (a *HTTPAnnotator) Annotate(ctx context.Context, text string) ([]model.AnnotatedSentence, error) {
	body, err := json.Marshal(annotateRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal annotate request: %w", err)
	}

	url := a.baseURL + "/annotate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build annotate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("annotator call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read annotator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("annotator status %d", resp.StatusCode)
	}

	var out annotateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode annotator response: %v", model.ErrAnnotatorInput, err)
	}

	for si, sent := range out.Sentences {
		for ti, tok := range sent {
			if tok.Index < 1 || tok.WordForm == "" || tok.Head < 0 {
				return nil, fmt.Errorf("%w: sentence %d token %d is malformed", model.ErrAnnotatorInput, si, ti)
			}
		}
	}
	return out.Sentences, nil
}
