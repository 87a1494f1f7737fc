package embed

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/vietfact/mintgraph/internal/model"
)

// OpenAIEmbedder fetches word embeddings from an OpenAI-compatible
// embeddings endpoint. Calls are rate limited so a large word table does not
// hammer the API.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewOpenAIEmbedder creates an embedder from configuration.
func NewOpenAIEmbedder(cfg model.EmbedConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedder API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	embedModel := cfg.Model
	if embedModel == "" {
		embedModel = string(openai.SmallEmbedding3)
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = 5
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   embedModel,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Name returns the backend name.
func (e *OpenAIEmbedder) Name() string {
	return "openai"
}

// Embed fetches the embedding for one word. Timeouts and API failures map
// to the recoverable external-unavailable kind.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text, pos string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: embedder rate wait: %v", model.ErrExternalUnavailable, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embed %q: %v", model.ErrExternalUnavailable, text, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: embed %q: empty response", model.ErrExternalUnavailable, text)
	}
	return resp.Data[0].Embedding, nil
}
