package llm

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

// OllamaExtractor implements the Extractor interface for Ollama local models.
type OllamaExtractor struct {
	baseURL    string
	httpClient *http.Client
	config     model.LLMConfig
}

// Ollama API structures
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaExtractor creates a new Ollama extractor.
func NewOllamaExtractor(config model.LLMConfig) (*OllamaExtractor, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second // local models can be slow
	}

	return &OllamaExtractor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OllamaExtractor) Name() string {
	return "ollama"
}

// IsAvailable checks if Ollama is reachable.
func (p *OllamaExtractor) IsAvailable(ctx context.Context) bool {
	url := fmt.Sprintf("%s/api/tags", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Extract calls the Ollama generate endpoint once and parses the entity list.
func (p *OllamaExtractor) Extract(ctx context.Context, contextText string) ([]model.Entity, error) {
	chatModel := p.config.Model
	if chatModel == "" {
		chatModel = "llama3.2"
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	body, err := json.Marshal(ollamaRequest{
		Model:  chatModel,
		Prompt: BuildPrompt(contextText),
		Stream: false,
		Options: ollamaOptions{
			Temperature: float64(p.config.Temperature),
			NumPredict:  maxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", model.ErrExternalUnavailable, err)
	}

	url := fmt.Sprintf("%s/api/generate", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", model.ErrExternalUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: Ollama API: %v", model.ErrExternalUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", model.ErrExternalUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%w: Ollama: %s", model.ErrExternalUnavailable, apiErr.Error)
		}
		return nil, fmt.Errorf("%w: Ollama status %d", model.ErrExternalUnavailable, resp.StatusCode)
	}

	var out ollamaResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", model.ErrExternalUnavailable, err)
	}

	return ParseEntities(out.Response)
}
