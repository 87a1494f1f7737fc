package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/vietfact/mintgraph/internal/model"
)

// OpenAIExtractor implements the Extractor interface for OpenAI models.
type OpenAIExtractor struct {
	client  *openai.Client
	config  model.LLMConfig
	limiter *rate.Limiter
}

// NewOpenAIExtractor creates a new OpenAI extractor.
func NewOpenAIExtractor(config model.LLMConfig) (*OpenAIExtractor, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	rps := config.RPS
	if rps <= 0 {
		rps = 2
	}

	return &OpenAIExtractor{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Name returns the provider name.
func (p *OpenAIExtractor) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured.
func (p *OpenAIExtractor) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Extract calls the Chat Completions API once with the full context and
// parses the strict-JSON entity list. Every failure maps to the recoverable
// external-unavailable kind so the pipeline degrades instead of aborting.
func (p *OpenAIExtractor) Extract(ctx context.Context, contextText string) ([]model.Entity, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: extractor rate wait: %v", model.ErrExternalUnavailable, err)
	}

	chatModel := p.config.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(contextText),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: p.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: OpenAI API: %v", model.ErrExternalUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response from OpenAI", model.ErrExternalUnavailable)
	}

	return ParseEntities(resp.Choices[0].Message.Content)
}
