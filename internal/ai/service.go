package ai

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/rentfusion/rentfusion/internal/config"
)

const defaultModel = "gpt-4-turbo-preview"

// Completer is the part of the OpenAI client the service uses.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service runs the letter and contract prompts.
type Service struct {
	client  Completer
	model   string
	timeout time.Duration
	now     func() time.Time
}

// New builds the service on the OpenAI client described by cfg. Without
// an API key every call fails with ErrNotConfigured.
func New(cfg *config.OpenAI) *Service {
	if cfg.APIKey == "" {
		return NewService(nil, cfg)
	}

	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}

	return NewService(openai.NewClientWithConfig(c), cfg)
}

// NewService creates the service on any Completer.
func NewService(client Completer, cfg *config.OpenAI) *Service {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Service{
		client:  client,
		model:   model,
		timeout: cfg.Timeout,
		now:     time.Now,
	}
}

func (s *Service) complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.client == nil {
		return openai.ChatCompletionResponse{}, ErrNotConfigured
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req.Model = s.model

	return s.client.CreateChatCompletion(ctx, req)
}

func firstContent(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}

	return resp.Choices[0].Message.Content
}
