// Package llm wraps Genkit text generation behind a small chat-oriented
// client with a per-request timeout and proactive rate limiting.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/botgpt/botgpt/internal/log"
)

// ErrModel marks failures of the upstream chat model so callers can
// distinguish them from local errors.
var ErrModel = errors.New("model request failed")

// Message roles on the wire to the model.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of model input.
type Message struct {
	Role    string
	Content string
}

// Reply is the model's answer to a Generate call. Tokens is the provider's
// total usage for the request, zero when the provider reports none.
type Reply struct {
	Text   string
	Tokens int
}

// Config configures a Client.
type Config struct {
	Genkit      *genkit.Genkit
	ModelName   string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // per-request deadline, 0 disables
	RateLimiter *rate.Limiter // nil disables proactive limiting
	Logger      log.Logger
}

func (c Config) validate() error {
	if c.Genkit == nil {
		return errors.New("llm: genkit instance is required")
	}
	if c.ModelName == "" {
		return errors.New("llm: model name is required")
	}
	return nil
}

// Client calls a single configured chat model. Each request gets exactly one
// attempt; retry policy belongs to callers, if anywhere.
type Client struct {
	g           *genkit.Genkit
	modelName   string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		g:           cfg.Genkit,
		modelName:   cfg.ModelName,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		limiter:     cfg.RateLimiter,
		logger:      logger,
	}, nil
}

// Generate sends the messages to the model and returns its reply. All
// failures wrap ErrModel.
func (c *Client) Generate(ctx context.Context, messages []Message) (*Reply, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %w", ErrModel, err)
		}
	}

	aiMessages := make([]*ai.Message, len(messages))
	for i, m := range messages {
		aiMessages[i] = ai.NewTextMessage(toGenkitRole(m.Role), m.Content)
	}

	start := time.Now()
	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.modelName),
		ai.WithMessages(aiMessages...),
		ai.WithConfig(&ai.GenerationCommonConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModel, err)
	}

	reply := &Reply{Text: resp.Text()}
	if resp.Usage != nil {
		reply.Tokens = resp.Usage.TotalTokens
	}
	c.logger.Debug("model reply",
		"model", c.modelName,
		"messages", len(messages),
		"tokens", reply.Tokens,
		"elapsed", time.Since(start),
	)
	return reply, nil
}

func toGenkitRole(role string) ai.Role {
	switch role {
	case RoleSystem:
		return ai.RoleSystem
	case RoleAssistant:
		return ai.RoleModel
	default:
		return ai.RoleUser
	}
}
