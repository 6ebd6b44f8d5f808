package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/camuig/tradebook/internal/config"
	"github.com/camuig/tradebook/internal/logger"
	"github.com/camuig/tradebook/internal/trade"
)

var (
	ErrMissingAPIKey = errors.New("API Key required")
	ErrService       = errors.New("ai service call failed")
	ErrEmptyAnalysis = errors.New("ai service returned no analysis")
)

// Texts shown to the user in place of an analysis.
const (
	MsgConnectFailed = "Failed to connect to AI Coach. Please check your API key."
	MsgNoAnalysis    = "Could not generate analysis."
)

// Coach asks an OpenAI-compatible chat endpoint to review recent trades.
// The API key is supplied per call and is never kept on the struct.
type Coach struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logger.Logger
}

func NewCoach(cfg *config.Config, log *logger.Logger) *Coach {
	return &Coach{
		baseURL:    cfg.AI.BaseURL,
		model:      cfg.AI.Model,
		timeout:    cfg.AITimeout(),
		httpClient: http.DefaultClient,
		logger:     log,
	}
}

// Analyze never fails: every error becomes one of the fixed user-facing
// messages.
func (c *Coach) Analyze(ctx context.Context, apiKey string, trades []trade.Trade) string {
	text, err := c.Generate(ctx, apiKey, trades)
	switch {
	case err == nil:
		return text
	case errors.Is(err, ErrMissingAPIKey):
		return ErrMissingAPIKey.Error()
	case errors.Is(err, ErrEmptyAnalysis):
		return MsgNoAnalysis
	default:
		c.logger.Error("ai analysis failed", "error", err)
		return MsgConnectFailed
	}
}

// Generate sends the last RecentLimit trades and returns the Markdown reply.
func (c *Coach) Generate(ctx context.Context, apiKey string, trades []trade.Trade) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	userPrompt, err := BuildUserPrompt(trades)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ocfg := openai.DefaultConfig(apiKey)
	ocfg.BaseURL = c.baseURL
	ocfg.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(ocfg)

	c.logger.Info("sending trades to AI coach", "trades", min(len(trades), RecentLimit), "model", c.model)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrService, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyAnalysis
	}

	text := StripThinkTags(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyAnalysis
	}
	c.logger.Info("received AI analysis", "length", len(text))
	return text, nil
}
