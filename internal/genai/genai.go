// Package genai wraps the chat-completions API used to generate replies.
//
// The client is pointed at an OpenAI-compatible endpoint (Together by
// default) and enforces the bot's response-shape contract: any failure,
// timeout or malformed payload collapses to a fixed persona-consistent
// fallback reply. The user-visible conversation never hard-fails because the
// upstream model is unreachable.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Generation parameter defaults, fixed per the bot's provider contract.
const (
	// DefaultBaseURL is the OpenAI-compatible endpoint used for completions.
	DefaultBaseURL = "https://api.together.xyz/v1"
	// DefaultModel is the generative model identifier.
	DefaultModel = "mistralai/Mixtral-8x7B-Instruct-v0.1"
	// DefaultMaxTokens bounds the completion length.
	DefaultMaxTokens = 500
	// DefaultTemperature is the fixed sampling temperature.
	DefaultTemperature = 0.9
	// DefaultTopP is the fixed nucleus-sampling parameter.
	DefaultTopP = 0.7
	// DefaultTopK is the fixed top-k sampling parameter. The OpenAI schema has
	// no top_k field, so it is injected into the request body directly.
	DefaultTopK = 50
	// DefaultRequestTimeout is the hard per-request timeout.
	DefaultRequestTimeout = 30 * time.Second

	// FallbackReply is returned whenever the provider fails or responds with
	// a malformed payload.
	FallbackReply = "Ugh, my brain's being extra today... 🧠⚡ But I'm still here for you! What's on your mind?"

	// logInputLimit caps how much of the offending input is logged.
	logInputLimit = 50
)

// stopSequences keep the model from speaking for both sides of the chat.
var stopSequences = []string{"</s>", "Human:", "Assistant:"}

// Role tags a history message as bot- or user-authored.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged turn handed to the provider.
type Message struct {
	Role    Role
	Content string
}

// Responder generates a reply from assembled context. Implementations must
// not return an error path to callers; degraded output is a reply too.
type Responder interface {
	Respond(ctx context.Context, systemPrompt string, history []Message, userInput string) string
}

// Opts holds configuration options for the client.
type Opts struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Option defines a configuration option for the client.
type Option func(*Opts)

// WithAPIKey sets the bearer token for the provider.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL overrides the provider endpoint (used in tests).
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel overrides the model identifier.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client calls the chat-completions endpoint with fixed generation
// parameters and applies the fail-open fallback policy.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new generative-language client.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generative API key not set")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultRequestTimeout
	}
	slog.Debug("genai.NewClient: client configured", "base_url", cfg.BaseURL, "model", cfg.Model, "timeout", cfg.Timeout)
	// No provider-side retries: the only recovery mechanism is the fallback
	// reply, bounded by the fixed request timeout.
	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	)
	return &Client{api: api, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Respond generates a reply for the assembled context. On any failure it
// logs the cause with truncated input and returns FallbackReply; it never
// propagates provider errors.
func (c *Client) Respond(ctx context.Context, systemPrompt string, history []Message, userInput string) string {
	start := time.Now()
	reply, err := c.generate(ctx, systemPrompt, history, userInput)
	if err != nil {
		slog.Error("genai.Client.Respond: provider request failed, using fallback",
			"error", err, "input", truncate(userInput, logInputLimit))
		return FallbackReply
	}
	slog.Debug("genai.Client.Respond: reply generated", "duration", time.Since(start), "reply_length", len(reply))
	return reply
}

func (c *Client) generate(ctx context.Context, systemPrompt string, history []Message, userInput string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, msg := range history {
		if msg.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(msg.Content))
		} else {
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	messages = append(messages, openai.UserMessage(userInput))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		MaxTokens:   openai.Int(DefaultMaxTokens),
		Temperature: openai.Float(DefaultTemperature),
		TopP:        openai.Float(DefaultTopP),
		Stop: openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: stopSequences,
		},
	}

	resp, err := c.api.Chat.Completions.New(ctx, params,
		option.WithRequestTimeout(c.timeout),
		option.WithJSONSet("top_k", DefaultTopK),
	)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("provider returned no completion choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("provider returned empty completion content")
	}
	return content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
