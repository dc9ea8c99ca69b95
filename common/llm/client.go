package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Client interface {
	// Chat asks for a JSON object matching Schema and decodes it into result.
	Chat(ctx context.Context, req Request, result any) (*Response, error)
	// Converse continues a free-text conversation.
	Converse(ctx context.Context, req ConverseRequest) (*Completion, error)
	Model() string
}

type Request struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       any
	// Strict enables OpenAI strict schema adherence. Schemas with optional
	// properties must leave it off.
	Strict      bool
	MaxTokens   int
	Temperature *float64 // nil = model default, explicit 0 = deterministic
}

type ConverseRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  *float64
}

type Response struct {
	PromptTokens     int
	CompletionTokens int
}

type Completion struct {
	Content string
	Response
}

type client struct {
	openai    openai.Client
	model     string
	maxTokens int
}

func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Provider != "" && cfg.Provider != ProviderOpenAI {
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return &client{
		openai:    openai.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (c *client) Chat(ctx context.Context, req Request, result any) (*Response, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        req.SchemaName,
		Description: openai.String("Structured response schema"),
		Schema:      req.Schema,
		Strict:      openai.Bool(req.Strict),
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		MaxTokens: openai.Int(int64(c.tokens(req.MaxTokens))),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	content, resp, err := c.complete(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := Decode(ctx, content, result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return resp, nil
}

func (c *client) Converse(ctx context.Context, req ConverseRequest) (*Completion, error) {
	messages := make([]Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, req.Messages...)

	params := openai.ChatCompletionNewParams{
		Model:     c.model,
		Messages:  convertMessages(messages),
		MaxTokens: openai.Int(int64(c.tokens(req.MaxTokens))),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	content, resp, err := c.complete(ctx, params)
	if err != nil {
		return nil, err
	}
	return &Completion{Content: content, Response: *resp}, nil
}

func (c *client) Model() string {
	return c.model
}

func (c *client) tokens(requested int) int {
	if requested > 0 {
		return requested
	}
	return c.maxTokens
}

func (c *client) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, *Response, error) {
	start := time.Now()
	resp, err := c.openai.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", nil, fmt.Errorf("openai chat: %w", err)
	}

	slog.DebugContext(ctx, "llm chat completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("no choices in response")
	}

	return resp.Choices[0].Message.Content, &Response{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
	}, nil
}
