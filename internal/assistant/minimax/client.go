// Package minimax provides the MiniMax chat completion provider, reached
// through its Anthropic-compatible messages endpoint.
package minimax

import (
	"context"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/waypoint-labs/waypoint/internal/assistant"
)

const (
	// ProviderName identifies this provider in logs and metrics.
	ProviderName = "minimax"

	// DefaultBaseURL is MiniMax's Anthropic-compatible endpoint.
	DefaultBaseURL = "https://api.minimaxi.com/anthropic"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "MiniMax-M2.1"

	// DefaultMaxTokens bounds the response size per invocation.
	DefaultMaxTokens = 4096

	// DefaultTimeout covers one full model invocation.
	DefaultTimeout = 60 * time.Second
)

// ClientConfig holds configuration for the MiniMax client.
type ClientConfig struct {
	// APIKey is the MiniMax API key. Required.
	APIKey string

	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// Model overrides the chat model. Defaults to DefaultModel.
	Model string

	// MaxTokens overrides the response token budget. Defaults to
	// DefaultMaxTokens.
	MaxTokens int64

	// Timeout overrides the per-invocation timeout. Defaults to
	// DefaultTimeout.
	Timeout time.Duration

	// Logger is used for structured logging.
	Logger zerolog.Logger
}

// Client talks to MiniMax over the Anthropic messages protocol. It
// implements assistant.Provider.
type Client struct {
	api       anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    zerolog.Logger
}

// NewClient creates a MiniMax client from the given configuration.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	api := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	)

	return &Client{
		api:       api,
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		logger:    cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderName
}

// Complete sends one completion request to MiniMax and converts the
// response back into domain blocks.
func (c *Client) Complete(ctx context.Context, req assistant.CompletionRequest) (*assistant.Completion, error) {
	start := time.Now()

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: toMessageParams(req.Turns),
		Tools:    toToolParams(req.Tools),
	}

	resp, err := c.api.Messages.New(ctx, params)
	if err != nil {
		c.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("completion failed")
		return nil, err
	}

	completion := &assistant.Completion{
		Blocks:     fromContentBlocks(resp.Content),
		StopReason: assistant.StopReason(resp.StopReason),
	}

	c.logger.Debug().
		Str("stop_reason", string(resp.StopReason)).
		Int("blocks", len(completion.Blocks)).
		Dur("duration", time.Since(start)).
		Msg("completion received")

	return completion, nil
}

func toMessageParams(turns []assistant.Turn) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, turn := range turns {
		role := anthropic.MessageParamRoleUser
		if turn.Role == assistant.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}

		content := make([]anthropic.ContentBlockParamUnion, 0, len(turn.Blocks))
		for _, block := range turn.Blocks {
			switch block.Kind {
			case assistant.BlockText:
				content = append(content, anthropic.NewTextBlock(block.Text))
			case assistant.BlockToolUse:
				content = append(content, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    block.ToolUseID,
						Name:  block.ToolName,
						Input: block.ToolInput,
					},
				})
			case assistant.BlockToolResult:
				content = append(content, anthropic.ContentBlockParamUnion{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: block.ToolUseID,
						IsError:   anthropic.Bool(block.IsError),
						Content: []anthropic.ToolResultBlockParamContentUnion{
							{OfText: &anthropic.TextBlockParam{Text: block.Result}},
						},
					},
				})
			}
		}

		messages = append(messages, anthropic.MessageParam{Role: role, Content: content})
	}
	return messages
}

func toToolParams(tools []assistant.ToolDescriptor) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		properties := make(map[string]any, len(tool.Parameters))
		for name, spec := range tool.Parameters {
			prop := map[string]any{
				"type":        spec.Type,
				"description": spec.Description,
			}
			if len(spec.Enum) > 0 {
				prop["enum"] = spec.Enum
			}
			properties[name] = prop
		}

		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   tool.Required,
				},
			},
		})
	}
	return params
}

func fromContentBlocks(blocks []anthropic.ContentBlockUnion) []assistant.Block {
	converted := make([]assistant.Block, 0, len(blocks))
	for _, block := range blocks {
		switch block.Type {
		case "text":
			converted = append(converted, assistant.TextBlock(block.Text))
		case "tool_use":
			converted = append(converted, assistant.Block{
				Kind:      assistant.BlockToolUse,
				ToolUseID: block.ID,
				ToolName:  block.Name,
				ToolInput: block.Input,
			})
		}
	}
	return converted
}
