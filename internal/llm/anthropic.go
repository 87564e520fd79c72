package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/nguyentantai21042004/keymoments/internal/logger"
)

type anthropicClient struct {
	client     anthropic.Client
	configured bool
	model      string
	maxTokens  int64
	logger     logger.Logger
}

// NewAnthropic creates a Client for the Anthropic Messages API. SDK-level
// retries are disabled; WithRetry owns the retry budget.
func NewAnthropic(apiKey, model, baseURL string, maxTokens int, log logger.Logger) Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &anthropicClient{
		client:     anthropic.NewClient(opts...),
		configured: apiKey != "",
		model:      model,
		maxTokens:  int64(maxTokens),
		logger:     log,
	}
}

func (a *anthropicClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	if !a.configured {
		return "", fmt.Errorf("%w: set ANTHROPIC_API_KEY or llm.anthropic.api_key", ErrNotConfigured)
	}

	params := a.params(req.Model, req.System)
	for _, t := range req.Tools {
		params.Tools = append(params.Tools, toolParam(t.Name, t.Description, t.Parameters))
	}
	params.Messages = []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
	}

	var lastText string
	for step := 0; step < maxSteps(req.MaxSteps); step++ {
		message, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("anthropic messages: %w", err)
		}

		var text strings.Builder
		var results []anthropic.ContentBlockParamUnion
		for _, block := range message.Content {
			switch block.Type {
			case "text":
				text.WriteString(block.Text)
			case "tool_use":
				out, isErr := dispatch(ctx, req.Tools, block.Name, block.Input)
				a.logger.Debug(ctx, "Tool %s(%s) -> error=%v", block.Name, block.Input, isErr)
				payload, _ := json.Marshal(out)
				results = append(results, anthropic.NewToolResultBlock(block.ID, string(payload), isErr))
			}
		}
		if t := strings.TrimSpace(text.String()); t != "" {
			lastText = t
		}

		if len(results) == 0 {
			if lastText == "" {
				return "", ErrEmptyResponse
			}
			return lastText, nil
		}

		params.Messages = append(params.Messages, message.ToParam(), anthropic.NewUserMessage(results...))
	}

	if lastText == "" {
		return "", fmt.Errorf("tool loop exceeded %d steps: %w", maxSteps(req.MaxSteps), ErrEmptyResponse)
	}
	a.logger.Warn(ctx, "Tool loop hit %d steps, using last analysis text", maxSteps(req.MaxSteps))
	return lastText, nil
}

// GenerateStructured forces a single tool call whose input schema is the
// requested schema and returns the tool input as the document.
func (a *anthropicClient) GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	if !a.configured {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or llm.anthropic.api_key", ErrNotConfigured)
	}

	name := req.Name
	if name == "" {
		name = "respond"
	}

	params := a.params(req.Model, req.System)
	params.Tools = []anthropic.ToolUnionParam{toolParam(name, req.Description, req.Schema)}
	params.ToolChoice = anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{Name: name},
	}
	params.Messages = []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "tool_use" && block.Name == name {
			return json.RawMessage(block.Input), nil
		}
	}
	return nil, ErrEmptyResponse
}

func (a *anthropicClient) params(model, system string) anthropic.MessageNewParams {
	if model == "" {
		model = a.model
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: a.maxTokens,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}

func toolParam(name, description string, schema *Schema) anthropic.ToolUnionParam {
	input := anthropic.ToolInputSchemaParam{
		Type: constant.ValueOf[constant.Object](),
	}
	if schema != nil {
		doc := schema.JSONSchema()
		input.Properties = doc["properties"]
		input.Required = schema.Required
	}

	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        name,
			Description: anthropic.Opt(description),
			InputSchema: input,
		},
	}
}
