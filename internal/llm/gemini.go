package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"google.golang.org/genai"
)

type geminiClient struct {
	apiKeys    []string
	currentKey int
	baseURL    string
	model      string
	maxTokens  int32
	logger     logger.Logger
}

// NewGemini creates a Client that rotates through the supplied Gemini API keys.
func NewGemini(apiKeys []string, model, baseURL string, maxTokens int, log logger.Logger) Client {
	return &geminiClient{
		apiKeys:   apiKeys,
		baseURL:   baseURL,
		model:     model,
		maxTokens: int32(maxTokens),
		logger:    log,
	}
}

func (g *geminiClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: g.maxTokens}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters.GenaiSchema(),
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := genai.Text(req.Prompt)
	var lastText string

	for step := 0; step < maxSteps(req.MaxSteps); step++ {
		result, err := g.generate(ctx, g.modelFor(req.Model), contents, cfg)
		if err != nil {
			return "", err
		}

		content := result.Candidates[0].Content
		text, calls := splitParts(content)
		if text != "" {
			lastText = text
		}
		if len(calls) == 0 {
			if lastText == "" {
				return "", ErrEmptyResponse
			}
			return lastText, nil
		}

		contents = append(contents, content)
		responses := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			args, _ := json.Marshal(call.Args)
			out, isErr := dispatch(ctx, req.Tools, call.Name, args)
			g.logger.Debug(ctx, "Tool %s(%s) -> error=%v", call.Name, args, isErr)
			part := genai.NewPartFromFunctionResponse(call.Name, out)
			part.FunctionResponse.ID = call.ID
			responses = append(responses, part)
		}
		contents = append(contents, genai.NewContentFromParts(responses, genai.RoleUser))
	}

	if lastText == "" {
		return "", fmt.Errorf("tool loop exceeded %d steps: %w", maxSteps(req.MaxSteps), ErrEmptyResponse)
	}
	g.logger.Warn(ctx, "Tool loop hit %d steps, using last analysis text", maxSteps(req.MaxSteps))
	return lastText, nil
}

func (g *geminiClient) GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens:  g.maxTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema.GenaiSchema(),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	result, err := g.generate(ctx, g.modelFor(req.Model), genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, err
	}

	text, _ := splitParts(result.Candidates[0].Content)
	text = stripCodeFence(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return json.RawMessage(text), nil
}

// generate sends one request, rotating API keys on 429 / quota errors.
func (g *geminiClient) generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if len(g.apiKeys) == 0 {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY or llm.gemini.api_keys", ErrNotConfigured)
	}

	attempts := len(g.apiKeys)
	var lastErr error

	for range attempts {
		key := g.apiKeys[g.currentKey]

		clientCfg := &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		}
		if g.baseURL != "" {
			clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
		}

		client, err := genai.NewClient(ctx, clientCfg)
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, model, contents, cfg)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", g.currentKey+1)
				g.rotateKey()
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("generate content: %w", err)
		}

		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return nil, ErrEmptyResponse
		}
		return result, nil
	}

	return nil, fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *geminiClient) rotateKey() {
	g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
}

func (g *geminiClient) modelFor(model string) string {
	if model != "" {
		return model
	}
	return g.model
}

func splitParts(content *genai.Content) (string, []*genai.FunctionCall) {
	var text strings.Builder
	var calls []*genai.FunctionCall
	for _, part := range content.Parts {
		if part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(text.String()), calls
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
