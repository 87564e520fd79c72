package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the model produced neither text nor tool calls.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrNotConfigured is returned for missing credentials; it is never retried.
	ErrNotConfigured = errors.New("llm provider not configured")
)

// Client is the provider-neutral generation interface used by the extractor.
type Client interface {
	// GenerateText runs a tool-calling loop and returns the model's final text.
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	// GenerateStructured returns a JSON document conforming to req.Schema.
	GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
}

// Tool is a function the model may call while producing text.
type Tool struct {
	Name        string
	Description string
	Parameters  *Schema
	// Execute receives the raw JSON arguments. Returned errors are reported
	// back to the model as {"error": ...} rather than aborting generation.
	Execute func(ctx context.Context, args json.RawMessage) (map[string]interface{}, error)
}

type TextRequest struct {
	Model  string
	System string
	Prompt string
	Tools  []Tool
	// MaxSteps caps model turns in the tool loop.
	MaxSteps int
}

type StructuredRequest struct {
	Model       string
	System      string
	Prompt      string
	Name        string
	Description string
	Schema      *Schema
}
