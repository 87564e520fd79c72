package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/nguyentantai21042004/keymoments/internal/llm"
	"github.com/nguyentantai21042004/keymoments/internal/models"
)

// keyMomentsSchema is the stage B response shape.
var keyMomentsSchema = &llm.Schema{
	Type: "object",
	Properties: map[string]*llm.Schema{
		"keyMoments": {
			Type: "array",
			Items: &llm.Schema{
				Type: "object",
				Properties: map[string]*llm.Schema{
					"start":       {Type: "number", Description: "Start time in seconds"},
					"end":         {Type: "number", Description: "End time in seconds"},
					"description": {Type: "string", Description: "Description of the key moment"},
				},
				Required: []string{"start", "end", "description"},
			},
		},
	},
	Required: []string{"keyMoments"},
}

func (e *implExtractor) Extract(ctx context.Context, t models.Transcript) ([]models.KeyMomentCandidate, error) {
	if len(t.Utterances) == 0 {
		e.logger.Warn(ctx, "extractor: transcript for %s is empty, no key moments", t.VideoID)
		return nil, nil
	}

	analysis, err := e.analyze(ctx, t)
	if err != nil {
		return nil, err
	}

	candidates, err := e.structure(ctx, analysis)
	if err != nil {
		return nil, err
	}
	e.logger.Info(ctx, "extractor: model proposed %d key moments for %s", len(candidates), t.VideoID)

	return e.repair(ctx, candidates, t.Utterances), nil
}

// analyze is stage A: free-form reasoning with the validation tool available.
func (e *implExtractor) analyze(ctx context.Context, t models.Transcript) (string, error) {
	prompt, err := e.analysisPrompt(t)
	if err != nil {
		return "", err
	}

	text, err := e.client.GenerateText(ctx, llm.TextRequest{
		Model:    e.opts.AnalysisModel,
		Prompt:   prompt,
		Tools:    []llm.Tool{e.validationTool()},
		MaxSteps: e.opts.MaxToolSteps,
	})
	if err != nil {
		return "", fmt.Errorf("analyze transcript: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("analyze transcript: %w", llm.ErrEmptyResponse)
	}

	e.logger.Debug(ctx, "extractor: analysis:\n%s", text)
	return text, nil
}

// structure is stage B: coerce the analysis into the key moment schema.
func (e *implExtractor) structure(ctx context.Context, analysis string) ([]models.KeyMomentCandidate, error) {
	raw, err := e.client.GenerateStructured(ctx, llm.StructuredRequest{
		Model:       e.opts.StructureModel,
		Prompt:      e.structurePrompt(analysis),
		Name:        "key_moments",
		Description: "Key moments selected from the podcast transcript",
		Schema:      keyMomentsSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("structure key moments: %w", err)
	}
	return decodeCandidates(raw)
}

type rawMoment struct {
	Start       *float64 `json:"start"`
	End         *float64 `json:"end"`
	Description *string  `json:"description"`
}

// decodeCandidates enforces the schema strictly. Any malformed entry fails
// the whole response.
func decodeCandidates(raw json.RawMessage) ([]models.KeyMomentCandidate, error) {
	var payload struct {
		KeyMoments *[]rawMoment `json:"keyMoments"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if payload.KeyMoments == nil {
		return nil, fmt.Errorf("%w: missing keyMoments", ErrSchema)
	}

	out := make([]models.KeyMomentCandidate, 0, len(*payload.KeyMoments))
	for i, m := range *payload.KeyMoments {
		switch {
		case m.Start == nil || m.End == nil || m.Description == nil:
			return nil, fmt.Errorf("%w: entry %d is missing start, end or description", ErrSchema, i)
		case !finite(*m.Start) || !finite(*m.End) || *m.Start < 0:
			return nil, fmt.Errorf("%w: entry %d has invalid timestamps", ErrSchema, i)
		case *m.End <= *m.Start:
			return nil, fmt.Errorf("%w: entry %d ends at %s before it starts at %s", ErrSchema, i,
				models.FormatSeconds(*m.End), models.FormatSeconds(*m.Start))
		case strings.TrimSpace(*m.Description) == "":
			return nil, fmt.Errorf("%w: entry %d has an empty description", ErrSchema, i)
		}
		out = append(out, models.KeyMomentCandidate{
			Start:       *m.Start,
			End:         *m.End,
			Description: strings.TrimSpace(*m.Description),
		})
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
