package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/keymoments/internal/config"
	"github.com/nguyentantai21042004/keymoments/internal/llm"
	"github.com/nguyentantai21042004/keymoments/internal/models"
)

// validationTool returns the stage A tool selected by Options.ValidationTool.
func (e *implExtractor) validationTool() llm.Tool {
	if e.opts.ValidationTool == config.ToolCandidate {
		return e.candidateTool()
	}
	return e.durationTool()
}

func (e *implExtractor) durationTool() llm.Tool {
	return llm.Tool{
		Name: "check_duration",
		Description: fmt.Sprintf("Check if the duration of a key moment is around %s seconds (between %s and %s).",
			models.FormatSeconds(e.opts.TargetDuration),
			models.FormatSeconds(e.opts.minDuration()),
			models.FormatSeconds(e.opts.maxDuration())),
		Parameters: &llm.Schema{
			Type: "object",
			Properties: map[string]*llm.Schema{
				"duration": {Type: "number", Description: "Duration of the key moment in seconds"},
			},
			Required: []string{"duration"},
		},
		Execute: func(ctx context.Context, args json.RawMessage) (map[string]interface{}, error) {
			var in struct {
				Duration *float64 `json:"duration"`
			}
			if err := json.Unmarshal(args, &in); err != nil || in.Duration == nil {
				return map[string]interface{}{"error": "duration must be a number of seconds"}, nil
			}
			if msg := e.checkDuration(*in.Duration); msg != "" {
				return map[string]interface{}{"error": msg}, nil
			}
			return map[string]interface{}{"duration": *in.Duration}, nil
		},
	}
}

func (e *implExtractor) candidateTool() llm.Tool {
	return llm.Tool{
		Name:        "validate_key_moment",
		Description: "Validate a proposed key moment: its duration must fit the target window and it must be about the guest, not the host.",
		Parameters: &llm.Schema{
			Type: "object",
			Properties: map[string]*llm.Schema{
				"start":       {Type: "number", Description: "Start time in seconds"},
				"end":         {Type: "number", Description: "End time in seconds"},
				"description": {Type: "string", Description: "Description of the key moment"},
			},
			Required: []string{"start", "end", "description"},
		},
		Execute: func(ctx context.Context, args json.RawMessage) (map[string]interface{}, error) {
			var in struct {
				Start       *float64 `json:"start"`
				End         *float64 `json:"end"`
				Description string   `json:"description"`
			}
			if err := json.Unmarshal(args, &in); err != nil || in.Start == nil || in.End == nil {
				return map[string]interface{}{"error": "start and end must be numbers of seconds"}, nil
			}
			if msg := e.checkCandidate(*in.Start, *in.End, in.Description); msg != "" {
				return map[string]interface{}{"error": msg}, nil
			}
			return map[string]interface{}{
				"start":       *in.Start,
				"end":         *in.End,
				"description": in.Description,
				"duration":    *in.End - *in.Start,
			}, nil
		},
	}
}

// checkDuration returns an empty string when d is inside the window.
func (e *implExtractor) checkDuration(d float64) string {
	if d < e.opts.minDuration() || d > e.opts.maxDuration() {
		return fmt.Sprintf("Invalid duration: %ss. Must be between %s and %s seconds.",
			models.FormatSeconds(d),
			models.FormatSeconds(e.opts.minDuration()),
			models.FormatSeconds(e.opts.maxDuration()))
	}
	return ""
}

func (e *implExtractor) checkCandidate(start, end float64, description string) string {
	if end <= start {
		return fmt.Sprintf("Invalid range: end (%ss) must be after start (%ss).", models.FormatSeconds(end), models.FormatSeconds(start))
	}
	if msg := e.checkDuration(end - start); msg != "" {
		return msg
	}
	if strings.TrimSpace(description) == "" {
		return "Description must not be empty."
	}
	if e.hostRe != nil {
		if m := e.hostRe.FindString(description); m != "" {
			return fmt.Sprintf("Rejected: the description mentions %q. Key moments must focus on the guest, not the host/presenter/interviewer.", m)
		}
	}
	return ""
}
