package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// dispatch runs the named tool and always returns a payload for the model.
func dispatch(ctx context.Context, tools []Tool, name string, args json.RawMessage) (map[string]interface{}, bool) {
	for _, t := range tools {
		if t.Name != name {
			continue
		}
		out, err := t.Execute(ctx, args)
		if err != nil {
			return map[string]interface{}{"error": err.Error()}, true
		}
		_, isErr := out["error"]
		return out, isErr
	}
	return map[string]interface{}{"error": fmt.Sprintf("unknown tool %q", name)}, true
}

func maxSteps(n int) int {
	if n <= 0 {
		return 8
	}
	return n
}
