package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"google.golang.org/genai"
)

type flakyClient struct {
	failures int
	calls    int
	err      error
}

func (f *flakyClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "analysis", nil
}

func (f *flakyClient) GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return json.RawMessage(`{"keyMoments":[]}`), nil
}

func fastPolicy(n int) RetryPolicy {
	return RetryPolicy{MaxRetries: n, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	transient := errors.New("503 overloaded")

	tests := []struct {
		name      string
		failures  int
		err       error
		retries   int
		wantErr   bool
		wantCalls int
	}{
		{"succeeds first time", 0, transient, 3, false, 1},
		{"recovers within budget", 2, transient, 3, false, 3},
		{"budget exhausted", 5, transient, 2, true, 3},
		{"zero budget means one attempt", 1, transient, 0, true, 1},
		{"not configured is permanent", 5, ErrNotConfigured, 5, true, 1},
		{"bad request is permanent", 5, fmt.Errorf("generate content: %w", genai.APIError{Code: 400, Message: "invalid argument"}), 5, true, 1},
		{"rate limit is retried", 2, fmt.Errorf("all API keys exhausted: %w", genai.APIError{Code: 429}), 3, false, 3},
		{"server error is retried", 2, genai.APIError{Code: 503}, 3, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &flakyClient{failures: tt.failures, err: tt.err}
			c := WithRetry(next, fastPolicy(tt.retries), logger.Nop())

			_, err := c.GenerateText(ctx, TextRequest{Prompt: "p"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("GenerateText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, tt.err) {
				t.Errorf("error = %v, want %v", err, tt.err)
			}
			if next.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", next.calls, tt.wantCalls)
			}
		})
	}
}

func TestWithRetryStructured(t *testing.T) {
	next := &flakyClient{failures: 1, err: errors.New("timeout")}
	c := WithRetry(next, fastPolicy(1), logger.Nop())

	out, err := c.GenerateStructured(context.Background(), StructuredRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("GenerateStructured() error = %v", err)
	}
	if string(out) != `{"keyMoments":[]}` {
		t.Errorf("out = %s", out)
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	next := &flakyClient{failures: 100, err: errors.New("boom")}
	c := WithRetry(next, fastPolicy(50), logger.Nop())

	if _, err := c.GenerateText(ctx, TextRequest{}); err == nil {
		t.Fatal("GenerateText() should fail on a cancelled context")
	}
	if next.calls > 1 {
		t.Errorf("calls = %d after cancellation, want at most 1", next.calls)
	}
}

func TestWithRetryAnthropicBadRequestIsPermanent(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens: too large"}}`))
	}))
	defer srv.Close()

	client := WithRetry(NewAnthropic("key", "claude-test", srv.URL, 1024, logger.Nop()), fastPolicy(5), logger.Nop())

	_, err := client.GenerateText(context.Background(), TextRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("GenerateText() error = nil, want bad request")
	}
	if httpStatus(err) != http.StatusBadRequest {
		t.Errorf("httpStatus() = %d, want 400", httpStatus(err))
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1 (no retries on 400)", got)
	}
}
