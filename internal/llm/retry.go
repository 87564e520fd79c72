package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"google.golang.org/genai"
)

// RetryPolicy bounds retries of a whole provider call.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type retryClient struct {
	next   Client
	policy RetryPolicy
	logger logger.Logger
}

// WithRetry wraps next so transient failures are retried with exponential
// backoff. After MaxRetries retries the last error is returned.
func WithRetry(next Client, policy RetryPolicy, log logger.Logger) Client {
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = time.Second
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = 30 * time.Second
	}
	return &retryClient{next: next, policy: policy, logger: log}
}

func (r *retryClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	return backoff.RetryNotifyWithData(func() (string, error) {
		out, err := r.next.GenerateText(ctx, req)
		return out, r.classify(err)
	}, r.backOff(ctx), r.notify(ctx, "generate text"))
}

func (r *retryClient) GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	return backoff.RetryNotifyWithData(func() (json.RawMessage, error) {
		out, err := r.next.GenerateStructured(ctx, req)
		return out, r.classify(err)
	}, r.backOff(ctx), r.notify(ctx, "generate structured"))
}

func (r *retryClient) classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return backoff.Permanent(err)
	}
	// Client errors other than rate limiting fail the same way on every attempt.
	if code := httpStatus(err); code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return backoff.Permanent(err)
	}
	return err
}

// httpStatus returns the HTTP status carried by a provider SDK error, or 0.
func httpStatus(err error) int {
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	var gErrPtr *genai.APIError
	if errors.As(err, &gErrPtr) && gErrPtr != nil {
		return gErrPtr.Code
	}
	var aErr *anthropic.Error
	if errors.As(err, &aErr) && aErr != nil {
		return aErr.StatusCode
	}
	return 0
}

func (r *retryClient) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.policy.InitialInterval
	exp.MaxInterval = r.policy.MaxInterval
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.policy.MaxRetries)), ctx)
}

func (r *retryClient) notify(ctx context.Context, op string) backoff.Notify {
	return func(err error, wait time.Duration) {
		r.logger.Warn(ctx, "LLM %s failed, retrying in %s: %v", op, wait.Round(time.Millisecond), err)
	}
}
