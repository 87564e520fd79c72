package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"github.com/nguyentantai21042004/keymoments/internal/models"
)

var errNotReady = errors.New("transcription not ready")

type gladiaProvider struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	client       *http.Client
	logger       logger.Logger
}

// NewGladia creates a Provider for the Gladia pre-recorded API.
func NewGladia(baseURL, apiKey string, pollInterval time.Duration, log logger.Logger) Provider {
	return &gladiaProvider{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		pollInterval: pollInterval,
		client:       &http.Client{Timeout: 60 * time.Second},
		logger:       log,
	}
}

func (g *gladiaProvider) Name() string { return "gladia" }

type gladiaRequest struct {
	AudioURL    string `json:"audio_url"`
	Diarization bool   `json:"diarization"`
}

type gladiaJob struct {
	ID        string `json:"id"`
	ResultURL string `json:"result_url"`
}

type gladiaResult struct {
	Status    string `json:"status"`
	ErrorCode *int   `json:"error_code"`
	Result    *struct {
		Transcription *struct {
			Utterances []models.Utterance `json:"utterances"`
		} `json:"transcription"`
	} `json:"result"`
}

// Transcribe submits the URL and polls the result until it is done. The
// MaxRetries budget is shared by transient HTTP failures and polling.
func (g *gladiaProvider) Transcribe(ctx context.Context, src Source, opts Options) ([]models.Utterance, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("gladia API key not set: set GLADIA_API_KEY or transcription.gladia.api_key")
	}

	body, err := json.Marshal(gladiaRequest{AudioURL: src.URL, Diarization: opts.Diarization})
	if err != nil {
		return nil, err
	}

	notify := func(err error, wait time.Duration) {
		if !errors.Is(err, errNotReady) {
			g.logger.Warn(ctx, "Gladia request failed, retrying in %s: %v", wait, err)
		}
	}

	job, err := backoff.RetryNotifyWithData(func() (gladiaJob, error) {
		var job gladiaJob
		if err := g.do(ctx, http.MethodPost, g.baseURL+"/v2/pre-recorded", body, &job); err != nil {
			return job, err
		}
		if job.ResultURL == "" {
			return job, backoff.Permanent(fmt.Errorf("gladia response has no result_url"))
		}
		return job, nil
	}, g.policy(ctx, opts.MaxRetries), notify)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", src.URL, err)
	}

	g.logger.Info(ctx, "Gladia job %s submitted, polling every %s", job.ID, g.pollInterval)

	res, err := backoff.RetryNotifyWithData(func() (gladiaResult, error) {
		var res gladiaResult
		if err := g.do(ctx, http.MethodGet, job.ResultURL, nil, &res); err != nil {
			return res, err
		}
		switch res.Status {
		case "done":
			return res, nil
		case "error":
			code := 0
			if res.ErrorCode != nil {
				code = *res.ErrorCode
			}
			return res, backoff.Permanent(fmt.Errorf("%w: gladia job %s error code %d", ErrTranscriptionFailed, job.ID, code))
		default:
			return res, errNotReady
		}
	}, g.policy(ctx, opts.MaxRetries), notify)
	if err != nil {
		return nil, fmt.Errorf("poll job %s: %w", job.ID, err)
	}

	if res.Result == nil || res.Result.Transcription == nil {
		return nil, nil
	}
	return res.Result.Transcription.Utterances, nil
}

func (g *gladiaProvider) policy(ctx context.Context, maxRetries int) backoff.BackOff {
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.pollInterval), uint64(maxRetries)),
		ctx,
	)
}

// do performs one request. Client errors other than 429 are permanent.
func (g *gladiaProvider) do(ctx context.Context, method, url string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("x-gladia-key", g.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling Gladia API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := fmt.Errorf("gladia API error (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(apiErr)
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return backoff.Permanent(fmt.Errorf("parsing Gladia response: %w", err))
	}
	return nil
}
