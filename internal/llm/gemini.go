package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultEndpoint   = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel      = "gemini-2.5-flash"
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 5
	defaultBaseDelay  = 1 * time.Second
	maxHintedWait     = 60 * time.Second
)

// Config carries every knob the client needs. Nothing is read from globals so
// tests can point the client at a mock endpoint with a throwaway key.
type Config struct {
	APIKey     string
	Model      string
	Endpoint   string
	Timeout    time.Duration // per-attempt timeout
	MaxRetries int           // total attempt cap
	BaseDelay  time.Duration // first backoff step, doubled each retry
}

// Client sends structured-output requests to the Gemini generateContent API
// with bounded retry. Each call starts fresh; no state is shared across calls.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger

	// sleep waits between attempts; swapped out by tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: logger,
		sleep:  sleepCtx,
	}
}

// Gemini wire format. The reply's schema-conformant JSON arrives as a string
// inside candidates[0].content.parts[0].text and must be parsed a second time
// by the normalizer.
type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generateRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

// Generate sends the request and returns the inner schema-conformant JSON text.
// Transport errors, 429s and other upstream statuses are retried with
// exponential backoff (server retry hints win over the computed delay); a 2xx
// reply with an unusable body is terminal and never retried.
func (c *Client) Generate(ctx context.Context, req Request) ([]byte, error) {
	body, err := json.Marshal(generateRequest{
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: req.User}}}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: req.System}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   req.Schema,
		},
	})
	if err != nil {
		return nil, WrapFailure(KindMalformedResponse, err, "encode request body")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Model, c.cfg.APIKey)
	reqID := uuid.New().String()

	var last *Failure
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		start := time.Now()
		raw, failure := c.send(ctx, url, body)
		if failure == nil {
			c.logger.Info("gemini call succeeded",
				zap.String("req_id", reqID),
				zap.Int("attempt", attempt+1),
				zap.Int("reply_bytes", len(raw)),
				zap.Duration("elapsed", time.Since(start)),
			)
			return raw, nil
		}

		last = failure
		if !failure.Retryable() {
			c.logger.Error("gemini call failed terminally",
				zap.String("req_id", reqID),
				zap.Int("attempt", attempt+1),
				zap.String("kind", string(failure.Kind)),
				zap.Error(failure),
			)
			return nil, failure
		}
		if attempt == c.cfg.MaxRetries-1 {
			break
		}

		delay := c.cfg.BaseDelay * time.Duration(1<<attempt)
		if failure.Kind == KindRateLimited && failure.RetryAfter > 0 {
			delay = failure.RetryAfter
			if delay > maxHintedWait {
				delay = maxHintedWait
			}
		}
		c.logger.Warn("gemini call failed; retrying",
			zap.String("req_id", reqID),
			zap.Int("attempt", attempt+1),
			zap.String("kind", string(failure.Kind)),
			zap.Duration("delay", delay),
			zap.Error(failure),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, WrapFailure(KindTransportError, err, "canceled while waiting to retry")
		}
	}

	return nil, &Failure{
		Kind:   KindRetryBudgetExhausted,
		Detail: fmt.Sprintf("gave up after %d attempts", c.cfg.MaxRetries),
		Err:    last,
	}
}

// send performs one attempt and classifies its outcome.
func (c *Client) send(ctx context.Context, url string, body []byte) ([]byte, *Failure) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, WrapFailure(KindTransportError, err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, WrapFailure(KindTransportError, err, "send request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapFailure(KindTransportError, err, "read response body")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		f := NewFailure(KindRateLimited, "gemini rate limit (429)")
		f.RetryAfter = parseRetryHint(raw)
		return nil, f
	}
	if resp.StatusCode/100 != 2 {
		msg := upstreamMessage(raw)
		f := NewFailure(KindUpstreamError, "gemini status %d: %s", resp.StatusCode, msg)
		if resp.StatusCode == http.StatusBadRequest && inputTooLarge(msg) {
			// An oversized prompt will not shrink on retry.
			f.Terminal = true
		}
		return nil, f
	}

	var env generateResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, WrapFailure(KindMalformedResponse, err, "response body is not valid JSON")
	}
	if len(env.Candidates) == 0 || len(env.Candidates[0].Content.Parts) == 0 ||
		strings.TrimSpace(env.Candidates[0].Content.Parts[0].Text) == "" {
		return nil, NewFailure(KindMalformedResponse, "reply was successful but contained no content")
	}
	return []byte(env.Candidates[0].Content.Parts[0].Text), nil
}

// parseRetryHint pulls the RetryInfo retryDelay ("<int>s") out of a 429 body.
// Zero means no usable hint; the caller falls back to exponential backoff.
func parseRetryHint(raw []byte) time.Duration {
	var e apiError
	if err := json.Unmarshal(raw, &e); err != nil {
		return 0
	}
	for _, d := range e.Error.Details {
		if d.Type != "type.googleapis.com/google.rpc.RetryInfo" {
			continue
		}
		secs, err := strconv.Atoi(strings.TrimSuffix(d.RetryDelay, "s"))
		if err != nil || secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	return 0
}

func upstreamMessage(raw []byte) string {
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}

func inputTooLarge(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "token") && (strings.Contains(m, "exceed") || strings.Contains(m, "too large"))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
