// Package interpret asks a remote Gemini model for a poetic reading of a
// dream. Every failure surfaces as ErrUnavailable; FailureMessage is the one
// text shown to the user for it.
package interpret

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

	"github.com/rs/zerolog"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.5-flash-preview-09-2025"
	DefaultTimeout  = 30 * time.Second
)

// SystemPrompt constrains tone, length, language and opening phrase.
const SystemPrompt = "Você é Oniria, um poeta místico e intérprete de sonhos. Você nunca dá conselhos diretos ou interpretações literais. Em vez disso, responde em linguagem simbólica, poética, gentil e curta (máximo 3 frases), interpretando o sonho fornecido. Fale em português do Brasil. Comece com 'Este sonho sussurra sobre...'."

// FailureMessage is the user-facing text for any ErrUnavailable.
const FailureMessage = "Não foi possível interpretar este sonho agora. Tente mais tarde."

var (
	ErrUnavailable       = errors.New("interpretation unavailable")
	ErrNetwork           = fmt.Errorf("%w: network failure", ErrUnavailable)
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrUnavailable)
	ErrNoAPIKey          = errors.New("gemini api key not configured")
)

// StatusError is a non-success HTTP response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Body)
}

// Interpreter turns a dream description into interpretive text.
type Interpreter interface {
	Interpret(ctx context.Context, description string) (string, error)
}

// Config selects the model and credentials.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// Client calls the generateContent endpoint with a bounded retry loop.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
	policy   RetryPolicy
	log      zerolog.Logger
}

var _ Interpreter = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client. It fails with ErrNoAPIKey when cfg has no key.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		http:     &http.Client{Timeout: cfg.Timeout},
		policy:   DefaultRetryPolicy(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type apiRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction content   `json:"systemInstruction"`
}

type apiResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Interpret sends description as the sole content. Retryable failures are
// repeated per the policy with no wait after the last attempt.
func (c *Client) Interpret(ctx context.Context, description string) (string, error) {
	body, err := json.Marshal(apiRequest{
		Contents:          []content{{Parts: []part{{Text: description}}}},
		SystemInstruction: content{Parts: []part{{Text: SystemPrompt}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	attempts := c.policy.attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := c.callAPI(ctx, body)
		if err == nil {
			return parseResponse(data)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) && !c.policy.retryable(se.Status) {
			break
		}
		if attempt == attempts {
			break
		}

		wait := c.policy.wait(attempt)
		c.log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", wait).Msg("interpretation failed, retrying")
		if err := sleep(ctx, wait); err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}
	return "", fmt.Errorf("%w: %w", ErrNetwork, lastErr)
}

func (c *Client) callAPI(ctx context.Context, body []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func parseResponse(data []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidate text", ErrMalformedResponse)
	}
	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty candidate text", ErrMalformedResponse)
	}
	return text, nil
}
