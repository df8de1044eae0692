package interpret

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{"candidates":[{"content":{"parts":[{"text":" Este sonho sussurra sobre o mar. "}]}}]}`

// scripted replies with the given statuses in order, then repeats the last.
func scripted(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(hits.Add(1))
		status := statuses[min(n, len(statuses))-1]
		w.WriteHeader(status)
		if status == http.StatusOK {
			w.Write([]byte(okBody))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func fastPolicy() RetryPolicy {
	p := DefaultRetryPolicy()
	p.Backoff = LinearBackoff(time.Millisecond)
	return p
}

func newClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	c, err := New(Config{APIKey: "test-key", Endpoint: url}, append([]Option{WithRetryPolicy(fastPolicy())}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{APIKey: "  "})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestRequestShape(t *testing.T) {
	var got apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/"+DefaultModel+":generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(okBody))
	}))
	defer srv.Close()

	text, err := newClient(t, srv.URL).Interpret(context.Background(), "sonhei com o mar")
	require.NoError(t, err)
	assert.Equal(t, "Este sonho sussurra sobre o mar.", text)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "sonhei com o mar", got.Contents[0].Parts[0].Text)
	assert.Equal(t, SystemPrompt, got.SystemInstruction.Parts[0].Text)
}

func TestRetriesRateLimitThenSucceeds(t *testing.T) {
	srv, hits := scripted(t, 429, 429, 200)

	text, err := newClient(t, srv.URL).Interpret(context.Background(), "x")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.EqualValues(t, 3, hits.Load(), "two retries after the first attempt")
}

func TestNoRetryOnClientError(t *testing.T) {
	srv, hits := scripted(t, 404)

	_, err := newClient(t, srv.URL).Interpret(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, ErrNetwork)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 404, se.Status)
	assert.EqualValues(t, 1, hits.Load())
}

func TestExhaustedRetries(t *testing.T) {
	srv, hits := scripted(t, 503)

	_, err := newClient(t, srv.URL).Interpret(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.EqualValues(t, 3, hits.Load())
}

func TestNoSleepAfterFinalAttempt(t *testing.T) {
	srv, _ := scripted(t, 500)
	var waits []int
	p := RetryPolicy{
		MaxAttempts: 3,
		Backoff: func(attempt int) time.Duration {
			waits = append(waits, attempt)
			return 0
		},
	}

	_, err := newClient(t, srv.URL, WithRetryPolicy(p)).Interpret(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, []int{1, 2}, waits)
}

func TestTransportErrorIsRetried(t *testing.T) {
	srv, _ := scripted(t, 200)
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url).Interpret(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestMalformedResponse(t *testing.T) {
	for name, body := range map[string]string{
		"not json":      `<html>`,
		"no candidates": `{"candidates":[]}`,
		"no parts":      `{"candidates":[{"content":{"parts":[]}}]}`,
		"blank text":    `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := newClient(t, srv.URL).Interpret(context.Background(), "x")
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestCancelDuringBackoff(t *testing.T) {
	srv, hits := scripted(t, 429)
	p := DefaultRetryPolicy()
	p.Backoff = LinearBackoff(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newClient(t, srv.URL, WithRetryPolicy(p)).Interpret(ctx, "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.EqualValues(t, 1, hits.Load())
}
