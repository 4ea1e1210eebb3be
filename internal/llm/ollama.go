// Package llm wraps github.com/ollama/ollama/api as the generation
// backend named in spec.md §4.6 and §6's ollama config block. The
// retry/backoff shape (bounded attempts, classify-then-recover,
// linear backoff between attempts) is ported from
// internal/compact/haiku.go's HaikuClient.callWithRetry, restructured
// around Ollama's three failure kinds instead of Anthropic's HTTP
// status codes, per original_source/codeworm/llm/client.py's
// OllamaClient.generate_with_retry.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/chronicled/codewormd/internal/llmerr"
)

// DefaultTimeout matches the Python original's httpx.Timeout(600, connect=10).
const DefaultTimeout = 600 * time.Second

// Settings mirrors spec.md §6's ollama config block.
type Settings struct {
	Host       string
	Port       int
	Model      string
	Temperature float64
	NumCtx     int
	NumPredict int
	KeepAlive  string
}

// Client is the Ollama-backed generation client.
type Client struct {
	settings Settings
	api      *api.Client
}

// Result is one generation response, carrying the throughput figure
// spec.md's supervisor logs per cycle.
type Result struct {
	Text            string
	TokensPerSecond float64
}

func New(settings Settings) (*Client, error) {
	base, err := url.Parse(fmt.Sprintf("http://%s:%d", settings.Host, settings.Port))
	if err != nil {
		return nil, fmt.Errorf("parse ollama base url: %w", err)
	}

	cl := api.NewClient(base, &http.Client{Timeout: DefaultTimeout})
	return &Client{settings: settings, api: cl}, nil
}

// HealthCheck reports whether the Ollama server is reachable, swallowing
// every error to false per spec.md §4.6's health_check contract.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.api.Heartbeat(ctx); err != nil {
		return false
	}
	return true
}

// Prewarm issues an empty-prompt generate call to load the model into
// memory ahead of the first real request.
func (c *Client) Prewarm(ctx context.Context) bool {
	req := &api.GenerateRequest{
		Model:     c.settings.Model,
		Prompt:    "",
		KeepAlive: keepAliveDuration(c.settings.KeepAlive),
		Options:   map[string]any{"num_ctx": c.settings.NumCtx},
	}
	err := c.api.Generate(ctx, req, func(api.GenerateResponse) error { return nil })
	return err == nil
}

// Generate issues one completion request, classifying failures into
// llmerr kinds the way spec.md §7's error table names them.
func (c *Client) Generate(ctx context.Context, prompt, system string, temperature *float64, maxTokens *int) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	options := map[string]any{"num_ctx": c.settings.NumCtx}
	if temperature != nil {
		options["temperature"] = *temperature
	} else {
		options["temperature"] = c.settings.Temperature
	}
	if maxTokens != nil {
		options["num_predict"] = *maxTokens
	} else if c.settings.NumPredict > 0 {
		options["num_predict"] = c.settings.NumPredict
	}

	req := &api.GenerateRequest{
		Model:     c.settings.Model,
		Prompt:    prompt,
		System:    system,
		Stream:    boolPtr(false),
		KeepAlive: keepAliveDuration(c.settings.KeepAlive),
		Options:   options,
	}

	var result Result
	err := c.api.Generate(ctx, req, func(resp api.GenerateResponse) error {
		result.Text += resp.Response
		if resp.Done && resp.EvalCount > 0 && resp.TotalDuration > 0 {
			result.TokensPerSecond = float64(resp.EvalCount) / resp.TotalDuration.Seconds()
		}
		return nil
	})
	if err != nil {
		return Result{}, classify(ctx, err)
	}
	return result, nil
}

// GenerateWithRetry makes up to maxRetries+1 attempts (one initial call
// plus maxRetries retries): an OOM triggers recovery-then-retry, a connection/timeout failure
// sleeps with linear backoff, anything else is returned immediately.
func (c *Client) GenerateWithRetry(ctx context.Context, prompt, system string, maxRetries int, retryDelay time.Duration) (Result, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err := c.Generate(ctx, prompt, system, nil, nil)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if llmerr.Is(err, llmerr.ModelOOM) {
			c.recoverFromOOM(ctx)
			continue
		}

		if llmerr.Is(err, llmerr.Connection) || llmerr.Is(err, llmerr.Timeout) {
			if attempt < maxRetries {
				wait := retryDelay * time.Duration(attempt+1)
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return Result{}, ctx.Err()
				}
			}
			continue
		}

		return Result{}, err
	}

	return Result{}, fmt.Errorf("generation failed after %d attempts: %w", maxRetries+1, lastErr)
}

// recoverFromOOM unloads the model (keep_alive=0) then waits 5s before
// reloading with a reduced context window, per spec.md §4.6 /
// original_source/codeworm/llm/client.py's _recover_from_oom.
func (c *Client) recoverFromOOM(ctx context.Context) {
	zero := 0 * time.Second
	unload := &api.GenerateRequest{Model: c.settings.Model, Prompt: "", KeepAlive: &api.Duration{Duration: zero}}
	_ = c.api.Generate(ctx, unload, func(api.GenerateResponse) error { return nil })

	select {
	case <-time.After(5 * time.Second):
	case <-ctx.Done():
		return
	}

	numCtx := c.settings.NumCtx
	if numCtx > 8192 {
		numCtx = 8192
	}
	reload := &api.GenerateRequest{
		Model:   c.settings.Model,
		Prompt:  "",
		Options: map[string]any{"num_ctx": numCtx},
	}
	_ = c.api.Generate(ctx, reload, func(api.GenerateResponse) error { return nil })
}

// ListModels returns the tags the local Ollama server reports.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.api.List(ctx)
	if err != nil {
		return nil, classify(ctx, err)
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return llmerr.New(llmerr.Timeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return llmerr.New(llmerr.Timeout, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "out of memory") || strings.Contains(msg, "cuda") {
		return llmerr.New(llmerr.ModelOOM, err)
	}
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "connect:") || strings.Contains(msg, "no such host") {
		return llmerr.New(llmerr.Connection, err)
	}

	return llmerr.New(llmerr.Connection, err)
}

func keepAliveDuration(s string) *api.Duration {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil
	}
	return &api.Duration{Duration: d}
}

func boolPtr(b bool) *bool { return &b }
