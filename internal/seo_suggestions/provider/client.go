package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/blogcraftai/blogcraft-backend/internal/logging"
	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
)

const (
	// DefaultTimeout applies when Config.Timeout is not set
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 4 << 20
)

// HTTPDoer is the part of *http.Client the adapter needs. Tests substitute it
// to run without network access.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the provider connection settings.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client calls the generative-language endpoint and turns its reply into
// suggestion records. It is safe for concurrent use.
type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	http     HTTPDoer
}

// NewClient creates a provider client. A nil httpClient gets a dedicated
// *http.Client owned by the adapter.
func NewClient(cfg Config, httpClient HTTPDoer) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		timeout:  cfg.Timeout,
		http:     httpClient,
	}
}

// Generate makes exactly one provider call and returns the suggestions in
// provider order. Errors are always *domain.ClientInputError or
// *domain.ProviderError.
func (c *Client) Generate(ctx context.Context, title, summary, content string) ([]domain.Suggestion, error) {
	logger := logging.NewLogger(ctx)

	payload, err := BuildRequest(title, summary, content)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.LogError("seo_generate", err)
		return nil, domain.NewProviderError("unable to contact provider")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		logger.LogError("seo_generate", fmt.Errorf("create request: %w", err))
		return nil, domain.NewProviderError("unable to contact provider")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			logger.LogErrorf("seo_generate", "provider timeout after %s: %v", time.Since(start), err)
			return nil, domain.NewProviderError("provider timed out")
		}
		logger.LogError("seo_generate", fmt.Errorf("provider request failed: %w", err))
		return nil, domain.NewProviderError("unable to contact provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		logger.LogErrorf("seo_generate", "provider returned HTTP %d", resp.StatusCode)
		return nil, &domain.ProviderError{
			Message:    fmt.Sprintf("provider error: HTTP %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(err) {
			logger.LogErrorf("seo_generate", "provider timeout while reading body: %v", err)
			return nil, domain.NewProviderError("provider timed out")
		}
		logger.LogError("seo_generate", fmt.Errorf("read provider body: %w", err))
		return nil, domain.NewProviderError("unable to contact provider")
	}

	envelope, err := decodeJSON(raw)
	if err != nil {
		logger.LogErrorf("seo_generate", "invalid JSON from provider: %v", err)
		return nil, domain.NewProviderError("malformed data")
	}

	text, err := extractText(envelope)
	if err != nil {
		logger.LogWarnf("seo_generate", "no usable candidate: %v", err)
		return nil, err
	}

	suggestions, err := parseSuggestions(normalizeText(text))
	if err != nil {
		logger.LogWarnf("seo_generate", "rejected provider suggestions: %v", err)
		return nil, err
	}

	logger.LogInfof("seo_generate", "received %d suggestions in %s", len(suggestions), time.Since(start))
	return suggestions, nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	if closer, ok := c.http.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
