package abha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/healthcover-api/internal/domain"
	"github.com/ErlanBelekov/healthcover-api/internal/metrics"
)

const maxBodyBytes = 1 << 20

// Client fetches health-identity records from the ABHA API.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Fetch returns the raw JSON document for abhaID.
func (c *Client) Fetch(ctx context.Context, abhaID string) (json.RawMessage, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/health/" + url.PathEscape(abhaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ABHARequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("abha request: %w: %w", domain.ErrTimeout, err)
		}
		return nil, fmt.Errorf("abha request: %w: %w", domain.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.ABHARequestDuration.WithLabelValues(strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, domain.ErrABHANotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d", domain.ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("read abha body: %w: %w", domain.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrUpstream, err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", domain.ErrUpstream, maxBodyBytes)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not JSON", domain.ErrUpstream)
	}
	return json.RawMessage(body), nil
}
