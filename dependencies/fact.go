package dependencies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrFactUnavailable = errors.New("fact unavailable")

// FactClient fetches a trivia sentence about a number.
type FactClient interface {
	Fetch(ctx context.Context, n int) (string, error)
}

// FactClientFunc adapts a function to FactClient.
type FactClientFunc func(ctx context.Context, n int) (string, error)

func (f FactClientFunc) Fetch(ctx context.Context, n int) (string, error) { return f(ctx, n) }

type httpFactClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFactClient queries a numbersapi compatible endpoint at baseURL.
func NewHTTPFactClient(baseURL string, timeout time.Duration) FactClient {
	return &httpFactClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpFactClient) Fetch(ctx context.Context, n int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%d/trivia", c.baseURL, n), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFactUnavailable, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFactUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrFactUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFactUnavailable, err)
	}
	return strings.TrimSpace(string(body)), nil
}

// StaticFact answers every request with "<n> is a good number.".
func StaticFact() FactClient {
	return FactClientFunc(func(ctx context.Context, n int) (string, error) {
		return fmt.Sprintf("%d is a good number.", n), nil
	})
}
