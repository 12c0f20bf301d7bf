package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/keilerkonzept/footdash/internal/filter"
	"github.com/keilerkonzept/footdash/internal/views"
	"github.com/keilerkonzept/footdash/log"
)

const DefaultBaseURL = "http://127.0.0.1:8000"

type (
	Option func(*Client)
	Client struct {
		baseURL string
		http    *http.Client
		l       *log.Logger
	}
)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(cl *Client) {
		cl.l = l
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		l:       log.Default().Named("api"),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// URL builds the request target. The separator is left out for an empty query.
func (c *Client) URL(path string, q filter.Query) string {
	if qs := q.Encode(); qs != "" {
		return c.baseURL + path + "?" + qs
	}
	return c.baseURL + path
}

// Fetch issues exactly one GET and decodes the JSON body into out.
func (c *Client) Fetch(ctx context.Context, path string, q filter.Query, out any) error {
	target := c.URL(path, q)
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return &FetchError{Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.l.Debug("request failed", log.String("url", target), log.ErrorField(err))
		return &FetchError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	c.l.Debug("response",
		log.String("url", target),
		log.Int("status", resp.StatusCode),
		log.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &FetchError{Path: path, Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func (c *Client) Yearly(ctx context.Context, q filter.Query) ([]YearlyStat, error) {
	var resp YearlyResponse
	if err := c.Fetch(ctx, views.PathYearly, q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Opponents(ctx context.Context, q filter.Query) ([]OpponentStat, error) {
	var resp OpponentsResponse
	if err := c.Fetch(ctx, views.PathOpponents, q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Race fetches ranked snapshots from one of the top_* resources.
func (c *Client) Race(ctx context.Context, path string, q filter.Query) ([]RaceItem, error) {
	var resp RaceResponse
	if err := c.Fetch(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Tournaments(ctx context.Context) ([]Tournament, error) {
	var list []Tournament
	if err := c.Fetch(ctx, views.PathTournaments, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Health returns nil when the API answers its health resource.
func (c *Client) Health(ctx context.Context) error {
	return c.Fetch(ctx, views.PathHealth, nil, nil)
}

// WaitForHealthy polls Health until it succeeds or timeout elapses.
func (c *Client) WaitForHealthy(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	c.l.Debug("wait for api", log.String("url", c.baseURL), log.Duration("timeout", timeout))
	for {
		err := c.Health(ctx)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s could not be reached after %v: %w", c.baseURL, timeout, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}
