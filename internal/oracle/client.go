// Package oracle is the client for the external ranking service (solved.ac
// API v3 shape). It is read-only and stateless: every call is a fresh round
// trip, nothing is cached and nothing is retried. Any failure, including a
// response that does not match the expected schema, surfaces as
// apperror.ErrOracleUnavailable.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sakif/practice-tracker/internal/apperror"
	"github.com/sakif/practice-tracker/internal/model"
)

// maxBodyBytes bounds how much of a response we are willing to decode.
const maxBodyBytes = 1 << 20

// Config contains configuration for the oracle client.
type Config struct {
	// BaseURL is the API root, e.g. "https://solved.ac/api/v3".
	BaseURL string

	// Timeout bounds each round trip, including reading the body.
	Timeout time.Duration

	// MaxTier is the highest tier the oracle defines. Tier windows are
	// clamped to [MinTier, MaxTier].
	MaxTier int

	// RequestsPerSecond and Burst pace outgoing calls. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client is the ranking service client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxTier    int
	logger     *slog.Logger
}

// NewClient creates a Client, filling unset fields with defaults.
func NewClient(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxTier <= 0 {
		cfg.MaxTier = DefaultMaxTier
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		maxTier:    cfg.MaxTier,
		logger:     cfg.Logger,
	}
}

// MaxTier is the upper clamp bound for tier windows.
func (c *Client) MaxTier() int {
	return c.maxTier
}

// FetchProfile returns the oracle's current view of handle.
//
// HTTP: GET {base}/user/show?handle={handle}
func (c *Client) FetchProfile(ctx context.Context, handle string) (*model.Profile, error) {
	const op = "fetch profile"

	params := url.Values{}
	params.Set("handle", handle)

	var body profileResponse
	if err := c.get(ctx, "/user/show", params, &body); err != nil {
		return nil, apperror.OracleUnavailable(op, err)
	}

	profile, err := body.toModel(c.maxTier)
	if err != nil {
		return nil, apperror.OracleUnavailable(op, err)
	}
	if profile.Handle == "" {
		profile.Handle = handle
	}

	return profile, nil
}

// SearchByTagAndTierWindow returns up to q.Limit problems tagged q.Tag whose
// level falls inside the clamped window around q.CenterTier, in the order the
// oracle reports them.
//
// HTTP: GET {base}/search/problem?query=tag:{tag} tier:{lo}..{hi}&sort=level&direction=asc
func (c *Client) SearchByTagAndTierWindow(ctx context.Context, q Query) ([]model.Problem, error) {
	const op = "search problems"

	q = q.withDefaults()
	w := ClampWindow(q.CenterTier, q.WindowRadius, c.maxTier)

	params := url.Values{}
	params.Set("query", fmt.Sprintf("tag:%s tier:%d..%d", q.Tag, w.Lo, w.Hi))
	params.Set("sort", q.Sort)
	params.Set("direction", q.Direction)
	params.Set("limit", strconv.Itoa(q.Limit))

	var body searchResponse
	if err := c.get(ctx, "/search/problem", params, &body); err != nil {
		return nil, apperror.OracleUnavailable(op, err)
	}

	problems, err := body.toModel(q.Limit)
	if err != nil {
		return nil, apperror.OracleUnavailable(op, err)
	}

	return problems, nil
}

// get performs one paced GET and decodes a 2xx JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	fullURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("oracle request",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
