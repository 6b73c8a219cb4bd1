// Package backend is the HTTP client for the DishTip recommendation backend.
//
// Two endpoints are consumed:
//
//	GET {base}/restaurant_info/{placeId}  -> {"restaurant_info": {...} | null}
//	GET {base}/recommendations/{placeId}  -> {"recommendations": [...]}
//
// Each call is a single attempt. Requests are rate limited and guarded by a
// circuit breaker so a dead backend fails fast instead of stacking spinners.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/abelbrown/dishtip/internal/model"
)

// maxBodyBytes bounds response bodies. Recommendation lists are small.
const maxBodyBytes = 4 << 20

var (
	// ErrDecode is returned when a 2xx response body is not valid JSON.
	ErrDecode = errors.New("backend: malformed response")

	// ErrCircuitOpen is returned while the breaker rejects requests.
	ErrCircuitOpen = errors.New("backend: circuit open")

	// ErrStatus matches any *StatusError under errors.Is.
	ErrStatus = errors.New("backend: unexpected status")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend: HTTP %d", e.Code)
	}
	return fmt.Sprintf("backend: HTTP %d: %s", e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Options configures a Client.
type Options struct {
	BaseURL         string
	Timeout         time.Duration // per request, default 30s
	RatePerSecond   float64       // <= 0 disables limiting
	BreakerFailures uint32        // consecutive failures to open, default 5
	BreakerTimeout  time.Duration // open period, default 30s
	HTTPClient      *http.Client  // optional, overrides Timeout
}

// Client talks to the backend. Safe for concurrent use.
type Client struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// New creates a Client. BaseURL must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}

	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	breakerTimeout := opts.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = 30 * time.Second
	}

	return &Client{
		base:    base,
		client:  httpClient,
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "backend",
			MaxRequests: 1,
			Timeout:     breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: isBreakerSuccess,
			IsExcluded:   isCancellation,
		}),
	}, nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// BreakerState returns "closed", "half-open" or "open".
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// RestaurantInfo fetches the enrichment record for a place.
// A null restaurant_info yields (nil, nil).
func (c *Client) RestaurantInfo(ctx context.Context, placeID string) (*model.RestaurantInfo, error) {
	body, err := c.get(ctx, "restaurant_info", placeID)
	if err != nil {
		return nil, err
	}

	var resp model.RestaurantInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: restaurant_info: %v", ErrDecode, err)
	}
	return model.InfoFromDTO(resp.RestaurantInfo), nil
}

// Recommendations fetches the ranked dish list for a place, in backend
// order. A missing or non-array recommendations field is an empty list.
func (c *Client) Recommendations(ctx context.Context, placeID string) ([]model.Dish, error) {
	body, err := c.get(ctx, "recommendations", placeID)
	if err != nil {
		return nil, err
	}

	var resp model.RecommendationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: recommendations: %v", ErrDecode, err)
	}
	return model.DecodeDishes(resp.Recommendations), nil
}

// get performs one GET for {base}/{resource}/{placeID} and returns the body
// of a 2xx response.
func (c *Client) get(ctx context.Context, resource, placeID string) ([]byte, error) {
	if strings.TrimSpace(placeID) == "" {
		return nil, errors.New("backend: empty place id")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.base.String() + "/" + resource + "/" + url.PathEscape(placeID)

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, endpoint)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "DishTip/0.1 (+https://github.com/abelbrown/dishtip)")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), 200)}
	}
	return body, nil
}

// isBreakerSuccess counts client errors (4xx) as successes: the backend
// answered, the place was simply unknown.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 400 && se.Code < 500 && se.Code != http.StatusTooManyRequests
	}
	return false
}

// isCancellation keeps superseded requests from tripping the breaker.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
