// Package places queries the Google Places Autocomplete API (Places API New)
// for restaurant-like businesses and returns them as model.Place values.
//
// Results are cached per normalized query for a short TTL so that retyping
// the same prefix does not cost another request.
package places

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/abelbrown/dishtip/internal/model"
)

// DefaultEndpoint is the Places API (New) autocomplete method.
const DefaultEndpoint = "https://places.googleapis.com/v1/places:autocomplete"

// MinQueryLen is the shortest input sent to the API. Shorter inputs return
// no suggestions without a request.
const MinQueryLen = 2

// IncludedTypes restricts suggestions to places that serve food or drink.
var IncludedTypes = []string{"restaurant", "cafe", "bakery", "bar"}

// ErrNoAPIKey is returned by Autocomplete when the client has no key.
var ErrNoAPIKey = errors.New("places: no API key configured")

// Options configures a Client.
type Options struct {
	APIKey        string
	Region        string        // CLDR region code, e.g. "de"
	Endpoint      string        // default DefaultEndpoint
	Timeout       time.Duration // default 10s
	RatePerSecond float64       // <= 0 disables limiting
	CacheSize     int           // default 128
	CacheTTL      time.Duration // default 10m
	HTTPClient    *http.Client
}

// Client is an autocomplete client. Safe for concurrent use.
type Client struct {
	apiKey   string
	region   string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	cache    *expirable.LRU[string, []model.Place]
}

// New creates a Client. A missing API key is not an error here; Autocomplete
// reports ErrNoAPIKey so the UI can still start against the backend.
func New(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 2)
	}
	size := opts.CacheSize
	if size <= 0 {
		size = 128
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &Client{
		apiKey:   opts.APIKey,
		region:   strings.ToLower(opts.Region),
		endpoint: endpoint,
		client:   httpClient,
		limiter:  limiter,
		cache:    expirable.NewLRU[string, []model.Place](size, nil, ttl),
	}
}

// Enabled reports whether the client has an API key.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type autocompleteRequest struct {
	Input                string   `json:"input"`
	IncludedPrimaryTypes []string `json:"includedPrimaryTypes,omitempty"`
	IncludedRegionCodes  []string `json:"includedRegionCodes,omitempty"`
}

type autocompleteResponse struct {
	Suggestions []struct {
		PlacePrediction *struct {
			PlaceID          string `json:"placeId"`
			Text             text   `json:"text"`
			StructuredFormat struct {
				MainText      text `json:"mainText"`
				SecondaryText text `json:"secondaryText"`
			} `json:"structuredFormat"`
			Types []string `json:"types"`
		} `json:"placePrediction"`
	} `json:"suggestions"`
}

type text struct {
	Text string `json:"text"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Autocomplete returns place suggestions for input, in API order.
// Predictions without a place id are dropped.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]model.Place, error) {
	query := normalize(input)
	if len([]rune(query)) < MinQueryLen {
		return []model.Place{}, nil
	}
	if !c.Enabled() {
		return nil, ErrNoAPIKey
	}
	if cached, ok := c.cache.Get(query); ok {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqBody := autocompleteRequest{Input: query, IncludedPrimaryTypes: IncludedTypes}
	if c.region != "" {
		reqBody.IncludedRegionCodes = []string{c.region}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("autocomplete request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("places: HTTP %d %s: %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("places: HTTP %d", resp.StatusCode)
	}

	var parsed autocompleteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make([]model.Place, 0, len(parsed.Suggestions))
	for _, s := range parsed.Suggestions {
		p := s.PlacePrediction
		if p == nil || p.PlaceID == "" {
			continue
		}
		name := p.StructuredFormat.MainText.Text
		if name == "" {
			name = p.Text.Text
		}
		out = append(out, model.Place{
			ID:               p.PlaceID,
			DisplayName:      name,
			FormattedAddress: p.StructuredFormat.SecondaryText.Text,
			Types:            p.Types,
		})
	}

	c.cache.Add(query, out)
	return out, nil
}

// normalize trims and collapses whitespace so "  ramen  bar" and
// "ramen bar" share a cache entry.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
