package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	pageLimit       = 250
	defaultVersion  = "2024-01"
	maxBackoff      = 30 * time.Second
	baseBackoff     = 500 * time.Millisecond
	accessTokenHdr  = "X-Shopify-Access-Token"
	defaultRPS      = 2.0
	defaultRetries  = 5
	defaultTimeoutS = 30
)

// errNotFound is returned by get for 404 responses.
var errNotFound = errors.New("shopify resource not found")

// Client talks to the Shopify Admin REST API. Requests share one rate
// limiter; 429 and 5xx responses are retried with backoff.
type Client struct {
	baseURL    string
	apiVersion string
	token      string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRateLimit overrides the request rate.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// NewClient builds a client from configuration.
func NewClient(cfg config.ShopifyConfig, opts ...Option) (*Client, error) {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = defaultRetries
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTimeoutS
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = defaultVersion
	}

	c := &Client{
		baseURL:    shopURL(cfg),
		apiVersion: version,
		token:      cfg.AccessToken,
		http:       &http.Client{Timeout: time.Duration(timeout) * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries: retries,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		return nil, errors.New("shopify shop is not configured")
	}
	if strings.TrimSpace(c.token) == "" {
		return nil, errors.New("shopify access token is empty")
	}
	return c, nil
}

func shopURL(cfg config.ShopifyConfig) string {
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		return strings.TrimRight(base, "/")
	}
	shop := strings.TrimSpace(cfg.Shop)
	if shop == "" {
		return ""
	}
	if !strings.Contains(shop, ".") {
		shop += ".myshopify.com"
	}
	return "https://" + shop
}

func (c *Client) endpoint(resource string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.baseURL, c.apiVersion, strings.TrimLeft(resource, "/"))
}

// get fetches one page of resource into out and returns the page_info of the
// next page, or "" on the last page.
func (c *Client) get(ctx context.Context, resource string, params url.Values, out any) (string, error) {
	endpoint := c.endpoint(resource)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set(accessTokenHdr, c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil || attempt >= c.maxRetries {
				return "", fmt.Errorf("shopify request %s: %w", resource, err)
			}
			if err := sleep(ctx, backoff(attempt)); err != nil {
				return "", err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			if attempt >= c.maxRetries {
				return "", fmt.Errorf("shopify api error %d on %s after %d attempts", resp.StatusCode, resource, attempt+1)
			}
			wait := backoff(attempt)
			if resp.StatusCode == http.StatusTooManyRequests {
				wait = retryAfter(resp.Header.Get("Retry-After"), wait)
			}
			log.Warn().
				Int("status", resp.StatusCode).
				Str("resource", resource).
				Dur("wait", wait).
				Int("attempt", attempt+1).
				Msg("Shopify request throttled, retrying")
			if err := sleep(ctx, wait); err != nil {
				return "", err
			}
			continue
		case resp.StatusCode == http.StatusNotFound:
			return "", errNotFound
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return "", fmt.Errorf("shopify api error %d on %s: %s", resp.StatusCode, resource, strings.TrimSpace(string(body)))
		}

		if readErr != nil {
			return "", fmt.Errorf("read %s response: %w", resource, readErr)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return "", fmt.Errorf("decode %s response: %w", resource, err)
		}
		return nextPageInfo(resp.Header.Get("Link")), nil
	}
}

// getAll follows Link header pagination, calling collect after each page.
// Follow-up pages carry only limit and page_info, as the API requires.
func (c *Client) getAll(ctx context.Context, resource string, params url.Values, page func() any, collect func(any)) error {
	for {
		out := page()
		next, err := c.get(ctx, resource, params, out)
		if err != nil {
			return err
		}
		collect(out)
		if next == "" {
			return nil
		}
		params = url.Values{}
		params.Set("limit", strconv.Itoa(pageLimit))
		params.Set("page_info", next)
	}
}

// nextPageInfo extracts page_info from the rel="next" entry of a Link header.
func nextPageInfo(link string) string {
	for _, part := range strings.Split(link, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		isNext := false
		for _, s := range segments[1:] {
			if strings.TrimSpace(s) == `rel="next"` {
				isNext = true
			}
		}
		if !isNext {
			continue
		}
		raw := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		return u.Query().Get("page_info")
	}
	return ""
}

func retryAfter(header string, fallback time.Duration) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(header), 64)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs * float64(time.Second))
}

// backoff is base * 2^attempt, capped.
func backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * baseBackoff
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
