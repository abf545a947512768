package integrations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/matzehuels/ghcensus/pkg/errors"
	"github.com/matzehuels/ghcensus/pkg/httputil"
	"github.com/matzehuels/ghcensus/pkg/observability"
)

// Client provides shared HTTP functionality for REST API clients.
// It handles the bearer credential, common request headers, the blocking
// rate-limit wait, and JSON decoding.
type Client struct {
	http    *http.Client
	headers map[string]string
	policy  httputil.RateLimitPolicy
	limiter *rate.Limiter
	logger  observability.Logger
	hooks   observability.HTTPHooks
}

// ClientOptions configures a Client. Only Token is normally required.
type ClientOptions struct {
	// Token is sent as "Authorization: Bearer <token>" on every request.
	Token string

	// Headers are applied to every request. Pass nil if none are needed.
	Headers map[string]string

	// Timeout bounds a single request attempt. Zero means DefaultTimeout.
	Timeout time.Duration

	// RateLimit decides how rate-limit rejections are waited out.
	RateLimit httputil.RateLimitPolicy

	// RequestsPerSecond proactively throttles attempts. Zero disables throttling.
	RequestsPerSecond float64

	// Transport is the base round tripper. Nil means http.DefaultTransport.
	Transport http.RoundTripper

	// Logger receives rate-limit warnings and error bodies. Nil means log.Default().
	Logger observability.Logger

	// Hooks receives one event per attempt. Nil disables hooks.
	Hooks observability.HTTPHooks
}

// NewClient creates a Client from opts.
func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var logger observability.Logger = log.Default()
	if opts.Logger != nil {
		logger = opts.Logger
	}

	c := &Client{
		http:    NewHTTPClient(opts.Token, timeout, opts.Transport),
		headers: opts.Headers,
		policy:  opts.RateLimit,
		logger:  logger,
		hooks:   observability.HTTPOrNoop(opts.Hooks),
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// Get performs an HTTP GET of rawURL with query merged into its query string
// and JSON-decodes a 200 response into v.
//
// Rate-limit rejections are waited out and the identical request is retried,
// indefinitely unless the policy sets MaxWaits. Any other non-200 status
// returns an *errors.HTTPError. Transport failures are returned immediately
// as NETWORK_ERROR; there is no retry for them.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values, v any) error {
	target, err := WithQuery(rawURL, query)
	if err != nil {
		return err
	}

	for waits := 0; ; waits++ {
		resp, body, err := c.doRequest(ctx, target)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusOK {
			if err := json.Unmarshal(body, v); err != nil {
				return errors.Wrap(errors.ErrCodeDecode, err, "decode %s", target)
			}
			return nil
		}

		if !c.policy.IsRateLimited(resp, body) {
			c.logger.Error("request failed", "status", resp.StatusCode, "url", target, "body", string(body))
			return &errors.HTTPError{StatusCode: resp.StatusCode, URL: target, Body: string(body)}
		}

		if c.policy.Exhausted(waits) {
			return errors.Wrap(errors.ErrCodeRateLimited,
				&errors.RateLimitedError{Waits: waits, RetryAfter: retryAfter(resp)},
				"GET %s", target)
		}

		wait := c.policy.WaitDuration(resp.Header)
		c.hooks.OnRateLimited(ctx, http.MethodGet, resp.Request.URL.Host, resp.Request.URL.Path, wait)
		c.logger.Warn("rate limit hit, sleeping", "wait", wait, "url", target)
		if err := c.policy.Wait(ctx, wait); err != nil {
			return err
		}
	}
}

// doRequest issues one GET attempt and reads the whole body.
func (c *Client) doRequest(ctx context.Context, target string) (*http.Response, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	c.hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.hooks.OnError(ctx, http.MethodGet, host, path, err)
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", target)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, nil, errors.Wrap(errors.ErrCodeNetwork, err, "read body of %s", target)
	}
	c.hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))
	return resp, body, nil
}

// retryAfter returns the Retry-After delay in seconds, or 0 when the header
// is absent or not an integer.
func retryAfter(resp *http.Response) int {
	secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get(httputil.HeaderRetryAfter)))
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}
