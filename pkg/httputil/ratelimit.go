package httputil

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Rate limit headers sent by the GitHub REST API.
const (
	HeaderRateLimit     = "X-RateLimit-Limit"
	HeaderRateRemaining = "X-RateLimit-Remaining"
	HeaderRateReset     = "X-RateLimit-Reset" // Unix seconds
	HeaderRetryAfter    = "Retry-After"       // seconds
)

// DefaultPad is added to every computed rate-limit wait so the retry lands
// after the reset instant rather than on it.
const DefaultPad = time.Second

// RateLimitPolicy decides whether a response is a rate-limit rejection and how
// long to block before retrying the identical request.
//
// The zero value is usable: it pads waits by [DefaultPad], never caps the
// number of waits, reads the wall clock and sleeps with [SleepContext].
type RateLimitPolicy struct {
	// Pad is added to max(reset-now, 0). Zero means DefaultPad; negative means no pad.
	Pad time.Duration

	// MaxWaits caps consecutive waits for one request. Zero means unbounded.
	MaxWaits int

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time

	// Sleep blocks for d or until ctx is done. Nil means SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error
}

// IsRateLimited reports whether resp is a rate-limit rejection.
//
// A 429 always is. A 403 is only when it can be attributed to rate limiting:
// the remaining quota header is 0, a Retry-After header is present, or the
// body mentions a rate limit (primary and secondary limits both say so).
// Any other 403 is a permission problem and must surface as an error.
func (p RateLimitPolicy) IsRateLimited(resp *http.Response, body []byte) bool {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		if resp.Header.Get(HeaderRateRemaining) == "0" {
			return true
		}
		if resp.Header.Get(HeaderRetryAfter) != "" {
			return true
		}
		return strings.Contains(strings.ToLower(string(body)), "rate limit")
	default:
		return false
	}
}

// WaitDuration computes max(reset-now, 0) + pad from the response headers.
// X-RateLimit-Reset takes precedence; Retry-After is used when the reset
// header is absent. With neither header the wait is just the pad.
func (p RateLimitPolicy) WaitDuration(h http.Header) time.Duration {
	var wait time.Duration
	if reset, err := strconv.ParseInt(h.Get(HeaderRateReset), 10, 64); err == nil {
		wait = time.Unix(reset, 0).Sub(p.now())
	} else if secs, err := strconv.Atoi(h.Get(HeaderRetryAfter)); err == nil {
		wait = time.Duration(secs) * time.Second
	}
	return max(wait, 0) + p.pad()
}

// Exhausted reports whether waits consecutive waits have used up MaxWaits.
func (p RateLimitPolicy) Exhausted(waits int) bool {
	return p.MaxWaits > 0 && waits >= p.MaxWaits
}

// Wait blocks for d using the configured sleeper.
func (p RateLimitPolicy) Wait(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

func (p RateLimitPolicy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p RateLimitPolicy) pad() time.Duration {
	switch {
	case p.Pad < 0:
		return 0
	case p.Pad == 0:
		return DefaultPad
	default:
		return p.Pad
	}
}

// SleepContext blocks for d or until ctx is cancelled, whichever comes first.
// Returns ctx.Err() if cancelled.
func SleepContext(ctx context.Context, d time.Duration) error {
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
