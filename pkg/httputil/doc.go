// Package httputil provides the rate-limit policy shared by REST API clients.
//
// # Overview
//
// The GitHub REST API rejects requests over quota with 403 or 429 and
// advertises when the quota resets:
//
//   - X-RateLimit-Remaining: requests left in the current window
//   - X-RateLimit-Reset: Unix second at which the window resets
//   - Retry-After: seconds to wait, sent with secondary limits
//
// [RateLimitPolicy] classifies a response and computes the wait as
// max(reset-now, 0) plus a pad (one second by default). The caller blocks for
// that long and then retries the identical request. There is no backoff and
// no retry budget beyond the optional MaxWaits cap.
//
// Usage:
//
//	policy := httputil.RateLimitPolicy{MaxWaits: 10}
//	for waits := 0; ; waits++ {
//	    resp, body := do(req)
//	    if !policy.IsRateLimited(resp, body) {
//	        break
//	    }
//	    if policy.Exhausted(waits) {
//	        return errRateLimited
//	    }
//	    if err := policy.Wait(ctx, policy.WaitDuration(resp.Header)); err != nil {
//	        return err
//	    }
//	}
//
// # Testing
//
// Now and Sleep are injectable so tests can assert the chosen wait without
// blocking.
package httputil
