package observability

import (
	"context"
	"time"
)

// Counts is a point-in-time copy of a RequestCounter.
type Counts struct {
	Requests    int           // request attempts, including retried ones
	Responses   int           // responses received, any status
	Errors      int           // transport failures
	RateLimited int           // rate-limit rejections
	Waited      time.Duration // total time chosen for rate-limit waits
	SearchPages int           // user search pages fetched
	RepoPages   int           // repository listing pages fetched
}

// RequestCounter tallies HTTP and collector events for run statistics.
// It implements both HTTPHooks and CollectorHooks. A run is sequential, so the
// counter is not synchronized.
type RequestCounter struct {
	c Counts
}

func (r *RequestCounter) OnRequest(context.Context, string, string, string) { r.c.Requests++ }

func (r *RequestCounter) OnResponse(context.Context, string, string, string, int, time.Duration) {
	r.c.Responses++
}

func (r *RequestCounter) OnError(context.Context, string, string, string, error) { r.c.Errors++ }

func (r *RequestCounter) OnRateLimited(_ context.Context, _, _, _ string, wait time.Duration) {
	r.c.RateLimited++
	r.c.Waited += wait
}

func (r *RequestCounter) OnSearchPage(context.Context, int, int) { r.c.SearchPages++ }

func (r *RequestCounter) OnRepoPage(context.Context, string, int, int) { r.c.RepoPages++ }

// Snapshot returns the current tallies.
func (r *RequestCounter) Snapshot() Counts { return r.c }

// LogHooks writes one debug line per HTTP event to a Logger.
type LogHooks struct {
	Logger Logger
}

func (l LogHooks) OnRequest(_ context.Context, method, host, path string) {
	l.Logger.Debug("request", "method", method, "host", host, "path", path)
}

func (l LogHooks) OnResponse(_ context.Context, method, _, path string, statusCode int, d time.Duration) {
	l.Logger.Debug("response", "method", method, "path", path, "status", statusCode, "duration", d.Round(time.Millisecond))
}

func (l LogHooks) OnError(_ context.Context, method, _, path string, err error) {
	l.Logger.Debug("transport error", "method", method, "path", path, "err", err)
}

func (l LogHooks) OnRateLimited(_ context.Context, _, _, path string, wait time.Duration) {
	l.Logger.Debug("rate limited", "path", path, "wait", wait)
}
