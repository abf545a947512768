// Package observability provides the logging capability and event hooks that
// the collector components receive at construction time.
//
// # Architecture
//
// Nothing in this package is global. The CLI builds one [Logger] and one set
// of hooks at startup and passes them down to the runner, the collector and
// the HTTP client:
//   - [Logger] is the logging capability (satisfied by *charmbracelet/log.Logger)
//   - [HTTPHooks] receives one event per request attempt
//   - [CollectorHooks] receives one event per fetched page
//
// Every hook interface has a no-op implementation so components can fall back
// to it when the caller passes nil.
//
// # Usage
//
//	counter := &observability.RequestCounter{}
//	client := integrations.NewClient(integrations.ClientOptions{
//	    Token:  token,
//	    Logger: logger,
//	    Hooks:  counter,
//	})
//	// ... run collection ...
//	fmt.Println(counter.Snapshot().Requests)
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Logger
// =============================================================================

// Logger is the logging capability injected into every component.
// Methods take a message followed by alternating key/value pairs.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request attempt.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP transport error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)

	// OnRateLimited records a rate-limit rejection and the wait chosen for it.
	OnRateLimited(ctx context.Context, method, host, path string, wait time.Duration)
}

// =============================================================================
// Collector Hooks
// =============================================================================

// CollectorHooks receives events from the paginated collectors.
type CollectorHooks interface {
	// OnSearchPage records a user search page and how many items it held.
	OnSearchPage(ctx context.Context, page, items int)

	// OnRepoPage records a repository listing page for one owner.
	OnRepoPage(ctx context.Context, login string, page, items int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}
func (NoopHTTPHooks) OnRateLimited(context.Context, string, string, string, time.Duration)   {}

// NoopCollectorHooks is a no-op implementation of CollectorHooks.
type NoopCollectorHooks struct{}

func (NoopCollectorHooks) OnSearchPage(context.Context, int, int)       {}
func (NoopCollectorHooks) OnRepoPage(context.Context, string, int, int) {}

// =============================================================================
// Composition
// =============================================================================

// MultiHTTPHooks fans every event out to each of its members in order.
type MultiHTTPHooks []HTTPHooks

func (m MultiHTTPHooks) OnRequest(ctx context.Context, method, host, path string) {
	for _, h := range m {
		h.OnRequest(ctx, method, host, path)
	}
}

func (m MultiHTTPHooks) OnResponse(ctx context.Context, method, host, path string, statusCode int, d time.Duration) {
	for _, h := range m {
		h.OnResponse(ctx, method, host, path, statusCode, d)
	}
}

func (m MultiHTTPHooks) OnError(ctx context.Context, method, host, path string, err error) {
	for _, h := range m {
		h.OnError(ctx, method, host, path, err)
	}
}

func (m MultiHTTPHooks) OnRateLimited(ctx context.Context, method, host, path string, wait time.Duration) {
	for _, h := range m {
		h.OnRateLimited(ctx, method, host, path, wait)
	}
}

// HTTPOrNoop returns h, or NoopHTTPHooks when h is nil.
func HTTPOrNoop(h HTTPHooks) HTTPHooks {
	if h == nil {
		return NoopHTTPHooks{}
	}
	return h
}

// CollectorOrNoop returns h, or NoopCollectorHooks when h is nil.
func CollectorOrNoop(h CollectorHooks) CollectorHooks {
	if h == nil {
		return NoopCollectorHooks{}
	}
	return h
}
