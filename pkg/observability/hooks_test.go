package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.github.com", "/search/users")
	h.OnResponse(ctx, "GET", "api.github.com", "/search/users", 200, time.Second)
	h.OnError(ctx, "GET", "api.github.com", "/search/users", nil)
	h.OnRateLimited(ctx, "GET", "api.github.com", "/search/users", time.Second)

	c := NoopCollectorHooks{}
	c.OnSearchPage(ctx, 1, 100)
	c.OnRepoPage(ctx, "octocat", 1, 30)
}

func TestOrNoop(t *testing.T) {
	if _, ok := HTTPOrNoop(nil).(NoopHTTPHooks); !ok {
		t.Error("HTTPOrNoop(nil) should return NoopHTTPHooks")
	}
	if _, ok := CollectorOrNoop(nil).(NoopCollectorHooks); !ok {
		t.Error("CollectorOrNoop(nil) should return NoopCollectorHooks")
	}

	counter := &RequestCounter{}
	if HTTPOrNoop(counter) != counter {
		t.Error("HTTPOrNoop should pass through non-nil hooks")
	}
	if CollectorOrNoop(counter) != counter {
		t.Error("CollectorOrNoop should pass through non-nil hooks")
	}
}

func TestRequestCounter(t *testing.T) {
	ctx := context.Background()
	c := &RequestCounter{}

	c.OnRequest(ctx, "GET", "h", "/a")
	c.OnRequest(ctx, "GET", "h", "/a")
	c.OnResponse(ctx, "GET", "h", "/a", 403, time.Millisecond)
	c.OnRateLimited(ctx, "GET", "h", "/a", 6*time.Second)
	c.OnResponse(ctx, "GET", "h", "/a", 200, time.Millisecond)
	c.OnRequest(ctx, "GET", "h", "/b")
	c.OnError(ctx, "GET", "h", "/b", errors.New("reset"))
	c.OnSearchPage(ctx, 1, 100)
	c.OnRepoPage(ctx, "octocat", 1, 3)
	c.OnRepoPage(ctx, "octocat", 2, 0)

	got := c.Snapshot()
	want := Counts{
		Requests:    3,
		Responses:   2,
		Errors:      1,
		RateLimited: 1,
		Waited:      6 * time.Second,
		SearchPages: 1,
		RepoPages:   2,
	}
	if got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestMultiHTTPHooks(t *testing.T) {
	ctx := context.Background()
	a, b := &RequestCounter{}, &RequestCounter{}
	m := MultiHTTPHooks{a, b, NoopHTTPHooks{}}

	m.OnRequest(ctx, "GET", "h", "/x")
	m.OnResponse(ctx, "GET", "h", "/x", 200, 0)
	m.OnError(ctx, "GET", "h", "/x", nil)
	m.OnRateLimited(ctx, "GET", "h", "/x", time.Second)

	for i, c := range []*RequestCounter{a, b} {
		s := c.Snapshot()
		if s.Requests != 1 || s.Responses != 1 || s.Errors != 1 || s.RateLimited != 1 {
			t.Errorf("member %d got %+v, want one of each event", i, s)
		}
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := LogHooks{Logger: logger}

	h.OnRateLimited(context.Background(), "GET", "api.github.com", "/users/octocat", 6*time.Second)

	out := buf.String()
	if !strings.Contains(out, "rate limited") || !strings.Contains(out, "/users/octocat") {
		t.Errorf("log output missing event details: %q", out)
	}
}

func TestLoggerSatisfiedByCharmLogger(t *testing.T) {
	var _ Logger = log.New(&bytes.Buffer{})
}
