package census

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghcensus/pkg/httputil"
	"github.com/matzehuels/ghcensus/pkg/integrations"
	"github.com/matzehuels/ghcensus/pkg/integrations/github"
)

// fakeGitHub serves /search/users, /users/<login> and /users/<login>/repos
// from in-memory fixtures and counts every request it receives.
type fakeGitHub struct {
	*httptest.Server

	// searchPages holds the number of items on each search page; pages past
	// the end are empty.
	searchPages []int
	// repos maps a login to its repository count.
	repos map[string]int
	// intercept, if set, may answer a request itself by returning true.
	intercept func(w http.ResponseWriter, r *http.Request) bool

	mu       sync.Mutex
	requests map[string]int // "search", "user", "repos"
	log      []string
}

func newFakeGitHub(t *testing.T, searchPages []int, repos map[string]int) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{searchPages: searchPages, repos: repos, requests: map[string]int{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGitHub) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[kind]
}

func (f *fakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.log = append(f.log, r.URL.RequestURI())
	f.mu.Unlock()

	if f.intercept != nil && f.intercept(w, r) {
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/search/users":
		f.bump("search")
		f.serveSearch(w, r)
	case len(parts) == 2 && parts[0] == "users":
		f.bump("user")
		f.serveUser(w, parts[1])
	case len(parts) == 3 && parts[0] == "users" && parts[2] == "repos":
		f.bump("repos")
		f.serveRepos(w, r, parts[1])
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeGitHub) bump(kind string) {
	f.mu.Lock()
	f.requests[kind]++
	f.mu.Unlock()
}

func (f *fakeGitHub) serveSearch(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	n := 0
	offset := 0
	for i, size := range f.searchPages {
		if i+1 == page {
			n = size
			break
		}
		offset += size
	}

	total := 0
	for _, size := range f.searchPages {
		total += size
	}

	items := make([]map[string]any, 0, n)
	for i := range n {
		login := fmt.Sprintf("user-%d", offset+i)
		items = append(items, map[string]any{
			"login": login,
			"url":   "http://" + r.Host + "/users/" + login,
		})
	}
	json.NewEncoder(w).Encode(map[string]any{
		"total_count":        total,
		"incomplete_results": false,
		"items":              items,
	})
}

func (f *fakeGitHub) serveUser(w http.ResponseWriter, login string) {
	json.NewEncoder(w).Encode(map[string]any{
		"login":        login,
		"company":      "@Acme ",
		"hireable":     nil,
		"public_repos": f.repos[login],
		"followers":    150,
		"following":    3,
		"created_at":   "2015-06-01T10:00:00Z",
	})
}

// serveRepos returns repositories sorted by pushed_at descending when asked
// to, mimicking sort=pushed&direction=desc.
func (f *fakeGitHub) serveRepos(w http.ResponseWriter, r *http.Request, login string) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	type repo struct {
		name   string
		pushed time.Time
	}
	all := make([]repo, f.repos[login])
	for i := range all {
		// Creation order differs from push order.
		all[i] = repo{name: fmt.Sprintf("repo-%02d", i), pushed: base.Add(time.Duration((i*7)%len(all)) * time.Hour)}
	}
	if q.Get("sort") == "pushed" && q.Get("direction") == "desc" {
		sort.SliceStable(all, func(a, b int) bool { return all[a].pushed.After(all[b].pushed) })
	}

	start := min((page-1)*perPage, len(all))
	end := min(start+perPage, len(all))
	items := make([]map[string]any, 0, end-start)
	for _, rp := range all[start:end] {
		items = append(items, map[string]any{
			"full_name":        login + "/" + rp.name,
			"created_at":       "2016-02-03T04:05:06Z",
			"pushed_at":        rp.pushed.Format(time.RFC3339),
			"stargazers_count": 1,
			"watchers_count":   1,
			"language":         "Go",
			"has_projects":     true,
			"has_wiki":         false,
			"license":          map[string]any{"key": "apache-2.0"},
		})
	}
	json.NewEncoder(w).Encode(items)
}

func fakeClient(f *fakeGitHub, policy httputil.RateLimitPolicy) *github.Client {
	return github.NewClient(integrations.ClientOptions{
		Token:     "test-token",
		RateLimit: policy,
		Logger:    log.New(&bytes.Buffer{}),
	}, f.URL)
}

func quietCollector(api API, opts CollectorOptions) *Collector {
	opts.Logger = log.New(&bytes.Buffer{})
	return NewCollector(api, opts)
}
