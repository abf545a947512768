package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	gh "github.com/google/go-github/v80/github"
	"github.com/google/uuid"

	"github.com/matzehuels/ghcensus/pkg/census"
	cerrors "github.com/matzehuels/ghcensus/pkg/errors"
	"github.com/matzehuels/ghcensus/pkg/integrations/github"
)

// memAPI serves a single search page of logins and a fixed number of
// repositories per login from memory.
type memAPI struct {
	logins    []string
	repos     map[string]int
	failRepos string // login whose listing fails with a 500

	repoCalls []string
}

func (m *memAPI) SearchUsers(_ context.Context, _ string, page int) (*github.SearchPage, error) {
	if page > 1 {
		return &github.SearchPage{Page: page}, nil
	}
	items := make([]*gh.User, len(m.logins))
	for i, l := range m.logins {
		items[i] = &gh.User{Login: gh.Ptr(l), URL: gh.Ptr("mem://users/" + l)}
	}
	return &github.SearchPage{Page: page, TotalCount: len(items), Items: items}, nil
}

func (m *memAPI) User(_ context.Context, rawURL string) (*github.User, error) {
	login := rawURL[len("mem://users/"):]
	return &github.User{
		User:         &gh.User{Login: gh.Ptr(login), Company: gh.Ptr("@acme")},
		RawCreatedAt: "2020-01-01T00:00:00Z",
	}, nil
}

func (m *memAPI) UserURL(login string) string { return "mem://users/" + login }

func (m *memAPI) UserRepos(_ context.Context, login string, page int) ([]github.Repo, error) {
	m.repoCalls = append(m.repoCalls, login)
	if login == m.failRepos {
		return nil, &cerrors.HTTPError{StatusCode: 500, URL: "mem://users/" + login + "/repos"}
	}
	if page > 1 {
		return nil, nil
	}
	out := make([]github.Repo, m.repos[login])
	for i := range out {
		out[i] = github.Repo{Repository: &gh.Repository{FullName: gh.Ptr(fmt.Sprintf("%s/r%d", login, i))}}
	}
	return out, nil
}

// recordingSink records the order of calls it receives.
type recordingSink struct {
	calls  []string
	users  []census.User
	repos  []census.Repo
	result *Result
	err    error
}

func (s *recordingSink) WriteUsers(_ context.Context, users []census.User) error {
	s.calls = append(s.calls, "users")
	s.users = users
	return s.err
}

func (s *recordingSink) WriteRepos(_ context.Context, repos []census.Repo) error {
	s.calls = append(s.calls, "repos")
	s.repos = repos
	return nil
}

func (s *recordingSink) Finish(_ context.Context, result *Result) error {
	s.calls = append(s.calls, "finish")
	s.result = result
	return nil
}

func testRunner(api census.API) *Runner {
	r := NewRunner(api, nil, log.New(&bytes.Buffer{}))
	r.Now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantErr  cerrors.Code
		wantMax  int
		wantMinF int
	}{
		{"defaults", Options{Location: "Bangalore", MinFollowers: 100}, "", DefaultMaxRepos, 100},
		{"explicit max", Options{Location: "Bangalore", MaxRepos: 10}, "", 10, 0},
		{"negative max means default", Options{Location: "Bangalore", MaxRepos: -3}, "", DefaultMaxRepos, 0},
		{"empty location", Options{}, cerrors.ErrCodeInvalidLocation, 0, 0},
		{"negative followers", Options{Location: "x", MinFollowers: -1}, cerrors.ErrCodeInvalidInput, 0, 0},
		{"negative limit", Options{Location: "x", Limit: -1}, cerrors.ErrCodeInvalidInput, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantErr != "" {
				if !cerrors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.opts.MaxRepos != tt.wantMax {
				t.Errorf("MaxRepos = %d, want %d", tt.opts.MaxRepos, tt.wantMax)
			}
			if tt.opts.MinFollowers != tt.wantMinF {
				t.Errorf("MinFollowers = %d, want %d", tt.opts.MinFollowers, tt.wantMinF)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Location: "Berlin"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, opts) {
		t.Errorf("second call changed options: %+v vs %+v", first, opts)
	}
}

func TestRunnerExecute(t *testing.T) {
	api := &memAPI{
		logins: []string{"alice", "bob", "carol"},
		repos:  map[string]int{"alice": 2, "carol": 3},
	}
	sink := &recordingSink{}

	result, err := testRunner(api).Execute(context.Background(), Options{
		Location:     "Bangalore",
		MinFollowers: 100,
		Sink:         sink,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if len(result.Users) != 3 || result.Users[0].Company != "ACME" {
		t.Errorf("users = %+v", result.Users)
	}
	var names []string
	for _, r := range result.Repos {
		names = append(names, r.FullName)
	}
	want := []string{"alice/r0", "alice/r1", "carol/r0", "carol/r1", "carol/r2"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("repos = %v, want %v", names, want)
	}

	if !reflect.DeepEqual(sink.calls, []string{"users", "repos", "finish"}) {
		t.Errorf("sink calls = %v", sink.calls)
	}
	if sink.result != result {
		t.Error("Finish should receive the returned result")
	}

	if _, err := uuid.Parse(result.RunID); err != nil {
		t.Errorf("RunID %q is not a uuid: %v", result.RunID, err)
	}
	if !result.CollectedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("CollectedAt = %v", result.CollectedAt)
	}
	if result.Options.MaxRepos != DefaultMaxRepos {
		t.Errorf("Options.MaxRepos = %d, want default", result.Options.MaxRepos)
	}
	if result.Stats.UserCount != 3 || result.Stats.RepoCount != 5 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.Stats.Requests.SearchPages != 2 || result.Stats.Requests.RepoPages != 3 {
		t.Errorf("request counts = %+v, want 2 search pages and 3 repo pages", result.Stats.Requests)
	}
	if got := result.Summary(); got != "Scraped 3 users and 5 repositories" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestRunnerExecuteUsersOnly(t *testing.T) {
	api := &memAPI{logins: []string{"alice"}, repos: map[string]int{"alice": 4}}
	sink := &recordingSink{}

	result, err := testRunner(api).Execute(context.Background(), Options{
		Location:  "Bangalore",
		UsersOnly: true,
		Sink:      sink,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(api.repoCalls) != 0 {
		t.Errorf("repository endpoint called %d times, want 0", len(api.repoCalls))
	}
	if result.Repos != nil {
		t.Errorf("repos = %v, want nil", result.Repos)
	}
	if !reflect.DeepEqual(sink.calls, []string{"users", "finish"}) {
		t.Errorf("sink calls = %v", sink.calls)
	}
}

func TestRunnerExecuteLimit(t *testing.T) {
	api := &memAPI{logins: []string{"a", "b", "c", "d"}}

	result, err := testRunner(api).Execute(context.Background(), Options{Location: "x", Limit: 2})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(result.Users) != 2 || !reflect.DeepEqual(api.repoCalls, []string{"a", "b"}) {
		t.Errorf("users = %d, repo calls = %v, want 2 users and repos for a, b", len(result.Users), api.repoCalls)
	}
}

func TestRunnerExecuteRepoFailureKeepsUsersOnly(t *testing.T) {
	api := &memAPI{
		logins:    []string{"alice", "bob"},
		repos:     map[string]int{"alice": 1},
		failRepos: "bob",
	}
	sink := &recordingSink{}

	result, err := testRunner(api).Execute(context.Background(), Options{Location: "x", Sink: sink})
	if !cerrors.Is(err, cerrors.ErrCodeHTTP) {
		t.Fatalf("Execute() error = %v, want HTTP_ERROR", err)
	}
	if result != nil {
		t.Error("result should be nil on failure")
	}
	if !reflect.DeepEqual(sink.calls, []string{"users"}) {
		t.Errorf("sink calls = %v, want only users", sink.calls)
	}
}

func TestRunnerExecuteInvalidOptions(t *testing.T) {
	api := &memAPI{}
	sink := &recordingSink{}

	_, err := testRunner(api).Execute(context.Background(), Options{Sink: sink})
	if !cerrors.Is(err, cerrors.ErrCodeInvalidLocation) {
		t.Errorf("Execute() error = %v, want INVALID_LOCATION", err)
	}
	if len(sink.calls) != 0 {
		t.Errorf("sink calls = %v, want none", sink.calls)
	}
}

func TestRunnerExecuteSinkError(t *testing.T) {
	api := &memAPI{logins: []string{"alice"}}
	sink := &recordingSink{err: errors.New("disk full")}

	_, err := testRunner(api).Execute(context.Background(), Options{Location: "x", Sink: sink})
	if !cerrors.Is(err, cerrors.ErrCodeOutput) {
		t.Errorf("Execute() error = %v, want OUTPUT_ERROR", err)
	}
	if len(api.repoCalls) != 0 {
		t.Error("repository phase should not start after a failed users write")
	}
}

func TestSinks(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	s := Sinks{a, b}
	ctx := context.Background()

	if err := s.WriteUsers(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRepos(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Finish(ctx, &Result{}); err != nil {
		t.Fatal(err)
	}
	for i, r := range []*recordingSink{a, b} {
		if !reflect.DeepEqual(r.calls, []string{"users", "repos", "finish"}) {
			t.Errorf("sink %d calls = %v", i, r.calls)
		}
	}

	failing := &recordingSink{err: errors.New("boom")}
	after := &recordingSink{}
	if err := (Sinks{failing, after}).WriteUsers(ctx, nil); err == nil {
		t.Error("WriteUsers() should return the first error")
	}
	if len(after.calls) != 0 {
		t.Error("sinks after a failure should not be called")
	}
}
