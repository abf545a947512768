package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/matzehuels/ghcensus/pkg/errors"
	"github.com/matzehuels/ghcensus/pkg/integrations"
)

// PerPage is the page size requested from every paginated endpoint.
const PerPage = 100

// Client provides access to the GitHub REST endpoints used by a census run:
// user search, user detail and per-user repository listing.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client. baseURL overrides the API root
// (used for GitHub Enterprise and tests); empty means api.github.com.
// The GitHub media type and API version headers are added to opts.Headers.
func NewClient(opts integrations.ClientOptions, baseURL string) *Client {
	headers := integrations.DefaultHeaders()
	for k, v := range opts.Headers {
		headers[k] = v
	}
	opts.Headers = headers

	if baseURL == "" {
		baseURL = integrations.DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// SearchUsers fetches one page (1-based) of GET /search/users for query.
// An empty Items slice means the result set is exhausted.
func (c *Client) SearchUsers(ctx context.Context, query string, page int) (*SearchPage, error) {
	q := url.Values{
		"q":        {query},
		"per_page": {strconv.Itoa(PerPage)},
		"page":     {strconv.Itoa(page)},
	}

	var res gh.UsersSearchResult
	if err := c.Get(ctx, c.baseURL+"/search/users", q, &res); err != nil {
		return nil, fmt.Errorf("search users page %d: %w", page, err)
	}
	return &SearchPage{
		Page:       page,
		TotalCount: res.GetTotal(),
		Incomplete: res.GetIncompleteResults(),
		Items:      res.Users,
	}, nil
}

// User fetches a full user profile from rawURL, normally the url field of a
// search item. The created_at value is kept exactly as sent.
func (c *Client) User(ctx context.Context, rawURL string) (*User, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, rawURL, nil, &raw); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return decodeUser(raw, rawURL)
}

// UserURL returns the profile URL for login under this client's API root.
func (c *Client) UserURL(login string) string {
	return integrations.JoinURL(c.baseURL, "users", login)
}

// UserRepos fetches one page (1-based) of a user's repositories, most
// recently pushed first.
func (c *Client) UserRepos(ctx context.Context, login string, page int) ([]Repo, error) {
	q := url.Values{
		"sort":      {"pushed"},
		"direction": {"desc"},
		"per_page":  {strconv.Itoa(PerPage)},
		"page":      {strconv.Itoa(page)},
	}

	var items []json.RawMessage
	target := integrations.JoinURL(c.baseURL, "users", login, "repos")
	if err := c.Get(ctx, target, q, &items); err != nil {
		return nil, fmt.Errorf("list repos of %s page %d: %w", login, page, err)
	}

	repos := make([]Repo, 0, len(items))
	for i, raw := range items {
		r, err := decodeRepo(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecode, err, "repo %d of %s page %d", i, login, page)
		}
		repos = append(repos, r)
	}
	return repos, nil
}

// SearchQuery builds the user search qualifier string for a location and
// follower threshold. Locations containing whitespace are quoted so the
// search treats them as one term.
func SearchQuery(location string, minFollowers int) string {
	loc := strings.TrimSpace(location)
	if strings.ContainsAny(loc, " \t") {
		loc = `"` + loc + `"`
	}
	return fmt.Sprintf("location:%s followers:>=%d", loc, minFollowers)
}

// The outer CreatedAt field shadows the embedded one, so go-github's
// Timestamp never parses created_at and any format sent upstream survives.
type rawUser struct {
	*gh.User
	CreatedAt json.RawMessage `json:"created_at"`
}

type rawRepo struct {
	*gh.Repository
	CreatedAt json.RawMessage `json:"created_at"`
}

func decodeUser(raw json.RawMessage, source string) (*User, error) {
	v := rawUser{User: &gh.User{}}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode user %s", source)
	}
	return &User{User: v.User, RawCreatedAt: rawText(v.CreatedAt)}, nil
}

func decodeRepo(raw json.RawMessage) (Repo, error) {
	v := rawRepo{Repository: &gh.Repository{}}
	if err := json.Unmarshal(raw, &v); err != nil {
		return Repo{}, err
	}
	return Repo{Repository: v.Repository, RawCreatedAt: rawText(v.CreatedAt)}, nil
}

// rawText returns a JSON string's contents, the literal text of any other
// value, and "" for null or a missing field.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
