package census

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	gh "github.com/google/go-github/v80/github"

	"github.com/matzehuels/ghcensus/pkg/errors"
	"github.com/matzehuels/ghcensus/pkg/integrations/github"
	"github.com/matzehuels/ghcensus/pkg/observability"
)

// DefaultMaxRepos is the per-user repository cap used when none is given.
const DefaultMaxRepos = 500

// API is the subset of the GitHub client the collector drives.
// *github.Client satisfies it.
type API interface {
	SearchUsers(ctx context.Context, query string, page int) (*github.SearchPage, error)
	User(ctx context.Context, rawURL string) (*github.User, error)
	UserURL(login string) string
	UserRepos(ctx context.Context, login string, page int) ([]github.Repo, error)
}

// CollectorOptions configures a Collector. The zero value is usable.
type CollectorOptions struct {
	// Logger receives per-page progress. Nil means log.Default().
	Logger observability.Logger

	// Hooks receives one event per fetched page. Nil disables hooks.
	Hooks observability.CollectorHooks

	// MaxUsers stops the search once this many users are enriched.
	// Zero means no cap.
	MaxUsers int
}

// Collector walks paginated search and listing endpoints and normalizes
// every record it sees. It is strictly sequential: one request at a time.
type Collector struct {
	api      API
	logger   observability.Logger
	hooks    observability.CollectorHooks
	maxUsers int
}

// NewCollector creates a Collector over api.
func NewCollector(api API, opts CollectorOptions) *Collector {
	var logger observability.Logger = log.Default()
	if opts.Logger != nil {
		logger = opts.Logger
	}
	return &Collector{
		api:      api,
		logger:   logger,
		hooks:    observability.CollectorOrNoop(opts.Hooks),
		maxUsers: max(opts.MaxUsers, 0),
	}
}

// SearchUsers finds every account matching location and minFollowers and
// fetches each one's full profile.
//
// Pages are requested from 1 upward until a page comes back with no items.
// Every item costs one extra detail request, issued in page order, so the
// result preserves discovery order. Duplicates across pages are kept.
func (c *Collector) SearchUsers(ctx context.Context, location string, minFollowers int) ([]User, error) {
	if err := errors.ValidateLocation(location); err != nil {
		return nil, err
	}
	query := github.SearchQuery(location, minFollowers)

	var users []User
	for page := 1; ; page++ {
		res, err := c.api.SearchUsers(ctx, query, page)
		if err != nil {
			return nil, err
		}
		c.hooks.OnSearchPage(ctx, page, len(res.Items))
		if len(res.Items) == 0 {
			break
		}
		c.logger.Info("search page", "page", page, "items", len(res.Items), "total", res.TotalCount)

		for _, item := range res.Items {
			u, err := c.enrich(ctx, item)
			if err != nil {
				return nil, err
			}
			users = append(users, u)
			if c.maxUsers > 0 && len(users) >= c.maxUsers {
				c.logger.Info("user limit reached", "limit", c.maxUsers)
				return users, nil
			}
		}
	}
	return users, nil
}

func (c *Collector) enrich(ctx context.Context, item *gh.User) (User, error) {
	target := item.GetURL()
	if target == "" {
		if err := errors.ValidateLogin(item.GetLogin()); err != nil {
			return User{}, err
		}
		target = c.api.UserURL(item.GetLogin())
	}
	detail, err := c.api.User(ctx, target)
	if err != nil {
		return User{}, fmt.Errorf("enrich %s: %w", item.GetLogin(), err)
	}
	u := NormalizeUser(detail)
	if u.Login == "" {
		u.Login = item.GetLogin()
	}
	c.logger.Debug("user", "login", u.Login, "followers", u.Followers)
	return u, nil
}

// UserRepos lists up to maxRepos of login's repositories, most recently
// pushed first. maxRepos <= 0 means DefaultMaxRepos.
//
// Paging stops once maxRepos records are accumulated or a page returns fewer
// than a full page of items.
func (c *Collector) UserRepos(ctx context.Context, login string, maxRepos int) ([]Repo, error) {
	if err := errors.ValidateLogin(login); err != nil {
		return nil, err
	}
	if maxRepos <= 0 {
		maxRepos = DefaultMaxRepos
	}

	var repos []Repo
	for page := 1; len(repos) < maxRepos; page++ {
		items, err := c.api.UserRepos(ctx, login, page)
		if err != nil {
			return nil, err
		}
		c.hooks.OnRepoPage(ctx, login, page, len(items))
		for i := range items {
			repos = append(repos, NormalizeRepo(login, &items[i]))
		}
		if len(items) < github.PerPage {
			break
		}
	}

	if len(repos) > maxRepos {
		repos = repos[:maxRepos]
	}
	c.logger.Debug("repositories", "login", login, "count", len(repos))
	return repos, nil
}
