package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ghcensus/pkg/census"
	"github.com/matzehuels/ghcensus/pkg/errors"
	"github.com/matzehuels/ghcensus/pkg/observability"
)

// Runner executes collection runs.
//
// The Runner holds no per-run state besides the request counter, so it is
// meant for one run at a time. Pass the same counter as the HTTP client's
// hooks to have request totals show up in Result.Stats.
type Runner struct {
	API     census.API
	Counter *observability.RequestCounter
	Logger  *log.Logger

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// NewRunner creates a runner over api.
// If counter is nil, a fresh RequestCounter is used.
// If logger is nil, log.Default() is used.
func NewRunner(api census.API, counter *observability.RequestCounter, logger *log.Logger) *Runner {
	if counter == nil {
		counter = &observability.RequestCounter{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		API:     api,
		Counter: counter,
		Logger:  logger,
	}
}

// Execute runs the user phase and, unless opts.UsersOnly is set, the
// repository phase, handing results to opts.Sink as each becomes final.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	logger := opts.Logger
	if r.Counter == nil {
		r.Counter = &observability.RequestCounter{}
	}

	result := &Result{
		RunID:       uuid.NewString(),
		CollectedAt: r.now(),
		Options:     opts,
	}
	logger = logger.With("run", result.RunID[:8])

	collector := census.NewCollector(r.API, census.CollectorOptions{
		Logger:   logger,
		Hooks:    r.Counter,
		MaxUsers: opts.Limit,
	})

	// Phase 1: Users
	userStart := time.Now()
	logger.Info("searching users", "location", opts.Location, "min_followers", opts.MinFollowers)
	users, err := collector.SearchUsers(ctx, opts.Location, opts.MinFollowers)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	result.Users = users
	result.Stats.UserCount = len(users)
	result.Stats.UserTime = time.Since(userStart)

	logger.Info("collected users",
		"users", len(users),
		"duration", result.Stats.UserTime.Round(time.Millisecond))

	if opts.Sink != nil {
		if err := opts.Sink.WriteUsers(ctx, users); err != nil {
			return nil, errors.Wrap(errors.ErrCodeOutput, err, "write users")
		}
	}

	// Phase 2: Repositories
	if !opts.UsersOnly {
		repoStart := time.Now()
		repos, err := r.collectRepos(ctx, collector, logger, users, opts.MaxRepos)
		if err != nil {
			return nil, fmt.Errorf("repositories: %w", err)
		}
		result.Repos = repos
		result.Stats.RepoCount = len(repos)
		result.Stats.RepoTime = time.Since(repoStart)

		logger.Info("collected repositories",
			"repos", len(repos),
			"duration", result.Stats.RepoTime.Round(time.Millisecond))
	}

	result.Stats.Requests = r.Counter.Snapshot()

	if opts.Sink != nil {
		if !opts.UsersOnly {
			if err := opts.Sink.WriteRepos(ctx, result.Repos); err != nil {
				return nil, errors.Wrap(errors.ErrCodeOutput, err, "write repositories")
			}
		}
		if err := opts.Sink.Finish(ctx, result); err != nil {
			return nil, errors.Wrap(errors.ErrCodeOutput, err, "finish output")
		}
	}

	return result, nil
}

func (r *Runner) collectRepos(ctx context.Context, c *census.Collector, logger *log.Logger, users []census.User, maxRepos int) ([]census.Repo, error) {
	var all []census.Repo
	for i, u := range users {
		repos, err := c.UserRepos(ctx, u.Login, maxRepos)
		if err != nil {
			return nil, err
		}
		all = append(all, repos...)
		logger.Info("fetched repositories",
			"user", u.Login,
			"repos", len(repos),
			"progress", fmt.Sprintf("%d/%d", i+1, len(users)))
	}
	return all, nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
}
