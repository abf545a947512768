// Package pipeline provides the collection run for ghcensus.
//
// This package sequences the two phases of a run and hands the results to
// the output stage. The CLI is one caller; tests drive it against a fake
// GitHub server.
//
// # Architecture
//
// A run consists of two phases:
//
//  1. Users: search by location and follower threshold, enrich every hit
//  2. Repositories: list up to MaxRepos repositories per user, in discovery order
//
// Both phases are strictly sequential. A fatal error in either phase aborts
// the run; outputs the [Sink] has not yet been handed are never written.
//
// # Usage
//
//	runner := pipeline.NewRunner(client, counter, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Location:     "Bangalore",
//	    MinFollowers: 100,
//	    Sink:         sink,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Summary())
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghcensus/pkg/census"
	"github.com/matzehuels/ghcensus/pkg/errors"
	"github.com/matzehuels/ghcensus/pkg/observability"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Config
// =============================================================================

const (
	// DefaultMinFollowers is the follower threshold used when none is given.
	DefaultMinFollowers = 100

	// DefaultMaxRepos is the per-user repository cap.
	DefaultMaxRepos = census.DefaultMaxRepos
)

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options contains all configuration for one collection run.
type Options struct {
	Location     string `json:"location" toml:"location"`
	MinFollowers int    `json:"min_followers" toml:"min_followers"`
	MaxRepos     int    `json:"max_repos,omitempty" toml:"max_repos"`
	UsersOnly    bool   `json:"users_only,omitempty" toml:"users_only"` // skip the repository phase
	Limit        int    `json:"limit,omitempty" toml:"limit"`           // cap on enriched users, 0 = none

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`
	Sink   Sink        `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Sink receives the results of a run. WriteUsers is called as soon as the
// user phase completes; WriteRepos and Finish only after the whole run has
// succeeded.
type Sink interface {
	WriteUsers(ctx context.Context, users []census.User) error
	WriteRepos(ctx context.Context, repos []census.Repo) error
	Finish(ctx context.Context, result *Result) error
}

// Result contains the outputs of a run.
type Result struct {
	// RunID identifies the run in logs and the summary document.
	RunID string

	// CollectedAt is the wall-clock start of the run.
	CollectedAt time.Time

	// Options are the validated options the run used.
	Options Options

	// Users in discovery order.
	Users []census.User

	// Repos grouped by user in discovery order, most recently pushed first
	// within each user.
	Repos []census.Repo

	// Stats contains timing and request information.
	Stats Stats
}

// Stats contains run statistics.
type Stats struct {
	UserCount int
	RepoCount int
	UserTime  time.Duration
	RepoTime  time.Duration
	Requests  observability.Counts
}

// Summary returns the completion line printed at the end of a run.
func (r *Result) Summary() string {
	return fmt.Sprintf("Scraped %d users and %d repositories", len(r.Users), len(r.Repos))
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateLocation(o.Location); err != nil {
		return err
	}
	if o.MinFollowers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "min_followers cannot be negative: %d", o.MinFollowers)
	}
	if o.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit cannot be negative: %d", o.Limit)
	}
	if o.MaxRepos <= 0 {
		o.MaxRepos = DefaultMaxRepos
	}
	o.validated = true
	return nil
}
