package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ghcensus/pkg/integrations"
	"github.com/matzehuels/ghcensus/pkg/integrations/github"
	ghio "github.com/matzehuels/ghcensus/pkg/io"
	"github.com/matzehuels/ghcensus/pkg/observability"
	"github.com/matzehuels/ghcensus/pkg/pipeline"
	"github.com/matzehuels/ghcensus/pkg/report"
	"github.com/matzehuels/ghcensus/pkg/store/sqlite"
)

// collectFlags holds the raw flag values of the collect command.
type collectFlags struct {
	location     string
	minFollowers int
	maxRepos     int
	usersOnly    bool
	limit        int
	outputDir    string
	token        string
	sqlite       string
	baseURL      string
}

// collectCommand creates the collect command.
func (c *CLI) collectCommand() *cobra.Command {
	var flags collectFlags

	cmd := &cobra.Command{
		Use:   "collect [location]",
		Short: "Collect users and repositories for a location",
		Long: `Search GitHub for users in a location with at least --min-followers
followers, fetch each profile and up to --max-repos most recently pushed
public repositories, and write users.csv, repositories.csv and README.md.

The token is read from --token, then GITHUB_TOKEN, then an interactive prompt.
Rate-limit rejections are waited out; a run can take hours without --limit.`,
		Example: `  # Collect Bangalore with the defaults
  ghcensus collect Bangalore

  # Users only, at least 500 followers, into ./out
  ghcensus collect "San Francisco" --min-followers 500 --users-only -o out`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.location = args[0]
			}
			return c.runCollect(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.location, "location", "l", "", "location qualifier for the user search")
	cmd.Flags().IntVar(&flags.minFollowers, "min-followers", pipeline.DefaultMinFollowers, "minimum follower count")
	cmd.Flags().IntVar(&flags.maxRepos, "max-repos", pipeline.DefaultMaxRepos, "maximum repositories per user")
	cmd.Flags().BoolVar(&flags.usersOnly, "users-only", false, "skip the repository phase")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "stop after this many users (0 = no limit)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "directory for the output files (default \".\")")
	cmd.Flags().StringVar(&flags.token, "token", "", "GitHub token (default $GITHUB_TOKEN)")
	cmd.Flags().StringVar(&flags.sqlite, "sqlite", "", "also write the tables into this SQLite database")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "GitHub API base URL")

	return cmd
}

// runCollect merges flags over the config file and executes one run.
func (c *CLI) runCollect(cmd *cobra.Command, flags collectFlags) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(c.configPath())
	if err != nil {
		return err
	}
	opts := collectOptions(cmd, flags, cfg)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	token, err := c.resolveToken(flags.token)
	if err != nil {
		return err
	}

	baseURL := cfg.API.BaseURL
	if cmd.Flags().Changed("base-url") {
		baseURL = flags.baseURL
	}
	outputDir := cfg.OutputDir
	if cmd.Flags().Changed("output-dir") {
		outputDir = flags.outputDir
	}
	dbPath := cfg.Output.SQLite
	if cmd.Flags().Changed("sqlite") {
		dbPath = flags.sqlite
	}

	counter := &observability.RequestCounter{}
	client := github.NewClient(integrations.ClientOptions{
		Token:             token,
		Timeout:           cfg.API.Timeout.Duration,
		RateLimit:         cfg.policy(),
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Logger:            c.Logger,
		Hooks:             observability.MultiHTTPHooks{counter, observability.LogHooks{Logger: c.Logger}},
	}, baseURL)

	csv := &ghio.CSVSink{
		Dir:       outputDir,
		UsersFile: cfg.Output.UsersFile,
		ReposFile: cfg.Output.ReposFile,
		Logger:    c.Logger,
	}
	readme := filepath.Join(outputDir, cfg.Output.ReadmeFile)
	sinks := pipeline.Sinks{
		csv,
		&report.Sink{
			Path:      readme,
			UsersFile: csv.UsersPath(),
			ReposFile: csv.ReposPath(),
			Logger:    c.Logger,
		},
	}
	files := []string{csv.UsersPath()}
	if !opts.UsersOnly {
		files = append(files, csv.ReposPath())
	}
	files = append(files, readme)
	if dbPath != "" {
		files = append(files, dbPath)
		store, err := sqlite.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		sinks = append(sinks, store)
	}
	opts.Sink = sinks
	opts.Logger = c.Logger

	c.Logger.Info("collecting", "query", github.SearchQuery(opts.Location, opts.MinFollowers), "api", client.BaseURL())
	prog := newProgress(c.Logger)

	result, err := pipeline.NewRunner(client, counter, c.Logger).Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(result.Summary())

	printRunSummary(cmd.OutOrStdout(), result, files)
	return nil
}

// collectOptions builds run options from the config, overridden by any flag
// the user set explicitly.
func collectOptions(cmd *cobra.Command, flags collectFlags, cfg Config) pipeline.Options {
	opts := pipeline.Options{
		Location:     cfg.Location,
		MinFollowers: cfg.MinFollowers,
		MaxRepos:     cfg.MaxRepos,
		UsersOnly:    flags.usersOnly,
		Limit:        flags.limit,
	}
	if flags.location != "" {
		opts.Location = flags.location
	}
	if cmd.Flags().Changed("min-followers") {
		opts.MinFollowers = flags.minFollowers
	}
	if cmd.Flags().Changed("max-repos") {
		opts.MaxRepos = flags.maxRepos
	}
	return opts
}
