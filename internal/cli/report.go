package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ghcensus/pkg/census"
	"github.com/matzehuels/ghcensus/pkg/errors"
	ghio "github.com/matzehuels/ghcensus/pkg/io"
	"github.com/matzehuels/ghcensus/pkg/pipeline"
	"github.com/matzehuels/ghcensus/pkg/report"
	"github.com/matzehuels/ghcensus/pkg/store/sqlite"
)

type reportFlags struct {
	location     string
	minFollowers int
	maxRepos     int
	dir          string
	sqlite       string
	output       string
}

// reportCommand creates the report command, which rebuilds README.md from
// tables written by an earlier collect run without touching the network.
func (c *CLI) reportCommand() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report [location]",
		Short: "Rebuild the README summary from existing tables",
		Long: `Rebuild README.md from users.csv and repositories.csv (or from a SQLite
database written with collect --sqlite). No API requests are made.

A missing repositories table is reported as a users-only run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.location = args[0]
			}
			return c.runReport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.location, "location", "l", "", "location the tables were collected for")
	cmd.Flags().IntVar(&flags.minFollowers, "min-followers", pipeline.DefaultMinFollowers, "follower threshold the tables were collected with")
	cmd.Flags().IntVar(&flags.maxRepos, "max-repos", pipeline.DefaultMaxRepos, "repository cap the tables were collected with")
	cmd.Flags().StringVarP(&flags.dir, "dir", "d", "", "directory holding the CSV tables (default \".\")")
	cmd.Flags().StringVar(&flags.sqlite, "sqlite", "", "read the tables from this SQLite database instead")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "README path (default <dir>/README.md)")

	return cmd
}

func (c *CLI) runReport(cmd *cobra.Command, flags reportFlags) error {
	cfg, err := loadConfig(c.configPath())
	if err != nil {
		return err
	}
	opts := collectOptions(cmd, collectFlags{
		location:     flags.location,
		minFollowers: flags.minFollowers,
		maxRepos:     flags.maxRepos,
	}, cfg)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	dir := cfg.OutputDir
	if cmd.Flags().Changed("dir") {
		dir = flags.dir
	}
	csv := &ghio.CSVSink{Dir: dir, UsersFile: cfg.Output.UsersFile, ReposFile: cfg.Output.ReposFile}

	var users []census.User
	var repos []census.Repo
	if flags.sqlite != "" {
		users, repos, err = readStore(cmd, flags.sqlite)
	} else {
		users, repos, err = readTables(csv)
	}
	if err != nil {
		return err
	}
	opts.UsersOnly = repos == nil

	out := flags.output
	if out == "" {
		out = filepath.Join(dir, cfg.Output.ReadmeFile)
	}
	sink := &report.Sink{Path: out, UsersFile: csv.UsersPath(), ReposFile: csv.ReposPath(), Logger: c.Logger}
	result := &pipeline.Result{
		CollectedAt: time.Now(),
		Options:     opts,
		Users:       users,
		Repos:       repos,
	}
	if err := sink.Finish(cmd.Context(), result); err != nil {
		return errors.Wrap(errors.ErrCodeOutput, err, "write %s", out)
	}

	w := cmd.OutOrStdout()
	printSuccess(w, "Summarized %d users and %d repositories", len(users), len(repos))
	printFile(w, out)
	return nil
}

// readTables imports the CSV tables. A missing repositories file yields nil repos.
func readTables(csv *ghio.CSVSink) ([]census.User, []census.Repo, error) {
	users, err := ghio.ImportUsersCSV(csv.UsersPath())
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", csv.UsersPath())
	}
	if _, err := os.Stat(csv.ReposPath()); os.IsNotExist(err) {
		return users, nil, nil
	}
	repos, err := ghio.ImportReposCSV(csv.ReposPath())
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", csv.ReposPath())
	}
	if repos == nil {
		repos = []census.Repo{}
	}
	return users, repos, nil
}

func readStore(cmd *cobra.Command, path string) ([]census.User, []census.Repo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	users, err := store.Users(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	repos, err := store.Repos(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return users, repos, nil
}
