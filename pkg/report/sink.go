package report

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghcensus/pkg/census"
	ghio "github.com/matzehuels/ghcensus/pkg/io"
	"github.com/matzehuels/ghcensus/pkg/pipeline"
)

// DefaultFile is the README file name.
const DefaultFile = "README.md"

// Sink writes the README once a run has succeeded. It implements
// [pipeline.Sink]; WriteUsers and WriteRepos are no-ops.
type Sink struct {
	Path      string // empty means DefaultFile
	UsersFile string // table names the README refers to
	ReposFile string
	Logger    *log.Logger
}

func (s *Sink) WriteUsers(context.Context, []census.User) error { return nil }

func (s *Sink) WriteRepos(context.Context, []census.Repo) error { return nil }

func (s *Sink) Finish(_ context.Context, result *pipeline.Result) error {
	path := s.Path
	if path == "" {
		path = DefaultFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	opts := result.Options
	summary := Build(result.Users, result.Repos, Params{
		Location:     opts.Location,
		MinFollowers: opts.MinFollowers,
		MaxRepos:     opts.MaxRepos,
		UsersOnly:    opts.UsersOnly,
		UsersFile:    baseOr(s.UsersFile, ghio.DefaultUsersFile),
		ReposFile:    baseOr(s.ReposFile, ghio.DefaultReposFile),
		RunID:        result.RunID,
		CollectedAt:  result.CollectedAt,
	})
	if err := WriteFile(path, summary); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("wrote readme", "path", path)
	}
	return nil
}

func baseOr(path, def string) string {
	if path == "" {
		return def
	}
	return filepath.Base(path)
}
