package io

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghcensus/pkg/census"
	"github.com/matzehuels/ghcensus/pkg/errors"
	"github.com/matzehuels/ghcensus/pkg/pipeline"
)

// Default output file names.
const (
	DefaultUsersFile = "users.csv"
	DefaultReposFile = "repositories.csv"
)

// CSVSink writes the users and repositories tables into Dir. It implements
// [pipeline.Sink]; existing files are overwritten.
type CSVSink struct {
	Dir       string
	UsersFile string // relative to Dir; empty means DefaultUsersFile
	ReposFile string // relative to Dir; empty means DefaultReposFile
	Logger    *log.Logger
}

// UsersPath returns the full path of the users table.
func (s *CSVSink) UsersPath() string {
	return filepath.Join(s.Dir, orDefault(s.UsersFile, DefaultUsersFile))
}

// ReposPath returns the full path of the repositories table.
func (s *CSVSink) ReposPath() string {
	return filepath.Join(s.Dir, orDefault(s.ReposFile, DefaultReposFile))
}

func (s *CSVSink) WriteUsers(_ context.Context, users []census.User) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	path := s.UsersPath()
	if err := ExportUsersCSV(users, path); err != nil {
		return err
	}
	s.logf("wrote users", "path", path, "rows", len(users))
	return nil
}

func (s *CSVSink) WriteRepos(_ context.Context, repos []census.Repo) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	path := s.ReposPath()
	if err := ExportReposCSV(repos, path); err != nil {
		return err
	}
	s.logf("wrote repositories", "path", path, "rows", len(repos))
	return nil
}

// Finish removes a repositories table left by an earlier run when this run
// skipped the repository phase, so the directory never pairs fresh users
// with stale repositories.
func (s *CSVSink) Finish(_ context.Context, result *pipeline.Result) error {
	if result == nil || !result.Options.UsersOnly {
		return nil
	}
	path := s.ReposPath()
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeOutput, err, "remove stale %s", path)
	}
	s.logf("removed stale repositories", "path", path)
	return nil
}

func (s *CSVSink) ensureDir() error {
	if s.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

func (s *CSVSink) logf(msg string, keyvals ...any) {
	if s.Logger != nil {
		s.Logger.Info(msg, keyvals...)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
