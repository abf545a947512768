// Package sqlite exports census tables into a SQLite database.
//
// The database holds three tables, all dropped and recreated on every run:
//
//   - users: one row per collected account, columns as in users.csv
//   - repositories: one row per repository, columns as in repositories.csv
//   - runs: a single row describing the run that produced the tables
//
// The driver is modernc.org/sqlite, so no C toolchain is needed.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/matzehuels/ghcensus/pkg/census"
	"github.com/matzehuels/ghcensus/pkg/pipeline"
)

const usersDDL = `
CREATE TABLE users (
	login        TEXT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	company      TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	hireable     TEXT NOT NULL DEFAULT '',
	bio          TEXT NOT NULL DEFAULT '',
	public_repos INTEGER NOT NULL DEFAULT 0,
	followers    INTEGER NOT NULL DEFAULT 0,
	following    INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL DEFAULT ''
)`

const reposDDL = `
CREATE TABLE repositories (
	login            TEXT NOT NULL,
	full_name        TEXT NOT NULL,
	created_at       TEXT NOT NULL DEFAULT '',
	stargazers_count INTEGER NOT NULL DEFAULT 0,
	watchers_count   INTEGER NOT NULL DEFAULT 0,
	language         TEXT NOT NULL DEFAULT '',
	has_projects     TEXT NOT NULL DEFAULT 'false',
	has_wiki         TEXT NOT NULL DEFAULT 'false',
	license_name     TEXT NOT NULL DEFAULT ''
)`

const runsDDL = `
CREATE TABLE runs (
	run_id        TEXT PRIMARY KEY,
	collected_at  TEXT NOT NULL,
	location      TEXT NOT NULL,
	min_followers INTEGER NOT NULL,
	max_repos     INTEGER NOT NULL,
	users_only    INTEGER NOT NULL,
	user_count    INTEGER NOT NULL,
	repo_count    INTEGER NOT NULL,
	requests      INTEGER NOT NULL
)`

// Store is a SQLite export target. It implements [pipeline.Sink].
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path. Use ":memory:" in tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	// One connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// WriteUsers replaces the users table with users.
func (s *Store) WriteUsers(ctx context.Context, users []census.User) error {
	return s.replace(ctx, "users", usersDDL, census.UserColumns, len(users), func(i int) []any {
		u := users[i]
		return []any{u.Login, u.Name, u.Company, u.Location, u.Email, u.Hireable, u.Bio,
			u.PublicRepos, u.Followers, u.Following, u.CreatedAt}
	})
}

// WriteRepos replaces the repositories table with repos.
func (s *Store) WriteRepos(ctx context.Context, repos []census.Repo) error {
	return s.replace(ctx, "repositories", reposDDL, census.RepoColumns, len(repos), func(i int) []any {
		r := repos[i]
		return []any{r.Login, r.FullName, r.CreatedAt, r.StargazersCount, r.WatchersCount,
			r.Language, r.HasProjects, r.HasWiki, r.LicenseName}
	})
}

// Finish records the run in the runs table. A users-only run drops any
// repositories table left by an earlier run.
func (s *Store) Finish(ctx context.Context, result *pipeline.Result) error {
	if result.Options.UsersOnly {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS repositories"); err != nil {
			return fmt.Errorf("sqlite: drop repositories: %w", err)
		}
	}
	usersOnly := 0
	if result.Options.UsersOnly {
		usersOnly = 1
	}
	cols := []string{"run_id", "collected_at", "location", "min_followers", "max_repos",
		"users_only", "user_count", "repo_count", "requests"}
	return s.replace(ctx, "runs", runsDDL, cols, 1, func(int) []any {
		o := result.Options
		return []any{result.RunID, result.CollectedAt.UTC().Format(time.RFC3339), o.Location,
			o.MinFollowers, o.MaxRepos, usersOnly, len(result.Users), len(result.Repos),
			result.Stats.Requests.Requests}
	})
}

// replace drops and recreates table inside one transaction and inserts n rows.
func (s *Store) replace(ctx context.Context, table, ddl string, cols []string, n int, row func(int) []any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("sqlite: drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("sqlite: prepare %s: %w", table, err)
	}
	defer stmt.Close()

	for i := range n {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return fmt.Errorf("sqlite: insert %s row %d: %w", table, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit %s: %w", table, err)
	}
	return nil
}

// Users reads the users table back in insertion order.
func (s *Store) Users(ctx context.Context) ([]census.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+strings.Join(census.UserColumns, ", ")+" FROM users ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("sqlite: query users: %w", err)
	}
	defer rows.Close()

	var users []census.User
	for rows.Next() {
		var u census.User
		if err := rows.Scan(&u.Login, &u.Name, &u.Company, &u.Location, &u.Email, &u.Hireable,
			&u.Bio, &u.PublicRepos, &u.Followers, &u.Following, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Repos reads the repositories table back in insertion order. A missing
// table (a users-only run) yields nil; an empty table yields an empty slice.
func (s *Store) Repos(ctx context.Context) ([]census.Repo, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'repositories'").Scan(&exists); err != nil {
		return nil, fmt.Errorf("sqlite: inspect schema: %w", err)
	}
	if exists == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+strings.Join(census.RepoColumns, ", ")+" FROM repositories ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("sqlite: query repositories: %w", err)
	}
	defer rows.Close()

	repos := []census.Repo{}
	for rows.Next() {
		var r census.Repo
		if err := rows.Scan(&r.Login, &r.FullName, &r.CreatedAt, &r.StargazersCount, &r.WatchersCount,
			&r.Language, &r.HasProjects, &r.HasWiki, &r.LicenseName); err != nil {
			return nil, fmt.Errorf("sqlite: scan repository: %w", err)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}
