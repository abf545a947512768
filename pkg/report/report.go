// Package report renders the README summary that accompanies a census run.
//
// The summary names the search parameters, the collection date, the row
// counts of both tables and the most common companies and languages. It is
// rendered from an embedded text/template.
package report

import (
	"cmp"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/matzehuels/ghcensus/pkg/census"
	"github.com/matzehuels/ghcensus/pkg/integrations/github"
)

// DefaultTop is how many companies and languages the summary lists.
const DefaultTop = 10

//go:embed readme.md.tmpl
var readmeTemplate string

var tmpl = template.Must(template.New("readme").Funcs(template.FuncMap{
	"join": strings.Join,
	"cell": func(s string) string { return strings.ReplaceAll(s, "|", `\|`) },
}).Parse(readmeTemplate))

// Params are the run parameters the summary reports.
type Params struct {
	Location     string
	MinFollowers int
	MaxRepos     int
	UsersOnly    bool
	UsersFile    string
	ReposFile    string
	RunID        string
	CollectedAt  time.Time
}

// Tally is one row of a top-N table.
type Tally struct {
	Name  string
	Count int
}

// Summary is the data the README template renders.
type Summary struct {
	Params
	Query        string
	UserCount    int
	RepoCount    int
	TopCompanies []Tally
	TopLanguages []Tally
	UserColumns  []string
	RepoColumns  []string
}

// Build computes a Summary from collected records.
func Build(users []census.User, repos []census.Repo, p Params) Summary {
	return Summary{
		Params:       p,
		Query:        github.SearchQuery(p.Location, p.MinFollowers),
		UserCount:    len(users),
		RepoCount:    len(repos),
		TopCompanies: top(users, func(u census.User) string { return u.Company }, DefaultTop),
		TopLanguages: top(repos, func(r census.Repo) string { return r.Language }, DefaultTop),
		UserColumns:  census.UserColumns,
		RepoColumns:  census.RepoColumns,
	}
}

// Render writes the README for s to w.
func Render(w io.Writer, s Summary) error {
	if err := tmpl.Execute(w, s); err != nil {
		return fmt.Errorf("render readme: %w", err)
	}
	return nil
}

// WriteFile renders the README for s into path, replacing any existing file.
func WriteFile(path string, s Summary) error {
	var b strings.Builder
	if err := Render(&b, s); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// top counts the non-empty keys of items and returns the n most frequent,
// ties broken alphabetically.
func top[T any](items []T, key func(T) string, n int) []Tally {
	counts := make(map[string]int)
	for _, it := range items {
		if k := key(it); k != "" {
			counts[k]++
		}
	}
	tallies := make([]Tally, 0, len(counts))
	for name, c := range counts {
		tallies = append(tallies, Tally{Name: name, Count: c})
	}
	slices.SortFunc(tallies, func(a, b Tally) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(tallies) > n {
		tallies = tallies[:n]
	}
	return tallies
}
