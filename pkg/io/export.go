package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/ghcensus/pkg/census"
)

// WriteUsersCSV encodes users as CSV with a header row and writes them to w.
// Columns follow [census.UserColumns].
func WriteUsersCSV(users []census.User, w io.Writer) error {
	rows := make([][]string, len(users))
	for i, u := range users {
		rows[i] = u.Row()
	}
	return writeCSV(w, census.UserColumns, rows)
}

// WriteReposCSV encodes repositories as CSV with a header row and writes
// them to w. Columns follow [census.RepoColumns].
func WriteReposCSV(repos []census.Repo, w io.Writer) error {
	rows := make([][]string, len(repos))
	for i, r := range repos {
		rows[i] = r.Row()
	}
	return writeCSV(w, census.RepoColumns, rows)
}

// ExportUsersCSV writes users to a CSV file at path, replacing any existing file.
// This is a convenience wrapper around [WriteUsersCSV] for file-based output.
func ExportUsersCSV(users []census.User, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteUsersCSV(users, w) })
}

// ExportReposCSV writes repositories to a CSV file at path, replacing any
// existing file.
func ExportReposCSV(repos []census.Repo, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteReposCSV(repos, w) })
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func exportFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}
