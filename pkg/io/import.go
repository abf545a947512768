package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/matzehuels/ghcensus/pkg/census"
)

// ReadUsersCSV decodes a users table written by [WriteUsersCSV].
//
// The first row must match [census.UserColumns] exactly. ReadUsersCSV returns
// an error if the header differs, a row has the wrong number of fields, or
// a count column is not an integer. Errors name the offending line.
func ReadUsersCSV(r io.Reader) ([]census.User, error) {
	rows, err := readCSV(r, census.UserColumns)
	if err != nil {
		return nil, err
	}
	users := make([]census.User, 0, len(rows))
	for i, row := range rows {
		ints, err := atois(row, 7, 8, 9)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		users = append(users, census.User{
			Login:       row[0],
			Name:        row[1],
			Company:     row[2],
			Location:    row[3],
			Email:       row[4],
			Hireable:    row[5],
			Bio:         row[6],
			PublicRepos: ints[0],
			Followers:   ints[1],
			Following:   ints[2],
			CreatedAt:   row[10],
		})
	}
	return users, nil
}

// ReadReposCSV decodes a repositories table written by [WriteReposCSV].
func ReadReposCSV(r io.Reader) ([]census.Repo, error) {
	rows, err := readCSV(r, census.RepoColumns)
	if err != nil {
		return nil, err
	}
	repos := make([]census.Repo, 0, len(rows))
	for i, row := range rows {
		ints, err := atois(row, 3, 4)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		repos = append(repos, census.Repo{
			Login:           row[0],
			FullName:        row[1],
			CreatedAt:       row[2],
			StargazersCount: ints[0],
			WatchersCount:   ints[1],
			Language:        row[5],
			HasProjects:     row[6],
			HasWiki:         row[7],
			LicenseName:     row[8],
		})
	}
	return repos, nil
}

// ImportUsersCSV reads a users CSV file at path.
func ImportUsersCSV(path string) ([]census.User, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadUsersCSV(f)
}

// ImportReposCSV reads a repositories CSV file at path.
func ImportReposCSV(path string) ([]census.Repo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadReposCSV(f)
}

func readCSV(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("decode: missing header row")
	}
	if !slices.Equal(records[0], header) {
		return nil, fmt.Errorf("decode: unexpected header %q", records[0])
	}
	return records[1:], nil
}

func atois(row []string, cols ...int) ([]int, error) {
	out := make([]int, len(cols))
	for i, c := range cols {
		n, err := strconv.Atoi(row[c])
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", c+1, err)
		}
		out[i] = n
	}
	return out, nil
}
