package io

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/ghcensus/pkg/census"
	"github.com/matzehuels/ghcensus/pkg/pipeline"
)

var testUsers = []census.User{
	{
		Login: "octocat", Name: "The Octocat", Company: "GITHUB", Location: "San Francisco",
		Hireable: "true", Bio: "line one\nline \"two\", with comma", PublicRepos: 8,
		Followers: 3938, Following: 9, CreatedAt: "2011-01-25T18:44:36Z",
	},
	{Login: "ghost"},
}

var testRepos = []census.Repo{
	{
		Login: "octocat", FullName: "octocat/Hello-World", CreatedAt: "2011-01-26T19:01:12Z",
		StargazersCount: 80, WatchersCount: 80, Language: "C", HasProjects: "true",
		HasWiki: "true", LicenseName: "mit",
	},
	{Login: "octocat", FullName: "octocat/empty", HasProjects: "false", HasWiki: "false"},
}

func TestWriteUsersCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUsersCSV(testUsers[1:], &buf); err != nil {
		t.Fatalf("WriteUsersCSV() error: %v", err)
	}
	want := "login,name,company,location,email,hireable,bio,public_repos,followers,following,created_at\n" +
		"ghost,,,,,,,0,0,0,\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteReposCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReposCSV(nil, &buf); err != nil {
		t.Fatalf("WriteReposCSV() error: %v", err)
	}
	want := "login,full_name,created_at,stargazers_count,watchers_count,language,has_projects,has_wiki,license_name\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestUsersRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	if err := ExportUsersCSV(testUsers, path); err != nil {
		t.Fatalf("ExportUsersCSV() error: %v", err)
	}
	got, err := ImportUsersCSV(path)
	if err != nil {
		t.Fatalf("ImportUsersCSV() error: %v", err)
	}
	if !reflect.DeepEqual(got, testUsers) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, testUsers)
	}
}

func TestReposRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repositories.csv")
	if err := ExportReposCSV(testRepos, path); err != nil {
		t.Fatalf("ExportReposCSV() error: %v", err)
	}
	got, err := ImportReposCSV(path)
	if err != nil {
		t.Fatalf("ImportReposCSV() error: %v", err)
	}
	if !reflect.DeepEqual(got, testRepos) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, testRepos)
	}
}

func TestExportOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	if err := ExportUsersCSV(testUsers, path); err != nil {
		t.Fatal(err)
	}
	if err := ExportUsersCSV(nil, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(data), "\n") != 1 {
		t.Errorf("file should hold only the header after overwrite, got %q", data)
	}
}

func TestReadUsersCSVErrors(t *testing.T) {
	header := strings.Join(census.UserColumns, ",") + "\n"
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "login,name\n"},
		{"short row", header + "a,b\n"},
		{"bad int", header + "a,,,,,,,many,0,0,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadUsersCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadUsersCSV() should fail")
			}
		})
	}
}

func TestImportMissingFile(t *testing.T) {
	if _, err := ImportReposCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("ImportReposCSV() should fail for a missing file")
	}
}

func TestCSVSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := &CSVSink{Dir: dir}
	ctx := context.Background()

	if err := s.WriteUsers(ctx, testUsers); err != nil {
		t.Fatalf("WriteUsers() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultUsersFile)); err != nil {
		t.Errorf("users file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultReposFile)); !os.IsNotExist(err) {
		t.Error("repositories file should not exist before WriteRepos")
	}

	if err := s.WriteRepos(ctx, testRepos); err != nil {
		t.Fatalf("WriteRepos() error: %v", err)
	}
	if err := s.Finish(ctx, nil); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}

	repos, err := ImportReposCSV(s.ReposPath())
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 2 {
		t.Errorf("got %d repos, want 2", len(repos))
	}
}

func TestCSVSinkUsersOnlyRemovesStaleRepos(t *testing.T) {
	dir := t.TempDir()
	s := &CSVSink{Dir: dir}
	ctx := context.Background()

	// A full run leaves both tables behind.
	if err := s.WriteUsers(ctx, testUsers); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRepos(ctx, testRepos); err != nil {
		t.Fatal(err)
	}
	if err := s.Finish(ctx, &pipeline.Result{}); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}
	if _, err := os.Stat(s.ReposPath()); err != nil {
		t.Fatalf("full run should keep repositories: %v", err)
	}

	usersOnly := &pipeline.Result{Options: pipeline.Options{UsersOnly: true}}
	if err := s.WriteUsers(ctx, testUsers[:1]); err != nil {
		t.Fatal(err)
	}
	if err := s.Finish(ctx, usersOnly); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}
	if _, err := os.Stat(s.ReposPath()); !os.IsNotExist(err) {
		t.Errorf("stale repositories should be removed (stat err = %v)", err)
	}

	// Nothing left to remove.
	if err := s.Finish(ctx, usersOnly); err != nil {
		t.Errorf("second Finish() error: %v", err)
	}
}

func TestCSVSinkCustomNames(t *testing.T) {
	s := &CSVSink{Dir: "out", UsersFile: "u.csv", ReposFile: "r.csv"}
	if s.UsersPath() != filepath.Join("out", "u.csv") || s.ReposPath() != filepath.Join("out", "r.csv") {
		t.Errorf("paths = %s, %s", s.UsersPath(), s.ReposPath())
	}
}
