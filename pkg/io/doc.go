// Package io provides CSV import and export for census tables.
//
// # Overview
//
// A run produces two tables, users and repositories. Both are written as
// RFC 4180 CSV with a header row followed by one row per record:
//
//	login,name,company,location,email,hireable,bio,public_repos,followers,following,created_at
//	octocat,The Octocat,GITHUB,San Francisco,,,,8,3938,9,2011-01-25T18:44:36Z
//
// Column order is fixed by [census.UserColumns] and [census.RepoColumns].
// Empty strings stand for missing values; hireable is "true", "false" or "".
//
// # Export
//
// Use [ExportUsersCSV] and [ExportReposCSV] to write a file, or the Write
// variants to write to any io.Writer. [CSVSink] adapts both to the
// pipeline's output contract so a run writes users.csv as soon as the user
// phase completes and repositories.csv only after the whole run succeeds.
//
// # Import
//
// [ImportUsersCSV] and [ImportReposCSV] read the tables back, validating the
// header and the integer columns. The report command uses them to rebuild
// the summary document without another collection run.
//
// [census.UserColumns]: github.com/matzehuels/ghcensus/pkg/census.UserColumns
// [census.RepoColumns]: github.com/matzehuels/ghcensus/pkg/census.RepoColumns
package io
