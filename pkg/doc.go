// Package pkg provides the libraries behind ghcensus, a batch collector of
// GitHub users and repositories for a location.
//
// # Overview
//
// The pkg directory is organized by stage:
//
//  1. [integrations] - HTTP client with bearer auth and the rate-limit wait,
//     plus the GitHub endpoints in [integrations/github]
//  2. [census] - Field normalization and the paginated collector
//  3. [pipeline] - Run orchestration (validate → users → repositories → sinks)
//  4. [io], [report], [store/sqlite] - Output sinks (CSV tables, README, SQLite)
//  5. [errors], [httputil], [observability] - Shared infrastructure
//
// # Architecture
//
// The data flow of one run:
//
//	GET /search/users (page until empty)
//	         ↓
//	GET <item.url> per user → [census.NormalizeUser]
//	         ↓
//	users.csv
//	         ↓
//	GET /users/<login>/repos (sort=pushed) → [census.NormalizeRepo]
//	         ↓
//	repositories.csv, README.md, optional SQLite database
//
// Everything runs on one goroutine. The only suspension point is the
// rate-limit wait, which blocks until the advertised reset and then retries
// the identical request.
//
// # Quick Start
//
//	client := github.NewClient(integrations.ClientOptions{Token: token}, "")
//	runner := pipeline.NewRunner(client, &observability.RequestCounter{}, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Location:     "Bangalore",
//	    MinFollowers: 100,
//	    Sink:         &io.CSVSink{Dir: "out"},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Summary()) // Scraped 237 users and 4211 repositories
//
// [integrations]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/integrations
// [integrations/github]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/integrations/github
// [census]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/census
// [census.NormalizeUser]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/census#NormalizeUser
// [census.NormalizeRepo]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/census#NormalizeRepo
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/io
// [report]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/report
// [store/sqlite]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/store/sqlite
// [errors]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/ghcensus/pkg/observability
package pkg
