// Package census turns paginated GitHub API responses into flat user and
// repository records.
//
// # Records
//
// [User] and [Repo] are the tabular snapshots written by the output stage.
// Their Row methods return values in [UserColumns] and [RepoColumns] order.
//
// # Normalization
//
// [NormalizeUser], [NormalizeRepo] and [NormalizeCompany] are pure functions.
// They never fail: missing strings become "", missing counts become 0, and
// the hireable flag keeps its three states ("true", "false", "").
//
// # Collection
//
// A [Collector] drives the two paginated walks of a run:
//
//	c := census.NewCollector(client, census.CollectorOptions{Logger: logger})
//
//	users, err := c.SearchUsers(ctx, "Bangalore", 100)
//	for _, u := range users {
//	    repos, err := c.UserRepos(ctx, u.Login, 500)
//	    ...
//	}
//
// Requests are issued one at a time. Rate limiting is handled below the
// collector by the HTTP client; any error that reaches the collector ends
// the walk.
package census
