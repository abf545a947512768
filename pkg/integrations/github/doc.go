// Package github provides the GitHub REST endpoints used by a census run.
//
// # Overview
//
// Three endpoints are covered, each fetched one page at a time so that the
// caller owns the pagination state:
//
//   - [Client.SearchUsers]: GET /search/users?q=&per_page=100&page=
//   - [Client.User]: GET <item url>, normally /users/<login>
//   - [Client.UserRepos]: GET /users/<login>/repos?sort=pushed&direction=desc
//
// Responses are decoded into go-github types. The created_at field is also
// captured as the raw JSON string so it can be written back unchanged.
//
// # Usage
//
//	client := github.NewClient(integrations.ClientOptions{Token: token}, "")
//
//	page, err := client.SearchUsers(ctx, github.SearchQuery("Bangalore", 100), 1)
//	if err != nil {
//	    return err
//	}
//	for _, item := range page.Items {
//	    u, err := client.User(ctx, item.GetURL())
//	    ...
//	}
//
// # Authentication
//
// The token is sent as a static bearer credential. Rate-limit rejections are
// waited out by the embedded [integrations.Client]; every other non-200
// status is returned as an error.
//
// [integrations.Client]: github.com/matzehuels/ghcensus/pkg/integrations.Client
package github
