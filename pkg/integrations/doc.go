// Package integrations provides the shared HTTP client for REST API access.
//
// # Overview
//
// [Client] wraps an [http.Client] with everything a collection run needs from
// its transport:
//
//   - A static bearer credential injected by an oauth2 transport
//   - The GitHub media type and API version headers on every request
//   - A blocking wait on rate-limit rejections, after which the identical
//     request is retried (see [httputil.RateLimitPolicy])
//   - An optional proactive throttle (requests per second)
//   - JSON decoding of 200 responses
//   - Observability hooks for every attempt
//
// Any other non-200 status is returned as an [errors.HTTPError] and is fatal
// to the caller. Transport failures are never retried.
//
// # Usage
//
//	client := integrations.NewClient(integrations.ClientOptions{
//	    Token:   token,
//	    Headers: integrations.DefaultHeaders(),
//	    Logger:  logger,
//	})
//
//	var user github.User
//	err := client.Get(ctx, integrations.DefaultBaseURL+"/users/octocat", nil, &user)
//
// Endpoint-specific code lives in the [github] subpackage.
//
// [github]: github.com/matzehuels/ghcensus/pkg/integrations/github
// [httputil.RateLimitPolicy]: github.com/matzehuels/ghcensus/pkg/httputil.RateLimitPolicy
// [errors.HTTPError]: github.com/matzehuels/ghcensus/pkg/errors.HTTPError
package integrations
