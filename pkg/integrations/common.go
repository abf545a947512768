package integrations

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/matzehuels/ghcensus/pkg/buildinfo"
	"github.com/matzehuels/ghcensus/pkg/errors"
)

const (
	// DefaultBaseURL is the GitHub REST API root.
	DefaultBaseURL = "https://api.github.com"

	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 30 * time.Second

	// APIVersion is sent as X-GitHub-Api-Version on every request.
	APIVersion = "2022-11-28"

	// MediaType is sent as Accept on every request.
	MediaType = "application/vnd.github+json"
)

// DefaultHeaders returns the headers every GitHub request carries besides
// the bearer credential.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":               MediaType,
		"X-GitHub-Api-Version": APIVersion,
		"User-Agent":           buildinfo.UserAgent(),
	}
}

// NewHTTPClient creates an HTTP client that authenticates every request with
// token as a static bearer credential. An empty token leaves requests
// unauthenticated. base is the underlying transport; nil means
// http.DefaultTransport.
func NewHTTPClient(token string, timeout time.Duration, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	transport := base
	if token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   base,
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// WithQuery merges query into the query string of rawURL. Values in query
// replace any existing values for the same key.
func WithQuery(rawURL string, query url.Values) (string, error) {
	if len(query) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "parse url %q", rawURL)
	}
	q := u.Query()
	for k, vs := range query {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// JoinURL appends path segments to base, escaping each segment.
func JoinURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
