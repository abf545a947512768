package github

import gh "github.com/google/go-github/v80/github"

// SearchPage is one page of user search results.
type SearchPage struct {
	Page       int
	TotalCount int
	Incomplete bool
	Items      []*gh.User // sparse records; only login and url are relied on
}

// User is a full user profile. RawCreatedAt holds the created_at JSON
// string byte-for-byte, since the parsed Timestamp would re-format it.
type User struct {
	*gh.User
	RawCreatedAt string
}

// Repo is one repository listing item with its verbatim created_at.
type Repo struct {
	*gh.Repository
	RawCreatedAt string
}
