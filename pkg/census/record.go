package census

import "strconv"

// UserColumns is the column order of a users table.
var UserColumns = []string{
	"login", "name", "company", "location", "email", "hireable", "bio",
	"public_repos", "followers", "following", "created_at",
}

// RepoColumns is the column order of a repositories table.
var RepoColumns = []string{
	"login", "full_name", "created_at", "stargazers_count", "watchers_count",
	"language", "has_projects", "has_wiki", "license_name",
}

// User is the flat snapshot of one account. Login is always set; every other
// string field is "" when the source omitted it.
type User struct {
	Login       string
	Name        string
	Company     string // see NormalizeCompany
	Location    string
	Email       string
	Hireable    string // "true", "false", or "" when unknown
	Bio         string
	PublicRepos int
	Followers   int
	Following   int
	CreatedAt   string // source format, verbatim
}

// Row returns the user's values in UserColumns order.
func (u User) Row() []string {
	return []string{
		u.Login,
		u.Name,
		u.Company,
		u.Location,
		u.Email,
		u.Hireable,
		u.Bio,
		strconv.Itoa(u.PublicRepos),
		strconv.Itoa(u.Followers),
		strconv.Itoa(u.Following),
		u.CreatedAt,
	}
}

// Repo is the flat snapshot of one repository owned by a collected user.
type Repo struct {
	Login           string // owner login, joins to User.Login
	FullName        string
	CreatedAt       string // source format, verbatim
	StargazersCount int
	WatchersCount   int
	Language        string
	HasProjects     string // "true" or "false"
	HasWiki         string // "true" or "false"
	LicenseName     string // license key, "" if none
}

// Row returns the repository's values in RepoColumns order.
func (r Repo) Row() []string {
	return []string{
		r.Login,
		r.FullName,
		r.CreatedAt,
		strconv.Itoa(r.StargazersCount),
		strconv.Itoa(r.WatchersCount),
		r.Language,
		r.HasProjects,
		r.HasWiki,
		r.LicenseName,
	}
}
