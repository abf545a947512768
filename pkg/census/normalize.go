package census

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/ghcensus/pkg/integrations/github"
)

// NormalizeCompany canonicalizes a free-text company field: surrounding
// whitespace is trimmed, the leading "@" handle marker is dropped, and the
// result is upper-cased. A nil company yields "".
//
// The function is idempotent: "@ acme", "@@acme" and "ACME" all converge on
// "ACME" in one pass.
func NormalizeCompany(company *string) string {
	if company == nil {
		return ""
	}
	s := strings.TrimSpace(*company)
	s = strings.TrimLeftFunc(s, func(r rune) bool { return r == '@' || unicode.IsSpace(r) })
	return strings.ToUpper(s)
}

// NormalizeUser flattens a user profile into a User. It never fails; absent
// strings become "" and absent counts become 0.
func NormalizeUser(u *github.User) User {
	if u == nil || u.User == nil {
		return User{}
	}
	return User{
		Login:       u.GetLogin(),
		Name:        u.GetName(),
		Company:     NormalizeCompany(u.Company),
		Location:    u.GetLocation(),
		Email:       u.GetEmail(),
		Hireable:    triState(u.Hireable),
		Bio:         u.GetBio(),
		PublicRepos: u.GetPublicRepos(),
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
		CreatedAt:   u.RawCreatedAt,
	}
}

// NormalizeRepo flattens one repository listing item owned by owner.
func NormalizeRepo(owner string, r *github.Repo) Repo {
	if r == nil || r.Repository == nil {
		return Repo{Login: owner, HasProjects: "false", HasWiki: "false"}
	}
	return Repo{
		Login:           owner,
		FullName:        r.GetFullName(),
		CreatedAt:       r.RawCreatedAt,
		StargazersCount: r.GetStargazersCount(),
		WatchersCount:   r.GetWatchersCount(),
		Language:        r.GetLanguage(),
		HasProjects:     strconv.FormatBool(r.GetHasProjects()),
		HasWiki:         strconv.FormatBool(r.GetHasWiki()),
		LicenseName:     r.GetLicense().GetKey(),
	}
}

func triState(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
