package cli

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/matzehuels/ghcensus/pkg/errors"
)

// resolveToken picks the token from the flag, then GITHUB_TOKEN, then the
// interactive prompt. An empty result is a MISSING_CREDENTIAL error.
func (c *CLI) resolveToken(flag string) (string, error) {
	if t := strings.TrimSpace(flag); t != "" {
		return t, nil
	}
	if t := strings.TrimSpace(c.getenv(tokenEnv)); t != "" {
		return t, nil
	}

	prompt := c.Prompt
	if prompt == nil {
		prompt = promptToken
	}
	t, err := prompt()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMissingCredential, err,
			"no GitHub token: pass --token or set %s", tokenEnv)
	}
	if t = strings.TrimSpace(t); t == "" {
		return "", errors.New(errors.ErrCodeMissingCredential,
			"no GitHub token: pass --token or set %s", tokenEnv)
	}
	return t, nil
}

// promptToken reads a token from the terminal without echo.
func promptToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, StyleDim.Render("GitHub token: "))
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return string(b), nil
}
