package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ghcensus/pkg/errors"
	"github.com/matzehuels/ghcensus/pkg/httputil"
	"github.com/matzehuels/ghcensus/pkg/integrations"
	ghio "github.com/matzehuels/ghcensus/pkg/io"
	"github.com/matzehuels/ghcensus/pkg/pipeline"
	"github.com/matzehuels/ghcensus/pkg/report"
)

// configFile is the config file name inside the config directory.
const configFile = "config.toml"

// Config is the on-disk configuration. Flags override it, and GITHUB_TOKEN is
// read from the environment only.
type Config struct {
	Location     string `toml:"location"`
	MinFollowers int    `toml:"min_followers"`
	MaxRepos     int    `toml:"max_repos"`
	OutputDir    string `toml:"output_dir"`

	API       APIConfig       `toml:"api"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Output    OutputConfig    `toml:"output"`
}

// APIConfig selects the upstream endpoint.
type APIConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout duration `toml:"timeout"`
}

// RateLimitConfig tunes the rate-limit wait and the optional throttle.
type RateLimitConfig struct {
	Pad               duration `toml:"pad"`
	MaxWaits          int      `toml:"max_waits"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
}

// OutputConfig names the output files.
type OutputConfig struct {
	UsersFile  string `toml:"users_file"`
	ReposFile  string `toml:"repos_file"`
	ReadmeFile string `toml:"readme_file"`
	SQLite     string `toml:"sqlite"`
}

// duration is a time.Duration written as "30s" in TOML.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		MinFollowers: pipeline.DefaultMinFollowers,
		MaxRepos:     pipeline.DefaultMaxRepos,
		OutputDir:    ".",
		API: APIConfig{
			BaseURL: integrations.DefaultBaseURL,
			Timeout: duration{integrations.DefaultTimeout},
		},
		RateLimit: RateLimitConfig{
			Pad: duration{httputil.DefaultPad},
		},
		Output: OutputConfig{
			UsersFile:  ghio.DefaultUsersFile,
			ReposFile:  ghio.DefaultReposFile,
			ReadmeFile: report.DefaultFile,
		},
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RateLimit.MaxWaits < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "rate_limit.max_waits cannot be negative: %d", c.RateLimit.MaxWaits)
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "rate_limit.requests_per_second cannot be negative: %g", c.RateLimit.RequestsPerSecond)
	}
	if c.API.BaseURL != "" {
		if err := errors.ValidateURL(c.API.BaseURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "api.base_url")
		}
	}
	return nil
}

// policy returns the rate-limit policy the config describes.
func (c Config) policy() httputil.RateLimitPolicy {
	return httputil.RateLimitPolicy{
		Pad:      c.RateLimit.Pad.Duration,
		MaxWaits: c.RateLimit.MaxWaits,
	}
}

// encode renders c as TOML.
func (c Config) encode() (string, error) {
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", err
	}
	return b.String(), nil
}

// configDir returns the config directory using XDG standard (~/.config/ghcensus/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// defaultConfigPath returns the config file path, or "" when no home
// directory can be found.
func defaultConfigPath() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configFile)
}

// configCommand creates the config command with subcommands.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
		Long: `Inspect the ghcensus configuration.

The file is read from $XDG_CONFIG_HOME/ghcensus/config.toml
(~/.config/ghcensus/config.toml) unless --config is given.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath()
			fmt.Fprintln(cmd.OutOrStdout(), path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				c.Logger.Debug("config file does not exist", "path", path)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath())
			if err != nil {
				return err
			}
			out, err := cfg.encode()
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	})

	return cmd
}

// configPath returns the --config value or the default path.
func (c *CLI) configPath() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	return defaultConfigPath()
}
