package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for validate-assets
type Config struct {
	AssetCache string      `mapstructure:"asset_cache"`
	ScratchDir string      `mapstructure:"scratch_dir"`
	Git        GitConfig   `mapstructure:"git"`
	HTTP       HTTPConfig  `mapstructure:"http"`
	Suite      SuiteConfig `mapstructure:"suite"`

	// File is the config file that was read, empty when running on defaults.
	File string `mapstructure:"-"`
}

// GitConfig selects how refs are listed and mirrors probed.
type GitConfig struct {
	Backend    string `mapstructure:"backend"` // "cli" or "gogit"
	Executable string `mapstructure:"executable"`
}

// HTTPConfig tunes the reachability checker's client.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// SuiteConfig lists manifests validated by the suite command when no plan file is given.
type SuiteConfig struct {
	Jobs []Job `mapstructure:"jobs"`
}

// Job is one manifest validation request.
type Job struct {
	Type   string `mapstructure:"type" yaml:"type" json:"type" toml:"type"`
	Input  string `mapstructure:"input" yaml:"input" json:"input" toml:"input"`
	Output string `mapstructure:"output" yaml:"output" json:"output" toml:"output"`
}

const (
	EnvPrefix        = "VALIDATE_ASSETS"
	DefaultUserAgent = "validate-assets"
)

// ProjectConfigFiles are searched in the working directory, first match wins.
var ProjectConfigFiles = []string{
	".validate-assets.yaml",
	".validate-assets.yml",
	".validate-assets.json",
}

var defaultConfig = Config{
	AssetCache: "out/asset_cache.txt",
	ScratchDir: "tmp",
	Git: GitConfig{
		Backend:    "cli",
		Executable: "git",
	},
	HTTP: HTTPConfig{
		Timeout:   30 * time.Second,
		UserAgent: DefaultUserAgent,
	},
}

// flagKeys maps global flag names onto config keys.
var flagKeys = map[string]string{
	"asset-cache": "asset_cache",
	"scratch-dir": "scratch_dir",
	"git-backend": "git.backend",
}

// Options controls where LoadConfig looks for settings.
type Options struct {
	// File is an explicit config file; it must exist when set.
	File string
	// Flags, when set, override file and env values for the keys in flagKeys.
	Flags *pflag.FlagSet
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	c := defaultConfig
	return &c
}

// LoadConfig loads configuration from defaults, config file, environment and flags,
// then validates the merged result against the embedded schema.
func LoadConfig(opts Options) (*Config, error) {
	v := viper.New()

	v.SetDefault("asset_cache", defaultConfig.AssetCache)
	v.SetDefault("scratch_dir", defaultConfig.ScratchDir)
	v.SetDefault("git.backend", defaultConfig.Git.Backend)
	v.SetDefault("git.executable", defaultConfig.Git.Executable)
	v.SetDefault("http.timeout", defaultConfig.HTTP.Timeout.String())
	v.SetDefault("http.user_agent", defaultConfig.HTTP.UserAgent)

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for flagName, key := range flagKeys {
			if f := opts.Flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", flagName, err)
				}
			}
		}
	}

	file := opts.File
	if file == "" {
		file = findProjectConfig()
	} else if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("config file %s: %w", file, err)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", file, err)
		}
	}

	if err := ValidateSettings(v.AllSettings()); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.File = file

	return &config, nil
}

func findProjectConfig() string {
	for _, name := range ProjectConfigFiles {
		if st, err := os.Stat(name); err == nil && !st.IsDir() {
			return name
		}
	}
	return ""
}

// ErrNoJobs is returned by SuiteJobs when neither a plan nor suite.jobs lists any work.
var ErrNoJobs = errors.New("no suite jobs configured")

// SuiteJobs returns the configured suite jobs or ErrNoJobs.
func (c *Config) SuiteJobs() ([]Job, error) {
	if len(c.Suite.Jobs) == 0 {
		return nil, ErrNoJobs
	}
	return c.Suite.Jobs, nil
}
