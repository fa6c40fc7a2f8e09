// Package config handles the XDG configuration directory and client settings.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "todopro"

	// ConfigFile is the optional settings file inside the config directory.
	ConfigFile = "config.yaml"

	// SessionFile is the stored session cookie filename.
	SessionFile = "session.json"

	// DefaultAPIURL is the base URL of the TodoPro API.
	DefaultAPIURL = "http://127.0.0.1:5000/"

	// EnvProduction enables the Secure cookie flag.
	EnvProduction = "production"

	envPrefix = "TODOPRO"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the base URL every API path is resolved against.
	APIURL string

	// Env is the deployment environment ("development" or "production").
	Env string

	// Output is the render format: text, json or yaml.
	Output string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config with defaults for the given or default config directory.
func New(configDir string) (*Config, error) {
	return Load(configDir, nil)
}

// Load builds the configuration from, in order of precedence, changed flags,
// TODOPRO_* environment variables, config.yaml in the config directory,
// and defaults. flags may be nil.
func Load(configDir string, flags *pflag.FlagSet) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("env", "development")
	v.SetDefault("output", "text")
	v.SetDefault("debug", false)
	v.SetDefault("quiet", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	if flags != nil {
		for key, name := range map[string]string{
			"api_url": "api-url",
			"output":  "output",
			"debug":   "debug",
			"quiet":   "quiet",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{
		Dir:    dir,
		APIURL: v.GetString("api_url"),
		Env:    v.GetString("env"),
		Output: v.GetString("output"),
		Debug:  v.GetBool("debug"),
		Quiet:  v.GetBool("quiet"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api url: %q", c.APIURL)
	}
	if !strings.HasSuffix(c.APIURL, "/") {
		c.APIURL += "/"
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Production reports whether cookies must be marked Secure.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// SessionPath returns the path to the stored session cookie.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// ConfigPath returns the path to the settings file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
