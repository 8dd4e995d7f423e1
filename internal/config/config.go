// Package config loads wsm settings from .wsm/config.yaml and WSM_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/onecx/workspace-menu/internal/domain"
)

const (
	// FileName is the config file inside the .wsm/ directory.
	FileName = "config.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "WSM_"
	// VarEnvPrefix prefixes environment variables usable as [[NAME]] placeholders.
	VarEnvPrefix = "WSM_VAR_"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// StoreConfig selects the menu persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
}

// APIConfig configures the REST backend.
type APIConfig struct {
	BaseURL string        `yaml:"baseURL,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// FetchConfig configures the retry policy of menu loads.
type FetchConfig struct {
	Retries int           `yaml:"retries"`
	Delay   time.Duration `yaml:"delay"`
}

// CacheConfig configures the resolved-menu cache of the server.
type CacheConfig struct {
	RedisAddr string        `yaml:"redisAddr,omitempty"`
	Prefix    string        `yaml:"prefix,omitempty"`
	TTL       time.Duration `yaml:"ttl,omitempty"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Config is the complete wsm configuration.
type Config struct {
	Workspace          string            `yaml:"workspace"`
	Menu               string            `yaml:"menu"`
	Language           string            `yaml:"language"`
	SupportedLanguages []string          `yaml:"supportedLanguages,omitempty"`
	BaseHref           string            `yaml:"baseHref,omitempty"`
	LogLevel           string            `yaml:"logLevel,omitempty"`
	Variables          map[string]string `yaml:"variables,omitempty"`
	Store              StoreConfig       `yaml:"store"`
	API                APIConfig         `yaml:"api,omitempty"`
	Fetch              FetchConfig       `yaml:"fetch"`
	Cache              CacheConfig       `yaml:"cache,omitempty"`
	Server             ServerConfig      `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Workspace:          "ADMIN",
		Menu:               "MAIN",
		Language:           "en",
		SupportedLanguages: []string{"en", "de"},
		LogLevel:           "warn",
		Store:              StoreConfig{Driver: "yaml"},
		API:                APIConfig{Timeout: 30 * time.Second},
		Fetch:              FetchConfig{Retries: 3, Delay: 500 * time.Millisecond},
		Cache:              CacheConfig{Prefix: "wsm:", TTL: 5 * time.Minute},
		Server:             ServerConfig{Port: 8080},
	}
}

// Path returns the config file location for a project root.
func Path(root string) string {
	return filepath.Join(root, ".wsm", FileName)
}

// Load returns the defaults overlaid by the project config file (when root
// is set and the file exists) and then by the process environment.
func Load(root string) (Config, error) {
	return LoadWith(root, os.LookupEnv)
}

// LoadWith is Load with an injectable environment lookup.
func LoadWith(root string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if root != "" {
		if err := cfg.mergeFile(Path(root)); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(lookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("WORKSPACE", &c.Workspace)
	str("MENU", &c.Menu)
	str("LANGUAGE", &c.Language)
	str("BASE_HREF", &c.BaseHref)
	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_DSN", &c.Store.DSN)
	str("API_BASE_URL", &c.API.BaseURL)
	str("CACHE_REDIS_ADDR", &c.Cache.RedisAddr)
	str("CACHE_PREFIX", &c.Cache.Prefix)
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	str("LOG_LEVEL", &c.LogLevel)
	if v, ok := lookup(EnvPrefix + "SUPPORTED_LANGUAGES"); ok {
		c.SupportedLanguages = splitList(v)
	}

	return errors.Join(
		dur("API_TIMEOUT", &c.API.Timeout),
		dur("FETCH_DELAY", &c.Fetch.Delay),
		dur("CACHE_TTL", &c.Cache.TTL),
		num("FETCH_RETRIES", &c.Fetch.Retries),
		num("SERVER_PORT", &c.Server.Port),
	)
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "yaml", "sqlite", "api":
	default:
		errs = append(errs, fmt.Errorf("store.driver %q: want yaml, sqlite or api", c.Store.Driver))
	}
	if c.Store.Driver == "api" && c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.baseURL is required for the api driver"))
	}
	if c.Fetch.Retries < 0 {
		errs = append(errs, fmt.Errorf("fetch.retries %d: must not be negative", c.Fetch.Retries))
	}
	if c.Fetch.Delay < 0 {
		errs = append(errs, fmt.Errorf("fetch.delay %s: must not be negative", c.Fetch.Delay))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d: out of range", c.Server.Port))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Save writes cfg to the project config file, creating .wsm/ if needed.
func Save(root string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Lookup returns the placeholder variables: config values first, then
// WSM_VAR_* environment variables.
func (c Config) Lookup() domain.VariableLookup {
	return domain.ChainLookup{domain.Variables(c.Variables), EnvLookup{Prefix: VarEnvPrefix}}
}

// EnvLookup resolves placeholder names from prefixed environment variables.
type EnvLookup struct {
	Prefix string
}

// Lookup implements domain.VariableLookup.
func (e EnvLookup) Lookup(name string) (string, bool) {
	return os.LookupEnv(e.Prefix + name)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
