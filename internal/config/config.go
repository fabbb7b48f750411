// Package config loads hflow's client preferences. Values are layered:
// built-in defaults, then the TOML file, then HFLOW_* environment
// variables. Command-line flags are applied on top by cmd.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/planapi"
	"github.com/holinflow/hflow/internal/projection"
)

// EnvPrefix is the prefix of environment overrides, e.g. HFLOW_BACKEND_BASE_URL.
const EnvPrefix = "HFLOW_"

// DefaultBaseURL is used when neither a base URL nor a host is configured.
const DefaultBaseURL = "http://localhost:8000"

// Config holds all hflow configuration.
type Config struct {
	Backend    BackendConfig    `koanf:"backend" toml:"backend"`
	General    GeneralConfig    `koanf:"general" toml:"general"`
	Appearance AppearanceConfig `koanf:"appearance" toml:"appearance"`
	Log        LogConfig        `koanf:"log" toml:"log"`
}

// BackendConfig says where the planning backend lives. BaseURL wins; Host
// is only consulted when BaseURL is empty.
type BackendConfig struct {
	BaseURL           string `koanf:"base_url" toml:"base_url"`
	Host              string `koanf:"host" toml:"host,omitempty"`
	Port              int    `koanf:"port" toml:"port"`
	LocalPort         int    `koanf:"local_port" toml:"local_port"`
	TunnelDomain      string `koanf:"tunnel_domain" toml:"tunnel_domain,omitempty"`
	TunnelOrigin      string `koanf:"tunnel_origin" toml:"tunnel_origin,omitempty"`
	RequestTimeoutSec int    `koanf:"request_timeout_sec" toml:"request_timeout_sec"`
}

// GeneralConfig holds form defaults.
type GeneralConfig struct {
	DefaultRisk     string  `koanf:"default_risk" toml:"default_risk"`
	DefaultGoal     float64 `koanf:"default_goal" toml:"default_goal"`
	DefaultAssets   float64 `koanf:"default_assets" toml:"default_assets"`
	ProjectionYears int     `koanf:"projection_years" toml:"projection_years"`
	ReportDir       string  `koanf:"report_dir" toml:"report_dir,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `koanf:"theme" toml:"theme"`
}

// LogConfig controls logrus output. An empty File means stderr for
// commands and the cache-dir log file for the TUI.
type LogConfig struct {
	Level string `koanf:"level" toml:"level"`
	File  string `koanf:"file" toml:"file,omitempty"`
}

// Meta records where the effective values came from.
type Meta struct {
	Path       string   // config file consulted
	FileLoaded bool     // false if the file was absent
	EnvKeys    []string // koanf keys set from the environment
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	rule := planapi.DefaultOriginRule()
	return Config{
		Backend: BackendConfig{
			Port:              rule.Port,
			LocalPort:         rule.LocalPort,
			TunnelDomain:      rule.TunnelDomain,
			TunnelOrigin:      rule.TunnelOrigin,
			RequestTimeoutSec: 30,
		},
		General: GeneralConfig{
			DefaultRisk:     string(model.RiskNeutral),
			DefaultGoal:     1000,
			DefaultAssets:   5000,
			ProjectionYears: projection.DefaultYears,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hflow")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "hflow")
}

// Path returns the full path to the default config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the XDG-compliant cache directory, used for the TUI log.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "hflow")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "hflow")
}

// Load reads configuration from path (the default path if empty). A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg, _, err := LoadWithMeta(path)
	return cfg, err
}

// LoadWithMeta is Load that also reports the sources used.
func LoadWithMeta(path string) (Config, Meta, error) {
	if path == "" {
		path = Path()
	}
	meta := Meta{Path: path}
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return Config{}, meta, fmt.Errorf("loading defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, meta, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		meta.FileLoaded = true
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, v string) (string, any) {
			key = EnvKey(key)
			if key == "" {
				return "", nil
			}
			meta.EnvKeys = append(meta.EnvKeys, key)
			return key, v
		},
	}), nil)
	if err != nil {
		return Config{}, meta, fmt.Errorf("reading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, meta, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, meta, err
	}
	return cfg, meta, nil
}

// EnvKey maps an environment variable name to a koanf key. The first
// underscore after the prefix separates the section, so
// HFLOW_BACKEND_BASE_URL becomes backend.base_url. Returns "" for names
// without a section.
func EnvKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	return section + "." + key
}

// Validate checks values that would otherwise fail later and less clearly.
func (c Config) Validate() error {
	if c.Backend.BaseURL != "" {
		if _, err := planapi.NormalizeBaseURL(c.Backend.BaseURL); err != nil {
			return fmt.Errorf("backend.base_url: %w", err)
		}
	}
	if c.Backend.RequestTimeoutSec < 0 {
		return fmt.Errorf("backend.request_timeout_sec: must not be negative, got %d", c.Backend.RequestTimeoutSec)
	}
	if y := c.General.ProjectionYears; y < 0 || y > projection.MaxYears {
		return fmt.Errorf("general.projection_years: must be between 0 and %d, got %d", projection.MaxYears, y)
	}
	if c.General.DefaultRisk != "" {
		if _, err := model.ParseRiskLevel(c.General.DefaultRisk); err != nil {
			return fmt.Errorf("general.default_risk: %w", err)
		}
	}
	return nil
}

// Save writes the config to path (the default path if empty).
func Save(cfg Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if isYAML(path) {
		k := koanf.New(".")
		if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		b, err := k.Marshal(yaml.Parser())
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		if err := os.WriteFile(path, b, 0o600); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		return nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// isYAML reports whether path names a YAML config file. Anything else is
// read and written as TOML.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func parserFor(path string) koanf.Parser {
	if isYAML(path) {
		return yaml.Parser()
	}
	return TOMLParser()
}

// Exists returns true if a config file exists at path (the default if empty).
func Exists(path string) bool {
	if path == "" {
		path = Path()
	}
	_, err := os.Stat(path)
	return err == nil
}

// OriginRule builds the host-resolution rule from the backend settings.
func (c Config) OriginRule() planapi.OriginRule {
	return planapi.OriginRule{
		Port:         c.Backend.Port,
		LocalPort:    c.Backend.LocalPort,
		TunnelDomain: c.Backend.TunnelDomain,
		TunnelOrigin: c.Backend.TunnelOrigin,
	}
}

// ResolvedBaseURL returns the backend origin: base_url if set, else the
// origin derived from host, else DefaultBaseURL.
func (c Config) ResolvedBaseURL() string {
	if u := strings.TrimSpace(c.Backend.BaseURL); u != "" {
		return u
	}
	if h := strings.TrimSpace(c.Backend.Host); h != "" {
		return planapi.ResolveBaseOrigin(h, c.OriginRule())
	}
	return DefaultBaseURL
}

// RequestTimeout returns the per-request timeout; zero means none.
func (c Config) RequestTimeout() time.Duration {
	if c.Backend.RequestTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.Backend.RequestTimeoutSec) * time.Second
}

// DefaultRiskLevel returns the configured risk level, falling back to neutral.
func (c Config) DefaultRiskLevel() model.RiskLevel {
	r, err := model.ParseRiskLevel(c.General.DefaultRisk)
	if err != nil {
		return model.RiskNeutral
	}
	return r
}

// DefaultRequest returns the form values a fresh session starts with.
func (c Config) DefaultRequest() model.PlanRequest {
	return model.PlanRequest{
		MonthlyGoal:   c.General.DefaultGoal,
		CurrentAssets: c.General.DefaultAssets,
		RiskLevel:     c.DefaultRiskLevel(),
	}
}
