// Package config loads tada settings. Later sources override earlier ones:
// defaults, ~/.tada/config.yaml, ./.tada/config.yaml, TADA_* environment
// variables, then command-line flags (applied by the caller).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	UI     UIConfig     `yaml:"ui" mapstructure:"ui"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// StoreConfig selects the task backend. Only the fields for the chosen
// backend are read.
type StoreConfig struct {
	Backend string      `yaml:"backend" mapstructure:"backend"` // json | sqlite | postgres | neo4j | remote | memory
	Path    string      `yaml:"path" mapstructure:"path"`       // json, sqlite
	DSN     string      `yaml:"dsn" mapstructure:"dsn"`         // postgres
	URL     string      `yaml:"url" mapstructure:"url"`         // remote
	Neo4j   Neo4jConfig `yaml:"neo4j" mapstructure:"neo4j"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri" mapstructure:"uri"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
}

type UIConfig struct {
	Theme   string `yaml:"theme" mapstructure:"theme"`
	Accent  string `yaml:"accent" mapstructure:"accent"`
	Surface string `yaml:"surface" mapstructure:"surface"` // inline | drawer | panel
}

type LogConfig struct {
	File  string `yaml:"file" mapstructure:"file"`
	Level string `yaml:"level" mapstructure:"level"`
}

type ServerConfig struct {
	Addr  string `yaml:"addr" mapstructure:"addr"`
	Token string `yaml:"token" mapstructure:"token"`
}

var (
	Backends = []string{"json", "sqlite", "postgres", "neo4j", "remote", "memory"}
	Surfaces = []string{"inline", "drawer", "panel"}
	Themes   = []string{"classic", "neon", "mono"}
	Levels   = []string{"debug", "info", "warn", "error"}
)

// Dir returns ~/.tada, or ".tada" when there is no home directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tada"
	}
	return filepath.Join(home, ".tada")
}

func GlobalPath() string { return filepath.Join(Dir(), "config.yaml") }

func ProjectPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".tada", "config.yaml")
	}
	return filepath.Join(cwd, ".tada", "config.yaml")
}

func Default() *Config {
	dir := Dir()
	return &Config{
		Store: StoreConfig{
			Backend: "json",
			Path:    filepath.Join(dir, "tasks.json"),
			URL:     "http://localhost:8080",
			Neo4j: Neo4jConfig{
				URI:  "neo4j://localhost:7687",
				User: "neo4j",
			},
		},
		UI: UIConfig{
			Theme:   "classic",
			Surface: "panel",
		},
		Log: LogConfig{
			File:  filepath.Join(dir, "tada.log"),
			Level: "info",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Load reads the global and project files and the environment.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv, GlobalPath(), ProjectPath())
}

// LoadFrom merges each existing file in order, then the environment.
// Missing files are skipped.
func LoadFrom(lookup func(string) (string, bool), paths ...string) (*Config, error) {
	cfg := Default()
	for _, p := range paths {
		if err := loadFile(p, cfg); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("config %s: %w", p, err)
		}
	}
	applyEnv(cfg, lookup)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

var envVars = []struct {
	name string
	dst  func(*Config) *string
}{
	{"TADA_STORE", func(c *Config) *string { return &c.Store.Backend }},
	{"TADA_PATH", func(c *Config) *string { return &c.Store.Path }},
	{"TADA_DSN", func(c *Config) *string { return &c.Store.DSN }},
	{"TADA_URL", func(c *Config) *string { return &c.Store.URL }},
	{"TADA_NEO4J_URI", func(c *Config) *string { return &c.Store.Neo4j.URI }},
	{"TADA_NEO4J_USER", func(c *Config) *string { return &c.Store.Neo4j.User }},
	{"TADA_NEO4J_PASSWORD", func(c *Config) *string { return &c.Store.Neo4j.Password }},
	{"TADA_THEME", func(c *Config) *string { return &c.UI.Theme }},
	{"TADA_ACCENT", func(c *Config) *string { return &c.UI.Accent }},
	{"TADA_SURFACE", func(c *Config) *string { return &c.UI.Surface }},
	{"TADA_LOG_FILE", func(c *Config) *string { return &c.Log.File }},
	{"TADA_LOG_LEVEL", func(c *Config) *string { return &c.Log.Level }},
	{"TADA_ADDR", func(c *Config) *string { return &c.Server.Addr }},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	for _, e := range envVars {
		if v, ok := lookup(e.name); ok && strings.TrimSpace(v) != "" {
			*e.dst(cfg) = strings.TrimSpace(v)
		}
	}
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name, val string
		allowed   []string
	}{
		{"store.backend", c.Store.Backend, Backends},
		{"ui.surface", c.UI.Surface, Surfaces},
		{"ui.theme", c.UI.Theme, Themes},
		{"log.level", c.Log.Level, Levels},
	} {
		if !contains(f.allowed, f.val) {
			return fmt.Errorf("%s: unknown value %q (want one of %s)", f.name, f.val, strings.Join(f.allowed, ", "))
		}
	}
	return nil
}

// Save writes cfg as YAML, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// YAML renders cfg for `tada config show`. The Neo4j password and server
// token are masked.
func (c *Config) YAML() (string, error) {
	show := *c
	if show.Store.Neo4j.Password != "" {
		show.Store.Neo4j.Password = "****"
	}
	if show.Server.Token != "" {
		show.Server.Token = "****"
	}
	b, err := yaml.Marshal(&show)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
