package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/matheuskafuri/tradewire/internal/classify"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	defaultTTL        = 60 * time.Second
	defaultMaxResults = 50
	defaultServeAddr  = ":8080"
)

type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type AIConfig struct {
	Provider string `yaml:"provider"` // "claude" or "openai"
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

type SentimentConfig struct {
	Scorer string `yaml:"scorer"` // "vader" or "ai"
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	TTL             string          `yaml:"ttl"`
	RefreshInterval string          `yaml:"refresh_interval"`
	MaxResults      int             `yaml:"max_results,omitempty"`
	Snapshot        *bool           `yaml:"snapshot,omitempty"`
	Sources         []Source        `yaml:"sources"`
	Categories      []Category      `yaml:"categories"`
	UrgentKeywords  []string        `yaml:"urgent_keywords"`
	Sentiment       SentimentConfig `yaml:"sentiment"`
	AI              *AIConfig       `yaml:"ai,omitempty"`
	Log             LogConfig       `yaml:"log"`
	Serve           ServeConfig     `yaml:"serve"`

	aiKeyEnv string
}

// envOverrides are read from TRADEWIRE_* variables and win over the file.
type envOverrides struct {
	TTL             string `envconfig:"TTL"`
	RefreshInterval string `envconfig:"REFRESH_INTERVAL"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
	Scorer          string `envconfig:"SCORER"`
	AIKey           string `envconfig:"AI_KEY"`
	ServeAddr       string `envconfig:"SERVE_ADDR"`
}

// TTLDuration returns how long a fetch result stays valid.
func (c *Config) TTLDuration() time.Duration {
	d, err := parseDuration(c.TTL)
	if err != nil || d <= 0 {
		return defaultTTL
	}
	return d
}

// RefreshDuration returns the re-run interval, defaulting to the TTL.
func (c *Config) RefreshDuration() time.Duration {
	d, err := parseDuration(c.RefreshInterval)
	if err != nil || d <= 0 {
		return c.TTLDuration()
	}
	return d
}

// GetMaxResults returns the per-refresh headline cap, defaulting to 50.
func (c *Config) GetMaxResults() int {
	if c.MaxResults <= 0 {
		return defaultMaxResults
	}
	return c.MaxResults
}

// SnapshotEnabled reports whether the current window is mirrored to disk.
func (c *Config) SnapshotEnabled() bool {
	return c.Snapshot == nil || *c.Snapshot
}

func (c *Config) ServeAddr() string {
	if c.Serve.Addr == "" {
		return defaultServeAddr
	}
	return c.Serve.Addr
}

// AIEnabled returns true if AI is configured with a usable API key.
func (c *Config) AIEnabled() bool {
	return c.AI != nil && c.AIKey() != ""
}

// AIKey returns the resolved API key (config or env var).
func (c *Config) AIKey() string {
	if c.AI != nil && c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	return c.aiKeyEnv
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) SourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		names = append(names, s.Name)
	}
	return names
}

// CategoryTable builds the immutable classifier table in configured order.
func (c *Config) CategoryTable() classify.Table {
	cats := make([]classify.Category, len(c.Categories))
	for i, cat := range c.Categories {
		cats[i] = classify.Category{Name: cat.Name, Keywords: cat.Keywords}
	}
	return classify.NewTable(cats)
}

// Urgent builds the immutable urgent keyword set.
func (c *Config) Urgent() classify.UrgentKeywords {
	return classify.NewUrgentKeywords(c.UrgentKeywords...)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "tradewire", "config.yaml")
}

// SnapshotPath is where the current refresh window is mirrored.
func SnapshotPath() string {
	return filepath.Join(xdg.CacheHome, "tradewire", "snapshot.db")
}

// LogPath is where the TUI writes its log, keeping the terminal clean.
func LogPath() string {
	return filepath.Join(xdg.StateHome, "tradewire", "tradewire.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (or the default path), fills anything the
// file leaves out from the embedded defaults, then applies TRADEWIRE_*
// environment overrides.
func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := defaults
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Non-fatal: embedded defaults are used if the write fails.
		_ = writeDefaults(path)
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		var user Config
		if err := yaml.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		mergeDefaults(&user, defaults)
		cfg = &user
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// mergeDefaults fills empty sections of cfg from defaults. Sources are
// merged by name: shared names take the default URL/type, new defaults are
// appended.
func mergeDefaults(cfg, defaults *Config) {
	mergeDefaultSources(cfg, defaults)
	if len(cfg.Categories) == 0 {
		cfg.Categories = defaults.Categories
	}
	if len(cfg.UrgentKeywords) == 0 {
		cfg.UrgentKeywords = defaults.UrgentKeywords
	}
	if cfg.TTL == "" {
		cfg.TTL = defaults.TTL
	}
	if cfg.RefreshInterval == "" {
		cfg.RefreshInterval = defaults.RefreshInterval
	}
	if cfg.Sentiment.Scorer == "" {
		cfg.Sentiment.Scorer = defaults.Sentiment.Scorer
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

func mergeDefaultSources(cfg, defaults *Config) {
	index := make(map[string]int, len(cfg.Sources))
	for i, s := range cfg.Sources {
		index[s.Name] = i
	}
	for _, d := range defaults.Sources {
		if i, ok := index[d.Name]; ok {
			cfg.Sources[i].URL = d.URL
			cfg.Sources[i].Type = d.Type
			continue
		}
		cfg.Sources = append(cfg.Sources, d)
	}
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("tradewire", &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.TTL != "" {
		cfg.TTL = env.TTL
	}
	if env.RefreshInterval != "" {
		cfg.RefreshInterval = env.RefreshInterval
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.Scorer != "" {
		cfg.Sentiment.Scorer = env.Scorer
	}
	if env.ServeAddr != "" {
		cfg.Serve.Addr = env.ServeAddr
	}
	cfg.aiKeyEnv = env.AIKey
	return nil
}

// parseDuration accepts Go durations ("90s", "2m") and bare integers,
// which are read as seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func validate(cfg *Config) error {
	for _, field := range []struct{ name, value string }{
		{"ttl", cfg.TTL},
		{"refresh_interval", cfg.RefreshInterval},
	} {
		if field.value == "" {
			continue
		}
		d, err := parseDuration(field.value)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", field.name, field.value, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s: must be positive, got %q", field.name, field.value)
		}
	}

	validTypes := map[string]bool{"rss": true, "atom": true}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: rss, atom)", s.Name, s.Type)
		}
	}

	seen := make(map[string]bool, len(cfg.Categories))
	for i, c := range cfg.Categories {
		name := strings.TrimSpace(c.Name)
		switch {
		case name == "":
			return fmt.Errorf("category %d: name is required", i)
		case strings.EqualFold(name, classify.Other):
			return fmt.Errorf("category %q: name is reserved", name)
		case seen[strings.ToLower(name)]:
			return fmt.Errorf("category %q: duplicate name", name)
		case len(c.Keywords) == 0:
			return fmt.Errorf("category %q: at least one keyword is required", name)
		}
		seen[strings.ToLower(name)] = true
	}

	switch cfg.Sentiment.Scorer {
	case "", "vader", "ai":
	default:
		return fmt.Errorf("sentiment: unknown scorer %q (valid: vader, ai)", cfg.Sentiment.Scorer)
	}
	return nil
}
