package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/descstream/internal/content"
)

// Environment variables that override the config file.
const (
	EnvAddr          = "DESCSTREAM_ADDR"
	EnvAgentEndpoint = "DESCSTREAM_AGENT_ENDPOINT"
	EnvLogLevel      = "DESCSTREAM_LOG_LEVEL"
	EnvLogFormat     = "DESCSTREAM_LOG_FORMAT"
	EnvDefaultLocale = "DESCSTREAM_DEFAULT_LOCALE"
)

const (
	DefaultAddr           = ":8080"
	DefaultAgentAddr      = ":9090"
	DefaultChunkDelay     = 150 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
)

// Config holds the settings loaded from descstream.yml.
type Config struct {
	Addr           string    `yaml:"addr,omitempty"`
	AgentAddr      string    `yaml:"agentAddr,omitempty"`
	AgentEndpoint  string    `yaml:"agentEndpoint,omitempty"`
	DefaultLocale  string    `yaml:"defaultLocale,omitempty"`
	Languages      []string  `yaml:"languages,omitempty"`
	ChunkDelay     string    `yaml:"chunkDelay,omitempty"`
	RequestTimeout string    `yaml:"requestTimeout,omitempty"`
	Log            LogConfig `yaml:"log,omitempty"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
	Output string `yaml:"output,omitempty"`
}

// Load reads descstream.yml or descstream.yaml from dir, then applies an
// optional .env file in dir and the DESCSTREAM_* environment overrides.
// A missing config file yields the defaults, not an error.
func Load(dir string) (*Config, error) {
	cfg := &Config{}
	for _, name := range []string{"descstream.yml", "descstream.yaml"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
		break
	}

	// .env is optional when the variables come from the environment.
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		EnvAddr:          &c.Addr,
		EnvAgentEndpoint: &c.AgentEndpoint,
		EnvLogLevel:      &c.Log.Level,
		EnvLogFormat:     &c.Log.Format,
		EnvDefaultLocale: &c.DefaultLocale,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.AgentAddr == "" {
		c.AgentAddr = DefaultAgentAddr
	}
	if len(c.Languages) == 0 {
		for _, l := range content.DefaultLanguages() {
			c.Languages = append(c.Languages, l.String())
		}
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = content.DefaultLocale.String()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stderr"
	}
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if _, _, err := c.Locales(); err != nil {
		return err
	}
	if _, err := parseDuration("chunkDelay", c.ChunkDelay, DefaultChunkDelay); err != nil {
		return err
	}
	if _, err := parseDuration("requestTimeout", c.RequestTimeout, DefaultRequestTimeout); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: log format %q must be text or json", c.Log.Format)
	}
	return nil
}

// Locales returns the supported locales and the default one.
func (c *Config) Locales() ([]content.Locale, content.Locale, error) {
	langs := make([]content.Locale, 0, len(c.Languages))
	for _, raw := range c.Languages {
		s := strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")
		if s == "" {
			return nil, "", fmt.Errorf("config: empty entry in languages")
		}
		langs = append(langs, content.Locale(s))
	}
	if len(langs) == 0 {
		langs = content.DefaultLanguages()
	}
	if c.DefaultLocale == "" {
		return langs, langs[0], nil
	}
	def, err := content.ParseLocale(c.DefaultLocale, langs)
	if err != nil {
		return nil, "", fmt.Errorf("config: default locale %q is not one of the languages: %w", c.DefaultLocale, err)
	}
	return langs, def, nil
}

// ChunkDelayDuration returns the simulated delay between two chunks.
func (c *Config) ChunkDelayDuration() time.Duration {
	d, _ := parseDuration("chunkDelay", c.ChunkDelay, DefaultChunkDelay)
	return d
}

// RequestTimeoutDuration returns the timeout for calls to the agent.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := parseDuration("requestTimeout", c.RequestTimeout, DefaultRequestTimeout)
	return d
}

func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("config: invalid %s %q: %w", field, raw, err)
	}
	if d < 0 {
		return def, fmt.Errorf("config: %s must not be negative", field)
	}
	return d, nil
}
