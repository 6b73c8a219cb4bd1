// Package config loads DishTip configuration.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults
//  2. an optional YAML file
//  3. legacy VITE_* variables shared with the web frontend
//  4. DISHTIP_* variables and GOOGLE_API_KEY
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/abelbrown/dishtip/internal/label"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "DISHTIP_CONFIG"

// EventLogName is the file name of the event log.
const EventLogName = "dishtip.events.jsonl"

// Config is the application configuration.
type Config struct {
	Backend BackendConfig `koanf:"backend"`
	Places  PlacesConfig  `koanf:"places"`
	UI      UIConfig      `koanf:"ui"`
	Log     LogConfig     `koanf:"log"`
	Trace   bool          `koanf:"trace"`
}

// BackendConfig configures the recommendation backend client.
type BackendConfig struct {
	BaseURL         string        `koanf:"base_url" validate:"required,http_url"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	RatePerSecond   float64       `koanf:"rate_per_second" validate:"gte=0"`
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"gte=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// PlacesConfig configures the autocomplete client. An empty APIKey disables
// autocomplete; places can still be looked up by id from the CLI.
type PlacesConfig struct {
	APIKey        string        `koanf:"api_key"`
	Region        string        `koanf:"region" validate:"omitempty,len=2,alpha"`
	Endpoint      string        `koanf:"endpoint" validate:"omitempty,http_url"`
	RatePerSecond float64       `koanf:"rate_per_second" validate:"gte=0"`
	CacheSize     int           `koanf:"cache_size" validate:"gte=1"`
	CacheTTL      time.Duration `koanf:"cache_ttl" validate:"gt=0"`
	Debounce      time.Duration `koanf:"debounce" validate:"gte=0"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	PageSize int      `koanf:"page_size" validate:"eq=5"`
	Labels   []string `koanf:"labels" validate:"omitempty,dive,required"`
}

// LogConfig configures the file logger and the event log.
type LogConfig struct {
	Level    string `koanf:"level" validate:"oneof=debug info warn error"`
	Dir      string `koanf:"dir" validate:"required"`
	EventLog bool   `koanf:"event_log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:         "http://localhost:8000",
			Timeout:         30 * time.Second,
			RatePerSecond:   4,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Places: PlacesConfig{
			Region:        "de",
			RatePerSecond: 5,
			CacheSize:     128,
			CacheTTL:      10 * time.Minute,
			Debounce:      300 * time.Millisecond,
		},
		UI: UIConfig{
			PageSize: 5,
			Labels:   append([]string(nil), label.DefaultVocabulary...),
		},
		Log: LogConfig{
			Level:    "info",
			Dir:      "~/.dishtip/logs",
			EventLog: true,
		},
	}
}

// Load builds the configuration. path names a YAML file; when empty the
// file is looked up via DISHTIP_CONFIG and then DefaultPaths. An explicit
// path that does not exist is an error; a missing default file is not.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	} else {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("VITE_", ".", viteTransform), nil); err != nil {
		return nil, fmt.Errorf("load VITE_ environment: %w", err)
	}
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitListFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Places.Region = strings.ToLower(cfg.Places.Region)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPaths are searched in order when no path is given.
func DefaultPaths() []string {
	paths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".dishtip", "config.yaml"))
	}
	return append(paths, "config.yaml", "config.yml")
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps environment variables to config paths.
var envMappings = map[string]string{
	"DISHTIP_BACKEND_URL":      "backend.base_url",
	"DISHTIP_BACKEND_TIMEOUT":  "backend.timeout",
	"DISHTIP_BACKEND_RPS":      "backend.rate_per_second",
	"DISHTIP_BREAKER_FAILURES": "backend.breaker_failures",
	"DISHTIP_BREAKER_TIMEOUT":  "backend.breaker_timeout",
	"GOOGLE_API_KEY":           "places.api_key",
	"DISHTIP_PLACES_ENDPOINT":  "places.endpoint",
	"DISHTIP_REGION":           "places.region",
	"DISHTIP_DEBOUNCE":         "places.debounce",
	"DISHTIP_LABELS":           "ui.labels",
	"DISHTIP_LOG_LEVEL":        "log.level",
	"DISHTIP_LOG_DIR":          "log.dir",
	"DISHTIP_EVENT_LOG":        "log.event_log",
	"DISHTIP_TRACE":            "trace",
}

// viteMappings are the names the web frontend reads from its .env file.
var viteMappings = map[string]string{
	"VITE_BACKEND_URL":    "backend.base_url",
	"VITE_GOOGLE_API_KEY": "places.api_key",
}

// envTransform returns the config path for a variable, or "" to skip it.
func envTransform(key string) string {
	return envMappings[key]
}

func viteTransform(key string) string {
	return viteMappings[key]
}

// listPaths are parsed from comma-separated strings when set from the
// environment.
var listPaths = []string{"ui.labels"}

func splitListFields(k *koanf.Koanf) error {
	for _, path := range listPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		vals := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				vals = append(vals, p)
			}
		}
		if err := k.Set(path, vals); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// LogDir returns Log.Dir with a leading "~" expanded.
func (c *Config) LogDir() (string, error) {
	return ExpandHome(c.Log.Dir)
}

// EventLogPath is the JSONL event log inside LogDir.
func (c *Config) EventLogPath() (string, error) {
	dir, err := c.LogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, EventLogName), nil
}

// ExpandHome expands a leading "~/" to the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Vocabulary returns the configured label vocabulary, or the default.
func (c *Config) Vocabulary() []string {
	if len(c.UI.Labels) == 0 {
		return label.DefaultVocabulary
	}
	return c.UI.Labels
}
