// Package config loads CLI configuration from a TOML file, a .env file and
// DIRAC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/thomasrohde/dirac/pkg/encoding"
	"github.com/thomasrohde/dirac/pkg/evaluator"
)

// Config holds application configuration
type Config struct {
	Eval   evaluator.Budget `toml:"eval"`
	Output OutputConfig     `toml:"output"`
	Log    LogConfig        `toml:"log"`
	REPL   REPLConfig       `toml:"repl"`
}

// OutputConfig controls result and error rendering.
type OutputConfig struct {
	Format       string `toml:"format"` // text | json | table | msgpack
	PrettyErrors bool   `toml:"pretty_errors"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// REPLConfig controls the interactive console.
type REPLConfig struct {
	HistoryFile string `toml:"history_file"`
	ParseCache  int    `toml:"parse_cache"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Eval: evaluator.DefaultBudget(),
		Output: OutputConfig{
			Format:       "text",
			PrettyErrors: true,
		},
		Log: LogConfig{Level: "info"},
		REPL: REPLConfig{
			HistoryFile: "~/.dirac_history",
			ParseCache:  256,
		},
	}
}

// Load reads configuration from a TOML file. Keys absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is like Load but returns the defaults for an empty path.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Path returns flagValue when set, else $DIRAC_CONFIG.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("DIRAC_CONFIG")
}

// LoadDotenv loads the given .env files, or ./.env when none are given.
// Missing files are ignored. Variables already set are not overridden.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with DIRAC_* environment variables.
func ApplyEnv(cfg *Config) error {
	var err error
	if cfg.Eval.MaxQubits, err = getEnvAsInt("DIRAC_MAX_QUBITS", cfg.Eval.MaxQubits); err != nil {
		return err
	}
	if cfg.Eval.MaxElements, err = getEnvAsInt("DIRAC_MAX_ELEMENTS", cfg.Eval.MaxElements); err != nil {
		return err
	}
	cfg.Log.Level = getEnv("DIRAC_LOG_LEVEL", cfg.Log.Level)
	cfg.Output.Format = getEnv("DIRAC_OUTPUT_FORMAT", cfg.Output.Format)
	return cfg.Validate()
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	if c.Eval.MaxQubits < 0 || c.Eval.MaxElements < 0 {
		return fmt.Errorf("eval limits must not be negative")
	}
	if !contains(encoding.Formats, c.Output.Format) {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.Output.Format, strings.Join(encoding.Formats, ", "))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// HistoryPath returns the REPL history file with a leading ~ expanded.
func (c *Config) HistoryPath() string {
	p := c.REPL.HistoryFile
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
