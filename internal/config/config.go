package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/markstate/internal/logging"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = ".markstate.toml"

// Environment variables that override file settings.
const (
	EnvLogLevel = "MARKSTATE_LOG_LEVEL"
	EnvStrict   = "MARKSTATE_STRICT"
	EnvParallel = "MARKSTATE_PARALLEL"
)

// Duration is a time.Duration that reads and writes as a string like "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// Config holds all markstate settings.
type Config struct {
	// FixtureDirs are searched when check or watch run without paths.
	FixtureDirs []string `toml:"fixture_dirs"`
	// Strict rejects end markers that have no start marker.
	Strict bool `toml:"strict"`
	// Parallel bounds the number of fixture cases run at once.
	Parallel int `toml:"parallel"`
	// NoColor disables colored output.
	NoColor bool `toml:"no_color"`
	// ScriptTimeout bounds each Lua transform script.
	ScriptTimeout Duration `toml:"script_timeout"`

	Log   LogConfig   `toml:"log"`
	Watch WatchConfig `toml:"watch"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		FixtureDirs:   []string{"testdata"},
		Parallel:      runtime.GOMAXPROCS(0),
		ScriptTimeout: Duration(5 * time.Second),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchConfig{
			Debounce: Duration(100 * time.Millisecond),
		},
	}
}

// Load reads configuration from path on top of the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := cfg.parse(path, data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithEnv loads path and applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parse(source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}

		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			perr.Line, perr.Column = decodeErr.Position()
		}
		return perr
	}
	return nil
}

// ApplyEnv applies MARKSTATE_* environment overrides.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvStrict); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ValidationError{Setting: EnvStrict, Value: v, Reason: "must be a boolean"}
		}
		c.Strict = b
	}
	if v, ok := os.LookupEnv(EnvParallel); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Setting: EnvParallel, Value: v, Reason: "must be an integer"}
		}
		c.Parallel = n
	}
	return nil
}

// Validate checks that every setting holds a usable value.
func (c *Config) Validate() error {
	if c.Parallel < 1 {
		return &ValidationError{Setting: "parallel", Value: c.Parallel, Reason: "must be at least 1"}
	}
	if !logging.ValidLogLevel(c.Log.Level) {
		return &ValidationError{Setting: "log.level", Value: c.Log.Level, Reason: "must be debug, info, warn, or error"}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return &ValidationError{Setting: "log.format", Value: c.Log.Format, Reason: "must be text or json"}
	}
	if c.Watch.Debounce < 0 {
		return &ValidationError{Setting: "watch.debounce", Value: time.Duration(c.Watch.Debounce), Reason: "must not be negative"}
	}
	if c.ScriptTimeout <= 0 {
		return &ValidationError{Setting: "script_timeout", Value: time.Duration(c.ScriptTimeout), Reason: "must be positive"}
	}
	return nil
}

// Logger builds a logger from the log settings that writes to w.
// A nil w writes to stderr.
func (c *Config) Logger(w io.Writer) *logging.Logger {
	cfg := logging.DefaultConfig()
	if w != nil {
		cfg.Output = w
	}
	cfg.Level = logging.ParseLogLevel(c.Log.Level)
	cfg.Format = logging.ParseFormat(c.Log.Format)
	return logging.New(cfg)
}

// Save writes the configuration to path as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}
