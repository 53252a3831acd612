// Package config loads ucb.toml, the project configuration of the code
// builder. Command-line flags override whatever the file sets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/trace"
)

// FileName is the configuration file looked up from the working directory
// upwards.
const FileName = "ucb.toml"

type Config struct {
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Templates   TemplatesConfig   `toml:"templates"`
	Trace       TraceConfig       `toml:"trace"`
	Build       BuildConfig       `toml:"build"`
}

type DiagnosticsConfig struct {
	Max    int    `toml:"max"`
	Dedup  bool   `toml:"dedup"`
	Format string `toml:"format"` // pretty|short|json
	Color  string `toml:"color"`  // auto|on|off
}

type TemplatesConfig struct {
	MaxDepth int `toml:"max_depth"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

type BuildConfig struct {
	Jobs     int    `toml:"jobs"`
	CacheDir string `toml:"cache_dir"`
	// Emit selects the instantiation report format: json|msgpack|yaml.
	Emit string `toml:"emit_instantiations"`
}

// Default returns the configuration used when no ucb.toml exists.
func Default() Config {
	return Config{
		Diagnostics: DiagnosticsConfig{Max: 100, Dedup: true, Format: "pretty", Color: "auto"},
		Templates:   TemplatesConfig{MaxDepth: templates.DefaultMaxDepth},
		Trace:       TraceConfig{Level: "off", Mode: "stream", Output: "-", Format: "auto"},
	}
}

// Find walks up from startDir looking for ucb.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the nearest ucb.toml above startDir, or the defaults.
// The returned path is empty when no file was found.
func Discover(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Diagnostics.Max < 0 {
		return fmt.Errorf("[diagnostics].max must not be negative")
	}
	switch c.Diagnostics.Format {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("[diagnostics].format: unknown format %q (expected: pretty|short|json)", c.Diagnostics.Format)
	}
	switch c.Diagnostics.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("[diagnostics].color: unknown mode %q (expected: auto|on|off)", c.Diagnostics.Color)
	}
	if c.Templates.MaxDepth <= 0 {
		return fmt.Errorf("[templates].max_depth must be positive")
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("[trace].mode: %w", err)
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		return fmt.Errorf("[trace].format: %w", err)
	}
	if c.Build.Jobs < 0 {
		return fmt.Errorf("[build].jobs must not be negative")
	}
	switch c.Build.Emit {
	case "", "json", "msgpack", "yaml":
	default:
		return fmt.Errorf("[build].emit_instantiations: unknown format %q (expected: json|msgpack|yaml)", c.Build.Emit)
	}
	return nil
}

// Tracer converts the [trace] table into a tracer configuration.
func (c Config) Tracer() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{Level: level, Mode: mode, Format: format, OutputPath: c.Trace.Output}, nil
}
