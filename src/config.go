package pawbasic

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds interpreter options
type Config struct {
	Debug            bool          `yaml:"debug" toml:"debug"`
	Precision        string        `yaml:"precision" toml:"precision"` // "fast" or "precise"
	StrictTypes      bool          `yaml:"strict_types" toml:"strict_types"`
	ThrowOnError     bool          `yaml:"throw_on_error" toml:"throw_on_error"`
	ShowErrorContext bool          `yaml:"show_error_context" toml:"show_error_context"`
	ContextLines     int           `yaml:"context_lines" toml:"context_lines"`
	MaxCallDepth     int           `yaml:"max_call_depth" toml:"max_call_depth"`
	LogCategories    []LogCategory `yaml:"log_categories" toml:"log_categories"`
	Output           io.Writer     `yaml:"-" toml:"-"`
	Input            io.Reader     `yaml:"-" toml:"-"`
	Args             []string      `yaml:"-" toml:"-"` // script arguments for ARGC/ARGV
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Debug:            false,
		Precision:        "fast",
		StrictTypes:      false,
		ThrowOnError:     false,
		ShowErrorContext: true,
		ContextLines:     2,
		MaxCallDepth:     256,
		Output:           os.Stdout,
		Input:            os.Stdin,
	}
}

// NumberMode returns the configured number representation
func (c *Config) NumberMode() (NumberMode, error) {
	mode, ok := ParseNumberMode(c.Precision)
	if !ok {
		return FastNumbers, fmt.Errorf("unknown precision %q", c.Precision)
	}
	return mode, nil
}

// LoadConfigFile reads a YAML or TOML file (chosen by extension) over the
// defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if _, err := cfg.NumberMode(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
