// Package config provides configuration management for procrun.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".config/procrun"
	DefaultConfigFile = "config.yaml"
)

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey    = errors.New("invalid configuration key")
	ErrInvalidFormat = errors.New("invalid output format")
	ErrInvalidValue  = errors.New("invalid configuration value")
	ErrNoEditor      = errors.New("$EDITOR environment variable not set")
)

// validFormats contains the allowed output formats (unexported).
var validFormats = map[string]bool{
	"text": true,
	"json": true,
	"yaml": true,
}

// boolKeys lists keys whose values must parse as booleans.
var boolKeys = map[string]bool{
	"runner.redirect_stdout": true,
	"runner.redirect_stderr": true,
	"output.echo":            true,
	"output.spinner":         true,
}

// validKeys is built once from Config struct reflection.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full procrun configuration.
type Config struct {
	Runner RunnerConfig `mapstructure:"runner" json:"runner" yaml:"runner"`
	Output OutputConfig `mapstructure:"output" json:"output" yaml:"output" validate:"required"`
}

// RunnerConfig holds defaults for new runners.
type RunnerConfig struct {
	// Application is a kind name, interpreter path or application name.
	// Empty selects the default interpreter of the host.
	Application    string `mapstructure:"application" json:"application" yaml:"application"`
	WorkingDir     string `mapstructure:"working_dir" json:"working_dir" yaml:"working_dir" validate:"omitempty,dir"`
	RedirectStdout bool   `mapstructure:"redirect_stdout" json:"redirect_stdout" yaml:"redirect_stdout"`
	RedirectStderr bool   `mapstructure:"redirect_stderr" json:"redirect_stderr" yaml:"redirect_stderr"`
}

// OutputConfig controls how results are presented.
type OutputConfig struct {
	Format        string `mapstructure:"format" json:"format" yaml:"format" validate:"required,oneof=text json yaml"`
	Echo          bool   `mapstructure:"echo" json:"echo" yaml:"echo"`
	Spinner       bool   `mapstructure:"spinner" json:"spinner" yaml:"spinner"`
	TranscriptDir string `mapstructure:"transcript_dir" json:"transcript_dir" yaml:"transcript_dir"`
}

// Default returns the configuration used when no file can be loaded.
func Default() *Config {
	return &Config{
		Runner: RunnerConfig{
			RedirectStdout: true,
			RedirectStderr: true,
		},
		Output: OutputConfig{Format: "text"},
	}
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Loader provides configuration loading and saving.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	configPath := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PROCRUN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("runner.application", "PROCRUN_APPLICATION")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("runner.working_dir", "PROCRUN_WORKING_DIR")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("output.format", "PROCRUN_OUTPUT")

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
	}

	l.setDefaults()

	return l, nil
}

// setDefaults sets all default configuration values using Viper.
func (l *Loader) setDefaults() {
	l.v.SetDefault("runner.application", "")
	l.v.SetDefault("runner.working_dir", "")
	l.v.SetDefault("runner.redirect_stdout", true)
	l.v.SetDefault("runner.redirect_stderr", true)
	l.v.SetDefault("output.format", "text")
	l.v.SetDefault("output.echo", false)
	l.v.SetDefault("output.spinner", false)
	l.v.SetDefault("output.transcript_dir", "")
}

// Load reads the configuration file, creating defaults if it doesn't exist.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.createDefault(); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Runner.WorkingDir = l.ExpandPath(cfg.Runner.WorkingDir)
	cfg.Output.TranscriptDir = l.ExpandPath(cfg.Output.TranscriptDir)

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// Set sets a configuration value by dot-notation key and writes the file.
func (l *Loader) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if key == "output.format" && !validFormats[value] {
		return fmt.Errorf("%w: %s (valid: text, json, yaml)", ErrInvalidFormat, value)
	}

	if boolKeys[key] {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false, got %q", ErrInvalidValue, key, value)
		}
		l.v.Set(key, b)
		return l.v.WriteConfig()
	}

	l.v.Set(key, value)
	return l.v.WriteConfig()
}

// createDefault writes the default configuration file using Viper.
func (l *Loader) createDefault() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return l.v.SafeWriteConfigAs(l.path)
}

// ExpandPath replaces a leading ~ with the home directory.
func (l *Loader) ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if validKeys[key] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// IsValidFormat reports whether format is a supported output format.
func IsValidFormat(format string) bool {
	return validFormats[format]
}

// buildValidKeys builds the set of valid keys from Config struct using reflection.
func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Config{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = true

		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}
