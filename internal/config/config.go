// Package config loads the reimport configuration from .reimport.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/mamaar/reimport/pkg/alias"
	"github.com/mamaar/reimport/pkg/refactor"
	"github.com/mamaar/reimport/pkg/style"
)

// Sentinel validation errors.
var (
	ErrInvalidFileSize = errors.New("invalid max file size")
	ErrInvalidWorkers  = errors.New("workers must be positive")
	ErrInvalidTimeout  = errors.New("timeout must be positive")
	ErrInvalidLevel    = errors.New("invalid log level")
	ErrInvalidFormat   = errors.New("invalid log format")
	ErrInvalidHistory  = errors.New("history size must be positive")
)

// FileName is looked up in the workspace root when no explicit path is given.
const FileName = ".reimport.yaml"

// EnvPrefix prefixes environment overrides, e.g. REIMPORT_LIMITS_TIMEOUT.
const EnvPrefix = "REIMPORT"

// Config holds all configuration of the reimport tools.
type Config struct {
	Limits  LimitsConfig  `mapstructure:"limits"`
	Exclude []string      `mapstructure:"exclude"`
	Style   StyleConfig   `mapstructure:"style"`
	Aliases AliasesConfig `mapstructure:"aliases"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LimitsConfig bounds the work of one rename.
type LimitsConfig struct {
	MaxFileSize         string        `mapstructure:"max_file_size"`
	MaxFiles            int           `mapstructure:"max_files"`
	Timeout             time.Duration `mapstructure:"timeout"`
	Workers             int           `mapstructure:"workers"`
	LargeWorkspaceFiles int           `mapstructure:"large_workspace_files"`
	PackageScanLines    int           `mapstructure:"package_scan_lines"`
}

// StyleConfig overrides the detected import style.
type StyleConfig struct {
	Quote     string `mapstructure:"quote"`
	Semicolon string `mapstructure:"semicolon"`
}

// AliasesConfig adds aliases that project files do not declare.
type AliasesConfig struct {
	Python  map[string]string `mapstructure:"python"`
	GoRules []alias.Rule      `mapstructure:"go_rules"`
}

// HistoryConfig sizes the undo ledger.
type HistoryConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configPath, or FileName under root when configPath is empty. A
// missing file is not an error; defaults and environment overrides still apply.
func Load(root, configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(root, FileName)
		v.SetConfigType("yaml")
	}
	v.SetConfigFile(configPath)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	d := refactor.DefaultConfig()

	v.SetDefault("limits.max_file_size", humanize.IBytes(uint64(d.MaxFileSize)))
	v.SetDefault("limits.max_files", d.MaxFiles)
	v.SetDefault("limits.timeout", d.Timeout.String())
	v.SetDefault("limits.workers", d.Workers)
	v.SetDefault("limits.large_workspace_files", d.LargeWorkspaceFiles)
	v.SetDefault("limits.package_scan_lines", d.PackageScanLines)
	v.SetDefault("exclude", d.Exclude)

	v.SetDefault("style.quote", "auto")
	v.SetDefault("style.semicolon", "auto")

	v.SetDefault("history.max_entries", refactor.DefaultHistorySize)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := c.MaxFileSizeBytes(); err != nil {
		return err
	}
	if c.Limits.Workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Limits.Workers)
	}
	if c.Limits.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Limits.Timeout)
	}
	if c.History.MaxEntries <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHistory, c.History.MaxEntries)
	}
	if _, err := style.ParseQuote(c.Style.Quote); err != nil {
		return err
	}
	if _, err := style.ParseSemicolon(c.Style.Semicolon); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Logging.Format)
	}
	return nil
}

// MaxFileSizeBytes parses the human-readable size ceiling ("1MB", "512KiB").
func (c *Config) MaxFileSizeBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.Limits.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidFileSize, c.Limits.MaxFileSize, err)
	}
	return int64(n), nil
}

// Engine converts the configuration into engine settings.
func (c *Config) Engine() *refactor.EngineConfig {
	size, _ := c.MaxFileSizeBytes()
	quote, _ := style.ParseQuote(c.Style.Quote)
	semi, _ := style.ParseSemicolon(c.Style.Semicolon)
	return &refactor.EngineConfig{
		MaxFileSize:         size,
		MaxFiles:            c.Limits.MaxFiles,
		Timeout:             c.Limits.Timeout,
		Workers:             c.Limits.Workers,
		LargeWorkspaceFiles: c.Limits.LargeWorkspaceFiles,
		PackageScanLines:    c.Limits.PackageScanLines,
		Exclude:             c.Exclude,
		Style:               style.Options{Quote: quote, Semicolon: semi},
		Aliases:             alias.Options{PythonAliases: c.Aliases.Python, GoRules: c.Aliases.GoRules},
	}
}
