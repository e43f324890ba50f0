// Package config loads tabscript settings from a YAML file, TABSCRIPT_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "TABSCRIPT"

type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Host   HostConfig   `mapstructure:"host" yaml:"host"`
	Run    RunConfig    `mapstructure:"run" yaml:"run"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// HostConfig controls the reference host a tab runs against.
type HostConfig struct {
	ViewportWidth  int           `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height" yaml:"viewport_height"`
	FrameInterval  time.Duration `mapstructure:"frame_interval" yaml:"frame_interval"`
	// CSPDefaultSrc applies when the page response carries no
	// Content-Security-Policy header. Empty means no policy.
	CSPDefaultSrc    []string      `mapstructure:"csp_default_src" yaml:"csp_default_src"`
	AllowCrossOrigin bool          `mapstructure:"allow_cross_origin" yaml:"allow_cross_origin"`
	CacheEnabled     bool          `mapstructure:"cache_enabled" yaml:"cache_enabled"`
	CacheMaxEntries  int           `mapstructure:"cache_max_entries" yaml:"cache_max_entries"`
	UserAgent        string        `mapstructure:"user_agent" yaml:"user_agent"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

type RunConfig struct {
	Duration  time.Duration `mapstructure:"duration" yaml:"duration"`
	OutputDir string        `mapstructure:"output_dir" yaml:"output_dir"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "tabscript")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", false)

	// -- Host --
	v.SetDefault("host.viewport_width", 800)
	v.SetDefault("host.viewport_height", 600)
	v.SetDefault("host.frame_interval", "16ms")
	v.SetDefault("host.csp_default_src", []string{})
	v.SetDefault("host.allow_cross_origin", false)
	v.SetDefault("host.cache_enabled", true)
	v.SetDefault("host.cache_max_entries", 256)
	v.SetDefault("host.user_agent", "tabscript/0.1")
	v.SetDefault("host.request_timeout", "30s")

	// -- Run --
	v.SetDefault("run.duration", "2s")
	v.SetDefault("run.output_dir", ".")
}

// Default returns the configuration with nothing but defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		// Defaults are static; failing here is a programming error.
		panic(err)
	}
	return cfg
}

// Load reads path (or tabscript.yaml from the working directory when path
// is empty) and the environment. A missing default file is not an error.
func Load(path string) (*Config, error) {
	return LoadViper(viper.New(), path)
}

// LoadViper is Load on a caller-supplied viper, so command-line flags
// bound to it take precedence over the file and the environment.
func LoadViper(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("tabscript")
		v.SetConfigType("yaml")
	}
	BindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// BindEnv makes TABSCRIPT_HOST_FRAME_INTERVAL and friends override keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Host.ViewportWidth <= 0 || c.Host.ViewportHeight <= 0 {
		return errors.New("host viewport dimensions must be positive")
	}
	if c.Host.FrameInterval <= 0 {
		return errors.New("host.frame_interval must be positive")
	}
	if c.Host.CacheEnabled && c.Host.CacheMaxEntries <= 0 {
		return errors.New("host.cache_max_entries must be positive when the cache is enabled")
	}
	if c.Host.RequestTimeout < 0 {
		return errors.New("host.request_timeout cannot be negative")
	}
	if c.Run.Duration < 0 {
		return errors.New("run.duration cannot be negative")
	}
	return nil
}
