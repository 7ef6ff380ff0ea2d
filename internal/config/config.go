// Package config loads the process configuration from defaults, an optional
// YAML file and DATACONVERTER_* environment variables, in that order of
// precedence from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/datafix"
)

const EnvPrefix = "DATACONVERTER"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrConfigFile    = errors.New("failed to read config file")
)

type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Converter ConverterConfig `mapstructure:"converter" yaml:"converter"`
	Migrator  MigratorConfig  `mapstructure:"migrator" yaml:"migrator"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type ConverterConfig struct {
	DisableCommandConverter bool `mapstructure:"disable_command_converter" yaml:"disable_command_converter"`
	// Target is the version records are brought to when a caller names none.
	Target string `mapstructure:"target" yaml:"target"`
}

type MigratorConfig struct {
	// Workers bounds batch parallelism. Zero means one per CPU.
	Workers int `mapstructure:"workers" yaml:"workers"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	EnableCompression bool          `mapstructure:"enable_compression" yaml:"enable_compression"`
}

func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Converter: ConverterConfig{
			Target: "current",
		},
		Server: ServerConfig{
			Addr:            ":8088",
			MaxMessageBytes: 8 << 20,
			WriteTimeout:    10 * time.Second,
		},
	}
}

// Load reads the configuration. An empty path skips the file.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrConfigFile, path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("converter.disable_command_converter", d.Converter.DisableCommandConverter)
	v.SetDefault("converter.target", d.Converter.Target)
	v.SetDefault("migrator.workers", d.Migrator.Workers)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_message_bytes", d.Server.MaxMessageBytes)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.enable_compression", d.Server.EnableCompression)
}

func (c Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error", "fatal", "silent", "none":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	if _, err := c.TargetVersion(); err != nil {
		return fmt.Errorf("%w: converter.target: %w", ErrInvalidConfig, err)
	}
	if c.Migrator.Workers < 0 {
		return fmt.Errorf("%w: migrator.workers must not be negative", ErrInvalidConfig)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if c.Server.MaxMessageBytes <= 0 {
		return fmt.Errorf("%w: server.max_message_bytes must be positive", ErrInvalidConfig)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("%w: server.write_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c Config) TargetVersion() (converter.Version, error) {
	return datafix.LookupVersion(c.Converter.Target)
}

// Options maps the converter section onto schema options.
func (c Config) Options() datafix.Options {
	return datafix.Options{DisableCommandConverter: c.Converter.DisableCommandConverter}
}

// YAML renders the effective configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
