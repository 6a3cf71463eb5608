// Package config loads the bpd daemon's configuration: a logging/metrics
// section plus one or more channel definitions, each carrying the endpoint
// set, the attribute set (spec §3's full Attributes record), and the
// storage backend selection for its three storage handles.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (BPLIB_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dtn-stack/bplib/internal/bytesize"
)

// Config is the bpd daemon's full configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics controls the Prometheus metrics HTTP server.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// ShutdownTimeout bounds how long graceful shutdown waits for
	// in-flight Load/Accept calls to return before the process exits.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Channels lists every channel the daemon opens at startup. At least
	// one is required.
	Channels []ChannelConfig `mapstructure:"channels" validate:"required,min=1,dive" yaml:"channels"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format.
	// Valid values: text, json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port the metrics endpoint listens on.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// ChannelConfig names one channel's endpoints, attribute set, and storage
// backends.
type ChannelConfig struct {
	// Name identifies the channel in logs, metrics, and the /stats endpoint.
	Name string `mapstructure:"name" validate:"required" yaml:"name"`

	// Source, Destination and ReportTo are "ipn:<node>.<service>" endpoint
	// IDs (see pkg/eid).
	Source      string `mapstructure:"source" validate:"required" yaml:"source"`
	Destination string `mapstructure:"destination" validate:"required" yaml:"destination"`
	ReportTo    string `mapstructure:"report_to" yaml:"report_to"`

	Attributes AttributesConfig `mapstructure:"attributes" yaml:"attributes"`

	BundleStore  StorageConfig `mapstructure:"bundle_store" validate:"required" yaml:"bundle_store"`
	PayloadStore StorageConfig `mapstructure:"payload_store" validate:"required" yaml:"payload_store"`
	DACSStore    StorageConfig `mapstructure:"dacs_store" validate:"required" yaml:"dacs_store"`
}

// AttributesConfig is the YAML/env-facing form of bundle.Attributes: enums
// are spelled out as strings here and resolved in Build (attributes.go).
type AttributesConfig struct {
	Lifetime           uint64            `mapstructure:"lifetime" yaml:"lifetime"`
	RequestCustody     bool              `mapstructure:"request_custody" yaml:"request_custody"`
	AdminRecord        bool              `mapstructure:"admin_record" yaml:"admin_record"`
	IntegrityCheck     bool              `mapstructure:"integrity_check" yaml:"integrity_check"`
	AllowFragmentation bool              `mapstructure:"allow_fragmentation" yaml:"allow_fragmentation"`
	CipherSuite        string            `mapstructure:"cipher_suite" validate:"omitempty,oneof=NONE CRC16X25 CRC32C" yaml:"cipher_suite"`
	Timeout            uint64            `mapstructure:"timeout" yaml:"timeout"`
	MaxLength          bytesize.ByteSize `mapstructure:"max_length" yaml:"max_length"`
	WrapResponse       string            `mapstructure:"wrap_response" validate:"omitempty,oneof=RESEND BLOCK DROP" yaml:"wrap_response"`
	CIDReuse           bool              `mapstructure:"cid_reuse" yaml:"cid_reuse"`
	DACSRate           uint64            `mapstructure:"dacs_rate" yaml:"dacs_rate"`
	ActiveTableSize    int               `mapstructure:"active_table_size" validate:"omitempty,gt=0" yaml:"active_table_size"`
	MaxFillsPerDACS    int               `mapstructure:"max_fills_per_dacs" validate:"omitempty,gt=0" yaml:"max_fills_per_dacs"`
	MaxGapsPerDACS     int               `mapstructure:"max_gaps_per_dacs" validate:"omitempty,gt=0" yaml:"max_gaps_per_dacs"`
	StorageServiceParm string            `mapstructure:"storage_service_parm" yaml:"storage_service_parm,omitempty"`
}

// StorageConfig selects and parameterizes one pkg/bpstore backend.
type StorageConfig struct {
	// Type selects the backend: memory, badger, or s3.
	Type string `mapstructure:"type" validate:"required,oneof=memory badger s3" yaml:"type"`

	// Path is the badger data directory (type=badger) or an opaque parm
	// string threaded through to the memory backend (type=memory).
	Path string `mapstructure:"path" yaml:"path,omitempty"`

	// S3 configures the type=s3 backend.
	S3 S3StorageConfig `mapstructure:"s3" yaml:"s3,omitempty"`
}

// S3StorageConfig names the bucket an s3-backed storage handle mirrors
// into.
type S3StorageConfig struct {
	Bucket         string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Prefix         string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	Region         string `mapstructure:"region" yaml:"region,omitempty"`
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	AccessKeyID    string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when no
// configuration file can be found.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"create one first, or specify a custom path:\n"+
				"  bpd start --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path in YAML form.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("BPLIB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks combines the custom decode hooks this package needs.
// Passing an explicit DecodeHook option to viper replaces its built-in
// default (which includes mapstructure.StringToTimeDurationHookFunc), so
// that conversion is re-added here explicitly for ShutdownTimeout.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// byteSizeDecodeHook converts strings and numbers to bytesize.ByteSize so
// config files can use human-readable sizes like "64Ki" for max_length.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory: $XDG_CONFIG_HOME/bplib,
// falling back to ~/.config/bplib, or "." if the home directory cannot be
// determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "bplib")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "bplib")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
