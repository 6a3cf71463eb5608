package config

import (
	"strings"
	"time"

	"github.com/dtn-stack/bplib/internal/bytesize"
	"github.com/dtn-stack/bplib/pkg/bundle"
)

// ApplyDefaults fills in any unspecified configuration fields with sensible
// defaults. It is called after loading configuration from file and
// environment variables.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	for i := range cfg.Channels {
		applyChannelDefaults(&cfg.Channels[i])
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyChannelDefaults mirrors bundle.DefaultAttributes for every zero
// field, so a config file only needs to name the attributes it wants to
// override.
func applyChannelDefaults(cfg *ChannelConfig) {
	def := bundle.DefaultAttributes()
	a := &cfg.Attributes

	if a.Lifetime == 0 {
		a.Lifetime = def.Lifetime
	}
	if a.CipherSuite == "" {
		a.CipherSuite = "NONE"
	}
	if a.Timeout == 0 {
		a.Timeout = def.Timeout
	}
	if a.MaxLength == 0 {
		a.MaxLength = bytesize.ByteSize(def.MaxLength)
	}
	if a.WrapResponse == "" {
		a.WrapResponse = def.WrapResponse.String()
	}
	if a.DACSRate == 0 {
		a.DACSRate = def.DACSRate
	}
	if a.ActiveTableSize == 0 {
		a.ActiveTableSize = def.ActiveTableSize
	}
	if a.MaxFillsPerDACS == 0 {
		a.MaxFillsPerDACS = def.MaxFillsPerDACS
	}
	if a.MaxGapsPerDACS == 0 {
		a.MaxGapsPerDACS = def.MaxGapsPerDACS
	}

	if cfg.ReportTo == "" {
		cfg.ReportTo = cfg.Source
	}
	if cfg.BundleStore.Type == "" {
		cfg.BundleStore.Type = "memory"
	}
	if cfg.PayloadStore.Type == "" {
		cfg.PayloadStore.Type = "memory"
	}
	if cfg.DACSStore.Type == "" {
		cfg.DACSStore.Type = "memory"
	}
}

// GetDefaultConfig returns a minimal, valid configuration: a single
// ipn:1.1 -> ipn:2.1 channel over in-memory storage.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Logging:         LoggingConfig{},
		Metrics:         MetricsConfig{},
		ShutdownTimeout: 0,
		Channels: []ChannelConfig{
			{
				Name:        "default",
				Source:      "ipn:1.1",
				Destination: "ipn:2.1",
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
