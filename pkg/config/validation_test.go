package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := GetDefaultConfig()
	return cfg
}

func TestValidate_DefaultConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("expected default config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid log format")
	}
}

func TestValidate_InvalidMetricsPort(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Port = 70000

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_NoChannels(t *testing.T) {
	cfg := validConfig()
	cfg.Channels = nil

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for no channels")
	}
}

func TestValidate_DuplicateChannelNames(t *testing.T) {
	cfg := validConfig()
	cfg.Channels = append(cfg.Channels, cfg.Channels[0])

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for duplicate channel names")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected 'duplicate' validation error, got: %v", err)
	}
}

func TestValidate_BadSourceEID(t *testing.T) {
	cfg := validConfig()
	cfg.Channels[0].Source = "not-an-eid"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for malformed source eid")
	}
}

func TestValidate_BadCipherSuite(t *testing.T) {
	cfg := validConfig()
	cfg.Channels[0].Attributes.CipherSuite = "ROT13"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unrecognized cipher suite")
	}
}

func TestValidate_S3StoreRequiresBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Channels[0].BundleStore = StorageConfig{Type: "s3"}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for s3 store without bucket")
	}
	if !strings.Contains(err.Error(), "bucket") {
		t.Errorf("expected 'bucket' validation error, got: %v", err)
	}
}

func TestValidate_BadgerStoreRequiresPath(t *testing.T) {
	cfg := validConfig()
	cfg.Channels[0].BundleStore = StorageConfig{Type: "badger"}

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for badger store without path")
	}
}
