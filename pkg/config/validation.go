package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dtn-stack/bplib/pkg/eid"
)

var validate = validator.New()

// Validate checks cfg against its struct tags and the cross-field rules
// struct tags cannot express (endpoint ID grammar, per-channel name
// uniqueness).
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	seen := make(map[string]bool, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		if seen[ch.Name] {
			return fmt.Errorf("channel %q: duplicate name", ch.Name)
		}
		seen[ch.Name] = true

		if _, err := eid.Parse(ch.Source); err != nil {
			return fmt.Errorf("channel %q: source: %w", ch.Name, err)
		}
		if _, err := eid.Parse(ch.Destination); err != nil {
			return fmt.Errorf("channel %q: destination: %w", ch.Name, err)
		}
		if _, err := eid.Parse(ch.ReportTo); err != nil {
			return fmt.Errorf("channel %q: report_to: %w", ch.Name, err)
		}

		if ch.BundleStore.Type == "s3" && ch.BundleStore.S3.Bucket == "" {
			return fmt.Errorf("channel %q: bundle_store: s3 requires a bucket", ch.Name)
		}
		if ch.PayloadStore.Type == "s3" && ch.PayloadStore.S3.Bucket == "" {
			return fmt.Errorf("channel %q: payload_store: s3 requires a bucket", ch.Name)
		}
		if ch.DACSStore.Type == "s3" && ch.DACSStore.S3.Bucket == "" {
			return fmt.Errorf("channel %q: dacs_store: s3 requires a bucket", ch.Name)
		}
		if (ch.BundleStore.Type == "badger" && ch.BundleStore.Path == "") ||
			(ch.PayloadStore.Type == "badger" && ch.PayloadStore.Path == "") ||
			(ch.DACSStore.Type == "badger" && ch.DACSStore.Path == "") {
			return fmt.Errorf("channel %q: badger storage requires a path", ch.Name)
		}
	}

	return nil
}
