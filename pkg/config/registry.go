package config

import (
	"context"
	"fmt"

	"github.com/dtn-stack/bplib/internal/logger"
	"github.com/dtn-stack/bplib/pkg/channel"
	"github.com/dtn-stack/bplib/pkg/osal"
)

// OpenChannels builds and opens every channel cfg names: it creates each
// channel's three storage handles, resolves its route/attribute set, and
// calls channel.Open. If any channel fails to open, the ones already
// opened are closed before returning the error, so a partial startup never
// leaks storage handles.
//
// Parameters:
//   - ctx: used only for backend construction (e.g. resolving AWS config
//     for an s3-backed handle); it is not retained afterward.
//   - cfg: the loaded, validated configuration.
//
// Returns the opened channels keyed by name.
func OpenChannels(ctx context.Context, cfg *Config) (map[string]*channel.Channel, error) {
	logger.Debug("opening channels", "count", len(cfg.Channels))

	opened := make(map[string]*channel.Channel, len(cfg.Channels))
	for _, chCfg := range cfg.Channels {
		ch, err := openOne(ctx, chCfg)
		if err != nil {
			closeAll(opened)
			return nil, fmt.Errorf("channel %q: %w", chCfg.Name, err)
		}
		opened[chCfg.Name] = ch
		logger.Info("channel opened", logger.Channel(chCfg.Name), logger.SourceEID(chCfg.Source), logger.DestEID(chCfg.Destination))
	}

	return opened, nil
}

func openOne(ctx context.Context, cfg ChannelConfig) (*channel.Channel, error) {
	route, attrs, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	bundleStore, err := CreateStore(ctx, cfg.BundleStore)
	if err != nil {
		return nil, fmt.Errorf("bundle_store: %w", err)
	}
	payloadStore, err := CreateStore(ctx, cfg.PayloadStore)
	if err != nil {
		_ = bundleStore.Close()
		return nil, fmt.Errorf("payload_store: %w", err)
	}
	dacsStore, err := CreateStore(ctx, cfg.DACSStore)
	if err != nil {
		_ = bundleStore.Close()
		_ = payloadStore.Close()
		return nil, fmt.Errorf("dacs_store: %w", err)
	}

	return channel.Open(cfg.Name, route, attrs, bundleStore, payloadStore, dacsStore, osal.SystemClock{})
}

func closeAll(channels map[string]*channel.Channel) {
	for name, ch := range channels {
		if err := ch.Close(); err != nil {
			logger.Warn("failed to close channel during rollback", logger.Channel(name), logger.Err(err))
		}
	}
}
