// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package events

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
)

// BusConfig configures the in-process pub/sub.
type BusConfig struct {
	// OutputChannelBuffer is the per-subscriber buffer. Default: 256
	OutputChannelBuffer int64 `koanf:"output_buffer"`

	// Persistent keeps messages for subscribers that attach later.
	Persistent bool `koanf:"persistent"`
}

// DefaultBusConfig returns the production defaults.
func DefaultBusConfig() BusConfig {
	return BusConfig{OutputChannelBuffer: 256}
}

// Bus is an in-process Watermill pub/sub shared by publishers and consumers.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg BusConfig, logger zerolog.Logger) *Bus {
	adapter := NewLoggerAdapter(logger.With().Str("component", "event_bus").Logger())
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputChannelBuffer,
			Persistent:          cfg.Persistent,
		}, adapter),
	}
}

// Publisher returns the publishing side.
func (b *Bus) Publisher() message.Publisher { return b.pubsub }

// Subscriber returns the subscribing side.
func (b *Bus) Subscriber() message.Subscriber { return b.pubsub }

// Close stops delivery to every subscriber.
func (b *Bus) Close() error { return b.pubsub.Close() }
