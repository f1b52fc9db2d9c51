// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator/metrics"
)

const (
	defaultMaxRetries    = 2
	defaultRetryInterval = 10 * time.Millisecond
	defaultDedupeSize    = 4096
)

// Config configures the in-memory network. A zero Config is usable.
type Config struct {
	// BaseFee is charged for every packet.
	BaseFee *uint256.Int
	// ByteFee is charged per payload byte.
	ByteFee *uint256.Int
	// GasPrice is charged per unit of requested destination gas.
	GasPrice *uint256.Int

	// MaxRetries bounds immediate re-execution of a failed delivery before
	// the packet is stored.
	MaxRetries    uint64
	RetryInterval time.Duration

	// DedupeSize is the number of delivered packet ids remembered for
	// duplicate suppression. Negative disables suppression.
	DedupeSize int

	// DB holds stored payloads and lane checkpoints. Defaults to an in-memory database.
	DB      database.Database
	Log     log.Logger
	Metrics *metrics.NetworkMetrics
}

func (c *Config) setDefaults() {
	if c.BaseFee == nil {
		c.BaseFee = new(uint256.Int)
	}
	if c.ByteFee == nil {
		c.ByteFee = new(uint256.Int)
	}
	if c.GasPrice == nil {
		c.GasPrice = new(uint256.Int)
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = defaultRetryInterval
	}
	if c.DedupeSize == 0 {
		c.DedupeSize = defaultDedupeSize
	}
	if c.Log == nil {
		c.Log = log.NewNoOpLogger()
	}
}

// DefaultConfig returns the configuration used by the simulator.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    defaultMaxRetries,
		RetryInterval: defaultRetryInterval,
		DedupeSize:    defaultDedupeSize,
	}
}
