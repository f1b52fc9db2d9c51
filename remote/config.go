// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package remote

import (
	"errors"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/metrics"
	"github.com/luxfi/coordinator/payload"
)

var (
	errMissingTransport = errors.New("missing transport")
	errMissingToken     = errors.New("missing token")
	errMissingAuthority = errors.New("missing authority")
	errMissingDB        = errors.New("missing database")
	errZeroAddress      = errors.New("coordinator address is zero")
)

// Config wires a remote coordinator to its chain.
type Config struct {
	ChainID          ids.ID
	Address          common.Address
	CanonicalChainID ids.ID
	Channel          coordinator.Channel

	// GasLimits is the destination execution budget per outbound message
	// type.
	GasLimits map[payload.MessageType]uint64

	Transport coordinator.Transport
	// Token is the primary token handed out by Mint.
	Token coordinator.Token
	// RewardToken is the secondary reward token. If nil, QueueFees only
	// reports the reward and moves no value.
	RewardToken coordinator.Token
	Authority   coordinator.Authority
	DB          database.Database
	Log         log.Logger
	Metrics     *metrics.CoordinatorMetrics
}

func (c *Config) Validate() error {
	switch {
	case c.Transport == nil:
		return errMissingTransport
	case c.Token == nil:
		return errMissingToken
	case c.Authority == nil:
		return errMissingAuthority
	case c.DB == nil:
		return errMissingDB
	case c.Address == (common.Address{}):
		return errZeroAddress
	}
	if c.Log == nil {
		c.Log = log.NewNoOpLogger()
	}
	return nil
}
