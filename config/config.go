// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package config describes a simulated deployment: one canonical chain,
// any number of remote chains, the network between them and a scripted
// scenario.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
)

const (
	LogLevelOff  = "off"
	LogLevelInfo = "info"

	defaultLogLevel      = LogLevelInfo
	defaultChannel       = 101
	defaultBridgeChannel = 102

	defaultMaxRetries      = 2
	defaultRetryIntervalMS = 10

	PolicyFixed   = "fixed"
	PolicyTracked = "tracked"

	TokenPrimary = "primary"
	TokenReward  = "reward"

	ActionLock      = "lock"
	ActionQueueFees = "queue-fees"
	ActionMint      = "mint"
	ActionBridge    = "bridge"
	ActionFlush     = "flush"
	ActionDeliver   = "deliver"
	ActionEmit      = "emit"
)

var (
	errMissingOwner      = errors.New("owner not set")
	errNoRemotes         = errors.New("no remote chains configured")
	errSameChannel       = errors.New("control and bridge channels must differ")
	errZeroChannel       = errors.New("channel must be non-zero")
	errDuplicateChain    = errors.New("duplicate chain name")
	errUnknownChain      = errors.New("unknown chain")
	errUnknownPolicy     = errors.New("unknown mint policy")
	errUnknownToken      = errors.New("unknown token")
	errUnknownAction     = errors.New("unknown scenario action")
	errInvalidAddress    = errors.New("invalid address")
	errMissingChainName  = errors.New("chain name not set")
	errUnknownDeliveries = errors.New("deliver step needs a message type")
	errZeroEmission      = errors.New("emit step needs a non-zero amount")
	errUnknownLogLevel   = errors.New("unknown log level")
)

type Config struct {
	LogLevel      string         `mapstructure:"log-level" json:"log-level"`
	Channel       uint16         `mapstructure:"channel" json:"channel"`
	BridgeChannel uint16         `mapstructure:"bridge-channel" json:"bridge-channel"`
	Owner         string         `mapstructure:"owner" json:"owner"`
	Canonical     CanonicalChain `mapstructure:"canonical" json:"canonical"`
	Remotes       []RemoteChain  `mapstructure:"remotes" json:"remotes"`
	MintPolicy    MintPolicy     `mapstructure:"mint-policy" json:"mint-policy"`
	Network       Network        `mapstructure:"network" json:"network"`
	Balances      []Balance      `mapstructure:"balances" json:"balances"`
	Scenario      []Step         `mapstructure:"scenario" json:"scenario"`
}

type CanonicalChain struct {
	Name           string `mapstructure:"name" json:"name"`
	Coordinator    string `mapstructure:"coordinator" json:"coordinator"`
	BridgeReceiver string `mapstructure:"bridge-receiver" json:"bridge-receiver"`
	// Treasury is credited with reward token arriving through the bridge.
	Treasury string `mapstructure:"treasury" json:"treasury"`
}

type RemoteChain struct {
	Name           string `mapstructure:"name" json:"name"`
	Coordinator    string `mapstructure:"coordinator" json:"coordinator"`
	Booster        string `mapstructure:"booster" json:"booster"`
	BridgeDelegate string `mapstructure:"bridge-delegate" json:"bridge-delegate"`
}

type MintPolicy struct {
	Type string `mapstructure:"type" json:"type"`
	// Rate is the decimal rate of the fixed policy.
	Rate string `mapstructure:"rate" json:"rate"`
	// SeedMint and SeedReward seed the tracked policy's ratio.
	SeedMint   string `mapstructure:"seed-mint" json:"seed-mint"`
	SeedReward string `mapstructure:"seed-reward" json:"seed-reward"`
}

type Network struct {
	BaseFee         string `mapstructure:"base-fee" json:"base-fee"`
	ByteFee         string `mapstructure:"byte-fee" json:"byte-fee"`
	GasPrice        string `mapstructure:"gas-price" json:"gas-price"`
	MaxRetries      uint64 `mapstructure:"max-retries" json:"max-retries"`
	RetryIntervalMS uint64 `mapstructure:"retry-interval-ms" json:"retry-interval-ms"`
}

// Balance funds an account before the scenario runs.
type Balance struct {
	Chain   string `mapstructure:"chain" json:"chain"`
	Token   string `mapstructure:"token" json:"token"`
	Account string `mapstructure:"account" json:"account"`
	Amount  string `mapstructure:"amount" json:"amount"`
}

// Step is one scenario action.
type Step struct {
	Action string `mapstructure:"action" json:"action"`
	Chain  string `mapstructure:"chain" json:"chain"`
	// Account is the caller of lock and the recipient of mint. Amount of an
	// emit step is credited to the canonical coordinator.
	Account string `mapstructure:"account" json:"account"`
	Amount  string `mapstructure:"amount" json:"amount"`
	// MessageType selects what a deliver step delivers.
	MessageType string `mapstructure:"message-type" json:"message-type"`
}

// ChainID derives the chain id of a named chain.
func ChainID(name string) ids.ID {
	return ids.ID(hash.ComputeHash256Array([]byte(name)))
}

// ParseAmount parses a decimal amount. The empty string is zero.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// ParseAddress parses a hex address, rejecting the zero address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", errInvalidAddress, s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: zero address", errInvalidAddress)
	}
	return addr, nil
}

// NewLogger returns the logger selected by log-level. "off" disables
// logging.
func (c *Config) NewLogger(name string) log.Logger {
	if c.LogLevel == LogLevelOff {
		return log.NewNoOpLogger()
	}
	return log.NewLogger(name)
}

func (c *Config) GetChannel() coordinator.Channel {
	return coordinator.Channel(c.Channel)
}

func (c *Config) GetBridgeChannel() coordinator.Channel {
	return coordinator.Channel(c.BridgeChannel)
}

func (c *Config) GetRetryInterval() time.Duration {
	return time.Duration(c.Network.RetryIntervalMS) * time.Millisecond
}

// GetMintRate returns the fixed policy rate.
func (c *Config) GetMintRate() (coordinator.MintRate, error) {
	return coordinator.ParseMintRate(c.MintPolicy.Rate)
}

// Remote returns the remote chain named name.
func (c *Config) Remote(name string) (RemoteChain, bool) {
	for _, r := range c.Remotes {
		if r.Name == name {
			return r, true
		}
	}
	return RemoteChain{}, false
}
