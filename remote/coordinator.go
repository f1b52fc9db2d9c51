// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package remote implements the coordinator deployed on every non-canonical
// chain. It forwards locks and reward reports to the canonical chain, caches
// the mint rate the canonical chain reports back, and hands out primary
// token at that rate when the booster asks it to.
package remote

import (
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/payload"
	"github.com/luxfi/coordinator/registry"
)

var (
	_ coordinator.Receiver = (*Coordinator)(nil)

	registryPrefix = []byte("registry")
	statePrefix    = []byte("state")

	mintRateKey       = []byte("mintRate")
	boosterKey        = []byte("booster")
	bridgeDelegateKey = []byte("bridgeDelegate")
)

type Coordinator struct {
	config  Config
	log     log.Logger
	chainID string

	remotes *registry.TrustedRemotes

	// mu serializes local calls and inbound messages.
	mu    sync.Mutex
	db    *versiondb.Database
	state database.Database
}

func New(config Config) (*Coordinator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	db := versiondb.New(config.DB)
	c := &Coordinator{
		config:  config,
		log:     config.Log,
		chainID: config.ChainID.String(),
		remotes: registry.New(prefixdb.New(registryPrefix, config.DB), config.Authority, config.Log),
		db:      db,
		state:   prefixdb.New(statePrefix, db),
	}
	rate, err := c.mintRate()
	if err != nil {
		return nil, err
	}
	config.Metrics.SetMintRate(c.chainID, rate.Scaled())
	return c, nil
}

func (c *Coordinator) Address() common.Address {
	return c.config.Address
}

// Registry exposes the trusted-peer registry.
func (c *Coordinator) Registry() *registry.TrustedRemotes {
	return c.remotes
}

func (c *Coordinator) SetTrustedRemote(caller common.Address, channel coordinator.Channel, chainID ids.ID, addr common.Address) error {
	return c.remotes.SetTrustedRemote(caller, channel, chainID, addr)
}

// SetBooster sets the local accounting module allowed to call QueueFees and
// Mint.
func (c *Coordinator) SetBooster(caller, booster common.Address) error {
	return c.setAddress(caller, boosterKey, booster)
}

// SetBridgeDelegate sets the address that receives queued reward token.
func (c *Coordinator) SetBridgeDelegate(caller, delegate common.Address) error {
	return c.setAddress(caller, bridgeDelegateKey, delegate)
}

func (c *Coordinator) setAddress(caller common.Address, key []byte, addr common.Address) error {
	if err := c.config.Authority.Authorize(caller); err != nil {
		return err
	}
	if addr == (common.Address{}) {
		return coordinator.Errorf(coordinator.CodeConfiguration, "%s is the zero address", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.commit(func() error {
		return coordinator.PutAddress(c.state, key, addr)
	}); err != nil {
		return err
	}
	c.log.Info("updated coordinator configuration",
		log.String("chainID", c.chainID),
		log.String("key", string(key)),
		log.Stringer("address", addr),
	)
	return nil
}

func (c *Coordinator) Booster() (common.Address, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return coordinator.GetAddress(c.state, boosterKey)
}

func (c *Coordinator) BridgeDelegate() (common.Address, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return coordinator.GetAddress(c.state, bridgeDelegateKey)
}

// MintRate returns the cached rate. It is zero until the first FeesCallback.
func (c *Coordinator) MintRate() (coordinator.MintRate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mintRate()
}

func (c *Coordinator) mintRate() (coordinator.MintRate, error) {
	scaled, err := coordinator.GetAmount(c.state, mintRateKey)
	if err != nil {
		return coordinator.MintRate{}, err
	}
	return coordinator.MintRateFromScaled(scaled), nil
}

// commit applies f to the versioned state, committing on success and
// discarding every write on failure.
func (c *Coordinator) commit(f func() error) error {
	if err := f(); err != nil {
		c.db.Abort()
		return err
	}
	return c.db.Commit()
}

// onlyBooster fails unless caller is the configured booster.
func (c *Coordinator) onlyBooster(caller common.Address) error {
	booster, ok, err := coordinator.GetAddress(c.state, boosterKey)
	if err != nil {
		return err
	}
	if !ok {
		return coordinator.Errorf(coordinator.CodeConfiguration, "booster is not set")
	}
	if caller != booster {
		return coordinator.Errorf(coordinator.CodeUnauthorizedCaller, "%s is not the booster", caller)
	}
	return nil
}

func (c *Coordinator) canonicalPeer() (common.Address, error) {
	return c.remotes.Destination(c.config.Channel, c.config.CanonicalChainID)
}

func (c *Coordinator) gasLimit(t payload.MessageType) uint64 {
	return c.config.GasLimits[t]
}
