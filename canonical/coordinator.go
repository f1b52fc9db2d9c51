// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package canonical implements the coordinator on the canonical chain. It
// owns the fee debt of every remote chain, credits locks forwarded by remote
// coordinators, and answers every fee report with the mint amount it is
// worth.
package canonical

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/registry"
)

var (
	_ coordinator.Receiver = (*Coordinator)(nil)

	registryPrefix       = []byte("registry")
	feeDebtPrefix        = []byte("feeDebt")
	settledPrefix        = []byte("settled")
	bridgeDelegatePrefix = []byte("bridgeDelegate")
	l2CoordinatorPrefix  = []byte("l2Coordinator")
)

type Coordinator struct {
	config  Config
	log     log.Logger
	chainID string

	remotes *registry.TrustedRemotes

	// mu serializes configuration, settlement and inbound messages.
	mu              sync.Mutex
	db              *versiondb.Database
	feeDebt         database.Database
	settled         database.Database
	bridgeDelegates database.Database
	l2Coordinators  database.Database
}

func New(config Config) (*Coordinator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	db := versiondb.New(config.DB)
	return &Coordinator{
		config:          config,
		log:             config.Log,
		chainID:         config.ChainID.String(),
		remotes:         registry.New(prefixdb.New(registryPrefix, config.DB), config.Authority, config.Log),
		db:              db,
		feeDebt:         prefixdb.New(feeDebtPrefix, db),
		settled:         prefixdb.New(settledPrefix, db),
		bridgeDelegates: prefixdb.New(bridgeDelegatePrefix, db),
		l2Coordinators:  prefixdb.New(l2CoordinatorPrefix, db),
	}, nil
}

func (c *Coordinator) Address() common.Address {
	return c.config.Address
}

func (c *Coordinator) Registry() *registry.TrustedRemotes {
	return c.remotes
}

func (c *Coordinator) SetTrustedRemote(caller common.Address, channel coordinator.Channel, chainID ids.ID, addr common.Address) error {
	return c.remotes.SetTrustedRemote(caller, channel, chainID, addr)
}

// SetBridgeDelegate sets the only sender the bridge receiver accepts value
// from for remoteChainID.
func (c *Coordinator) SetBridgeDelegate(caller common.Address, remoteChainID ids.ID, delegate common.Address) error {
	return c.setAddress(caller, c.bridgeDelegates, "bridge delegate", remoteChainID, delegate)
}

// SetL2Coordinator sets the remote coordinator that receives FeesCallback
// and mint value for remoteChainID.
func (c *Coordinator) SetL2Coordinator(caller common.Address, remoteChainID ids.ID, addr common.Address) error {
	return c.setAddress(caller, c.l2Coordinators, "l2 coordinator", remoteChainID, addr)
}

func (c *Coordinator) setAddress(caller common.Address, db database.Database, name string, remoteChainID ids.ID, addr common.Address) error {
	if err := c.config.Authority.Authorize(caller); err != nil {
		return err
	}
	if addr == (common.Address{}) {
		return coordinator.Errorf(coordinator.CodeConfiguration, "%s for chain %s is the zero address", name, remoteChainID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.commit(func() error {
		return coordinator.PutAddress(db, remoteChainID[:], addr)
	}); err != nil {
		return err
	}
	c.log.Info("updated coordinator configuration",
		log.String("chainID", c.chainID),
		log.String("key", name),
		log.Stringer("remoteChainID", remoteChainID),
		log.Stringer("address", addr),
	)
	return nil
}

func (c *Coordinator) BridgeDelegate(remoteChainID ids.ID) (common.Address, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return coordinator.GetAddress(c.bridgeDelegates, remoteChainID[:])
}

func (c *Coordinator) L2Coordinator(remoteChainID ids.ID) (common.Address, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return coordinator.GetAddress(c.l2Coordinators, remoteChainID[:])
}

// Emit credits amount of newly emitted primary token to the coordinator's
// escrow. Policies tracking emissions see it in every later quote. Only the
// authority may call it.
func (c *Coordinator) Emit(caller common.Address, amount *uint256.Int) error {
	if err := c.config.Authority.Authorize(caller); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return coordinator.Errorf(coordinator.CodeArithmetic, "emission amount is zero")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.config.Token.Credit(c.config.Address, amount); err != nil {
		return err
	}
	if tracker, ok := c.config.Policy.(EmissionTracker); ok {
		if err := tracker.AddEmission(amount); err != nil {
			if debitErr := c.config.Token.Debit(c.config.Address, amount); debitErr != nil {
				return fmt.Errorf("%w: failed to restore escrow: %w", err, debitErr)
			}
			return err
		}
	}
	c.observeRate()
	c.log.Info("emitted",
		log.String("chainID", c.chainID),
		log.Stringer("amount", amount),
	)
	return nil
}

// observeRate exports the ratio of a policy tracking emissions.
func (c *Coordinator) observeRate() {
	tracker, ok := c.config.Policy.(EmissionTracker)
	if !ok {
		return
	}
	if ratio, err := tracker.Ratio(); err == nil {
		c.config.Metrics.SetMintRate(c.chainID, ratio.Scaled())
	}
}

// FeeDebt returns the total reward reported by remoteChainID. It never
// decreases.
func (c *Coordinator) FeeDebt(remoteChainID ids.ID) (*uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return coordinator.GetAmount(c.feeDebt, remoteChainID[:])
}

// SettledFeeDebt returns the reward value received through the bridge
// delegate of remoteChainID.
func (c *Coordinator) SettledFeeDebt(remoteChainID ids.ID) (*uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return coordinator.GetAmount(c.settled, remoteChainID[:])
}

// OutstandingFeeDebt returns fee debt not yet matched by settled value,
// floored at zero.
func (c *Coordinator) OutstandingFeeDebt(remoteChainID ids.ID) (*uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	debt, err := coordinator.GetAmount(c.feeDebt, remoteChainID[:])
	if err != nil {
		return nil, err
	}
	settled, err := coordinator.GetAmount(c.settled, remoteChainID[:])
	if err != nil {
		return nil, err
	}
	if settled.Gt(debt) {
		return new(uint256.Int), nil
	}
	return debt.Sub(debt, settled), nil
}

// RecordSettlement appends amount to the settled value of remoteChainID.
// Fee debt is untouched.
func (c *Coordinator) RecordSettlement(remoteChainID ids.ID, amount *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var settled *uint256.Int
	if err := c.commit(func() error {
		current, err := coordinator.GetAmount(c.settled, remoteChainID[:])
		if err != nil {
			return err
		}
		settled, err = coordinator.Add(current, amount)
		if err != nil {
			return err
		}
		return coordinator.PutAmount(c.settled, remoteChainID[:], settled)
	}); err != nil {
		return err
	}
	c.config.Metrics.SetSettledFeeDebt(c.chainID, remoteChainID.String(), settled)
	return nil
}

func (c *Coordinator) commit(f func() error) error {
	if err := f(); err != nil {
		c.db.Abort()
		return err
	}
	return c.db.Commit()
}
