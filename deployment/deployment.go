// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package deployment assembles a canonical coordinator, its remote
// coordinators, their bridges and the network between them from a
// config.Config, and runs scripted scenarios against the result.
package deployment

import (
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/bridge"
	"github.com/luxfi/coordinator/canonical"
	"github.com/luxfi/coordinator/config"
	"github.com/luxfi/coordinator/ledger"
	"github.com/luxfi/coordinator/metrics"
	"github.com/luxfi/coordinator/network"
	"github.com/luxfi/coordinator/payload"
	"github.com/luxfi/coordinator/remote"
)

// GasLimits is the destination execution budget requested per message type.
var GasLimits = map[payload.MessageType]uint64{
	payload.TypeLock:         200_000,
	payload.TypeQueueFees:    250_000,
	payload.TypeFeesCallback: 150_000,
	payload.TypeTransfer:     100_000,
}

// Chain holds the token ledgers of one chain.
type Chain struct {
	Name        string
	ID          ids.ID
	Token       *ledger.Token
	RewardToken *ledger.Token
}

type Canonical struct {
	Chain
	Coordinator *canonical.Coordinator
	Receiver    *bridge.Receiver
	Locker      *ledger.Locker
	Policy      canonical.MintPolicy
	Treasury    common.Address
}

type Remote struct {
	Chain
	Coordinator *remote.Coordinator
	Sender      *bridge.Sender
	Booster     common.Address
}

type Deployment struct {
	config config.Config
	log    log.Logger
	owner  common.Address

	Network   *network.Network
	Canonical *Canonical
	Remotes   []*Remote
}

// Build deploys every contract described by cfg, registers trust between
// them and funds the configured balances. cfg must already be validated.
func Build(cfg config.Config, registerer prometheus.Registerer) (*Deployment, error) {
	logger := cfg.NewLogger("coordinator")
	owner, err := config.ParseAddress(cfg.Owner)
	if err != nil {
		return nil, err
	}
	d := &Deployment{
		config: cfg,
		log:    logger,
		owner:  owner,
	}

	db := memdb.New()
	coordinatorMetrics := metrics.NewCoordinatorMetrics(registerer)
	networkMetrics := metrics.NewNetworkMetrics(registerer)

	netConfig, err := networkConfig(cfg)
	if err != nil {
		return nil, err
	}
	netConfig.DB = prefixdb.New([]byte("network"), db)
	netConfig.Log = logger
	netConfig.Metrics = networkMetrics
	d.Network, err = network.New(netConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}

	if err := d.buildCanonical(db, coordinatorMetrics); err != nil {
		return nil, fmt.Errorf("failed to deploy canonical chain %q: %w", cfg.Canonical.Name, err)
	}
	for _, r := range cfg.Remotes {
		if err := d.buildRemote(db, r, coordinatorMetrics); err != nil {
			return nil, fmt.Errorf("failed to deploy remote chain %q: %w", r.Name, err)
		}
	}
	if err := d.fund(); err != nil {
		return nil, err
	}

	logger.Info("deployment ready",
		log.String("canonical", cfg.Canonical.Name),
		log.Int("remotes", len(d.Remotes)),
	)
	return d, nil
}

func networkConfig(cfg config.Config) (network.Config, error) {
	netConfig := network.DefaultConfig()
	baseFee, err := config.ParseAmount(cfg.Network.BaseFee)
	if err != nil {
		return netConfig, err
	}
	byteFee, err := config.ParseAmount(cfg.Network.ByteFee)
	if err != nil {
		return netConfig, err
	}
	gasPrice, err := config.ParseAmount(cfg.Network.GasPrice)
	if err != nil {
		return netConfig, err
	}
	netConfig.BaseFee = baseFee
	netConfig.ByteFee = byteFee
	netConfig.GasPrice = gasPrice
	netConfig.MaxRetries = cfg.Network.MaxRetries
	if interval := cfg.GetRetryInterval(); interval > 0 {
		netConfig.RetryInterval = interval
	}
	return netConfig, nil
}

func newChain(name string, db database.Database) Chain {
	return Chain{
		Name:        name,
		ID:          config.ChainID(name),
		Token:       ledger.NewToken("LUX", prefixdb.New([]byte("token"), db)),
		RewardToken: ledger.NewToken("RWD", prefixdb.New([]byte("reward"), db)),
	}
}

func (d *Deployment) buildCanonical(db database.Database, m *metrics.CoordinatorMetrics) error {
	cfg := d.config.Canonical
	chainDB := prefixdb.New([]byte(cfg.Name), db)
	addr, err := config.ParseAddress(cfg.Coordinator)
	if err != nil {
		return err
	}
	receiverAddr, err := config.ParseAddress(cfg.BridgeReceiver)
	if err != nil {
		return err
	}
	treasury, err := config.ParseAddress(cfg.Treasury)
	if err != nil {
		return err
	}
	policy, err := mintPolicy(d.config.MintPolicy)
	if err != nil {
		return err
	}

	c := &Canonical{
		Chain:    newChain(cfg.Name, chainDB),
		Locker:   ledger.NewLocker(prefixdb.New([]byte("locker"), chainDB)),
		Policy:   policy,
		Treasury: treasury,
	}
	c.Coordinator, err = canonical.New(canonical.Config{
		ChainID:   c.ID,
		Address:   addr,
		Channel:   d.config.GetChannel(),
		GasLimits: GasLimits,
		Transport: d.Network.Endpoint(c.ID),
		Token:     c.Token,
		Locker:    c.Locker,
		Policy:    policy,
		Authority: coordinator.NewOwner(d.owner),
		DB:        prefixdb.New([]byte("coordinator"), chainDB),
		Log:       d.log,
		Metrics:   m,
	})
	if err != nil {
		return err
	}
	c.Receiver = bridge.NewReceiver(bridge.ReceiverConfig{
		ChainID:     c.ID,
		Address:     receiverAddr,
		Channel:     d.config.GetBridgeChannel(),
		Delegates:   c.Coordinator,
		RewardToken: c.RewardToken,
		Log:         d.log,
		Metrics:     m,
	})

	d.Network.Register(c.ID, addr, c.Coordinator)
	d.Network.Register(c.ID, receiverAddr, c.Receiver)
	d.Canonical = c
	return nil
}

func mintPolicy(cfg config.MintPolicy) (canonical.MintPolicy, error) {
	switch cfg.Type {
	case config.PolicyFixed:
		rate, err := coordinator.ParseMintRate(cfg.Rate)
		if err != nil {
			return nil, err
		}
		return &canonical.FixedRatePolicy{Rate: rate}, nil
	case config.PolicyTracked:
		mint, err := config.ParseAmount(cfg.SeedMint)
		if err != nil {
			return nil, err
		}
		reward, err := config.ParseAmount(cfg.SeedReward)
		if err != nil {
			return nil, err
		}
		return canonical.NewTrackedRatioPolicy(mint, reward), nil
	default:
		return nil, fmt.Errorf("unknown mint policy %q", cfg.Type)
	}
}

func (d *Deployment) buildRemote(db database.Database, cfg config.RemoteChain, m *metrics.CoordinatorMetrics) error {
	chainDB := prefixdb.New([]byte(cfg.Name), db)
	addr, err := config.ParseAddress(cfg.Coordinator)
	if err != nil {
		return err
	}
	booster, err := config.ParseAddress(cfg.Booster)
	if err != nil {
		return err
	}
	delegate, err := config.ParseAddress(cfg.BridgeDelegate)
	if err != nil {
		return err
	}

	r := &Remote{
		Chain:   newChain(cfg.Name, chainDB),
		Booster: booster,
	}
	transport := d.Network.Endpoint(r.ID)
	r.Coordinator, err = remote.New(remote.Config{
		ChainID:          r.ID,
		Address:          addr,
		CanonicalChainID: d.Canonical.ID,
		Channel:          d.config.GetChannel(),
		GasLimits:        GasLimits,
		Transport:        transport,
		Token:            r.Token,
		RewardToken:      r.RewardToken,
		Authority:        coordinator.NewOwner(d.owner),
		DB:               prefixdb.New([]byte("coordinator"), chainDB),
		Log:              d.log,
		Metrics:          m,
	})
	if err != nil {
		return err
	}
	r.Sender = bridge.NewSender(bridge.SenderConfig{
		ChainID:          r.ID,
		CanonicalChainID: d.Canonical.ID,
		Address:          delegate,
		Receiver:         d.Canonical.Receiver.Address(),
		Beneficiary:      d.Canonical.Treasury,
		Channel:          d.config.GetBridgeChannel(),
		GasLimit:         GasLimits[payload.TypeTransfer],
		Transport:        transport,
		RewardToken:      r.RewardToken,
		Log:              d.log,
	})

	canonicalAddr := d.Canonical.Coordinator.Address()
	channel := d.config.GetChannel()
	for _, f := range []func() error{
		func() error { return r.Coordinator.SetTrustedRemote(d.owner, channel, d.Canonical.ID, canonicalAddr) },
		func() error { return r.Coordinator.SetBooster(d.owner, booster) },
		func() error { return r.Coordinator.SetBridgeDelegate(d.owner, delegate) },
		func() error { return d.Canonical.Coordinator.SetTrustedRemote(d.owner, channel, r.ID, addr) },
		func() error { return d.Canonical.Coordinator.SetL2Coordinator(d.owner, r.ID, addr) },
		func() error { return d.Canonical.Coordinator.SetBridgeDelegate(d.owner, r.ID, delegate) },
	} {
		if err := f(); err != nil {
			return err
		}
	}

	d.Network.Register(r.ID, addr, r.Coordinator)
	d.Remotes = append(d.Remotes, r)
	return nil
}

func (d *Deployment) fund() error {
	for _, b := range d.config.Balances {
		chain, ok := d.chain(b.Chain)
		if !ok {
			return fmt.Errorf("unknown chain %q", b.Chain)
		}
		account, err := config.ParseAddress(b.Account)
		if err != nil {
			return err
		}
		amount, err := config.ParseAmount(b.Amount)
		if err != nil {
			return err
		}
		token := chain.Token
		if b.Token == config.TokenReward {
			token = chain.RewardToken
		}
		if err := token.Credit(account, amount); err != nil {
			return fmt.Errorf("failed to fund %s on %q: %w", account, b.Chain, err)
		}
	}
	return nil
}

func (d *Deployment) chain(name string) (*Chain, bool) {
	if d.Canonical.Name == name {
		return &d.Canonical.Chain, true
	}
	if r, ok := d.Remote(name); ok {
		return &r.Chain, true
	}
	return nil, false
}

// Remote returns the remote chain named name.
func (d *Deployment) Remote(name string) (*Remote, bool) {
	for _, r := range d.Remotes {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Owner returns the administrator of every deployed coordinator.
func (d *Deployment) Owner() common.Address {
	return d.owner
}
