// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package network is an in-process transport between coordinators on
// different chains.
//
// Packets travel on lanes keyed by (source chain, source address,
// destination chain, channel). A lane delivers in send order. A packet whose
// delivery fails with a retryable error is stored and blocks its lane until
// it is retried successfully or force resumed. Packets rejected with a
// permanent error are dropped. Delivered packet ids are remembered so
// redelivery of the same packet is suppressed.
//
// Send only enqueues. Nothing is delivered until Flush or DeliverWhere is
// called, which lets tests control ordering across lanes and message types.
package network

import (
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"

	"github.com/luxfi/coordinator"
)

var (
	storedPrefix     = []byte("stored")
	checkpointPrefix = []byte("checkpoint")
)

var (
	ErrUnknownChain    = errors.New("unknown chain")
	ErrUnknownReceiver = errors.New("no receiver registered")
	ErrNotStored       = errors.New("packet is not stored")
)

// Lane identifies an ordered stream of packets.
type Lane struct {
	SrcChainID ids.ID
	SrcAddress common.Address
	DstChainID ids.ID
	Channel    coordinator.Channel
}

func laneOf(p *coordinator.Packet) Lane {
	return Lane{
		SrcChainID: p.SrcChainID,
		SrcAddress: p.SrcAddress,
		DstChainID: p.DstChainID,
		Channel:    p.Channel,
	}
}

type endpoint struct {
	chainID ids.ID
	address common.Address
}

type lane struct {
	nonce      uint64
	pending    []*coordinator.Packet
	stored     *coordinator.Packet
	checkpoint checkpoint
}

// Drop records a packet discarded by the network.
type Drop struct {
	Packet *coordinator.Packet
	Err    error
}

type Network struct {
	config Config
	log    log.Logger

	// deliverMu serializes delivery. It is never held by Send.
	deliverMu sync.Mutex

	mu        sync.Mutex
	chains    set.Set[ids.ID]
	receivers map[endpoint]coordinator.Receiver
	lanes     map[Lane]*lane
	order     []Lane
	cursor    int
	delivered []*coordinator.Packet
	dropped   []Drop
	fees      map[ids.ID]*uint256.Int
	seen      *lru.Cache

	stored      database.Database
	checkpoints database.Database
}

func New(config Config) (*Network, error) {
	config.setDefaults()
	n := &Network{
		config:    config,
		log:       config.Log,
		chains:    set.NewSet[ids.ID](0),
		receivers: make(map[endpoint]coordinator.Receiver),
		lanes:     make(map[Lane]*lane),
		fees:      make(map[ids.ID]*uint256.Int),
	}
	db := config.DB
	if db == nil {
		db = memdb.New()
	}
	n.stored = prefixdb.New(storedPrefix, db)
	n.checkpoints = prefixdb.New(checkpointPrefix, db)
	if config.DedupeSize > 0 {
		seen, err := lru.New(config.DedupeSize)
		if err != nil {
			return nil, err
		}
		n.seen = seen
	}
	return n, nil
}

// AddChain attaches a chain to the network.
func (n *Network) AddChain(chainID ids.ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chains.Add(chainID)
}

// Register routes packets addressed to (chainID, address) to r.
func (n *Network) Register(chainID ids.ID, address common.Address, r coordinator.Receiver) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chains.Add(chainID)
	n.receivers[endpoint{chainID: chainID, address: address}] = r
}

// Endpoint returns the transport used by contracts on chainID.
func (n *Network) Endpoint(chainID ids.ID) coordinator.Transport {
	n.AddChain(chainID)
	return &Endpoint{network: n, chainID: chainID}
}

func (n *Network) fee(payloadLen int, gasLimit uint64) (*uint256.Int, error) {
	byteFee, err := coordinator.MulDiv(n.config.ByteFee, uint256.NewInt(uint64(payloadLen)), uint256.NewInt(1))
	if err != nil {
		return nil, err
	}
	gasFee, err := coordinator.MulDiv(n.config.GasPrice, uint256.NewInt(gasLimit), uint256.NewInt(1))
	if err != nil {
		return nil, err
	}
	fee, err := coordinator.Add(n.config.BaseFee, byteFee)
	if err != nil {
		return nil, err
	}
	return coordinator.Add(fee, gasFee)
}

func (n *Network) estimate(dstChainID ids.ID, payload []byte, gasLimit uint64) (*uint256.Int, error) {
	n.mu.Lock()
	known := n.chains.Contains(dstChainID)
	n.mu.Unlock()

	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChain, dstChainID)
	}
	return n.fee(len(payload), gasLimit)
}

func (n *Network) send(srcChainID ids.ID, src common.Address, req coordinator.SendRequest) (*uint256.Int, error) {
	fee, err := n.estimate(req.DstChainID, req.Payload, req.Fee.GasLimit)
	if err != nil {
		return nil, err
	}
	if err := coordinator.CheckFee(req.Fee.NativeFee, fee); err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	key := Lane{
		SrcChainID: srcChainID,
		SrcAddress: src,
		DstChainID: req.DstChainID,
		Channel:    req.Channel,
	}
	l := n.lane(key)
	l.nonce++
	p := &coordinator.Packet{
		SrcChainID: srcChainID,
		SrcAddress: src,
		DstChainID: req.DstChainID,
		DstAddress: req.DstAddress,
		Channel:    req.Channel,
		Nonce:      l.nonce,
		Payload:    append([]byte(nil), req.Payload...),
	}
	if err := p.Verify(); err != nil {
		l.nonce--
		return nil, err
	}
	l.pending = append(l.pending, p)

	collected, ok := n.fees[srcChainID]
	if !ok {
		collected = new(uint256.Int)
		n.fees[srcChainID] = collected
	}
	collected.Add(collected, fee)

	n.config.Metrics.Sent(srcChainID.String(), req.DstChainID.String(), fee)
	n.log.Debug("queued packet",
		log.Stringer("srcChainID", srcChainID),
		log.Stringer("dstChainID", req.DstChainID),
		log.Uint64("channel", uint64(req.Channel)),
		log.Uint64("nonce", p.Nonce),
	)
	return fee, nil
}

// lane returns the queue for key, creating it. n.mu must be held.
func (n *Network) lane(key Lane) *lane {
	l, ok := n.lanes[key]
	if !ok {
		l = &lane{}
		n.lanes[key] = l
		n.order = append(n.order, key)
	}
	return l
}

// FeesCollected returns the native fees charged to senders on chainID.
func (n *Network) FeesCollected(chainID ids.ID) *uint256.Int {
	n.mu.Lock()
	defer n.mu.Unlock()

	if fee, ok := n.fees[chainID]; ok {
		return new(uint256.Int).Set(fee)
	}
	return new(uint256.Int)
}

// Pending returns the number of packets waiting on unblocked and blocked
// lanes, stored packets excluded.
func (n *Network) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := 0
	for _, l := range n.lanes {
		count += len(l.pending)
	}
	return count
}

// Delivered returns every packet applied by its destination, in delivery
// order.
func (n *Network) Delivered() []*coordinator.Packet {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*coordinator.Packet(nil), n.delivered...)
}

func (n *Network) Dropped() []Drop {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Drop(nil), n.dropped...)
}

// Blocked reports whether lane is blocked by a stored packet.
func (n *Network) Blocked(key Lane) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	l, ok := n.lanes[key]
	return ok && l.stored != nil
}
