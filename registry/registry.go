// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry stores the trusted remote address of every
// (channel, chain) pair a coordinator talks to.
package registry

import (
	"encoding/binary"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
)

// TrustedRemotes is the trusted-peer registry. It validates claimed sources
// and never picks destinations.
type TrustedRemotes struct {
	log       log.Logger
	authority coordinator.Authority

	mu sync.RWMutex
	db database.Database
}

func New(db database.Database, authority coordinator.Authority, logger log.Logger) *TrustedRemotes {
	return &TrustedRemotes{
		log:       logger,
		authority: authority,
		db:        db,
	}
}

func key(channel coordinator.Channel, chainID ids.ID) []byte {
	k := make([]byte, 2+len(chainID))
	binary.BigEndian.PutUint16(k, uint16(channel))
	copy(k[2:], chainID[:])
	return k
}

// SetTrustedRemote records addr as the only accepted source for
// (channel, chainID). Setting the same value twice is a no-op.
func (r *TrustedRemotes) SetTrustedRemote(caller common.Address, channel coordinator.Channel, chainID ids.ID, addr common.Address) error {
	if err := r.authority.Authorize(caller); err != nil {
		return err
	}
	if addr == (common.Address{}) {
		return coordinator.Errorf(coordinator.CodeConfiguration, "trusted remote for chain %s is the zero address", chainID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := coordinator.PutAddress(r.db, key(channel, chainID), addr); err != nil {
		return err
	}
	r.log.Info("set trusted remote",
		log.Uint64("channel", uint64(channel)),
		log.Stringer("chainID", chainID),
		log.Stringer("address", addr),
	)
	return nil
}

// TrustedRemote returns the registered address. ok is false if none is set.
func (r *TrustedRemotes) TrustedRemote(channel coordinator.Channel, chainID ids.ID) (common.Address, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return coordinator.GetAddress(r.db, key(channel, chainID))
}

func (r *TrustedRemotes) IsTrusted(channel coordinator.Channel, chainID ids.ID, addr common.Address) bool {
	trusted, ok, err := r.TrustedRemote(channel, chainID)
	return err == nil && ok && trusted == addr
}

// Authenticate returns an Authentication error unless the packet's source
// is the trusted remote for its channel and source chain.
func (r *TrustedRemotes) Authenticate(p *coordinator.Packet) error {
	trusted, ok, err := r.TrustedRemote(p.Channel, p.SrcChainID)
	if err != nil {
		return err
	}
	if !ok {
		return coordinator.Errorf(coordinator.CodeAuthentication,
			"no trusted remote for channel %d chain %s", p.Channel, p.SrcChainID)
	}
	if trusted != p.SrcAddress {
		return coordinator.Errorf(coordinator.CodeAuthentication,
			"source %s on chain %s is not the trusted remote %s", p.SrcAddress, p.SrcChainID, trusted)
	}
	return nil
}

// Destination returns the trusted remote as a send target, failing with a
// Configuration error if none is set.
func (r *TrustedRemotes) Destination(channel coordinator.Channel, chainID ids.ID) (common.Address, error) {
	trusted, ok, err := r.TrustedRemote(channel, chainID)
	if err != nil {
		return common.Address{}, err
	}
	if !ok {
		return common.Address{}, coordinator.Errorf(coordinator.CodeConfiguration,
			"no trusted remote for channel %d chain %s", channel, chainID)
	}
	return trusted, nil
}
