// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge implements the bridge delegate pair. The sender on a remote
// chain ships the reward token it has accumulated to the receiver on the
// canonical chain, separately from the coordinators' control messages.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/payload"
)

// SenderConfig configures the remote side of a bridge delegate pair.
type SenderConfig struct {
	ChainID          ids.ID
	CanonicalChainID ids.ID
	// Address is the bridge delegate address on the remote chain. The remote
	// coordinator moves queued rewards here.
	Address common.Address
	// Receiver is the bridge receiver on the canonical chain.
	Receiver common.Address
	// Beneficiary is credited with the bridged reward on the canonical chain.
	Beneficiary common.Address
	Channel     coordinator.Channel
	GasLimit    uint64

	Transport   coordinator.Transport
	RewardToken coordinator.Token
	Log         log.Logger
}

type Sender struct {
	config SenderConfig
	log    log.Logger

	mu sync.Mutex
}

func NewSender(config SenderConfig) *Sender {
	if config.Log == nil {
		config.Log = log.NewNoOpLogger()
	}
	return &Sender{
		config: config,
		log:    config.Log,
	}
}

func (s *Sender) Address() common.Address {
	return s.config.Address
}

// EstimateFee returns the native fee Bridge requires to ship the current
// balance.
func (s *Sender) EstimateFee(ctx context.Context) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, err := s.config.RewardToken.BalanceOf(s.config.Address)
	if err != nil {
		return nil, err
	}
	b, err := payload.Encode(&payload.TokenTransfer{To: s.config.Beneficiary, Amount: amount})
	if err != nil {
		return nil, err
	}
	return s.config.Transport.EstimateFee(ctx, s.config.CanonicalChainID, b, s.config.GasLimit)
}

// Bridge ships the delegate's whole reward token balance to the canonical
// chain and returns the amount shipped. The balance is restored if the send
// fails.
func (s *Sender) Bridge(ctx context.Context, nativeFee *uint256.Int) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, err := s.config.RewardToken.BalanceOf(s.config.Address)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return amount, nil
	}

	b, err := payload.Encode(&payload.TokenTransfer{To: s.config.Beneficiary, Amount: amount})
	if err != nil {
		return nil, err
	}
	required, err := s.config.Transport.EstimateFee(ctx, s.config.CanonicalChainID, b, s.config.GasLimit)
	if err != nil {
		return nil, err
	}
	if err := coordinator.CheckFee(nativeFee, required); err != nil {
		return nil, err
	}

	if err := s.config.RewardToken.Debit(s.config.Address, amount); err != nil {
		return nil, err
	}
	_, err = s.config.Transport.Send(ctx, s.config.Address, coordinator.SendRequest{
		DstChainID:    s.config.CanonicalChainID,
		DstAddress:    s.config.Receiver,
		Channel:       s.config.Channel,
		Payload:       b,
		RefundAddress: s.config.Address,
		Fee: coordinator.FeeConfig{
			NativeFee: nativeFee,
			GasLimit:  s.config.GasLimit,
		},
	})
	if err != nil {
		if creditErr := s.config.RewardToken.Credit(s.config.Address, amount); creditErr != nil {
			return nil, fmt.Errorf("failed to bridge: %w: failed to restore balance: %w", err, creditErr)
		}
		return nil, fmt.Errorf("failed to bridge: %w", err)
	}

	s.log.Info("bridged reward",
		log.Stringer("chainID", s.config.ChainID),
		log.Stringer("amount", amount),
	)
	return amount, nil
}
