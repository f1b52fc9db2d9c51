// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/metrics"
	"github.com/luxfi/coordinator/payload"
)

var _ coordinator.Receiver = (*Receiver)(nil)

// Delegates is the canonical coordinator's view of the bridge delegates.
type Delegates interface {
	BridgeDelegate(remoteChainID ids.ID) (common.Address, bool, error)
	RecordSettlement(remoteChainID ids.ID, amount *uint256.Int) error
}

// ReceiverConfig configures the canonical side of a bridge delegate pair.
type ReceiverConfig struct {
	ChainID ids.ID
	Address common.Address
	Channel coordinator.Channel

	Delegates   Delegates
	RewardToken coordinator.Token
	Log         log.Logger
	Metrics     *metrics.CoordinatorMetrics
}

type Receiver struct {
	config  ReceiverConfig
	log     log.Logger
	chainID string
}

func NewReceiver(config ReceiverConfig) *Receiver {
	if config.Log == nil {
		config.Log = log.NewNoOpLogger()
	}
	return &Receiver{
		config:  config,
		log:     config.Log,
		chainID: config.ChainID.String(),
	}
}

func (r *Receiver) Address() common.Address {
	return r.config.Address
}

// Receive accepts a token transfer only from the bridge delegate configured
// for the packet's source chain. It credits the reward token and appends
// the amount to that chain's settled value.
func (r *Receiver) Receive(_ context.Context, p *coordinator.Packet) error {
	srcChainID := p.SrcChainID.String()
	amount, err := r.receive(p)
	if err != nil {
		r.config.Metrics.Rejected(r.chainID, srcChainID, coordinator.CodeOf(err).String())
		r.log.Warn("rejected bridge transfer",
			log.String("srcChainID", srcChainID),
			log.Stringer("srcAddress", p.SrcAddress),
			log.Err(err),
		)
		return err
	}
	r.config.Metrics.Received(r.chainID, srcChainID, payload.TypeTransfer.String())
	r.log.Info("settled bridged reward",
		log.String("srcChainID", srcChainID),
		log.Stringer("amount", amount),
	)
	return nil
}

func (r *Receiver) receive(p *coordinator.Packet) (*uint256.Int, error) {
	if p.DstChainID != r.config.ChainID || p.DstAddress != r.config.Address || p.Channel != r.config.Channel {
		return nil, coordinator.Errorf(coordinator.CodeMalformed,
			"packet for %s on %s delivered to bridge receiver", p.DstAddress, p.DstChainID)
	}
	delegate, ok, err := r.config.Delegates.BridgeDelegate(p.SrcChainID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, coordinator.Errorf(coordinator.CodeAuthentication, "no bridge delegate for chain %s", p.SrcChainID)
	}
	if p.SrcAddress != delegate {
		return nil, coordinator.Errorf(coordinator.CodeAuthentication,
			"source %s is not the bridge delegate %s of chain %s", p.SrcAddress, delegate, p.SrcChainID)
	}

	msg, err := payload.Parse(p.Payload)
	if err != nil {
		return nil, err
	}
	transfer, ok := msg.(*payload.TokenTransfer)
	if !ok {
		return nil, coordinator.Errorf(coordinator.CodeMalformed, "unexpected %s message on bridge", msg.Type())
	}

	if err := r.config.RewardToken.Credit(transfer.To, transfer.Amount); err != nil {
		return nil, err
	}
	if err := r.config.Delegates.RecordSettlement(p.SrcChainID, transfer.Amount); err != nil {
		if debitErr := r.config.RewardToken.Debit(transfer.To, transfer.Amount); debitErr != nil {
			return nil, fmt.Errorf("%w: failed to restore credit: %w", err, debitErr)
		}
		return nil, err
	}
	return transfer.Amount, nil
}
