// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package canonical

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/payload"
)

// Receive authenticates p and applies the Lock or QueueFees it carries.
// Neither is idempotent: a redelivered packet is applied again.
func (c *Coordinator) Receive(ctx context.Context, p *coordinator.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	srcChainID := p.SrcChainID.String()
	msgType, err := c.receive(ctx, p)
	if err != nil {
		c.config.Metrics.Rejected(c.chainID, srcChainID, coordinator.CodeOf(err).String())
		c.log.Warn("rejected message",
			log.String("chainID", c.chainID),
			log.String("srcChainID", srcChainID),
			log.Stringer("srcAddress", p.SrcAddress),
			log.Uint64("nonce", p.Nonce),
			log.Err(err),
		)
		return err
	}
	c.config.Metrics.Received(c.chainID, srcChainID, msgType.String())
	return nil
}

func (c *Coordinator) receive(ctx context.Context, p *coordinator.Packet) (payload.MessageType, error) {
	if p.DstChainID != c.config.ChainID || p.DstAddress != c.config.Address {
		return 0, coordinator.Errorf(coordinator.CodeMalformed,
			"packet for %s on %s delivered to %s", p.DstAddress, p.DstChainID, c.config.Address)
	}
	if err := c.remotes.Authenticate(p); err != nil {
		return 0, err
	}
	msg, err := payload.Parse(p.Payload)
	if err != nil {
		return 0, err
	}

	switch m := msg.(type) {
	case *payload.Lock:
		err = c.config.Locker.Lock(m.Beneficiary, m.Amount)
		if err == nil {
			c.log.Debug("locked",
				log.Stringer("srcChainID", p.SrcChainID),
				log.Stringer("beneficiary", m.Beneficiary),
				log.Stringer("amount", m.Amount),
			)
		}
	case *payload.QueueFees:
		err = c.onQueueFees(ctx, p.SrcChainID, m)
	default:
		err = coordinator.Errorf(coordinator.CodeMalformed, "unexpected %s message", msg.Type())
	}
	return msg.Type(), err
}

// onQueueFees adds the reward to the source chain's fee debt, reports the
// quoted mint amount back with FeesCallback and then ships that amount to
// the remote coordinator. FeesCallback is always sent before the value
// transfer. Nothing is committed unless the escrow covers the mint amount
// and both sends succeed.
func (c *Coordinator) onQueueFees(ctx context.Context, src ids.ID, m *payload.QueueFees) error {
	if m.RewardAmount.IsZero() {
		return coordinator.Errorf(coordinator.CodeArithmetic, "zero reward amount queued by chain %s", src)
	}
	l2, ok, err := coordinator.GetAddress(c.l2Coordinators, src[:])
	if err != nil {
		return err
	}
	if !ok {
		return coordinator.Errorf(coordinator.CodeConfiguration, "l2 coordinator for chain %s is not set", src)
	}
	mintAmount, err := c.config.Policy.Quote(src, m.RewardAmount)
	if err != nil {
		return err
	}

	var debt *uint256.Int
	if err := c.commit(func() error {
		current, err := coordinator.GetAmount(c.feeDebt, src[:])
		if err != nil {
			return err
		}
		debt, err = coordinator.Add(current, m.RewardAmount)
		if err != nil {
			return err
		}
		if err := coordinator.PutAmount(c.feeDebt, src[:], debt); err != nil {
			return err
		}

		// Debit first so an empty escrow rejects before anything is sent.
		if !mintAmount.IsZero() {
			if err := c.config.Token.Debit(c.config.Address, mintAmount); err != nil {
				return err
			}
		}
		restore := func(err error) error {
			if mintAmount.IsZero() {
				return err
			}
			if creditErr := c.config.Token.Credit(c.config.Address, mintAmount); creditErr != nil {
				return fmt.Errorf("%w: failed to restore debit: %w", err, creditErr)
			}
			return err
		}

		callback := &payload.FeesCallback{MintAmount: mintAmount, RewardAmount: m.RewardAmount}
		if err := c.send(ctx, src, l2, callback); err != nil {
			return restore(err)
		}
		if mintAmount.IsZero() {
			return nil
		}
		if err := c.send(ctx, src, l2, &payload.TokenTransfer{To: l2, Amount: mintAmount}); err != nil {
			return restore(err)
		}
		return nil
	}); err != nil {
		return err
	}

	// The debt is committed, so a policy that cannot absorb the flow must
	// not fail the delivery.
	if err := c.config.Policy.Record(src, m.RewardAmount, mintAmount); err != nil {
		c.log.Warn("mint policy rejected fee flow",
			log.Stringer("srcChainID", src),
			log.Stringer("rewardAmount", m.RewardAmount),
			log.Stringer("mintAmount", mintAmount),
			log.Err(err),
		)
	}
	c.observeRate()
	c.config.Metrics.SetFeeDebt(c.chainID, src.String(), debt)
	c.log.Info("queued fees",
		log.Stringer("srcChainID", src),
		log.Stringer("originalSender", m.OriginalSender),
		log.Stringer("rewardAmount", m.RewardAmount),
		log.Stringer("mintAmount", mintAmount),
		log.Stringer("feeDebt", debt),
	)
	return nil
}

func (c *Coordinator) send(ctx context.Context, dstChainID ids.ID, dst common.Address, msg payload.Message) error {
	b, err := payload.Encode(msg)
	if err != nil {
		return err
	}
	gasLimit := c.config.GasLimits[msg.Type()]
	fee, err := c.config.Transport.EstimateFee(ctx, dstChainID, b, gasLimit)
	if err != nil {
		return err
	}
	if _, err := c.config.Transport.Send(ctx, c.config.Address, coordinator.SendRequest{
		DstChainID:    dstChainID,
		DstAddress:    dst,
		Channel:       c.config.Channel,
		Payload:       b,
		RefundAddress: c.config.Address,
		Fee: coordinator.FeeConfig{
			NativeFee: fee,
			GasLimit:  gasLimit,
		},
	}); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Type(), err)
	}
	c.config.Metrics.Sent(c.chainID, dstChainID.String(), msg.Type().String())
	return nil
}
