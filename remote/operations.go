// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package remote

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/payload"
)

// Lock debits amount from caller and asks the canonical chain to lock the
// same amount for caller. Nothing is debited or sent unless caller holds
// amount and nativeFee covers the transport fee. Returns the fee charged.
func (c *Coordinator) Lock(ctx context.Context, caller common.Address, amount, nativeFee *uint256.Int) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return nil, coordinator.Errorf(coordinator.CodeArithmetic, "lock amount is zero")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	req, err := c.prepare(ctx, caller, &payload.Lock{Beneficiary: caller, Amount: amount}, nativeFee)
	if err != nil {
		return nil, err
	}

	balance, err := c.config.Token.BalanceOf(caller)
	if err != nil {
		return nil, err
	}
	if balance.Lt(amount) {
		return nil, coordinator.Errorf(coordinator.CodeArithmetic,
			"insufficient balance to lock: have %s, need %s", balance, amount)
	}
	if err := c.config.Token.Debit(caller, amount); err != nil {
		return nil, err
	}

	fee, err := c.dispatch(ctx, req, payload.TypeLock)
	if err != nil {
		if creditErr := c.config.Token.Credit(caller, amount); creditErr != nil {
			return nil, fmt.Errorf("%w: failed to restore debit: %w", err, creditErr)
		}
		return nil, err
	}

	c.log.Debug("sent lock",
		log.String("chainID", c.chainID),
		log.Stringer("beneficiary", caller),
		log.Stringer("amount", amount),
	)
	return fee, nil
}

// QueueFees reports rewardAmount of reward token to the canonical chain.
// Only the booster may call it. When a reward token is configured the
// reward moves from the booster to the bridge delegate.
func (c *Coordinator) QueueFees(ctx context.Context, caller, originalSender common.Address, rewardAmount, nativeFee *uint256.Int) (*uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.onlyBooster(caller); err != nil {
		return nil, err
	}
	if rewardAmount == nil || rewardAmount.IsZero() {
		return nil, coordinator.Errorf(coordinator.CodeArithmetic, "reward amount is zero")
	}

	req, err := c.prepare(ctx, caller, &payload.QueueFees{OriginalSender: originalSender, RewardAmount: rewardAmount}, nativeFee)
	if err != nil {
		return nil, err
	}

	var delegate common.Address
	if c.config.RewardToken != nil {
		var ok bool
		delegate, ok, err = coordinator.GetAddress(c.state, bridgeDelegateKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, coordinator.Errorf(coordinator.CodeConfiguration, "bridge delegate is not set")
		}
		if err := c.config.RewardToken.Transfer(caller, delegate, rewardAmount); err != nil {
			return nil, err
		}
	}

	fee, err := c.dispatch(ctx, req, payload.TypeQueueFees)
	if err != nil {
		if c.config.RewardToken != nil {
			if restoreErr := c.config.RewardToken.Transfer(delegate, caller, rewardAmount); restoreErr != nil {
				return nil, fmt.Errorf("%w: failed to restore reward: %w", err, restoreErr)
			}
		}
		return nil, err
	}

	c.log.Debug("queued fees",
		log.String("chainID", c.chainID),
		log.Stringer("originalSender", originalSender),
		log.Stringer("rewardAmount", rewardAmount),
	)
	return fee, nil
}

// Mint moves amount scaled by the cached mint rate, rounded down, from the
// coordinator to to. Only the booster may call it.
func (c *Coordinator) Mint(caller, to common.Address, amount *uint256.Int) (*uint256.Int, error) {
	if amount == nil {
		return nil, coordinator.Errorf(coordinator.CodeArithmetic, "mint amount is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.onlyBooster(caller); err != nil {
		return nil, err
	}
	rate, err := c.mintRate()
	if err != nil {
		return nil, err
	}
	transferred, err := rate.Apply(amount)
	if err != nil {
		return nil, err
	}
	if transferred.IsZero() {
		return transferred, nil
	}
	if err := c.config.Token.Transfer(c.config.Address, to, transferred); err != nil {
		return nil, err
	}

	c.config.Metrics.AddMinted(c.chainID, transferred)
	c.log.Debug("minted",
		log.String("chainID", c.chainID),
		log.Stringer("to", to),
		log.Stringer("amount", amount),
		log.Stringer("transferred", transferred),
		log.Stringer("rate", rate),
	)
	return transferred, nil
}

// EstimateLockFee returns the native fee Lock requires.
func (c *Coordinator) EstimateLockFee(ctx context.Context, caller common.Address, amount *uint256.Int) (*uint256.Int, error) {
	return c.estimate(ctx, &payload.Lock{Beneficiary: caller, Amount: amount})
}

// EstimateQueueFeesFee returns the native fee QueueFees requires.
func (c *Coordinator) EstimateQueueFeesFee(ctx context.Context, originalSender common.Address, rewardAmount *uint256.Int) (*uint256.Int, error) {
	return c.estimate(ctx, &payload.QueueFees{OriginalSender: originalSender, RewardAmount: rewardAmount})
}

func (c *Coordinator) estimate(ctx context.Context, msg payload.Message) (*uint256.Int, error) {
	b, err := payload.Encode(msg)
	if err != nil {
		return nil, err
	}
	return c.config.Transport.EstimateFee(ctx, c.config.CanonicalChainID, b, c.gasLimit(msg.Type()))
}

// prepare builds the send request for msg and checks nativeFee covers it.
// It changes no state.
func (c *Coordinator) prepare(ctx context.Context, caller common.Address, msg payload.Message, nativeFee *uint256.Int) (coordinator.SendRequest, error) {
	peer, err := c.canonicalPeer()
	if err != nil {
		return coordinator.SendRequest{}, err
	}
	b, err := payload.Encode(msg)
	if err != nil {
		return coordinator.SendRequest{}, err
	}
	gasLimit := c.gasLimit(msg.Type())
	required, err := c.config.Transport.EstimateFee(ctx, c.config.CanonicalChainID, b, gasLimit)
	if err != nil {
		return coordinator.SendRequest{}, err
	}
	if err := coordinator.CheckFee(nativeFee, required); err != nil {
		return coordinator.SendRequest{}, err
	}
	return coordinator.SendRequest{
		DstChainID:    c.config.CanonicalChainID,
		DstAddress:    peer,
		Channel:       c.config.Channel,
		Payload:       b,
		RefundAddress: caller,
		Fee: coordinator.FeeConfig{
			NativeFee: nativeFee,
			GasLimit:  gasLimit,
		},
	}, nil
}

func (c *Coordinator) dispatch(ctx context.Context, req coordinator.SendRequest, t payload.MessageType) (*uint256.Int, error) {
	fee, err := c.config.Transport.Send(ctx, c.config.Address, req)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", t, err)
	}
	c.config.Metrics.Sent(c.chainID, req.DstChainID.String(), t.String())
	return fee, nil
}
