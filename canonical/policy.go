// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package canonical

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/coordinator"
)

var (
	_ MintPolicy      = (*FixedRatePolicy)(nil)
	_ MintPolicy      = (*TrackedRatioPolicy)(nil)
	_ EmissionTracker = (*TrackedRatioPolicy)(nil)
)

// MintPolicy decides how much primary token a reported reward is worth.
type MintPolicy interface {
	// Quote returns the mint amount owed for rewardAmount reported by
	// chainID. It must not change the policy.
	Quote(chainID ids.ID, rewardAmount *uint256.Int) (*uint256.Int, error)
	// Record is called after the fee debt for rewardAmount is committed.
	// On error the policy is left unchanged.
	Record(chainID ids.ID, rewardAmount, mintAmount *uint256.Int) error
}

// EmissionTracker is implemented by policies whose quotes follow primary
// token emitted on the canonical chain.
type EmissionTracker interface {
	// AddEmission records amount of newly emitted primary token. On error
	// the policy is left unchanged.
	AddEmission(amount *uint256.Int) error
	// Ratio returns the cumulative mint/reward ratio.
	Ratio() (coordinator.MintRate, error)
}

// FixedRatePolicy quotes every reward at a configured rate.
type FixedRatePolicy struct {
	Rate coordinator.MintRate
}

func (p *FixedRatePolicy) Quote(_ ids.ID, rewardAmount *uint256.Int) (*uint256.Int, error) {
	return p.Rate.Apply(rewardAmount)
}

func (*FixedRatePolicy) Record(ids.ID, *uint256.Int, *uint256.Int) error { return nil }

// TrackedRatioPolicy quotes rewards at the cumulative mint/reward ratio
// observed across every remote chain. Emissions on the canonical chain move
// the ratio; recorded quotes keep it.
type TrackedRatioPolicy struct {
	mu       sync.RWMutex
	minted   uint256.Int
	rewarded uint256.Int
}

// NewTrackedRatioPolicy seeds the ratio with mint/reward.
func NewTrackedRatioPolicy(mint, reward *uint256.Int) *TrackedRatioPolicy {
	p := &TrackedRatioPolicy{}
	p.minted.Set(mint)
	p.rewarded.Set(reward)
	return p
}

func (p *TrackedRatioPolicy) Quote(_ ids.ID, rewardAmount *uint256.Int) (*uint256.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.rewarded.IsZero() {
		return new(uint256.Int), nil
	}
	return coordinator.MulDiv(rewardAmount, &p.minted, &p.rewarded)
}

func (p *TrackedRatioPolicy) Record(_ ids.ID, rewardAmount, mintAmount *uint256.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rewarded, err := coordinator.Add(&p.rewarded, rewardAmount)
	if err != nil {
		return err
	}
	minted, err := coordinator.Add(&p.minted, mintAmount)
	if err != nil {
		return err
	}
	p.rewarded.Set(rewarded)
	p.minted.Set(minted)
	return nil
}

// AddEmission records primary token emitted on the canonical chain.
func (p *TrackedRatioPolicy) AddEmission(amount *uint256.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	minted, err := coordinator.Add(&p.minted, amount)
	if err != nil {
		return err
	}
	p.minted.Set(minted)
	return nil
}

// Ratio returns the current cumulative ratio.
func (p *TrackedRatioPolicy) Ratio() (coordinator.MintRate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return coordinator.NewMintRate(&p.minted, &p.rewarded)
}
