// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"

	"github.com/luxfi/math/set"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/payload"
)

// Validate checks the configuration. It does not apply defaults.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelOff, LogLevelInfo:
	default:
		return fmt.Errorf("%w: %q", errUnknownLogLevel, c.LogLevel)
	}
	if c.Channel == 0 || c.BridgeChannel == 0 {
		return errZeroChannel
	}
	if c.Channel == c.BridgeChannel {
		return errSameChannel
	}
	if c.Owner == "" {
		return errMissingOwner
	}
	if _, err := ParseAddress(c.Owner); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if err := c.Canonical.Validate(); err != nil {
		return fmt.Errorf("canonical chain: %w", err)
	}
	if len(c.Remotes) == 0 {
		return errNoRemotes
	}

	names := set.NewSet[string](len(c.Remotes) + 1)
	names.Add(c.Canonical.Name)
	for i, r := range c.Remotes {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("remote chain %d: %w", i, err)
		}
		if names.Contains(r.Name) {
			return fmt.Errorf("%w: %q", errDuplicateChain, r.Name)
		}
		names.Add(r.Name)
	}

	if err := c.MintPolicy.Validate(); err != nil {
		return fmt.Errorf("mint policy: %w", err)
	}
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	for i, b := range c.Balances {
		if err := b.Validate(names); err != nil {
			return fmt.Errorf("balance %d: %w", i, err)
		}
	}
	for i, s := range c.Scenario {
		if err := c.validateStep(s); err != nil {
			return fmt.Errorf("scenario step %d: %w", i, err)
		}
	}
	return nil
}

func (c *CanonicalChain) Validate() error {
	if c.Name == "" {
		return errMissingChainName
	}
	for name, addr := range map[string]string{
		"coordinator":     c.Coordinator,
		"bridge-receiver": c.BridgeReceiver,
		"treasury":        c.Treasury,
	} {
		if _, err := ParseAddress(addr); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (r *RemoteChain) Validate() error {
	if r.Name == "" {
		return errMissingChainName
	}
	for name, addr := range map[string]string{
		"coordinator":     r.Coordinator,
		"booster":         r.Booster,
		"bridge-delegate": r.BridgeDelegate,
	} {
		if _, err := ParseAddress(addr); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (p *MintPolicy) Validate() error {
	switch p.Type {
	case PolicyFixed:
		_, err := coordinator.ParseMintRate(p.Rate)
		return err
	case PolicyTracked:
		if _, err := ParseAmount(p.SeedMint); err != nil {
			return err
		}
		_, err := ParseAmount(p.SeedReward)
		return err
	default:
		return fmt.Errorf("%w: %q", errUnknownPolicy, p.Type)
	}
}

func (n *Network) Validate() error {
	for _, fee := range []string{n.BaseFee, n.ByteFee, n.GasPrice} {
		if _, err := ParseAmount(fee); err != nil {
			return err
		}
	}
	return nil
}

func (b *Balance) Validate(chains set.Set[string]) error {
	if !chains.Contains(b.Chain) {
		return fmt.Errorf("%w: %q", errUnknownChain, b.Chain)
	}
	switch b.Token {
	case TokenPrimary, TokenReward:
	default:
		return fmt.Errorf("%w: %q", errUnknownToken, b.Token)
	}
	if _, err := ParseAddress(b.Account); err != nil {
		return err
	}
	_, err := ParseAmount(b.Amount)
	return err
}

func (c *Config) validateStep(s Step) error {
	switch s.Action {
	case ActionFlush:
		return nil
	case ActionDeliver:
		if s.MessageType == "" {
			return errUnknownDeliveries
		}
		_, err := payload.ParseMessageType(s.MessageType)
		return err
	case ActionEmit:
		amount, err := ParseAmount(s.Amount)
		if err != nil {
			return err
		}
		if amount.IsZero() {
			return errZeroEmission
		}
		return nil
	case ActionLock, ActionQueueFees, ActionMint, ActionBridge:
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, s.Action)
	}

	if _, ok := c.Remote(s.Chain); !ok {
		return fmt.Errorf("%w: %q", errUnknownChain, s.Chain)
	}
	if s.Action == ActionBridge {
		return nil
	}
	if _, err := ParseAddress(s.Account); err != nil {
		return err
	}
	_, err := ParseAmount(s.Amount)
	return err
}
