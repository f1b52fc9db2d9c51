// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package remote

import (
	"context"

	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/payload"
)

// Receive authenticates p and dispatches on its discriminant. Pass-through
// transfers credit the recipient; FeesCallback replaces the mint rate. Any
// other coordinator message is rejected as malformed.
func (c *Coordinator) Receive(_ context.Context, p *coordinator.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	srcChainID := p.SrcChainID.String()
	msgType, err := c.receive(p)
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

func (c *Coordinator) receive(p *coordinator.Packet) (payload.MessageType, error) {
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
	case *payload.TokenTransfer:
		err = c.config.Token.Credit(m.To, m.Amount)
	case *payload.FeesCallback:
		err = c.onFeesCallback(m)
	default:
		err = coordinator.Errorf(coordinator.CodeMalformed, "unexpected %s message", msg.Type())
	}
	return msg.Type(), err
}

func (c *Coordinator) onFeesCallback(m *payload.FeesCallback) error {
	rate, err := coordinator.NewMintRate(m.MintAmount, m.RewardAmount)
	if err != nil {
		return err
	}
	if err := c.commit(func() error {
		return coordinator.PutAmount(c.state, mintRateKey, rate.Scaled())
	}); err != nil {
		return err
	}

	c.config.Metrics.SetMintRate(c.chainID, rate.Scaled())
	c.log.Info("updated mint rate",
		log.String("chainID", c.chainID),
		log.Stringer("mintAmount", m.MintAmount),
		log.Stringer("rewardAmount", m.RewardAmount),
		log.Stringer("rate", rate),
	)
	return nil
}
