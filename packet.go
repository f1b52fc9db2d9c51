// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"errors"
	"fmt"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
)

const (
	KiB            = 1024
	MaxPayloadSize = 10 * KiB
)

var ErrInvalidPacket = errors.New("invalid packet")

// Channel identifies a logical lane between two coordinators. Trust is
// registered per (channel, chain) pair.
type Channel uint16

// Packet is a payload in flight between two chains. The transport orders
// packets by Nonce within a (SrcChainID, SrcAddress, DstChainID, Channel)
// lane.
type Packet struct {
	SrcChainID ids.ID
	SrcAddress common.Address
	DstChainID ids.ID
	DstAddress common.Address
	Channel    Channel
	Nonce      uint64
	Payload    []byte
}

// Verify checks the packet's size bound.
func (p *Packet) Verify() error {
	if len(p.Payload) == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidPacket)
	}
	if len(p.Payload) > MaxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d", ErrInvalidPacket, len(p.Payload), MaxPayloadSize)
	}
	return nil
}

// Bytes returns the byte representation of the packet
func (p *Packet) Bytes() []byte {
	b, _ := Codec.Marshal(p)
	return b
}

// ID returns the hash of the packet
func (p *Packet) ID() ids.ID {
	return ids.ID(hash.ComputeHash256Array(p.Bytes()))
}

// ParsePacket parses a packet from bytes
func ParsePacket(b []byte) (*Packet, error) {
	p := &Packet{}
	if err := Codec.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal packet: %w", err)
	}
	if err := p.Verify(); err != nil {
		return nil, err
	}
	return p, nil
}
