// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
)

// FeeConfig describes how a send pays for delivery.
type FeeConfig struct {
	// NativeFee is the native currency attached by the caller. The
	// transport charges what it needs and refunds the rest.
	NativeFee *uint256.Int
	// GasLimit is the destination execution budget requested for this
	// message type.
	GasLimit uint64
}

// SendRequest is a single outbound message.
type SendRequest struct {
	DstChainID    ids.ID
	DstAddress    common.Address
	Channel       Channel
	Payload       []byte
	RefundAddress common.Address
	Fee           FeeConfig
}

// Transport sends payloads from one coordinator to its peer.
// The transport delivers at least once, eventually, and in order within a
// lane. It never retries a send on its own; failed destination execution is
// retried without charging the source again.
type Transport interface {
	// EstimateFee returns the native fee a send of payload to dst requires.
	EstimateFee(ctx context.Context, dstChainID ids.ID, payload []byte, gasLimit uint64) (*uint256.Int, error)
	// Send queues the payload and returns the native fee charged.
	Send(ctx context.Context, src common.Address, req SendRequest) (*uint256.Int, error)
}

// Receiver handles payloads delivered by a transport.
type Receiver interface {
	// Receive handles a delivered packet. Errors for which IsPermanent
	// reports true cause the packet to be dropped; any other error leaves it
	// stored for retry.
	Receive(ctx context.Context, packet *Packet) error
}
