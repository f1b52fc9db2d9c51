// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"

	"github.com/luxfi/coordinator"
)

var _ coordinator.Transport = (*Endpoint)(nil)

// Endpoint is the network as seen from one chain.
type Endpoint struct {
	network *Network
	chainID ids.ID
}

func (e *Endpoint) ChainID() ids.ID {
	return e.chainID
}

func (e *Endpoint) EstimateFee(_ context.Context, dstChainID ids.ID, payload []byte, gasLimit uint64) (*uint256.Int, error) {
	return e.network.estimate(dstChainID, payload, gasLimit)
}

func (e *Endpoint) Send(_ context.Context, src common.Address, req coordinator.SendRequest) (*uint256.Int, error) {
	return e.network.send(e.chainID, src, req)
}
