// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"context"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
)

var _ Transport = (*FakeTransport)(nil)

// FakeTransport is a test implementation of Transport that records every
// send and charges a flat fee.
type FakeTransport struct {
	Fee     *uint256.Int
	SendErr error

	mu   sync.Mutex
	sent []SendRequest
}

func (f *FakeTransport) EstimateFee(context.Context, ids.ID, []byte, uint64) (*uint256.Int, error) {
	return f.fee(), nil
}

func (f *FakeTransport) Send(_ context.Context, _ common.Address, req SendRequest) (*uint256.Int, error) {
	if f.SendErr != nil {
		return nil, f.SendErr
	}
	fee := f.fee()
	if err := CheckFee(req.Fee.NativeFee, fee); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return fee, nil
}

// Sent returns a copy of every recorded send.
func (f *FakeTransport) Sent() []SendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SendRequest, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *FakeTransport) fee() *uint256.Int {
	if f.Fee == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(f.Fee)
}
