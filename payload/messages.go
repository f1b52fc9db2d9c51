// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package payload

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

var (
	_ Message = (*TokenTransfer)(nil)
	_ Message = (*Lock)(nil)
	_ Message = (*QueueFees)(nil)
	_ Message = (*FeesCallback)(nil)
)

// TokenTransfer moves Amount of the bridged token to To on the destination.
type TokenTransfer struct {
	To     common.Address
	Amount *uint256.Int
}

func (*TokenTransfer) Type() MessageType { return TypeTransfer }

func (m *TokenTransfer) Verify() error {
	if m.Amount == nil {
		return fmt.Errorf("transfer: %w", errNilAmount)
	}
	return nil
}

func (m *TokenTransfer) Bytes() []byte {
	buf := make([]byte, transferLen)
	buf[0] = byte(KindTransfer)
	offset := putAddress(buf, 1, m.To)
	putAmount(buf, offset, m.Amount)
	return buf
}

func parseTransfer(b []byte) (*TokenTransfer, error) {
	if err := checkLen(b, transferLen); err != nil {
		return nil, err
	}
	m := &TokenTransfer{}
	offset := 1
	m.To, offset = readAddress(b, offset)
	m.Amount, _ = readAmount(b, offset)
	return m, nil
}

// Lock asks the canonical chain to lock Amount for Beneficiary. The remote
// chain has already debited the amount.
type Lock struct {
	Beneficiary common.Address
	Amount      *uint256.Int
}

func (*Lock) Type() MessageType { return TypeLock }

func (m *Lock) Verify() error {
	if m.Amount == nil {
		return fmt.Errorf("lock: %w", errNilAmount)
	}
	return nil
}

func (m *Lock) Bytes() []byte {
	buf := make([]byte, lockLen)
	buf[0] = byte(KindCustom)
	buf[1] = byte(TypeLock)
	offset := putAddress(buf, 2, m.Beneficiary)
	putAmount(buf, offset, m.Amount)
	return buf
}

func parseLock(b []byte) (*Lock, error) {
	if err := checkLen(b, lockLen); err != nil {
		return nil, err
	}
	m := &Lock{}
	offset := 2
	m.Beneficiary, offset = readAddress(b, offset)
	m.Amount, _ = readAmount(b, offset)
	return m, nil
}

// QueueFees reports RewardAmount of secondary reward token accrued on the
// remote chain.
type QueueFees struct {
	OriginalSender common.Address
	RewardAmount   *uint256.Int
}

func (*QueueFees) Type() MessageType { return TypeQueueFees }

func (m *QueueFees) Verify() error {
	if m.RewardAmount == nil {
		return fmt.Errorf("queue fees: %w", errNilAmount)
	}
	return nil
}

func (m *QueueFees) Bytes() []byte {
	buf := make([]byte, feesLen)
	buf[0] = byte(KindCustom)
	buf[1] = byte(TypeQueueFees)
	offset := putAddress(buf, 2, m.OriginalSender)
	putAmount(buf, offset, m.RewardAmount)
	return buf
}

func parseQueueFees(b []byte) (*QueueFees, error) {
	if err := checkLen(b, feesLen); err != nil {
		return nil, err
	}
	m := &QueueFees{}
	offset := 2
	m.OriginalSender, offset = readAddress(b, offset)
	m.RewardAmount, _ = readAmount(b, offset)
	return m, nil
}

// FeesCallback tells the remote chain how much primary token corresponds to
// how much secondary reward token.
type FeesCallback struct {
	MintAmount   *uint256.Int
	RewardAmount *uint256.Int
}

func (*FeesCallback) Type() MessageType { return TypeFeesCallback }

func (m *FeesCallback) Verify() error {
	if m.MintAmount == nil || m.RewardAmount == nil {
		return fmt.Errorf("fees callback: %w", errNilAmount)
	}
	return nil
}

func (m *FeesCallback) Bytes() []byte {
	buf := make([]byte, callbackLen)
	buf[0] = byte(KindCustom)
	buf[1] = byte(TypeFeesCallback)
	offset := putAmount(buf, 2, m.MintAmount)
	putAmount(buf, offset, m.RewardAmount)
	return buf
}

func parseFeesCallback(b []byte) (*FeesCallback, error) {
	if err := checkLen(b, callbackLen); err != nil {
		return nil, err
	}
	m := &FeesCallback{}
	offset := 2
	m.MintAmount, offset = readAmount(b, offset)
	m.RewardAmount, _ = readAmount(b, offset)
	return m, nil
}
