// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package payload encodes the messages exchanged between the canonical and
// remote coordinators.
//
// Every payload starts with a one byte Kind. KindTransfer payloads are plain
// token transfers handled by the token layer; KindCustom payloads carry a
// second byte naming the coordinator MessageType. The body is fixed width:
// addresses take 20 bytes and amounts 32 bytes, big endian.
//
// There is no version field. Changing a message shape requires a new
// MessageType value.
package payload

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/coordinator"
)

// Kind discriminates pass-through transfers from coordinator messages.
type Kind uint8

const (
	KindTransfer Kind = 0x00
	KindCustom   Kind = 0x01
)

// MessageType tags a coordinator message.
type MessageType uint8

const (
	TypeLock MessageType = iota
	TypeQueueFees
	TypeFeesCallback
)

// TypeTransfer is the pseudo type reported for pass-through transfers.
const TypeTransfer MessageType = 0xff

func (t MessageType) String() string {
	switch t {
	case TypeLock:
		return "lock"
	case TypeQueueFees:
		return "queue_fees"
	case TypeFeesCallback:
		return "fees_callback"
	case TypeTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// ParseMessageType is the inverse of MessageType.String.
func ParseMessageType(s string) (MessageType, error) {
	for _, t := range []MessageType{TypeLock, TypeQueueFees, TypeFeesCallback, TypeTransfer} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

const (
	addressLen = common.AddressLength
	amountLen  = 32

	transferLen = 1 + addressLen + amountLen
	lockLen     = 2 + addressLen + amountLen
	feesLen     = 2 + addressLen + amountLen
	callbackLen = 2 + amountLen + amountLen
)

var (
	ErrUnknownType   = fmt.Errorf("%w: unknown message type", coordinator.ErrMalformed)
	ErrTruncated     = fmt.Errorf("%w: truncated payload", coordinator.ErrMalformed)
	ErrTrailingBytes = fmt.Errorf("%w: trailing bytes", coordinator.ErrMalformed)

	errNilAmount = errors.New("nil amount")
)

// Message is a decoded payload.
type Message interface {
	// Type returns the message type, TypeTransfer for pass-through transfers.
	Type() MessageType

	// Bytes returns the wire encoding.
	Bytes() []byte

	// Verify checks the message is encodable.
	Verify() error
}

// Encode verifies m and returns its wire encoding.
func Encode(m Message) ([]byte, error) {
	if err := m.Verify(); err != nil {
		return nil, err
	}
	return m.Bytes(), nil
}

// IsCustom reports whether b carries a coordinator message.
func IsCustom(b []byte) bool {
	return len(b) > 0 && Kind(b[0]) == KindCustom
}

// TypeOf reads the message type without decoding the body.
func TypeOf(b []byte) (MessageType, error) {
	if len(b) < 1 {
		return 0, fmt.Errorf("%w: missing kind", ErrTruncated)
	}
	switch Kind(b[0]) {
	case KindTransfer:
		return TypeTransfer, nil
	case KindCustom:
	default:
		return 0, fmt.Errorf("%w: kind 0x%02x", ErrUnknownType, b[0])
	}
	if len(b) < 2 {
		return 0, fmt.Errorf("%w: missing message type", ErrTruncated)
	}
	t := MessageType(b[1])
	switch t {
	case TypeLock, TypeQueueFees, TypeFeesCallback:
		return t, nil
	default:
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownType, b[1])
	}
}

// Parse decodes a payload.
func Parse(b []byte) (Message, error) {
	t, err := TypeOf(b)
	if err != nil {
		return nil, err
	}
	var (
		m        Message
		parseErr error
	)
	switch t {
	case TypeTransfer:
		m, parseErr = parseTransfer(b)
	case TypeLock:
		m, parseErr = parseLock(b)
	case TypeQueueFees:
		m, parseErr = parseQueueFees(b)
	default:
		m, parseErr = parseFeesCallback(b)
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return m, nil
}

func checkLen(b []byte, want int) error {
	if len(b) < want {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrTruncated, len(b), want)
	}
	if len(b) > want {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrTrailingBytes, len(b), want)
	}
	return nil
}

func putAddress(buf []byte, offset int, a common.Address) int {
	copy(buf[offset:], a[:])
	return offset + addressLen
}

func putAmount(buf []byte, offset int, v *uint256.Int) int {
	b := v.Bytes32()
	copy(buf[offset:], b[:])
	return offset + amountLen
}

func readAddress(b []byte, offset int) (common.Address, int) {
	return common.BytesToAddress(b[offset : offset+addressLen]), offset + addressLen
}

func readAmount(b []byte, offset int) (*uint256.Int, int) {
	return new(uint256.Int).SetBytes(b[offset : offset+amountLen]), offset + amountLen
}
