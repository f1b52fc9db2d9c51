// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"github.com/luxfi/geth/rlp"
)

// CodecImpl is used for serializing/deserializing persisted records
type CodecImpl struct{}

// Codec is the default codec instance
var Codec = &CodecImpl{}

// Marshal serializes the value
func (c *CodecImpl) Marshal(v interface{}) ([]byte, error) {
	return rlp.EncodeToBytes(v)
}

// Unmarshal deserializes the bytes into v
func (c *CodecImpl) Unmarshal(b []byte, v interface{}) error {
	return rlp.DecodeBytes(b, v)
}
