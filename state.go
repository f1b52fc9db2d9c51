// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
)

// GetAmount reads a 32 byte big endian amount. Missing keys read as zero.
func GetAmount(db database.Database, key []byte) (*uint256.Int, error) {
	b, err := db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("corrupted amount at %x: %d bytes", key, len(b))
	}
	return new(uint256.Int).SetBytes(b), nil
}

// PutAmount writes amount as 32 big endian bytes.
func PutAmount(db database.Database, key []byte, amount *uint256.Int) error {
	b := amount.Bytes32()
	return db.Put(key, b[:])
}

// GetAddress reads an address. ok is false if the key is missing.
func GetAddress(db database.Database, key []byte) (common.Address, bool, error) {
	b, err := db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return common.Address{}, false, nil
	}
	if err != nil {
		return common.Address{}, false, err
	}
	if len(b) != common.AddressLength {
		return common.Address{}, false, fmt.Errorf("corrupted address at %x: %d bytes", key, len(b))
	}
	return common.BytesToAddress(b), true, nil
}

func PutAddress(db database.Database, key []byte, addr common.Address) error {
	return db.Put(key, addr.Bytes())
}
