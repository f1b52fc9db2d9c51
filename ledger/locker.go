// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/coordinator"
)

var (
	_ coordinator.Locker = (*Locker)(nil)

	lockedPrefix   = []byte("locked")
	totalLockedKey = []byte("totalLocked")
)

// Locker tracks balances locked on the canonical chain. Locked balance is
// voting power.
type Locker struct {
	mu     sync.RWMutex
	db     *versiondb.Database
	locked database.Database
}

func NewLocker(db database.Database) *Locker {
	vdb := versiondb.New(db)
	return &Locker{
		db:     vdb,
		locked: prefixdb.New(lockedPrefix, vdb),
	}
}

// Lock adds amount to beneficiary's locked balance.
func (l *Locker) Lock(beneficiary common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.lock(beneficiary, amount); err != nil {
		l.db.Abort()
		return err
	}
	return l.db.Commit()
}

func (l *Locker) lock(beneficiary common.Address, amount *uint256.Int) error {
	balance, err := coordinator.GetAmount(l.locked, beneficiary.Bytes())
	if err != nil {
		return err
	}
	if balance, err = coordinator.Add(balance, amount); err != nil {
		return err
	}
	total, err := coordinator.GetAmount(l.db, totalLockedKey)
	if err != nil {
		return err
	}
	if total, err = coordinator.Add(total, amount); err != nil {
		return err
	}
	if err := coordinator.PutAmount(l.locked, beneficiary.Bytes(), balance); err != nil {
		return err
	}
	return coordinator.PutAmount(l.db, totalLockedKey, total)
}

// VotingPower returns the locked balance of account.
func (l *Locker) VotingPower(account common.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return coordinator.GetAmount(l.locked, account.Bytes())
}

func (l *Locker) TotalLocked() (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return coordinator.GetAmount(l.db, totalLockedKey)
}
