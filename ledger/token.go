// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger implements the database backed token and lock collaborators
// used by the coordinators.
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
	_ coordinator.Token = (*Token)(nil)

	balancePrefix = []byte("balance")
	metaPrefix    = []byte("meta")
	supplyKey     = []byte("supply")
)

// Token is a fungible token ledger. Credit mints and Debit burns, so the
// total supply always equals the sum of balances.
type Token struct {
	symbol string

	mu       sync.RWMutex
	db       *versiondb.Database
	balances database.Database
	meta     database.Database
}

// NewToken returns a token whose state lives in db.
func NewToken(symbol string, db database.Database) *Token {
	vdb := versiondb.New(db)
	return &Token{
		symbol:   symbol,
		db:       vdb,
		balances: prefixdb.New(balancePrefix, vdb),
		meta:     prefixdb.New(metaPrefix, vdb),
	}
}

func (t *Token) Symbol() string {
	return t.symbol
}

func (t *Token) BalanceOf(account common.Address) (*uint256.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return coordinator.GetAmount(t.balances, account.Bytes())
}

func (t *Token) TotalSupply() (*uint256.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return coordinator.GetAmount(t.meta, supplyKey)
}

func (t *Token) Credit(account common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.commit(func() error {
		if err := t.add(account, amount); err != nil {
			return err
		}
		return t.adjustSupply(amount, true)
	})
}

func (t *Token) Debit(account common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.commit(func() error {
		if err := t.sub(account, amount); err != nil {
			return err
		}
		return t.adjustSupply(amount, false)
	})
}

func (t *Token) Transfer(from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.commit(func() error {
		if err := t.sub(from, amount); err != nil {
			return err
		}
		return t.add(to, amount)
	})
}

// commit applies f atomically.
func (t *Token) commit(f func() error) error {
	if err := f(); err != nil {
		t.db.Abort()
		return err
	}
	return t.db.Commit()
}

func (t *Token) add(account common.Address, amount *uint256.Int) error {
	balance, err := coordinator.GetAmount(t.balances, account.Bytes())
	if err != nil {
		return err
	}
	balance, err = coordinator.Add(balance, amount)
	if err != nil {
		return err
	}
	return coordinator.PutAmount(t.balances, account.Bytes(), balance)
}

func (t *Token) sub(account common.Address, amount *uint256.Int) error {
	balance, err := coordinator.GetAmount(t.balances, account.Bytes())
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return coordinator.Errorf(coordinator.CodeArithmetic,
			"insufficient %s balance for %s: have %s, need %s", t.symbol, account, balance, amount)
	}
	return coordinator.PutAmount(t.balances, account.Bytes(), balance.Sub(balance, amount))
}

func (t *Token) adjustSupply(amount *uint256.Int, increase bool) error {
	supply, err := coordinator.GetAmount(t.meta, supplyKey)
	if err != nil {
		return err
	}
	if increase {
		supply, err = coordinator.Add(supply, amount)
	} else {
		supply, err = coordinator.Sub(supply, amount)
	}
	if err != nil {
		return err
	}
	return coordinator.PutAmount(t.meta, supplyKey, supply)
}
