// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Token is the accounting collaborator. Coordinators never hold balances
// themselves; they move value through a Token.
type Token interface {
	BalanceOf(account common.Address) (*uint256.Int, error)
	// Debit removes amount from account, failing with an Arithmetic error if
	// the balance is insufficient.
	Debit(account common.Address, amount *uint256.Int) error
	Credit(account common.Address, amount *uint256.Int) error
	Transfer(from, to common.Address, amount *uint256.Int) error
}

// Locker credits locked balance (voting power) on the canonical chain.
type Locker interface {
	Lock(beneficiary common.Address, amount *uint256.Int) error
}
