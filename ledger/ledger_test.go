// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/coordinator"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
)

func TestTokenCreditDebit(t *testing.T) {
	require := require.New(t)

	token := NewToken("LUX", memdb.New())
	require.Equal("LUX", token.Symbol())

	require.NoError(token.Credit(alice, uint256.NewInt(100)))
	require.NoError(token.Debit(alice, uint256.NewInt(40)))

	balance, err := token.BalanceOf(alice)
	require.NoError(err)
	require.Equal(uint256.NewInt(60), balance)

	supply, err := token.TotalSupply()
	require.NoError(err)
	require.Equal(uint256.NewInt(60), supply)
}

func TestTokenInsufficientBalance(t *testing.T) {
	require := require.New(t)

	token := NewToken("LUX", memdb.New())
	require.NoError(token.Credit(alice, uint256.NewInt(10)))

	err := token.Debit(alice, uint256.NewInt(11))
	require.ErrorIs(err, coordinator.ErrArithmetic)

	err = token.Transfer(alice, bob, uint256.NewInt(11))
	require.ErrorIs(err, coordinator.ErrArithmetic)

	balance, err := token.BalanceOf(alice)
	require.NoError(err)
	require.Equal(uint256.NewInt(10), balance)

	balance, err = token.BalanceOf(bob)
	require.NoError(err)
	require.True(balance.IsZero())
}

func TestTokenTransfer(t *testing.T) {
	require := require.New(t)

	token := NewToken("LUX", memdb.New())
	require.NoError(token.Credit(alice, uint256.NewInt(10)))
	require.NoError(token.Transfer(alice, bob, uint256.NewInt(4)))

	balance, err := token.BalanceOf(bob)
	require.NoError(err)
	require.Equal(uint256.NewInt(4), balance)

	supply, err := token.TotalSupply()
	require.NoError(err)
	require.Equal(uint256.NewInt(10), supply)
}

func TestTokenPersists(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	require.NoError(NewToken("LUX", db).Credit(alice, uint256.NewInt(5)))

	balance, err := NewToken("LUX", db).BalanceOf(alice)
	require.NoError(err)
	require.Equal(uint256.NewInt(5), balance)
}

func TestLocker(t *testing.T) {
	require := require.New(t)

	locker := NewLocker(memdb.New())
	require.NoError(locker.Lock(alice, uint256.NewInt(3)))
	require.NoError(locker.Lock(alice, uint256.NewInt(4)))
	require.NoError(locker.Lock(bob, uint256.NewInt(1)))

	power, err := locker.VotingPower(alice)
	require.NoError(err)
	require.Equal(uint256.NewInt(7), power)

	total, err := locker.TotalLocked()
	require.NoError(err)
	require.Equal(uint256.NewInt(8), total)
}
