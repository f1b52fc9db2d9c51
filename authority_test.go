// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

func TestOwner(t *testing.T) {
	require := require.New(t)

	owner := common.HexToAddress("0x0e")
	next := common.HexToAddress("0x0f")
	o := NewOwner(owner)

	require.NoError(o.Authorize(owner))
	require.ErrorIs(o.Authorize(next), ErrUnauthorizedCaller)

	require.ErrorIs(o.TransferOwnership(next, next), ErrUnauthorizedCaller)
	require.ErrorIs(o.TransferOwnership(owner, common.Address{}), ErrConfiguration)
	require.NoError(o.TransferOwnership(owner, next))
	require.Equal(next, o.Address())
	require.ErrorIs(o.Authorize(owner), ErrUnauthorizedCaller)

	// An unowned authority authorizes nobody, not even the zero address.
	require.ErrorIs(NewOwner(common.Address{}).Authorize(common.Address{}), ErrUnauthorizedCaller)
}
