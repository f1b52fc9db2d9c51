// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/coordinator"
)

var (
	owner    = common.HexToAddress("0x0e")
	peer     = common.HexToAddress("0x01")
	stranger = common.HexToAddress("0x02")
	chainA   = ids.ID{0xaa}
	chainB   = ids.ID{0xbb}
)

func newRegistry() *TrustedRemotes {
	return New(memdb.New(), coordinator.NewOwner(owner), log.NewNoOpLogger())
}

func TestSetTrustedRemote(t *testing.T) {
	require := require.New(t)

	r := newRegistry()
	require.False(r.IsTrusted(1, chainA, peer))

	require.NoError(r.SetTrustedRemote(owner, 1, chainA, peer))
	require.True(r.IsTrusted(1, chainA, peer))
	require.False(r.IsTrusted(1, chainA, stranger))
	require.False(r.IsTrusted(2, chainA, peer))
	require.False(r.IsTrusted(1, chainB, peer))

	// idempotent
	require.NoError(r.SetTrustedRemote(owner, 1, chainA, peer))
	require.True(r.IsTrusted(1, chainA, peer))

	// overwrite
	require.NoError(r.SetTrustedRemote(owner, 1, chainA, stranger))
	require.True(r.IsTrusted(1, chainA, stranger))
	require.False(r.IsTrusted(1, chainA, peer))
}

func TestSetTrustedRemoteRequiresAuthority(t *testing.T) {
	require := require.New(t)

	r := newRegistry()
	err := r.SetTrustedRemote(stranger, 1, chainA, stranger)
	require.ErrorIs(err, coordinator.ErrUnauthorizedCaller)
	require.False(r.IsTrusted(1, chainA, stranger))

	err = r.SetTrustedRemote(owner, 1, chainA, common.Address{})
	require.ErrorIs(err, coordinator.ErrConfiguration)
}

func TestAuthenticate(t *testing.T) {
	require := require.New(t)

	r := newRegistry()
	p := &coordinator.Packet{SrcChainID: chainA, SrcAddress: peer, Channel: 1}

	err := r.Authenticate(p)
	require.ErrorIs(err, coordinator.ErrAuthentication)
	require.True(coordinator.IsPermanent(err))

	require.NoError(r.SetTrustedRemote(owner, 1, chainA, peer))
	require.NoError(r.Authenticate(p))

	p.SrcAddress = stranger
	require.ErrorIs(r.Authenticate(p), coordinator.ErrAuthentication)
}

func TestDestination(t *testing.T) {
	require := require.New(t)

	r := newRegistry()
	_, err := r.Destination(1, chainA)
	require.ErrorIs(err, coordinator.ErrConfiguration)

	require.NoError(r.SetTrustedRemote(owner, 1, chainA, peer))
	dst, err := r.Destination(1, chainA)
	require.NoError(err)
	require.Equal(peer, dst)
}
