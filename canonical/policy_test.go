// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package canonical

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/coordinator"
)

func TestFixedRatePolicy(t *testing.T) {
	require := require.New(t)

	rate, err := coordinator.ParseMintRate("1.5")
	require.NoError(err)
	p := &FixedRatePolicy{Rate: rate}

	mint, err := p.Quote(chainA, uint256.NewInt(3))
	require.NoError(err)
	require.Equal(uint256.NewInt(4), mint)
}

func TestTrackedRatioPolicy(t *testing.T) {
	require := require.New(t)

	p := NewTrackedRatioPolicy(uint256.NewInt(200), uint256.NewInt(100))

	mint, err := p.Quote(chainA, uint256.NewInt(10))
	require.NoError(err)
	require.Equal(uint256.NewInt(20), mint)
	require.NoError(p.Record(chainA, uint256.NewInt(10), mint))

	ratio, err := p.Ratio()
	require.NoError(err)
	require.True(ratio.Equal(coordinator.MintRateFromUint64(2)))

	// emissions on the canonical chain raise the ratio for every chain
	require.NoError(p.AddEmission(uint256.NewInt(110)))
	mint, err = p.Quote(chainB, uint256.NewInt(10))
	require.NoError(err)
	require.Equal(uint256.NewInt(30), mint)
}

func TestTrackedRatioPolicyUnseeded(t *testing.T) {
	require := require.New(t)

	p := NewTrackedRatioPolicy(uint256.NewInt(0), uint256.NewInt(0))
	mint, err := p.Quote(chainA, uint256.NewInt(10))
	require.NoError(err)
	require.True(mint.IsZero())

	_, err = p.Ratio()
	require.ErrorIs(err, coordinator.ErrArithmetic)
}

func TestTrackedRatioPolicyOverflow(t *testing.T) {
	require := require.New(t)

	maxMint := new(uint256.Int).SetAllOne()
	p := NewTrackedRatioPolicy(maxMint, uint256.NewInt(1))

	err := p.Record(chainA, uint256.NewInt(1), uint256.NewInt(1))
	require.ErrorIs(err, coordinator.ErrArithmetic)
	require.ErrorIs(p.AddEmission(uint256.NewInt(1)), coordinator.ErrArithmetic)

	// the ratio is untouched
	mint, err := p.Quote(chainA, uint256.NewInt(1))
	require.NoError(err)
	require.Equal(maxMint, mint)
}
