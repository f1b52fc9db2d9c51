// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// RateDecimals is the number of decimals of a MintRate.
const RateDecimals = 18

// RateUnit is the fixed-point scale of a MintRate (1e18).
var RateUnit = uint256.NewInt(1_000_000_000_000_000_000)

// MintRate is a fixed-point ratio of primary token per unit of secondary
// reward token, scaled by RateUnit. The zero value means "do not mint".
type MintRate struct {
	scaled uint256.Int
}

// NewMintRate computes mintAmount/rewardAmount. A zero rewardAmount is an
// ArithmeticError.
func NewMintRate(mintAmount, rewardAmount *uint256.Int) (MintRate, error) {
	if rewardAmount.IsZero() {
		return MintRate{}, Errorf(CodeArithmetic, "mint rate with zero reward amount")
	}
	scaled, err := MulDiv(mintAmount, RateUnit, rewardAmount)
	if err != nil {
		return MintRate{}, err
	}
	var r MintRate
	r.scaled.Set(scaled)
	return r, nil
}

// MintRateFromScaled wraps an already scaled value.
func MintRateFromScaled(scaled *uint256.Int) MintRate {
	var r MintRate
	r.scaled.Set(scaled)
	return r
}

// MintRateFromUint64 returns the whole-number rate n.
func MintRateFromUint64(n uint64) MintRate {
	var r MintRate
	r.scaled.Mul(uint256.NewInt(n), RateUnit)
	return r
}

// ParseMintRate parses a decimal string such as "1.25".
func ParseMintRate(s string) (MintRate, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > RateDecimals {
		return MintRate{}, fmt.Errorf("rate %q has more than %d decimals", s, RateDecimals)
	}
	digits := whole + frac + strings.Repeat("0", RateDecimals-len(frac))
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok || n.Sign() < 0 {
		return MintRate{}, fmt.Errorf("invalid rate %q", s)
	}
	scaled, overflow := uint256.FromBig(n)
	if overflow {
		return MintRate{}, fmt.Errorf("rate %q overflows", s)
	}
	return MintRateFromScaled(scaled), nil
}

// Scaled returns a copy of the fixed-point value.
func (r MintRate) Scaled() *uint256.Int {
	return new(uint256.Int).Set(&r.scaled)
}

// IsZero reports whether the rate mints nothing.
func (r MintRate) IsZero() bool {
	return r.scaled.IsZero()
}

// Apply returns floor(amount * r).
func (r MintRate) Apply(amount *uint256.Int) (*uint256.Int, error) {
	return MulDiv(amount, &r.scaled, RateUnit)
}

// Equal reports whether both rates are identical.
func (r MintRate) Equal(o MintRate) bool {
	return r.scaled.Eq(&o.scaled)
}

// String renders the rate as a decimal.
func (r MintRate) String() string {
	q, m := new(uint256.Int).DivMod(&r.scaled, RateUnit, new(uint256.Int))
	if m.IsZero() {
		return q.Dec()
	}
	frac := m.Dec()
	frac = strings.Repeat("0", RateDecimals-len(frac)) + frac
	return q.Dec() + "." + strings.TrimRight(frac, "0")
}
