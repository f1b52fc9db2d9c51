// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"github.com/holiman/uint256"
)

// Add returns a+b, failing on overflow
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, Errorf(CodeArithmetic, "%s + %s overflows", a, b)
	}
	return sum, nil
}

// Sub returns a-b, failing on underflow
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, Errorf(CodeArithmetic, "%s - %s underflows", a, b)
	}
	return diff, nil
}

// MulDiv returns floor(a*b/d) computed with a 512-bit intermediate.
func MulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, Errorf(CodeArithmetic, "division by zero")
	}
	q, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, Errorf(CodeArithmetic, "%s * %s / %s overflows", a, b, d)
	}
	return q, nil
}

// CheckFee verifies the attached native fee covers the required one.
// A nil attachment counts as zero.
func CheckFee(attached, required *uint256.Int) error {
	if attached == nil {
		attached = new(uint256.Int)
	}
	if attached.Lt(required) {
		return Errorf(CodeArithmetic, "insufficient native fee: attached %s, required %s", attached, required)
	}
	return nil
}

// Zero returns a new zero amount.
func Zero() *uint256.Int {
	return new(uint256.Int)
}
