// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"sync"

	"github.com/luxfi/geth/common"
)

var _ Authority = (*Owner)(nil)

// Authority gates configuration operations.
type Authority interface {
	// Authorize returns an UnauthorizedCaller error unless caller holds the
	// configuration capability.
	Authorize(caller common.Address) error
}

// Owner is a single-address Authority.
type Owner struct {
	mu    sync.RWMutex
	owner common.Address
}

// NewOwner returns an Authority held by owner.
func NewOwner(owner common.Address) *Owner {
	return &Owner{owner: owner}
}

func (o *Owner) Authorize(caller common.Address) error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.owner == (common.Address{}) || caller != o.owner {
		return Errorf(CodeUnauthorizedCaller, "%s is not the owner", caller)
	}
	return nil
}

// Address returns the current owner.
func (o *Owner) Address() common.Address {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.owner
}

// TransferOwnership hands the capability to newOwner.
func (o *Owner) TransferOwnership(caller, newOwner common.Address) error {
	if err := o.Authorize(caller); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return Errorf(CodeConfiguration, "new owner is the zero address")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.owner = newOwner
	return nil
}
