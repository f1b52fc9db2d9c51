// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/utils"
)

var (
	ErrNotDelivered = errors.New("packet was never delivered")

	errForceResumed = errors.New("force resumed")
)

// All matches every packet.
func All(*coordinator.Packet) bool { return true }

// Flush delivers packets, including ones sent during delivery, until every
// lane is empty or blocked. It returns the number of packets applied.
func (n *Network) Flush(ctx context.Context) int {
	return n.DeliverWhere(ctx, All)
}

// DeliverWhere delivers only packets for which match returns true, skipping
// over the others. Matched packets of one lane keep their relative order,
// so tests can deliver one message type ahead of another.
func (n *Network) DeliverWhere(ctx context.Context, match func(*coordinator.Packet) bool) int {
	n.deliverMu.Lock()
	defer n.deliverMu.Unlock()

	applied := 0
	for ctx.Err() == nil {
		p, ok := n.next(match)
		if !ok {
			break
		}
		if n.deliver(ctx, p) {
			applied++
		}
	}
	return applied
}

// next pops the first matching packet, visiting lanes round robin.
func (n *Network) next(match func(*coordinator.Packet) bool) (*coordinator.Packet, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := range n.order {
		idx := (n.cursor + i) % len(n.order)
		l := n.lanes[n.order[idx]]
		if l.stored != nil {
			continue
		}
		for j, p := range l.pending {
			if !match(p) {
				continue
			}
			l.pending = append(l.pending[:j], l.pending[j+1:]...)
			n.cursor = (idx + 1) % len(n.order)
			return p, true
		}
	}
	return nil, false
}

func (n *Network) receiver(p *coordinator.Packet) (coordinator.Receiver, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	r, ok := n.receivers[endpoint{chainID: p.DstChainID, address: p.DstAddress}]
	return r, ok
}

// deliver executes p at its destination and reports whether it was applied.
// n.mu is not held while the receiver runs since receivers send.
func (n *Network) deliver(ctx context.Context, p *coordinator.Packet) bool {
	id := p.ID()
	if n.seen != nil && n.seen.Contains(id) {
		n.config.Metrics.Duplicate(p.SrcChainID.String(), p.DstChainID.String())
		n.log.Debug("suppressed duplicate packet",
			log.Stringer("packetID", id),
			log.Uint64("nonce", p.Nonce),
		)
		return false
	}

	r, ok := n.receiver(p)
	if !ok {
		n.mu.Lock()
		n.drop(p, fmt.Errorf("%w at %s on %s", ErrUnknownReceiver, p.DstAddress, p.DstChainID))
		n.mu.Unlock()
		return false
	}

	err := utils.WithMaxRetries(ctx, n.log, func() error {
		err := r.Receive(ctx, p)
		if coordinator.IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, n.config.MaxRetries, n.config.RetryInterval)

	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case err == nil:
		n.applied(p, id)
		return true
	case coordinator.IsPermanent(err):
		n.drop(p, err)
	default:
		n.store(p, id, err)
	}
	return false
}

// applied records a successful delivery. n.mu must be held.
func (n *Network) applied(p *coordinator.Packet, id ids.ID) {
	if n.seen != nil {
		n.seen.Add(id, struct{}{})
	}
	n.delivered = append(n.delivered, p)
	n.finish(laneOf(p), p.Nonce)
	n.config.Metrics.Delivered(p.SrcChainID.String(), p.DstChainID.String())
}

// drop discards p. n.mu must be held.
func (n *Network) drop(p *coordinator.Packet, err error) {
	n.dropped = append(n.dropped, Drop{Packet: p, Err: err})
	n.finish(laneOf(p), p.Nonce)
	n.config.Metrics.Dropped(p.SrcChainID.String(), p.DstChainID.String(), dropReason(err))
	n.log.Warn("dropped packet",
		log.Stringer("srcChainID", p.SrcChainID),
		log.Stringer("dstChainID", p.DstChainID),
		log.Uint64("nonce", p.Nonce),
		log.Err(err),
	)
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownReceiver):
		return "no_receiver"
	case errors.Is(err, errForceResumed):
		return "force_resumed"
	default:
		return coordinator.CodeOf(err).String()
	}
}

// store blocks p's lane until p is retried or resumed. n.mu must be held.
func (n *Network) store(p *coordinator.Packet, id ids.ID, cause error) {
	n.lane(laneOf(p)).stored = p
	if err := n.stored.Put(id[:], p.Bytes()); err != nil {
		n.log.Error("failed to persist stored payload",
			log.Stringer("packetID", id),
			log.Err(err),
		)
	}
	n.config.Metrics.Failed(p.SrcChainID.String(), p.DstChainID.String())
	n.config.Metrics.SetStored(p.DstChainID.String(), n.blockedLanes(p.DstChainID))
	n.log.Warn("stored failed payload",
		log.Stringer("packetID", id),
		log.Stringer("srcChainID", p.SrcChainID),
		log.Stringer("dstChainID", p.DstChainID),
		log.Uint64("nonce", p.Nonce),
		log.Err(cause),
	)
}

// unstore unblocks p's lane. n.mu must be held.
func (n *Network) unstore(p *coordinator.Packet, id ids.ID) error {
	n.lane(laneOf(p)).stored = nil
	err := n.stored.Delete(id[:])
	n.config.Metrics.SetStored(p.DstChainID.String(), n.blockedLanes(p.DstChainID))
	return err
}

func (n *Network) blockedLanes(dstChainID ids.ID) int {
	count := 0
	for key, l := range n.lanes {
		if key.DstChainID == dstChainID && l.stored != nil {
			count++
		}
	}
	return count
}

// Stored returns every stored packet.
func (n *Network) Stored() ([]*coordinator.Packet, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	it := n.stored.NewIterator()
	defer it.Release()

	var packets []*coordinator.Packet
	for it.Next() {
		p, err := coordinator.ParsePacket(it.Value())
		if err != nil {
			return nil, err
		}
		packets = append(packets, p)
	}
	return packets, it.Error()
}

func (n *Network) storedPacket(id ids.ID) (*coordinator.Packet, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	has, err := n.stored.Has(id[:])
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, fmt.Errorf("%w: %s", ErrNotStored, id)
	}
	b, err := n.stored.Get(id[:])
	if err != nil {
		return nil, err
	}
	p, err := coordinator.ParsePacket(b)
	if err != nil {
		return nil, err
	}
	// Return the in-lane instance so pointer identity survives.
	if l, ok := n.lanes[laneOf(p)]; ok && l.stored != nil && l.stored.ID() == id {
		return l.stored, nil
	}
	return p, nil
}

// RetryPayload executes a stored packet once more. On success, or on a
// permanent rejection, the lane is unblocked.
func (n *Network) RetryPayload(ctx context.Context, id ids.ID) error {
	n.deliverMu.Lock()
	defer n.deliverMu.Unlock()

	p, err := n.storedPacket(id)
	if err != nil {
		return err
	}
	r, ok := n.receiver(p)
	if !ok {
		return fmt.Errorf("%w at %s on %s", ErrUnknownReceiver, p.DstAddress, p.DstChainID)
	}
	receiveErr := r.Receive(ctx, p)

	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case receiveErr == nil:
		if err := n.unstore(p, id); err != nil {
			return err
		}
		n.applied(p, id)
		n.log.Info("retried stored payload", log.Stringer("packetID", id))
		return nil
	case coordinator.IsPermanent(receiveErr):
		if err := n.unstore(p, id); err != nil {
			return err
		}
		n.drop(p, receiveErr)
		return receiveErr
	default:
		return receiveErr
	}
}

// ForceResume discards a stored packet and unblocks its lane.
func (n *Network) ForceResume(id ids.ID) error {
	n.deliverMu.Lock()
	defer n.deliverMu.Unlock()

	p, err := n.storedPacket(id)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.unstore(p, id); err != nil {
		return err
	}
	n.drop(p, errForceResumed)
	return nil
}

// InjectDuplicate queues another copy of a delivered packet at the back of
// its lane.
func (n *Network) InjectDuplicate(id ids.ID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, p := range n.delivered {
		if p.ID() != id {
			continue
		}
		dup := *p
		dup.Payload = append([]byte(nil), p.Payload...)
		l := n.lane(laneOf(p))
		l.pending = append(l.pending, &dup)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotDelivered, id)
}
