// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"container/heap"
	"encoding/binary"
	"errors"

	"github.com/luxfi/database"
	"github.com/luxfi/log"
)

//
// checkpoint tracks, per lane, the highest nonce up to which every packet has
// been applied or dropped. Packets finished ahead of order are held until the
// gap below them closes.
//

type checkpoint struct {
	committed uint64
	pending   uint64Heap
}

// stage records that nonce is finished and reports whether the committed
// nonce advanced.
func (c *checkpoint) stage(nonce uint64) bool {
	if nonce <= c.committed {
		return false
	}
	heap.Push(&c.pending, nonce)

	advanced := false
	for c.pending.Len() > 0 {
		next := c.pending.Peek()
		switch {
		case next <= c.committed:
			heap.Pop(&c.pending)
		case next == c.committed+1:
			c.committed = heap.Pop(&c.pending).(uint64)
			advanced = true
		default:
			return advanced
		}
	}
	return advanced
}

// finish stages p's nonce and persists the lane's checkpoint when it
// advances. n.mu must be held.
func (n *Network) finish(key Lane, nonce uint64) {
	l := n.lane(key)
	if !l.checkpoint.stage(nonce) {
		return
	}
	if err := database.PutUInt64(n.checkpoints, laneKey(key), l.checkpoint.committed); err != nil {
		n.log.Error("failed to write checkpoint",
			log.Stringer("srcChainID", key.SrcChainID),
			log.Stringer("dstChainID", key.DstChainID),
			log.Uint64("nonce", l.checkpoint.committed),
			log.Err(err),
		)
	}
}

// Checkpoint returns the highest nonce of key's lane up to which every
// packet has been applied or dropped.
func (n *Network) Checkpoint(key Lane) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	nonce, err := database.GetUInt64(n.checkpoints, laneKey(key))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return nonce, err
}

func laneKey(key Lane) []byte {
	b := make([]byte, 0, len(key.SrcChainID)+len(key.SrcAddress)+len(key.DstChainID)+2)
	b = append(b, key.SrcChainID[:]...)
	b = append(b, key.SrcAddress[:]...)
	b = append(b, key.DstChainID[:]...)
	return binary.BigEndian.AppendUint16(b, uint16(key.Channel))
}

// uint64Heap is a min heap of nonces.
type uint64Heap []uint64

func (h uint64Heap) Len() int           { return len(h) }
func (h uint64Heap) Less(i, j int) bool { return h[i] < h[j] }
func (h uint64Heap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h uint64Heap) Peek() uint64       { return h[0] }

func (h *uint64Heap) Push(x any) {
	*h = append(*h, x.(uint64))
}

func (h *uint64Heap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
