// Package pool implements SequencePool, an append-only bijection between
// distinct uint32 key-sequences and small dense int32 ids.
//
// Sequences are stored back to back in a flat bank with an offsets table, and
// located through an open-addressed hash table keyed by sequence content.
// Ids are dense (0..Count-1) and stable once assigned: they are never reused
// or renumbered.
package pool

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/zeebo/xxh3"

	gramerrors "github.com/tamirms/gramvec/errors"
)

const (
	// minTableSize is the initial hash table size. Must be a power of two.
	minTableSize = 64

	// maxLoadNum/maxLoadDen is the load factor threshold for growing the
	// table (3/4).
	maxLoadNum = 3
	maxLoadDen = 4
)

// SequencePool maps distinct uint32 sequences to dense int32 ids.
//
// Not safe for concurrent mutation. Once fully built it is safe for
// concurrent read-only use (Get, Sequence, Count).
type SequencePool struct {
	seed uint64

	// table holds id+1 per occupied slot, 0 for empty (linear probing).
	table []int32

	// offsets[id] is the start of sequence id in bank; offsets[Count()] is
	// the bank length. Always has Count()+1 entries.
	offsets []uint32
	bank    []uint32

	scratch []byte // reused byte view of a sequence for hashing
}

// New creates an empty pool. seed perturbs the content hash so that
// independently trained pools do not share probe sequences.
func New(seed uint64) *SequencePool {
	return &SequencePool{
		seed:    seed,
		table:   make([]int32, minTableSize),
		offsets: []uint32{0},
	}
}

// Count returns the number of stored sequences.
func (p *SequencePool) Count() int {
	return len(p.offsets) - 1
}

// hashOf computes the seeded content hash of a sequence.
func (p *SequencePool) hashOf(seq []uint32) uint64 {
	need := 4 * len(seq)
	if cap(p.scratch) < need {
		p.scratch = make([]byte, need)
	}
	buf := p.scratch[:need]
	for i, k := range seq {
		binary.LittleEndian.PutUint32(buf[4*i:], k)
	}
	return xxh3.HashSeed(buf, p.seed)
}

// Sequence returns the stored sequence for id as a view into the bank.
// Callers must not modify the returned slice.
// Precondition: 0 <= id < Count().
func (p *SequencePool) Sequence(id int32) []uint32 {
	return p.bank[p.offsets[id]:p.offsets[id+1]]
}

// equalAt reports whether sequence id has the given content.
func (p *SequencePool) equalAt(id int32, seq []uint32) bool {
	start, end := p.offsets[id], p.offsets[id+1]
	if int(end-start) != len(seq) {
		return false
	}
	stored := p.bank[start:end]
	for i := range seq {
		if stored[i] != seq[i] {
			return false
		}
	}
	return true
}

// Get returns the id of seq, or -1 if absent. Never mutates the pool.
func (p *SequencePool) Get(seq []uint32) int32 {
	if len(seq) == 0 {
		return -1
	}
	mask := uint64(len(p.table) - 1)
	slot := p.hashOf(seq) & mask
	for {
		entry := p.table[slot]
		if entry == 0 {
			return -1
		}
		if id := entry - 1; p.equalAt(id, seq) {
			return id
		}
		slot = (slot + 1) & mask
	}
}

// TryAdd returns the id of seq, inserting it if absent. added reports whether
// a new id was assigned. The sequence content is copied into the bank.
func (p *SequencePool) TryAdd(seq []uint32) (id int32, added bool) {
	if len(seq) == 0 {
		return -1, false
	}
	if maxLoadDen*(p.Count()+1) > maxLoadNum*len(p.table) {
		p.grow()
	}
	mask := uint64(len(p.table) - 1)
	slot := p.hashOf(seq) & mask
	for {
		entry := p.table[slot]
		if entry == 0 {
			break
		}
		if id := entry - 1; p.equalAt(id, seq) {
			return id, false
		}
		slot = (slot + 1) & mask
	}
	id = int32(p.Count())
	p.bank = append(p.bank, seq...)
	p.offsets = append(p.offsets, uint32(len(p.bank)))
	p.table[slot] = id + 1
	return id, true
}

// grow doubles the table and reinserts every id by rehashing bank content.
func (p *SequencePool) grow() {
	old := p.table
	p.table = make([]int32, 2*len(old))
	mask := uint64(len(p.table) - 1)
	for _, entry := range old {
		if entry == 0 {
			continue
		}
		id := entry - 1
		slot := p.hashOf(p.Sequence(id)) & mask
		for p.table[slot] != 0 {
			slot = (slot + 1) & mask
		}
		p.table[slot] = entry
	}
}

// Offsets exposes the raw offsets table for serialization. The returned slice
// has Count()+1 entries and must not be modified.
func (p *SequencePool) Offsets() []uint32 {
	return p.offsets
}

// Bank exposes the raw sequence bank for serialization.
// The returned slice must not be modified.
func (p *SequencePool) Bank() []uint32 {
	return p.bank
}

// Restore rebuilds a pool from a serialized offsets table and bank, as
// produced by Offsets and Bank. Both slices are copied. The offsets table is
// validated in full before any bank access; together with the span check, a
// strictly increasing table bounds every sequence slice. Duplicate or
// malformed entries return ErrPoolInconsistent.
func Restore(seed uint64, offsets, bank []uint32) (*SequencePool, error) {
	if err := checkOffsets(offsets, len(bank)); err != nil {
		return nil, err
	}
	count := len(offsets) - 1
	size := minTableSize
	for maxLoadDen*count > maxLoadNum*size {
		size *= 2
	}
	p := &SequencePool{
		seed:    seed,
		table:   make([]int32, size),
		offsets: append([]uint32(nil), offsets...),
		bank:    append([]uint32(nil), bank...),
	}
	mask := uint64(size - 1)
	for id := int32(0); id < int32(count); id++ {
		slot := p.hashOf(p.Sequence(id)) & mask
		for {
			entry := p.table[slot]
			if entry == 0 {
				break
			}
			if p.equalAt(entry-1, p.Sequence(id)) {
				return nil, fmt.Errorf("%w: duplicate sequence at ids %d and %d", gramerrors.ErrPoolInconsistent, entry-1, id)
			}
			slot = (slot + 1) & mask
		}
		p.table[slot] = id + 1
	}
	return p, nil
}

// checkOffsets validates an offsets table against a bank length: non-empty,
// anchored at 0, ending exactly at the bank length, and strictly increasing.
// Any table that passes bounds every Sequence slice.
func checkOffsets(offsets []uint32, bankLen int) error {
	if len(offsets) == 0 || offsets[0] != 0 || offsets[len(offsets)-1] != uint32(bankLen) {
		return fmt.Errorf("%w: offsets table does not span bank", gramerrors.ErrPoolInconsistent)
	}
	for id := 0; id < len(offsets)-1; id++ {
		if offsets[id+1] <= offsets[id] {
			return fmt.Errorf("%w: empty or reversed sequence at id %d", gramerrors.ErrPoolInconsistent, id)
		}
	}
	return nil
}

// Validate checks internal consistency: a power-of-two table, a strictly
// increasing offsets table spanning the bank, and a table entry locating
// every id. Intended as a hook for serialization layers after reload.
func (p *SequencePool) Validate() error {
	if bits.OnesCount(uint(len(p.table))) != 1 {
		return fmt.Errorf("%w: table size %d is not a power of two", gramerrors.ErrPoolInconsistent, len(p.table))
	}
	if err := checkOffsets(p.offsets, len(p.bank)); err != nil {
		return err
	}
	for id := int32(0); id < int32(p.Count()); id++ {
		if got := p.Get(p.Sequence(id)); got != id {
			return fmt.Errorf("%w: id %d resolves to %d", gramerrors.ErrPoolInconsistent, id, got)
		}
	}
	return nil
}
