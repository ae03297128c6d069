package gramvec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	gramerrors "github.com/tamirms/gramvec/errors"
)

// SaveModel writes the trained dictionary to path so that a later OpenModel
// reproduces identical inference behavior: the sequence pool with its stable
// ids, the per-order caps and counts, the idf table, and the enumeration
// geometry all round-trip.
//
// File layout: [Header 64B][Limits][Counts][Offsets][Bank][IDF][Footer 32B],
// all sections little-endian and sized exactly by the header. The file is
// preallocated and memory-mapped for the writes, then flushed and unmapped.
func (v *DictionaryVectorizer) SaveModel(path string) error {
	if !v.fitted {
		return gramerrors.ErrNotFitted
	}

	offsets := v.pool.Offsets()
	bank := v.pool.Bank()
	hdr := modelHeader{
		Magic:       modelMagic,
		Version:     modelVersion,
		NgramLength: uint8(v.cfg.ngramLength),
		SkipLength:  uint8(v.cfg.skipLength),
		Weighting:   v.cfg.weighting,
		PoolCount:   uint32(v.pool.Count()),
		BankLen:     uint32(len(bank)),
		PoolSeed:    v.cfg.poolSeed,
		TotalDocs:   uint64(v.totalDocs),
	}
	size := hdr.fileSize()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}

	// Pre-allocate disk blocks to prevent SIGBUS on disk full.
	if err := fallocateFile(file, size); err != nil {
		primaryErr := fmt.Errorf("allocate model file: %w", err)
		return errors.Join(primaryErr, file.Close(), os.Remove(path))
	}

	mm, err := mmap.MapRegion(file, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("mmap model file: %w", err)
		return errors.Join(primaryErr, file.Close(), os.Remove(path))
	}
	data := []byte(mm)

	hdr.encodeTo(data[0:modelHeaderSize])
	off := modelHeaderSize
	for _, lim := range v.cfg.limits {
		binary.LittleEndian.PutUint64(data[off:], uint64(lim))
		off += 8
	}
	for _, n := range v.counts {
		binary.LittleEndian.PutUint64(data[off:], uint64(n))
		off += 8
	}
	for _, o := range offsets {
		binary.LittleEndian.PutUint32(data[off:], o)
		off += 4
	}
	for _, k := range bank {
		binary.LittleEndian.PutUint32(data[off:], k)
		off += 4
	}
	for i := 0; i < hdr.idfCount(); i++ {
		binary.LittleEndian.PutUint64(data[off:], math.Float64bits(v.idf[i]))
		off += 8
	}

	ftr := modelFooter{
		BodyHash: xxhash.Sum64(data[modelHeaderSize:off]),
	}
	ftr.encodeTo(data[off:])

	if err := mm.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush failed: %w", err)
		return errors.Join(primaryErr, mm.Unmap(), file.Close(), os.Remove(path))
	}
	if err := mm.Unmap(); err != nil {
		primaryErr := fmt.Errorf("mmap unmap failed: %w", err)
		return errors.Join(primaryErr, file.Close(), os.Remove(path))
	}
	return file.Close()
}
