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
	"github.com/tamirms/gramvec/internal/pool"
)

// OpenModel loads a trained dictionary model written by SaveModel and returns
// a ready lookup-mode vectorizer. The file is memory-mapped for the read,
// verified against its footer checksum, decoded into freshly owned state, and
// unmapped before returning; the vectorizer keeps no reference to the file.
//
// Decode failures surface the model error sentinels: ErrInvalidMagic,
// ErrInvalidVersion, ErrTruncatedFile, ErrChecksumFailed, ErrCorruptedModel.
func OpenModel(path string) (*DictionaryVectorizer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat model file: %w", err)
	}
	if stat.Size() < modelHeaderSize+modelFooterSize {
		return nil, gramerrors.ErrTruncatedFile
	}

	// The whole file is decoded front to back exactly once.
	fadviseSequential(int(file.Fd()), 0, stat.Size())

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap model file: %w", err)
	}
	v, decodeErr := decodeModel([]byte(mm))
	if err := errors.Join(decodeErr, mm.Unmap()); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeModel parses a complete model image. All decoded state is copied out
// of data.
func decodeModel(data []byte) (*DictionaryVectorizer, error) {
	hdr, err := decodeModelHeader(data[:modelHeaderSize])
	if err != nil {
		return nil, err
	}
	if int64(len(data)) < hdr.fileSize() {
		return nil, gramerrors.ErrTruncatedFile
	}
	if int64(len(data)) > hdr.fileSize() {
		return nil, gramerrors.ErrCorruptedModel
	}

	bodyEnd := len(data) - modelFooterSize
	ftr, err := decodeModelFooter(data[bodyEnd:])
	if err != nil {
		return nil, err
	}
	if xxhash.Sum64(data[modelHeaderSize:bodyEnd]) != ftr.BodyHash {
		return nil, gramerrors.ErrChecksumFailed
	}

	n := int(hdr.NgramLength)
	off := modelHeaderSize

	limits := make([]int, n)
	for i := range limits {
		limits[i] = int(binary.LittleEndian.Uint64(data[off:]))
		off += 8
		if limits[i] < 1 {
			return nil, fmt.Errorf("%w: order %d has limit %d", gramerrors.ErrCorruptedModel, i+1, limits[i])
		}
	}
	counts := make([]int, n)
	total := 0
	for i := range counts {
		counts[i] = int(binary.LittleEndian.Uint64(data[off:]))
		off += 8
		if counts[i] < 0 || counts[i] > limits[i] {
			return nil, fmt.Errorf("%w: order %d has count %d with limit %d",
				gramerrors.ErrCorruptedModel, i+1, counts[i], limits[i])
		}
		total += counts[i]
	}
	if total != int(hdr.PoolCount) {
		return nil, fmt.Errorf("%w: order counts sum to %d, pool holds %d",
			gramerrors.ErrCorruptedModel, total, hdr.PoolCount)
	}

	offsets := make([]uint32, int(hdr.PoolCount)+1)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}
	bank := make([]uint32, int(hdr.BankLen))
	for i := range bank {
		bank[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}
	var idf []float64
	if c := hdr.idfCount(); c > 0 {
		idf = make([]float64, c)
		for i := range idf {
			idf[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
			off += 8
		}
	}

	p, err := pool.Restore(hdr.PoolSeed, offsets, bank)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gramerrors.ErrCorruptedModel, err)
	}

	// Cross-check the stored per-order counts against the actual sequences.
	seen := make([]int, n)
	for id := int32(0); id < int32(p.Count()); id++ {
		l := len(p.Sequence(id))
		if l < 1 || l > n {
			return nil, fmt.Errorf("%w: sequence %d has length %d", gramerrors.ErrCorruptedModel, id, l)
		}
		seen[l-1]++
	}
	for i := range seen {
		if seen[i] != counts[i] {
			return nil, fmt.Errorf("%w: order %d stores %d sequences, counted %d",
				gramerrors.ErrCorruptedModel, i+1, counts[i], seen[i])
		}
	}

	cfg := defaultConfig()
	cfg.ngramLength = n
	cfg.skipLength = int(hdr.SkipLength)
	cfg.weighting = hdr.Weighting
	cfg.limits = limits
	cfg.poolSeed = hdr.PoolSeed

	v := &DictionaryVectorizer{
		cfg:       cfg,
		pool:      p,
		counts:    counts,
		nonEmpty:  make([]bool, n),
		idf:       idf,
		totalDocs: int64(hdr.TotalDocs),
		fitted:    true,
	}
	for i, c := range counts {
		v.nonEmpty[i] = c > 0
	}
	v.initTransformState()
	return v, nil
}
