package gramvec

import (
	"encoding/binary"

	gramerrors "github.com/tamirms/gramvec/errors"
	"github.com/tamirms/gramvec/internal/ngram"
)

const (
	// magic number for gramvec model files, "GRVC" in little-endian.
	modelMagic = uint32(0x47525643)

	// modelVersion is the current format version.
	modelVersion = uint16(0x0001)

	// modelHeaderSize is the exact size of the serialized header (64 bytes).
	modelHeaderSize = 64

	// modelFooterSize is the exact size of the serialized footer (32 bytes).
	modelFooterSize = 32
)

// modelHeader is the 64-byte model file header.
//
// Layout:
//
//	Offset  Size  Field        Type
//	0       4     Magic        0x47525643 ("GRVC")
//	4       2     Version      0x0001
//	6       1     NgramLength  uint8
//	7       1     SkipLength   uint8
//	8       1     Weighting    uint8 (0=tf, 1=idf, 2=tfidf)
//	9       3     Pad          [3]byte (zero)
//	12      4     PoolCount    uint32_le
//	16      4     BankLen      uint32_le (total keys across all sequences)
//	20      8     PoolSeed     uint64_le
//	28      8     TotalDocs    uint64_le
//	36      28    Reserved     [28]byte (zero)
//
// The header is followed by fixed-size sections whose lengths it fully
// determines: per-order limits, per-order counts, the pool offsets table,
// the pool bank, and (for idf-carrying weightings) the idf table.
type modelHeader struct {
	Magic       uint32
	Version     uint16
	NgramLength uint8
	SkipLength  uint8
	Weighting   Weighting
	PoolCount   uint32
	BankLen     uint32
	PoolSeed    uint64
	TotalDocs   uint64
}

// encodeTo serializes the header into an existing 64-byte buffer.
func (h *modelHeader) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	buf[6] = h.NgramLength
	buf[7] = h.SkipLength
	buf[8] = uint8(h.Weighting)
	binary.LittleEndian.PutUint32(buf[12:16], h.PoolCount)
	binary.LittleEndian.PutUint32(buf[16:20], h.BankLen)
	binary.LittleEndian.PutUint64(buf[20:28], h.PoolSeed)
	binary.LittleEndian.PutUint64(buf[28:36], h.TotalDocs)
}

// decodeModelHeader parses and validates a 64-byte header.
func decodeModelHeader(buf []byte) (*modelHeader, error) {
	if len(buf) < modelHeaderSize {
		return nil, gramerrors.ErrTruncatedFile
	}
	h := &modelHeader{
		Magic:       binary.LittleEndian.Uint32(buf[0:4]),
		Version:     binary.LittleEndian.Uint16(buf[4:6]),
		NgramLength: buf[6],
		SkipLength:  buf[7],
		Weighting:   Weighting(buf[8]),
		PoolCount:   binary.LittleEndian.Uint32(buf[12:16]),
		BankLen:     binary.LittleEndian.Uint32(buf[16:20]),
		PoolSeed:    binary.LittleEndian.Uint64(buf[20:28]),
		TotalDocs:   binary.LittleEndian.Uint64(buf[28:36]),
	}
	if h.Magic != modelMagic {
		return nil, gramerrors.ErrInvalidMagic
	}
	if h.Version != modelVersion {
		return nil, gramerrors.ErrInvalidVersion
	}
	if h.NgramLength < 1 || int(h.NgramLength)+int(h.SkipLength) > ngram.MaxSkipNgramLength {
		return nil, gramerrors.ErrCorruptedModel
	}
	if h.Weighting > TfIdf {
		return nil, gramerrors.ErrCorruptedModel
	}
	if h.PoolCount == 0 {
		return nil, gramerrors.ErrCorruptedModel
	}
	// Every stored sequence holds between 1 and NgramLength keys.
	if h.BankLen < h.PoolCount || uint64(h.BankLen) > uint64(h.PoolCount)*uint64(h.NgramLength) {
		return nil, gramerrors.ErrCorruptedModel
	}
	return h, nil
}

// idfCount returns the number of idf entries the file carries.
func (h *modelHeader) idfCount() int {
	if h.Weighting == Tf {
		return 0
	}
	return int(h.PoolCount)
}

// sectionSizes returns the byte size of each body section in file order.
func (h *modelHeader) sectionSizes() (limits, counts, offsets, bank, idf int) {
	limits = 8 * int(h.NgramLength)
	counts = 8 * int(h.NgramLength)
	offsets = 4 * (int(h.PoolCount) + 1)
	bank = 4 * int(h.BankLen)
	idf = 8 * h.idfCount()
	return
}

// fileSize returns the exact model file size implied by the header.
func (h *modelHeader) fileSize() int64 {
	limits, counts, offsets, bank, idf := h.sectionSizes()
	return int64(modelHeaderSize + limits + counts + offsets + bank + idf + modelFooterSize)
}

// modelFooter is the 32-byte model file footer.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       8     BodyHash  uint64_le (xxHash64 of everything between header and footer)
//	8       24    Reserved  [24]byte (zero)
type modelFooter struct {
	BodyHash uint64
}

// encodeTo serializes the footer into an existing 32-byte buffer.
func (f *modelFooter) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.BodyHash)
}

// decodeModelFooter parses a 32-byte footer.
func decodeModelFooter(buf []byte) (*modelFooter, error) {
	if len(buf) < modelFooterSize {
		return nil, gramerrors.ErrTruncatedFile
	}
	return &modelFooter{
		BodyHash: binary.LittleEndian.Uint64(buf[0:8]),
	}, nil
}
