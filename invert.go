package gramvec

import (
	"slices"
	"strings"

	"github.com/tamirms/gramvec/internal/ngram"
)

// KeyText renders one token key of a source column as text, for slot naming.
// It is supplied by the caller that owns the key-to-text tables.
type KeyText func(col int, key uint32) string

// invertRecord is one remembered ngram for a hash slot. The key content is a
// deep copy: the walker's gram buffer is reused between resolver calls.
type invertRecord struct {
	keys []uint32
	col  int
}

// invertCollector remembers, per hash slot, up to maxInverts distinct ngrams
// that mapped there, to later render human-readable slot names.
type invertCollector struct {
	maxInverts int // -1 = unbounded
	slots      map[int32][]invertRecord
}

func newInvertCollector(maxInverts int) *invertCollector {
	return &invertCollector{
		maxInverts: maxInverts,
		slots:      make(map[int32][]invertRecord),
	}
}

// wrap decorates a finder so every resolved slot records the originating
// ngram.
func (c *invertCollector) wrap(f ngram.Finder) ngram.Finder {
	return func(gram []uint32, col int, more *bool) int32 {
		slot := f(gram, col, more)
		if slot >= 0 {
			c.record(slot, gram, col)
		}
		return slot
	}
}

// record inserts the ngram into the slot's bounded, deduplicating set.
func (c *invertCollector) record(slot int32, gram []uint32, col int) {
	set := c.slots[slot]
	for _, rec := range set {
		if rec.col == col && slices.Equal(rec.keys, gram) {
			return
		}
	}
	if c.maxInverts >= 0 && len(set) >= c.maxInverts {
		return
	}
	c.slots[slot] = append(set, invertRecord{
		keys: slices.Clone(gram),
		col:  col,
	})
}

// slotNames renders one string per slot. Slots with no recorded ngram get "".
// Each ngram renders its keys pipe-separated; when several source columns
// feed the output, names are prefixed with the column name. Slots with
// several recorded ngrams render as a braced, comma-separated set.
func (c *invertCollector) slotNames(width int, keyText KeyText, colNames []string) []string {
	names := make([]string, width)
	var sb strings.Builder
	for slot, set := range c.slots {
		sb.Reset()
		if len(set) > 1 {
			sb.WriteByte('{')
		}
		for i, rec := range set {
			if i > 0 {
				sb.WriteByte(',')
			}
			if len(colNames) > 1 {
				sb.WriteString(colNames[rec.col])
				sb.WriteByte(':')
			}
			for j, key := range rec.keys {
				if j > 0 {
					sb.WriteByte('|')
				}
				sb.WriteString(keyText(rec.col, key))
			}
		}
		if len(set) > 1 {
			sb.WriteByte('}')
		}
		names[slot] = sb.String()
	}
	return names
}
