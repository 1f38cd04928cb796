// Package source holds the partitioned record sets fed into hot swaps.
package source

import (
	"context"
	"fmt"
	"strconv"
)

// IDField is the record key used as the engine document id.
const IDField = "id"

// Record is one source document.
type Record map[string]any

// ID returns the document id stored under IDField. Strings are used as-is,
// integers are formatted in base 10. Anything else has no usable id.
func (r Record) ID() (string, bool) {
	switch v := r[IDField].(type) {
	case string:
		return v, v != ""
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	default:
		return "", false
	}
}

// Dataset is an immutable set of records split into partitions. The number
// of partitions is the natural write parallelism.
type Dataset struct {
	parts [][]Record
}

// New builds a dataset from explicit partitions. Empty partitions are kept.
func New(parts ...[]Record) Dataset {
	return Dataset{parts: parts}
}

// FromRecords splits recs into n contiguous partitions of near-equal size.
func FromRecords(recs []Record, n int) Dataset {
	if n <= 0 {
		n = 1
	}
	if n > len(recs) && len(recs) > 0 {
		n = len(recs)
	}
	parts := make([][]Record, n)
	for i := range n {
		lo := i * len(recs) / n
		hi := (i + 1) * len(recs) / n
		parts[i] = recs[lo:hi]
	}
	return Dataset{parts: parts}
}

// NumPartitions returns the partition count.
func (d Dataset) NumPartitions() int { return len(d.parts) }

// Partitions returns the partitions. Callers must not modify them.
func (d Dataset) Partitions() [][]Record { return d.parts }

// Len returns the total record count.
func (d Dataset) Len() int {
	total := 0
	for _, p := range d.parts {
		total += len(p)
	}
	return total
}

// Coalesce merges neighbouring partitions down to n. It never splits: when n
// is not smaller than the current count, d is returned unchanged.
func (d Dataset) Coalesce(n int) Dataset {
	if n <= 0 || n >= len(d.parts) {
		return d
	}
	merged := make([][]Record, n)
	for i, p := range d.parts {
		g := i * n / len(d.parts)
		merged[g] = append(merged[g], p...)
	}
	return Dataset{parts: merged}
}

// Loader reads a collection into a dataset.
type Loader interface {
	Load(ctx context.Context, req LoadRequest) (Dataset, error)
}

// LoadRequest selects what to load.
type LoadRequest struct {
	Collection string
	// IDField is copied into Record[IDField]. Empty means the store's
	// primary key.
	IDField    string
	Partitions int
}
