package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NewIndexName returns the physical index name for alias created at now:
// alias + "_" + unix millis.
func NewIndexName(alias string, now time.Time) string {
	return fmt.Sprintf("%s_%d", alias, now.UnixMilli())
}

// IndexCreatedAt extracts the creation millis encoded in a physical index name.
// ok is false when name was not produced by NewIndexName for alias.
func IndexCreatedAt(alias, name string) (millis int64, ok bool) {
	suffix, found := strings.CutPrefix(name, alias+"_")
	if !found || suffix == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NewestIndex picks the most recently created index among names bound to alias.
// Names without a parsable timestamp rank below any that have one; ties fall
// back to lexical order.
func NewestIndex(alias string, names []string) string {
	var (
		best       string
		bestMillis int64 = -1
	)
	for _, n := range names {
		m, ok := IndexCreatedAt(alias, n)
		if !ok {
			m = -1
		}
		if best == "" || m > bestMillis || (m == bestMillis && n > best) {
			best, bestMillis = n, m
		}
	}
	return best
}
