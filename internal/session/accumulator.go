package session

import (
	"slices"

	domain "github.com/donaldgifford/product-search/pkg/types"
)

// Accumulator holds the results of the current query in display order.
// It never reorders or deduplicates; the catalog is trusted not to repeat
// records across pages.
type Accumulator struct {
	records []domain.Product
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Replace discards the current contents and stores records in order.
func (a *Accumulator) Replace(records []domain.Product) {
	a.records = slices.Clone(records)
	if a.records == nil {
		a.records = []domain.Product{}
	}
}

// Append adds records to the end and returns how many were added. An empty
// slice is a no-op; callers read a zero return as "no more pages".
func (a *Accumulator) Append(records []domain.Product) int {
	if len(records) == 0 {
		return 0
	}
	a.records = append(a.records, records...)
	return len(records)
}

// Len returns the number of accumulated records.
func (a *Accumulator) Len() int {
	return len(a.records)
}

// Snapshot returns a copy of the accumulated records.
func (a *Accumulator) Snapshot() []domain.Product {
	out := make([]domain.Product, len(a.records))
	copy(out, a.records)
	return out
}

// Window returns a copy of at most limit records starting at offset.
func (a *Accumulator) Window(offset, limit int) []domain.Product {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(a.records) || limit <= 0 {
		return []domain.Product{}
	}
	end := min(offset+limit, len(a.records))
	return slices.Clone(a.records[offset:end])
}

// Restore replaces the contents with seq, reproducing order exactly.
func (a *Accumulator) Restore(seq []domain.Product) {
	a.Replace(seq)
}
