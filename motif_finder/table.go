package motif_finder

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Occurrence is the weighted match count of one motif.
type Occurrence struct {
	Key   uint64
	Count uint64
}

// Table maps motif keys to weighted match counts. Entries are kept in ascending key
// order and zero counts are never stored.
type Table struct {
	entries []Occurrence
}

// joinParts concatenates per-shard results. Shards cover ascending, disjoint key ranges.
func joinParts(parts [][]Occurrence) *Table {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	t := &Table{entries: make([]Occurrence, 0, n)}
	for _, p := range parts {
		t.entries = append(t.entries, p...)
	}
	return t
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Count returns the weighted count of key, 0 when absent.
func (t *Table) Count(key uint64) uint64 {
	i, found := slices.BinarySearchFunc(t.entries, key, func(o Occurrence, k uint64) int {
		return cmp.Compare(o.Key, k)
	})
	if !found {
		return 0
	}
	return t.entries[i].Count
}

// Occurrences in ascending key order. The slice must not be modified.
func (t *Table) Occurrences() []Occurrence {
	return t.entries
}

// Ranked returns the occurrences by descending count, ties by ascending key.
func (t *Table) Ranked() []Occurrence {
	ranked := slices.Clone(t.entries)
	slices.SortStableFunc(ranked, func(a, b Occurrence) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return ranked
}

// Summary describes the spread of motif counts.
type Summary struct {
	Motifs int
	Max    float64
	Mean   float64
	StdDev float64
}

func (t *Table) Summary() Summary {
	s := Summary{Motifs: len(t.entries)}
	if len(t.entries) == 0 {
		return s
	}
	values := make([]float64, len(t.entries))
	for i, o := range t.entries {
		values[i] = float64(o.Count)
	}
	s.Max = floats.Max(values)
	s.Mean, s.StdDev = stat.PopMeanStdDev(values, nil)
	return s
}
