package kmer_counter

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"

	"nullomer_go/alphabet"
	"nullomer_go/config"
)

var ErrInvalidLength = errors.New("peptide length must be at least 1")

// Tensor is a dense count table over every k-mer of an alphabet: n^k cells in one flat
// slice, addressed as index = sum(code[j] * n^(k-1-j)).
type Tensor struct {
	ab     *alphabet.Alphabet
	k      int
	radix  uint64
	high   uint64 // n^(k-1), used to drop the leading residue of a rolling index
	counts []uint64
	limit  uint64 // memory ceiling, also charged for the sorted rows of Descending
}

// Cell is one populated entry of the tensor.
type Cell struct {
	Index uint64
	Count uint64
}

// Allocate checks the size of the table against the memory ceiling and only then
// allocates it, zero filled.
func Allocate(ab *alphabet.Alphabet, k int, settings config.Settings) (*Tensor, error) {
	cells, err := tensorCells(ab, k, settings)
	if err != nil {
		return nil, err
	}
	if err := settings.CheckAllocation("k-mer tensor", cells, 8, 1); err != nil {
		return nil, err
	}
	return newTensor(ab, k, cells, settings.MaxMemory), nil
}

func tensorCells(ab *alphabet.Alphabet, k int, settings config.Settings) (uint64, error) {
	if k <= 0 {
		return 0, fmt.Errorf("%w (got %d)", ErrInvalidLength, k)
	}
	return config.Cells("k-mer tensor", ab.Size(), k, settings.MaxMemory)
}

func newTensor(ab *alphabet.Alphabet, k int, cells, limit uint64) *Tensor {
	radix := uint64(ab.Size())
	return &Tensor{
		ab:     ab,
		k:      k,
		radix:  radix,
		high:   cells / radix,
		counts: make([]uint64, cells),
		limit:  limit,
	}
}

func (t *Tensor) K() int                       { return t.k }
func (t *Tensor) Alphabet() *alphabet.Alphabet { return t.ab }
func (t *Tensor) Cells() uint64                { return uint64(len(t.counts)) }

// Fold adds every length-k window of record (positions 0..len-k) to the table and
// returns the number of windows. Records shorter than k add nothing. A residue outside
// the alphabet is rejected before any cell is touched.
func (t *Tensor) Fold(record string) (int, error) {
	if len(record) < t.k {
		return 0, nil
	}
	if err := t.ab.Validate(record, t.k); err != nil {
		return 0, err
	}
	var idx uint64
	for i := 0; i < len(record); i++ {
		idx = (idx%t.high)*t.radix + uint64(t.ab.Code(record[i]))
		if i >= t.k-1 {
			t.counts[idx]++
		}
	}
	return len(record) - t.k + 1, nil
}

// Merge adds other into t cell by cell.
func (t *Tensor) Merge(other *Tensor) error {
	if other.k != t.k || other.ab.Symbols() != t.ab.Symbols() {
		return fmt.Errorf("cannot merge %d-mer tensor over %q into %d-mer tensor over %q",
			other.k, other.ab.Symbols(), t.k, t.ab.Symbols())
	}
	for i, c := range other.counts {
		t.counts[i] += c
	}
	return nil
}

// Total is the number of windows folded so far.
func (t *Tensor) Total() uint64 {
	var total uint64
	for _, c := range t.counts {
		total += c
	}
	return total
}

func (t *Tensor) At(index uint64) uint64 {
	return t.counts[index]
}

// Count returns the count of kmer.
func (t *Tensor) Count(kmer string) (uint64, error) {
	idx, err := t.Index(kmer)
	if err != nil {
		return 0, err
	}
	return t.counts[idx], nil
}

// Index encodes kmer to its flat index.
func (t *Tensor) Index(kmer string) (uint64, error) {
	if len(kmer) != t.k {
		return 0, fmt.Errorf("k-mer %q is not of length %d", kmer, t.k)
	}
	var idx uint64
	for i := 0; i < len(kmer); i++ {
		code := t.ab.Code(kmer[i])
		if code < 0 {
			return 0, &alphabet.ValidationError{Sequence: kmer, Position: i, Symbol: kmer[i]}
		}
		idx = idx*t.radix + uint64(code)
	}
	return idx, nil
}

// Kmer decodes a flat index.
func (t *Tensor) Kmer(index uint64) string {
	return string(t.appendKmer(make([]byte, 0, t.k), index))
}

func (t *Tensor) appendKmer(dst []byte, index uint64) []byte {
	start := len(dst)
	for i := 0; i < t.k; i++ {
		dst = append(dst, 0)
	}
	for j := t.k - 1; j >= 0; j-- {
		dst[start+j] = t.ab.Symbol(int(index % t.radix))
		index /= t.radix
	}
	return dst
}

// Descending returns every cell with count >= cutoff (at least 1), highest count first.
// Equal counts are contiguous and ordered by ascending index. The sorted slice is checked
// against the memory ceiling, next to the tensor itself, before it is allocated.
func (t *Tensor) Descending(cutoff uint64) ([]Cell, error) {
	if cutoff < 1 {
		cutoff = 1
	}
	var n uint64
	for _, c := range t.counts {
		if c >= cutoff {
			n++
		}
	}
	ceiling := config.Settings{MaxMemory: t.limit}
	if err := ceiling.CheckAllocation("k-mer tensor and sorted rows", t.Cells()+2*n, 8, 1); err != nil {
		return nil, err
	}

	cells := make([]Cell, 0, n)
	for i, c := range t.counts {
		if c >= cutoff {
			cells = append(cells, Cell{Index: uint64(i), Count: c})
		}
	}
	slices.SortFunc(cells, func(a, b Cell) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return cells, nil
}

// Nullomers yields the index of every zero cell in ascending order.
func (t *Tensor) Nullomers() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for i, c := range t.counts {
			if c == 0 && !yield(uint64(i)) {
				return
			}
		}
	}
}
