// Package motif_finder scores wildcard motifs against the peptides of a count report.
//
// A motif of length L is a string over the alphabet plus the wildcard '.', which matches
// any residue. Motifs are never matched in reverse: M..C matches MWWC, not CWWM.
package motif_finder

import (
	"errors"
	"fmt"
	"strings"

	"nullomer_go/alphabet"
	"nullomer_go/config"
)

var ErrInvalidLength = errors.New("motif length must be at least 1")

// Space is every motif of one length. Each motif has a key in [0, Size()): its digits
// in base n+1, first position most significant, wildcard digit n. Nothing is materialized.
type Space struct {
	ab       *alphabet.Alphabet
	length   int
	radix    uint64
	size     uint64
	wildcard int8
}

func NewSpace(ab *alphabet.Alphabet, length int, settings config.Settings) (*Space, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidLength, length)
	}
	size, err := config.Cells("motif space", ab.Size()+1, length, settings.MaxMemory)
	if err != nil {
		return nil, err
	}
	return &Space{
		ab:       ab,
		length:   length,
		radix:    uint64(ab.Size() + 1),
		size:     size,
		wildcard: int8(ab.Size()),
	}, nil
}

func (s *Space) Size() uint64                 { return s.size }
func (s *Space) Length() int                  { return s.length }
func (s *Space) Wildcard() int8               { return s.wildcard }
func (s *Space) Alphabet() *alphabet.Alphabet { return s.ab }

// Motif decodes key.
func (s *Space) Motif(key uint64) string {
	b := make([]byte, s.length)
	for j := s.length - 1; j >= 0; j-- {
		b[j] = s.ab.Symbol(int(key % s.radix))
		key /= s.radix
	}
	return string(b)
}

// Key encodes motif.
func (s *Space) Key(motif string) (uint64, error) {
	if len(motif) != s.length {
		return 0, fmt.Errorf("motif %q is not of length %d", motif, s.length)
	}
	codes, err := s.ab.Encode(motif, true)
	if err != nil {
		return 0, err
	}
	return s.keyOf(codes), nil
}

func (s *Space) keyOf(codes []int8) uint64 {
	var key uint64
	for _, c := range codes {
		key = key*s.radix + uint64(c)
	}
	return key
}

// Wildcards counts the wildcard positions of motif.
func Wildcards(motif string) int {
	return strings.Count(motif, string(alphabet.Wildcard))
}

// Iterator walks motif keys [lo, hi) in ascending order, keeping the decoded digits
// current. It can be restarted with Reset.
type Iterator struct {
	space   *Space
	lo, hi  uint64
	key     uint64
	codes   []int8
	started bool
}

// Iter returns an iterator over [lo, hi), clamped to the space.
func (s *Space) Iter(lo, hi uint64) *Iterator {
	if hi > s.size {
		hi = s.size
	}
	if lo > hi {
		lo = hi
	}
	it := &Iterator{space: s, lo: lo, hi: hi, codes: make([]int8, s.length)}
	it.Reset()
	return it
}

func (it *Iterator) Reset() {
	it.key = it.lo
	it.started = false
	k := it.lo
	for j := len(it.codes) - 1; j >= 0; j-- {
		it.codes[j] = int8(k % it.space.radix)
		k /= it.space.radix
	}
}

// Next advances to the next motif and reports whether there is one.
func (it *Iterator) Next() bool {
	if !it.started {
		it.started = true
		return it.key < it.hi
	}
	if it.key >= it.hi {
		return false
	}
	it.key++
	if it.key >= it.hi {
		return false
	}
	// odometer: bump the last digit, carrying leftwards
	for j := len(it.codes) - 1; j >= 0; j-- {
		it.codes[j]++
		if uint64(it.codes[j]) < it.space.radix {
			break
		}
		it.codes[j] = 0
	}
	return true
}

func (it *Iterator) Key() uint64 {
	return it.key
}

// Codes are the current motif digits. The slice is reused by Next.
func (it *Iterator) Codes() []int8 {
	return it.codes
}

func (it *Iterator) Motif() string {
	return it.space.ab.Decode(it.codes)
}
