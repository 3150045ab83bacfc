// Package alphabet maps residue symbols to dense integer codes.
// Every engine receives an Alphabet value explicitly; nothing here is global mutable state.
package alphabet

import (
	"fmt"
	"strings"
)

// Wildcard is the "any residue" symbol of the motif domain. It is never part of an Alphabet.
const Wildcard = '.'

// 20 standard amino acids, fixed order
const AminoAcidSymbols = "ACDEFGHIKLMNPQRSTVWY"

// Alphabet is an ordered, immutable set of symbols with codes [0, Size()).
type Alphabet struct {
	symbols string
	codes   [256]int8 // -1 for bytes outside the alphabet
}

// New builds an Alphabet from an ordered symbol string.
// Symbols must be unique, printable ASCII, and must not include the wildcard.
func New(symbols string) (*Alphabet, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("alphabet: empty symbol set")
	}
	if len(symbols) > 127 {
		return nil, fmt.Errorf("alphabet: %d symbols exceeds the 127 symbol limit", len(symbols))
	}
	a := &Alphabet{symbols: symbols}
	for i := range a.codes {
		a.codes[i] = -1
	}
	for i := 0; i < len(symbols); i++ {
		c := symbols[i]
		switch {
		case c == Wildcard:
			return nil, fmt.Errorf("alphabet: wildcard %q cannot be an alphabet symbol", Wildcard)
		case c <= ' ' || c > '~':
			return nil, fmt.Errorf("alphabet: symbol %q is not printable ASCII", c)
		case a.codes[c] >= 0:
			return nil, fmt.Errorf("alphabet: duplicate symbol %q", c)
		}
		a.codes[c] = int8(i)
	}
	return a, nil
}

// AminoAcids returns the 20 letter protein alphabet.
func AminoAcids() *Alphabet {
	a, err := New(AminoAcidSymbols)
	if err != nil {
		panic(err) // constant input
	}
	return a
}

func (a *Alphabet) Size() int {
	return len(a.symbols)
}

func (a *Alphabet) Symbols() string {
	return a.symbols
}

// Code returns the code of symbol c, or -1 if c is not in the alphabet.
func (a *Alphabet) Code(c byte) int8 {
	return a.codes[c]
}

// Symbol returns the symbol for code i. Code Size() decodes to the wildcard.
func (a *Alphabet) Symbol(i int) byte {
	if i == len(a.symbols) {
		return Wildcard
	}
	return a.symbols[i]
}

// Contains reports whether every byte of s belongs to the alphabet.
func (a *Alphabet) Contains(s string) bool {
	for i := 0; i < len(s); i++ {
		if a.codes[s[i]] < 0 {
			return false
		}
	}
	return true
}

// Encode converts s to codes. The wildcard encodes to Size() when allowWildcard is set.
func (a *Alphabet) Encode(s string, allowWildcard bool) ([]int8, error) {
	out := make([]int8, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case a.codes[c] >= 0:
			out[i] = a.codes[c]
		case allowWildcard && c == Wildcard:
			out[i] = int8(len(a.symbols))
		default:
			return nil, &ValidationError{Sequence: s, Position: i, Symbol: c}
		}
	}
	return out, nil
}

// Decode is the inverse of Encode.
func (a *Alphabet) Decode(codes []int8) string {
	var sb strings.Builder
	sb.Grow(len(codes))
	for _, c := range codes {
		sb.WriteByte(a.Symbol(int(c)))
	}
	return sb.String()
}

// Validate checks that seq is alphabet-pure and at least minLength long.
func (a *Alphabet) Validate(seq string, minLength int) error {
	if len(seq) < minLength {
		return &ValidationError{Sequence: seq, Position: -1, MinLength: minLength}
	}
	for i := 0; i < len(seq); i++ {
		if a.codes[seq[i]] < 0 {
			return &ValidationError{Sequence: seq, Position: i, Symbol: seq[i]}
		}
	}
	return nil
}

// ValidationError describes a record that cannot be counted.
type ValidationError struct {
	Sequence  string
	Position  int // -1 when the record is too short
	Symbol    byte
	MinLength int
}

func (e *ValidationError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("sequence of length %d is shorter than %d", len(e.Sequence), e.MinLength)
	}
	return fmt.Sprintf("invalid residue %q at %d", e.Symbol, e.Position+1)
}

// TooShort reports whether the record was rejected for its length.
func (e *ValidationError) TooShort() bool {
	return e.Position < 0
}
