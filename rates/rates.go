// Package rates provides the two expected-occurrence baselines used to judge enrichment:
// one derived from the standard genetic code, one from observed Swiss-Prot composition.
package rates

import (
	"nullomer_go/alphabet"
)

// Baseline returns the expected probability of seeing peptide at a given position.
// The wildcard contributes a factor of 1; symbols outside the alphabet a factor of 0.
type Baseline interface {
	Rate(peptide string) float64
}

// Baselines bundles the two models every report is joined against.
type Baselines struct {
	Codon    Baseline
	Observed Baseline
}

// Standard returns the codon and Swiss-Prot baselines for ab.
func Standard(ab *alphabet.Alphabet) Baselines {
	return Baselines{Codon: Codon(ab), Observed: Observed(ab)}
}

// Sense codons per amino acid in the standard genetic code (61 total)
var codonsPerAA = map[byte]float64{
	'A': 4, 'R': 6, 'N': 2, 'D': 2, 'C': 2,
	'Q': 2, 'E': 2, 'G': 4, 'H': 2, 'I': 3,
	'L': 6, 'K': 2, 'M': 1, 'F': 2, 'P': 4,
	'S': 6, 'T': 4, 'W': 1, 'Y': 2, 'V': 4,
}

// UniProtKB/Swiss-Prot amino acid composition, percent
var swissProtComposition = map[byte]float64{
	'A': 8.25, 'R': 5.53, 'N': 4.06, 'D': 5.46, 'C': 1.38,
	'Q': 3.93, 'E': 6.72, 'G': 7.07, 'H': 2.27, 'I': 5.91,
	'L': 9.65, 'K': 5.80, 'M': 2.41, 'F': 3.86, 'P': 4.74,
	'S': 6.64, 'T': 5.35, 'W': 1.10, 'Y': 2.92, 'V': 6.86,
}

// Codon weights each residue by its share of the 61 sense codons.
func Codon(ab *alphabet.Alphabet) *Table {
	return newTable(ab, codonsPerAA)
}

// Observed weights each residue by its Swiss-Prot frequency.
func Observed(ab *alphabet.Alphabet) *Table {
	return newTable(ab, swissProtComposition)
}

// Uniform gives every residue 1/n.
func Uniform(ab *alphabet.Alphabet) *Table {
	return newTable(ab, nil)
}

// Table is a per-residue independent rate model.
type Table struct {
	factors [256]float64
}

// newTable normalizes weights over the residues of ab. If ab has a residue without a
// weight (toy alphabets), every residue gets 1/n instead.
func newTable(ab *alphabet.Alphabet, weights map[byte]float64) *Table {
	t := &Table{}
	symbols := ab.Symbols()

	var total float64
	complete := weights != nil
	for i := 0; i < len(symbols) && complete; i++ {
		w, ok := weights[symbols[i]]
		if !ok || w <= 0 {
			complete = false
		}
		total += w
	}
	for i := 0; i < len(symbols); i++ {
		if complete {
			t.factors[symbols[i]] = weights[symbols[i]] / total
		} else {
			t.factors[symbols[i]] = 1 / float64(len(symbols))
		}
	}
	t.factors[alphabet.Wildcard] = 1
	return t
}

func (t *Table) Rate(peptide string) float64 {
	rate := 1.0
	for i := 0; i < len(peptide); i++ {
		rate *= t.factors[peptide[i]]
	}
	return rate
}

// Factor is the single-residue rate of c.
func (t *Table) Factor(c byte) float64 {
	return t.factors[c]
}
