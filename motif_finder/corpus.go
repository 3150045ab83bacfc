package motif_finder

import (
	log "github.com/sirupsen/logrus"

	"nullomer_go/alphabet"
	"nullomer_go/peptide_report"
)

type Mode int

const (
	// ModeNullomer scores the rows never observed, each weighted 1.
	ModeNullomer Mode = iota
	// ModePeptide scores the observed rows, each weighted by its count.
	ModePeptide
)

func (m Mode) String() string {
	if m == ModePeptide {
		return "peptide"
	}
	return "nullomer"
}

// weight returns the weight of row under m and whether the row qualifies.
func (m Mode) weight(row peptide_report.Row) (uint64, bool) {
	switch m {
	case ModeNullomer:
		return 1, row.Count == 0
	case ModePeptide:
		return row.Count, row.Count > 0
	}
	return 0, false
}

// Corpus holds the encoded peptides that qualify for one mode.
type Corpus struct {
	ab       *alphabet.Alphabet
	mode     Mode
	peptides [][]int8
	weights  []uint64

	Rows        int64  // qualifying rows
	Denominator uint64 // Rows for nullomers, the summed counts for peptides
	Length      int    // peptide length, -1 once rows of different lengths were added
	Skipped     int64  // qualifying rows with residues outside the alphabet
}

func NewCorpus(ab *alphabet.Alphabet, mode Mode) *Corpus {
	return &Corpus{ab: ab, mode: mode}
}

func (c *Corpus) Mode() Mode {
	return c.mode
}

// Add keeps row if it qualifies for the corpus mode. A qualifying row whose peptide has
// residues outside the alphabet is skipped and counted in Skipped.
func (c *Corpus) Add(row peptide_report.Row) bool {
	w, ok := c.mode.weight(row)
	if !ok {
		return false
	}
	codes, err := c.ab.Encode(row.Peptide, false)
	if err != nil || len(codes) == 0 {
		c.Skipped++
		log.Debugf("skipping peptide %q: %v", row.Peptide, err)
		return false
	}
	switch {
	case c.Rows == 0:
		c.Length = len(codes)
	case c.Length != len(codes):
		c.Length = -1
	}
	c.peptides = append(c.peptides, codes)
	c.weights = append(c.weights, w)
	c.Rows++
	c.Denominator += w
	return true
}
