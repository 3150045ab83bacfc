package kmer_counter

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Spectrum is the count-frequency distribution of a tensor: Cells[i] k-mers were seen
// exactly Counts[i] times. Counts is ascending.
type Spectrum struct {
	Counts []uint64
	Cells  []uint64
}

func (t *Tensor) Spectrum() Spectrum {
	freq := make(map[uint64]uint64)
	for _, c := range t.counts {
		freq[c]++
	}
	var s Spectrum
	for c := range freq {
		s.Counts = append(s.Counts, c)
	}
	slices.Sort(s.Counts)
	for _, c := range s.Counts {
		s.Cells = append(s.Cells, freq[c])
	}
	return s
}

// Summary describes how counts spread over the k-mer space.
type Summary struct {
	Cells     uint64
	Observed  uint64 // cells with a non-zero count
	Nullomers uint64
	Total     uint64
	Max       uint64
	Mean      float64
	StdDev    float64
}

// NullomerFraction is the share of the space never observed.
func (s Summary) NullomerFraction() float64 {
	if s.Cells == 0 {
		return 0
	}
	return float64(s.Nullomers) / float64(s.Cells)
}

func (s Spectrum) Summary() Summary {
	var sum Summary
	if len(s.Counts) == 0 {
		return sum
	}
	values := make([]float64, len(s.Counts))
	weights := make([]float64, len(s.Counts))
	for i, c := range s.Counts {
		values[i] = float64(c)
		weights[i] = float64(s.Cells[i])
		sum.Cells += s.Cells[i]
		sum.Total += c * s.Cells[i]
		if c == 0 {
			sum.Nullomers = s.Cells[i]
		}
	}
	sum.Observed = sum.Cells - sum.Nullomers
	sum.Max = s.Counts[len(s.Counts)-1]
	sum.Mean, sum.StdDev = stat.PopMeanStdDev(values, weights)
	return sum
}
