package motif_finder

import "nullomer_go/alphabet"

// MatchCount returns how many start positions 0..len(peptide)-len(motif) match motif,
// where a wildcard digit matches any residue. It is 0 when the peptide is shorter.
func MatchCount(motif, peptide []int8, wildcard int8) int {
	m := len(motif)
	count := 0
	for i := 0; i+m <= len(peptide); i++ {
		j := 0
		for ; j < m; j++ {
			if motif[j] != wildcard && motif[j] != peptide[i+j] {
				break
			}
		}
		if j == m {
			count++
		}
	}
	return count
}

// MatchCount is the string form of MatchCount, '.' being the wildcard.
func (s *Space) MatchCount(motif, peptide string) int {
	m := len(motif)
	count := 0
	for i := 0; i+m <= len(peptide); i++ {
		j := 0
		for ; j < m; j++ {
			if motif[j] != alphabet.Wildcard && motif[j] != peptide[i+j] {
				break
			}
		}
		if j == m {
			count++
		}
	}
	return count
}
