package sanity_check

import (
	"math/rand"
	"strings"
)

// RandomProtein returns a protein of length residues drawn from symbols, starting with
// methionine when the alphabet has one.
func RandomProtein(r *rand.Rand, symbols string, length int) string {
	if length <= 0 {
		return ""
	}
	seq := make([]byte, length)
	for i := range seq {
		seq[i] = symbols[r.Intn(len(symbols))]
	}
	if strings.IndexByte(symbols, 'M') >= 0 {
		seq[0] = 'M'
	}
	return string(seq)
}

// RandomCorpus returns n proteins with lengths in [minLen, maxLen].
func RandomCorpus(r *rand.Rand, symbols string, n, minLen, maxLen int) []string {
	corpus := make([]string, n)
	for i := range corpus {
		corpus[i] = RandomProtein(r, symbols, minLen+r.Intn(maxLen-minLen+1))
	}
	return corpus
}

// WrapFasta writes seq as FASTA sequence lines of width residues.
func WrapFasta(seq string, width int) string {
	var out strings.Builder
	for i := 0; i < len(seq); i += width {
		end := min(i+width, len(seq))
		out.WriteString(seq[i:end])
		out.WriteByte('\n')
	}
	return out.String()
}
