// Package peptide_report reads and writes the peptide count report: the only contract
// between the counting stage and the motif stages.
//
// Layout:
//
//	Peptide, EnrichmentByCodonRate, EnrichmentByUniprotRates, PeptideCount, (TotalSequences=S), (TotalPeptides=T)
//	LLLL,1.234,0.9766,5123
//	...
//	WWCM,-1.0,-1.0,0
package peptide_report

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"nullomer_go/alphabet"
)

// Sentinel written for both ratios of a nullomer row
const NoEnrichment = -1.0

// Row is one peptide of the report.
type Row struct {
	Peptide            string
	CodonEnrichment    float64
	ObservedEnrichment float64
	Count              uint64
}

func (r Row) IsNullomer() bool {
	return r.Count == 0
}

// Summary is the annotation carried by the header line.
type Summary struct {
	TotalSequences int64
	TotalPeptides  uint64
}

func (s Summary) Header() string {
	return fmt.Sprintf("Peptide, EnrichmentByCodonRate, EnrichmentByUniprotRates, PeptideCount, (TotalSequences=%d), (TotalPeptides=%d)\n",
		s.TotalSequences, s.TotalPeptides)
}

var (
	totalSequencesRe = regexp.MustCompile(`\(TotalSequences=(\d+)\)`)
	totalPeptidesRe  = regexp.MustCompile(`\(TotalPeptides=(\d+)\)`)
)

// ParseSummary recovers the totals from a header line.
func ParseSummary(header string) (Summary, bool) {
	var s Summary
	seqs := totalSequencesRe.FindStringSubmatch(header)
	peps := totalPeptidesRe.FindStringSubmatch(header)
	if seqs == nil || peps == nil {
		return s, false
	}
	var err1, err2 error
	s.TotalSequences, err1 = strconv.ParseInt(seqs[1], 10, 64)
	s.TotalPeptides, err2 = strconv.ParseUint(peps[1], 10, 64)
	return s, err1 == nil && err2 == nil
}

// Significant digits of the enrichment ratios
const ratioDigits = 4

// FormatRatio renders v with 4 significant digits the way Python's "{:.4}" does:
// scientific when the rounded exponent is below -4 or at least 3, otherwise fixed with
// at least one decimal. 1.0, 0.9766, 12.35, 1.234e+03, 1e+05, -1.0.
func FormatRatio(v float64) string {
	return string(appendRatio(nil, v))
}

func appendRatio(dst []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(dst, "nan"...)
	case math.IsInf(v, 1):
		return append(dst, "inf"...)
	case math.IsInf(v, -1):
		return append(dst, "-inf"...)
	}
	var tmp [32]byte
	sci := strconv.AppendFloat(tmp[:0], v, 'e', ratioDigits-1, 64)
	e := bytes.IndexByte(sci, 'e')
	exp, _ := strconv.Atoi(string(sci[e+1:]))

	if exp < -4 || exp >= ratioDigits-1 {
		mant := bytes.TrimRight(sci[:e], "0")
		mant = bytes.TrimSuffix(mant, []byte("."))
		dst = append(dst, mant...)
		return append(dst, sci[e:]...)
	}
	// exp <= 2 here, so there is always at least one decimal
	dst = strconv.AppendFloat(dst, v, 'f', ratioDigits-1-exp, 64)
	for dst[len(dst)-1] == '0' && dst[len(dst)-2] != '.' {
		dst = dst[:len(dst)-1]
	}
	return dst
}

// Writer emits the header followed by rows.
type Writer struct {
	w    io.Writer
	buf  []byte
	rows int64
}

func NewWriter(w io.Writer, s Summary) (*Writer, error) {
	if _, err := io.WriteString(w, s.Header()); err != nil {
		return nil, err
	}
	return &Writer{w: w, buf: make([]byte, 0, 64)}, nil
}

func (w *Writer) Write(r Row) error {
	b := w.buf[:0]
	b = append(b, r.Peptide...)
	b = append(b, ',')
	b = appendRatio(b, r.CodonEnrichment)
	b = append(b, ',')
	b = appendRatio(b, r.ObservedEnrichment)
	b = append(b, ',')
	b = strconv.AppendUint(b, r.Count, 10)
	b = append(b, '\n')
	w.buf = b
	w.rows++
	_, err := w.w.Write(b)
	return err
}

func (w *Writer) Rows() int64 {
	return w.rows
}

// FormatError marks a report line that could not be parsed. Readers skip such lines.
type FormatError struct {
	Line   int64
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	text := e.Text
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return fmt.Sprintf("line %d %q: %s", e.Line, text, e.Reason)
}

// ParseRow parses "<peptide>,<codon ratio>,<observed ratio>,<count>". Only the peptide
// and the trailing count are required; unreadable ratios come back as NaN.
func ParseRow(line string, ab *alphabet.Alphabet) (Row, error) {
	var row Row
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) < 2 {
		return row, &FormatError{Text: line, Reason: "expected comma separated fields"}
	}
	row.Peptide = strings.TrimSpace(fields[0])
	if row.Peptide == "" {
		return row, &FormatError{Text: line, Reason: "empty peptide"}
	}
	if !ab.Contains(row.Peptide) {
		return row, &FormatError{Text: line, Reason: "peptide has residues outside the alphabet"}
	}
	count, err := strconv.ParseUint(strings.TrimSpace(fields[len(fields)-1]), 10, 64)
	if err != nil {
		return row, &FormatError{Text: line, Reason: "unreadable count"}
	}
	row.Count = count

	row.CodonEnrichment, row.ObservedEnrichment = math.NaN(), math.NaN()
	if len(fields) == 4 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64); err == nil {
			row.CodonEnrichment = v
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64); err == nil {
			row.ObservedEnrichment = v
		}
	}
	return row, nil
}
