package kmer_counter

import (
	"io"

	log "github.com/sirupsen/logrus"

	"nullomer_go/peptide_report"
	"nullomer_go/rates"
)

// ReportStats counts the rows written by WriteReport.
type ReportStats struct {
	Total     uint64 // windows in the tensor
	Observed  int64  // rows with a count at or above the cutoff
	Nullomers int64
}

// WriteReport writes the peptide count report: every k-mer with count >= cutoff, highest
// count first, then every k-mer never seen. Observed rows carry
// count / (rate * total) for both baselines; nullomer rows carry the -1.0 sentinel.
// The tensor is not modified.
func WriteReport(w io.Writer, t *Tensor, sequences int64, baselines rates.Baselines, cutoff uint64) (ReportStats, error) {
	stats := ReportStats{Total: t.Total()}
	observed, err := t.Descending(cutoff)
	if err != nil {
		return stats, err
	}
	pw, err := peptide_report.NewWriter(w, peptide_report.Summary{
		TotalSequences: sequences,
		TotalPeptides:  stats.Total,
	})
	if err != nil {
		return stats, err
	}

	total := float64(stats.Total)
	buf := make([]byte, 0, t.k)
	var lastCount uint64
	for _, cell := range observed {
		if cell.Count != lastCount {
			log.Debugf("writing peptides seen %d times", cell.Count)
			lastCount = cell.Count
		}
		buf = t.appendKmer(buf[:0], cell.Index)
		peptide := string(buf)
		count := float64(cell.Count)
		err := pw.Write(peptide_report.Row{
			Peptide:            peptide,
			CodonEnrichment:    count / (baselines.Codon.Rate(peptide) * total),
			ObservedEnrichment: count / (baselines.Observed.Rate(peptide) * total),
			Count:              cell.Count,
		})
		if err != nil {
			return stats, err
		}
		stats.Observed++
	}

	log.Debug("writing nullomers")
	for idx := range t.Nullomers() {
		buf = t.appendKmer(buf[:0], idx)
		err := pw.Write(peptide_report.Row{
			Peptide:            string(buf),
			CodonEnrichment:    peptide_report.NoEnrichment,
			ObservedEnrichment: peptide_report.NoEnrichment,
		})
		if err != nil {
			return stats, err
		}
		stats.Nullomers++
	}
	return stats, nil
}
