// Package sanity_check runs the counting and motif engines end to end on corpora with
// known answers.
package sanity_check

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"slices"

	log "github.com/sirupsen/logrus"

	"nullomer_go/alphabet"
	"nullomer_go/config"
	"nullomer_go/kmer_counter"
	"nullomer_go/motif_finder"
	"nullomer_go/peptide_report"
	"nullomer_go/rates"
	"nullomer_go/sequence_source"
)

// Check is one self-test.
type Check struct {
	Name string
	Run  func(ctx context.Context, settings config.Settings) error
}

// Checks in the order Run executes them
func Checks() []Check {
	return []Check{
		{"toy corpus counts", checkToyCounts},
		{"toy nullomer motifs", checkToyMotifs},
		{"fasta corpus scan", checkFastaScan},
		{"random corpus sharding", checkSharding},
		{"random corpus strategies", checkStrategies},
	}
}

// Run executes every check and fails if any of them does.
func Run(ctx context.Context, settings config.Settings) error {
	failed := 0
	for _, c := range Checks() {
		if err := c.Run(ctx, settings); err != nil {
			log.WithError(err).Errorf("check failed: %s", c.Name)
			failed++
			continue
		}
		log.Infof("check passed: %s", c.Name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(Checks()))
	}
	log.Infof("Successfully running nullomer_go! (%s)", config.Main_version)
	return nil
}

func toyAlphabet() *alphabet.Alphabet {
	ab, err := alphabet.New("AB")
	if err != nil {
		panic(err)
	}
	return ab
}

// toyReport counts AAB and ABA as 2-mers and round trips the report text.
func toyReport(ctx context.Context, settings config.Settings) ([]peptide_report.Row, error) {
	ab := toyAlphabet()
	t, _, err := kmer_counter.Count(ctx, ab, 2, settings, kmer_counter.FromSlice(ab, 2, []string{"AAB", "ABA"}))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := kmer_counter.WriteReport(&buf, t, 2, rates.Standard(ab), 0); err != nil {
		return nil, err
	}
	var rows []peptide_report.Row
	_, err = peptide_report.Read(&buf, ab, 0, func(row peptide_report.Row) error {
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

func checkToyCounts(ctx context.Context, settings config.Settings) error {
	rows, err := toyReport(ctx, settings)
	if err != nil {
		return err
	}
	want := []peptide_report.Row{
		{Peptide: "AB", Count: 2}, {Peptide: "AA", Count: 1}, {Peptide: "BA", Count: 1}, {Peptide: "BB", Count: 0},
	}
	if len(rows) != len(want) {
		return fmt.Errorf("report has %d rows, expected %d", len(rows), len(want))
	}
	for i, w := range want {
		if rows[i].Peptide != w.Peptide || rows[i].Count != w.Count {
			return fmt.Errorf("row %d is %s=%d, expected %s=%d", i, rows[i].Peptide, rows[i].Count, w.Peptide, w.Count)
		}
	}
	return nil
}

func checkToyMotifs(ctx context.Context, settings config.Settings) error {
	rows, err := toyReport(ctx, settings)
	if err != nil {
		return err
	}
	space, err := motif_finder.NewSpace(toyAlphabet(), 2, settings)
	if err != nil {
		return err
	}
	want := map[string]uint64{"B.": 1, ".B": 1, "A.": 0, ".A": 0}
	for _, strategy := range []motif_finder.Strategy{motif_finder.StrategyExpand, motif_finder.StrategyScan} {
		scorer := &motif_finder.Scorer{Space: space, Settings: settings, Strategy: strategy}
		res, err := scorer.Score(ctx, rows, motif_finder.ModeNullomer)
		if err != nil {
			return err
		}
		for motif, n := range want {
			key, _ := space.Key(motif)
			if got := res.Table.Count(key); got != n {
				return fmt.Errorf("%s: %s matched %d nullomers, expected %d", strategy, motif, got, n)
			}
		}
	}
	return nil
}

func checkFastaScan(ctx context.Context, settings config.Settings) error {
	ab := alphabet.AminoAcids()
	corpus := RandomCorpus(rand.New(rand.NewSource(3)), ab.Symbols(), 40, 1, 150)
	var fasta bytes.Buffer
	for i, rec := range corpus {
		fmt.Fprintf(&fasta, ">random_%d\n%s", i, WrapFasta(rec, 60))
	}
	fasta.WriteString(">bad\nMKXV\n")

	scanner := &sequence_source.Scanner{Alphabet: ab, MinLength: 3, Format: sequence_source.FormatFASTA}
	var got []string
	stats, err := scanner.Scan(ctx, &fasta, func(seq string) error {
		got = append(got, seq)
		return nil
	})
	if err != nil {
		return err
	}
	var want []string
	for _, rec := range corpus {
		if len(rec) >= 3 {
			want = append(want, rec)
		}
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("scanned %d records, expected %d", len(got), len(want))
	}
	if stats.InvalidSymbols != 1 || stats.TooShort != int64(len(corpus)-len(want)) {
		return fmt.Errorf("rejections: %d invalid, %d too short", stats.InvalidSymbols, stats.TooShort)
	}
	return nil
}

func checkSharding(ctx context.Context, settings config.Settings) error {
	ab := alphabet.AminoAcids()
	corpus := RandomCorpus(rand.New(rand.NewSource(1)), ab.Symbols(), 500, 1, 60)
	const k = 3

	serial := settings
	serial.Workers = 1
	one, stats, err := kmer_counter.Count(ctx, ab, k, serial, kmer_counter.FromSlice(ab, k, corpus))
	if err != nil {
		return err
	}
	many, _, err := kmer_counter.Count(ctx, ab, k, settings, kmer_counter.FromSlice(ab, k, corpus))
	if err != nil {
		return err
	}

	var windows uint64
	for _, rec := range corpus {
		if len(rec) >= k {
			windows += uint64(len(rec) - k + 1)
		}
	}
	if one.Total() != windows || many.Total() != windows {
		return fmt.Errorf("tensor totals %d (serial) and %d (sharded), expected %d windows from %d records",
			one.Total(), many.Total(), windows, stats.Accepted)
	}
	for i := uint64(0); i < one.Cells(); i++ {
		if one.At(i) != many.At(i) {
			return fmt.Errorf("%s counted %d serially, %d sharded", one.Kmer(i), one.At(i), many.At(i))
		}
	}
	return nil
}

func checkStrategies(ctx context.Context, settings config.Settings) error {
	ab := alphabet.AminoAcids()
	corpus := RandomCorpus(rand.New(rand.NewSource(2)), ab.Symbols(), 200, 3, 40)
	t, _, err := kmer_counter.Count(ctx, ab, 3, settings, kmer_counter.FromSlice(ab, 3, corpus))
	if err != nil {
		return err
	}
	cells, err := t.Descending(1)
	if err != nil {
		return err
	}
	var rows []peptide_report.Row
	for _, cell := range cells {
		rows = append(rows, peptide_report.Row{Peptide: t.Kmer(cell.Index), Count: cell.Count})
	}

	space, err := motif_finder.NewSpace(ab, 2, settings)
	if err != nil {
		return err
	}
	expand := &motif_finder.Scorer{Space: space, Settings: settings, Strategy: motif_finder.StrategyExpand}
	scan := &motif_finder.Scorer{Space: space, Settings: settings, Strategy: motif_finder.StrategyScan}
	a, err := expand.Score(ctx, rows, motif_finder.ModePeptide)
	if err != nil {
		return err
	}
	b, err := scan.Score(ctx, rows, motif_finder.ModePeptide)
	if err != nil {
		return err
	}
	if !slices.Equal(a.Table.Occurrences(), b.Table.Occurrences()) {
		return fmt.Errorf("expand found %d motifs, scan %d, tables differ", a.Table.Len(), b.Table.Len())
	}
	// every peptide window matches ".." once
	key, _ := space.Key("..")
	if got := a.Table.Count(key); got != 2*a.Denominator {
		return fmt.Errorf(".. matched %d windows, expected %d", got, 2*a.Denominator)
	}
	return nil
}
