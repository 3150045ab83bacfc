package kmer_counter

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"nullomer_go/alphabet"
	"nullomer_go/config"
	"nullomer_go/rates"
)

func toyAlphabet(t *testing.T) *alphabet.Alphabet {
	t.Helper()
	ab, err := alphabet.New("AB")
	if err != nil {
		t.Fatal(err)
	}
	return ab
}

func testSettings(workers int) config.Settings {
	s := config.Default()
	s.Workers = workers
	s.MaxMemory = 1 << 30
	return s
}

func foldAll(t *testing.T, tensor *Tensor, records ...string) {
	t.Helper()
	for _, rec := range records {
		if _, err := tensor.Fold(rec); err != nil {
			t.Fatalf("Fold(%q) => %v", rec, err)
		}
	}
}

func descending(t *testing.T, tensor *Tensor, cutoff uint64) []Cell {
	t.Helper()
	cells, err := tensor.Descending(cutoff)
	if err != nil {
		t.Fatalf("Descending(%d) => %v", cutoff, err)
	}
	return cells
}

func TestToyCorpus(t *testing.T) {
	tensor, err := Allocate(toyAlphabet(t), 2, testSettings(1))
	if err != nil {
		t.Fatal(err)
	}
	foldAll(t, tensor, "AAB", "ABA")

	var testtable = []struct {
		kmer  string
		count uint64
	}{
		{"AA", 1}, {"AB", 2}, {"BA", 1}, {"BB", 0},
	}
	for _, tt := range testtable {
		got, err := tensor.Count(tt.kmer)
		if err != nil || got != tt.count {
			t.Errorf("Count(%s) => %d, %v, expected %d", tt.kmer, got, err, tt.count)
		}
	}
	if tensor.Total() != 4 {
		t.Errorf("Total() => %d, expected 4", tensor.Total())
	}
}

func TestDescendingCutoff(t *testing.T) {
	tensor, _ := Allocate(toyAlphabet(t), 2, testSettings(1))
	foldAll(t, tensor, "AAB", "ABA")

	var testtable = []struct {
		cutoff uint64
		kmers  string
	}{
		{0, "AB,AA,BA"},
		{1, "AB,AA,BA"},
		{2, "AB"},
		{3, ""},
	}
	for _, tt := range testtable {
		var kmers []string
		for _, c := range descending(t, tensor, tt.cutoff) {
			kmers = append(kmers, tensor.Kmer(c.Index))
		}
		if got := strings.Join(kmers, ","); got != tt.kmers {
			t.Errorf("Descending(%d) => %s, expected %s", tt.cutoff, got, tt.kmers)
		}
	}
	var nullomers []string
	for idx := range tensor.Nullomers() {
		nullomers = append(nullomers, tensor.Kmer(idx))
	}
	if strings.Join(nullomers, ",") != "BB" {
		t.Errorf("Nullomers() => %v", nullomers)
	}
}

func TestFoldEdgeCases(t *testing.T) {
	tensor, _ := Allocate(alphabet.AminoAcids(), 3, testSettings(1))
	if n, _ := tensor.Fold("MKV"); n != 1 {
		t.Errorf("record of length k folded %d windows, expected 1", n)
	}
	if n, _ := tensor.Fold("MK"); n != 0 {
		t.Errorf("short record folded %d windows", n)
	}
	if _, err := tensor.Fold("MKXV"); err == nil {
		t.Error("Fold accepted a residue outside the alphabet")
	}
	if tensor.Total() != 1 {
		t.Errorf("Total() => %d after rejected records, expected 1", tensor.Total())
	}
}

func TestAllocateErrors(t *testing.T) {
	ab := alphabet.AminoAcids()
	for _, k := range []int{0, -2} {
		if _, err := Allocate(ab, k, testSettings(1)); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("Allocate(k=%d) => %v, expected ErrInvalidLength", k, err)
		}
	}
	small := testSettings(1)
	small.MaxMemory = 1 << 20
	var aerr *config.AllocationError
	if _, err := Allocate(ab, 5, small); !errors.As(err, &aerr) {
		t.Errorf("Allocate(k=5, 1MiB) => %v, expected AllocationError", err)
	}
	if _, err := Allocate(ab, 20, testSettings(1)); !errors.As(err, &aerr) {
		t.Errorf("Allocate(k=20) => %v, expected AllocationError", err)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	tensor, _ := Allocate(alphabet.AminoAcids(), 3, testSettings(1))
	for _, kmer := range []string{"AAA", "YYY", "MKV", "WCH"} {
		idx, err := tensor.Index(kmer)
		if err != nil {
			t.Fatal(err)
		}
		if got := tensor.Kmer(idx); got != kmer {
			t.Errorf("Kmer(Index(%s)) => %s", kmer, got)
		}
	}
	if idx, _ := tensor.Index("AAC"); idx != 1 {
		t.Errorf("Index(AAC) => %d, expected 1", idx)
	}
	if idx, _ := tensor.Index("CAA"); idx != 400 {
		t.Errorf("Index(CAA) => %d, expected 400", idx)
	}
	if _, err := tensor.Index("AX"); err == nil {
		t.Error("Index accepted a wrong length k-mer")
	}
}

func randomProteins(r *rand.Rand, n, maxLen int, residues string) []string {
	out := make([]string, n)
	for i := range out {
		b := make([]byte, r.Intn(maxLen+1))
		for j := range b {
			b[j] = residues[r.Intn(len(residues))]
		}
		out[i] = string(b)
	}
	return out
}

func TestSumInvariantAndCompleteness(t *testing.T) {
	ab := alphabet.AminoAcids()
	r := rand.New(rand.NewSource(7))
	records := randomProteins(r, 300, 40, alphabet.AminoAcidSymbols)
	records = append(records, "MKXLL", "BZBZB") // rejected: outside the alphabet

	for _, k := range []int{1, 2, 3} {
		tensor, stats, err := Count(context.Background(), ab, k, testSettings(4), FromSlice(ab, k, records))
		if err != nil {
			t.Fatal(err)
		}
		var want uint64
		for _, rec := range records {
			if ab.Contains(rec) && len(rec) >= k {
				want += uint64(len(rec) - k + 1)
			}
		}
		if tensor.Total() != want {
			t.Errorf("k=%d Total() => %d, expected %d", k, tensor.Total(), want)
		}
		if stats.InvalidSymbols != 2 {
			t.Errorf("k=%d InvalidSymbols => %d", k, stats.InvalidSymbols)
		}

		seen := make([]int, tensor.Cells())
		var resum uint64
		for _, c := range descending(t, tensor, 1) {
			seen[c.Index]++
			resum += c.Count
		}
		for idx := range tensor.Nullomers() {
			seen[idx]++
		}
		if resum != tensor.Total() {
			t.Errorf("k=%d re-summed descending counts %d, expected %d", k, resum, tensor.Total())
		}
		for idx, n := range seen {
			if n != 1 {
				t.Fatalf("k=%d cell %d enumerated %d times", k, idx, n)
			}
		}
		cells := descending(t, tensor, 1)
		for i := 1; i < len(cells); i++ {
			if cells[i].Count > cells[i-1].Count {
				t.Fatalf("k=%d Descending not ordered at %d", k, i)
			}
		}
	}
}

func TestDescendingMemoryCeiling(t *testing.T) {
	s := testSettings(1)
	s.MaxMemory = 400*8 + 10*16 // the 2-mer tensor and ten sorted rows
	tensor, err := Allocate(alphabet.AminoAcids(), 2, s)
	if err != nil {
		t.Fatal(err)
	}
	foldAll(t, tensor, alphabet.AminoAcidSymbols, "MKMK")

	var aerr *config.AllocationError
	if _, err := tensor.Descending(1); !errors.As(err, &aerr) {
		t.Fatalf("Descending(1) over 21 rows => %v, expected AllocationError", err)
	}
	var buf bytes.Buffer
	if _, err := WriteReport(&buf, tensor, 2, rates.Standard(tensor.Alphabet()), 1); !errors.As(err, &aerr) {
		t.Errorf("WriteReport => %v, expected AllocationError", err)
	}
	// MK is the only 2-mer seen twice
	if cells := descending(t, tensor, 2); len(cells) != 1 || tensor.Kmer(cells[0].Index) != "MK" {
		t.Errorf("Descending(2) => %v", cells)
	}
}

func TestShardedCountMatchesSerial(t *testing.T) {
	ab := alphabet.AminoAcids()
	records := randomProteins(rand.New(rand.NewSource(11)), 500, 60, alphabet.AminoAcidSymbols)

	serial, _ := Allocate(ab, 2, testSettings(1))
	for _, rec := range records {
		serial.Fold(rec)
	}
	sharded, _, err := Count(context.Background(), ab, 2, testSettings(8), FromSlice(ab, 2, records))
	if err != nil {
		t.Fatal(err)
	}
	for i := uint64(0); i < serial.Cells(); i++ {
		if serial.At(i) != sharded.At(i) {
			t.Fatalf("cell %s => %d sharded, %d serial", serial.Kmer(i), sharded.At(i), serial.At(i))
		}
	}
}

func TestCountReducesWorkersToFitMemory(t *testing.T) {
	ab := alphabet.AminoAcids()
	s := testSettings(16)
	s.MaxMemory = 3 * 400 * 8 // three 2-mer tensors
	tensor, _, err := Count(context.Background(), ab, 2, s, FromSlice(ab, 2, []string{"MKVL"}))
	if err != nil {
		t.Fatal(err)
	}
	if tensor.Total() != 3 {
		t.Errorf("Total() => %d", tensor.Total())
	}
}

func TestCountEmptyCorpus(t *testing.T) {
	tensor, _, err := Count(context.Background(), toyAlphabet(t), 2, testSettings(2), FromSlice(toyAlphabet(t), 2, nil))
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for range tensor.Nullomers() {
		n++
	}
	if n != 4 || len(descending(t, tensor, 1)) != 0 {
		t.Errorf("empty corpus => %d nullomers, %d observed", n, len(descending(t, tensor, 1)))
	}
}

func TestCountCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ab := toyAlphabet(t)
	_, _, err := Count(ctx, ab, 2, testSettings(2), FromSlice(ab, 2, []string{"AAB", "ABA"}))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Count on cancelled context => %v", err)
	}
}

func TestWriteReportToy(t *testing.T) {
	ab := toyAlphabet(t)
	tensor, _ := Allocate(ab, 2, testSettings(1))
	foldAll(t, tensor, "AAB", "ABA")

	var buf bytes.Buffer
	stats, err := WriteReport(&buf, tensor, 2, rates.Standard(ab), 0)
	if err != nil {
		t.Fatal(err)
	}
	want := "Peptide, EnrichmentByCodonRate, EnrichmentByUniprotRates, PeptideCount, (TotalSequences=2), (TotalPeptides=4)\n" +
		"AB,2.0,2.0,2\n" +
		"AA,1.0,1.0,1\n" +
		"BA,1.0,1.0,1\n" +
		"BB,-1.0,-1.0,0\n"
	if buf.String() != want {
		t.Errorf("WriteReport =>\n%s\nexpected\n%s", buf.String(), want)
	}
	if stats.Observed != 3 || stats.Nullomers != 1 || stats.Total != 4 {
		t.Errorf("stats => %+v", stats)
	}

	buf.Reset()
	WriteReport(&buf, tensor, 2, rates.Standard(ab), 2)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[1] != "AB,2.0,2.0,2" || lines[2] != "BB,-1.0,-1.0,0" {
		t.Errorf("cutoff 2 report => %q", lines)
	}
}

func TestSpectrumSummary(t *testing.T) {
	tensor, _ := Allocate(toyAlphabet(t), 2, testSettings(1))
	foldAll(t, tensor, "AAB", "ABA")
	s := tensor.Spectrum()
	if len(s.Counts) != 3 || s.Counts[0] != 0 || s.Cells[0] != 1 || s.Counts[2] != 2 {
		t.Errorf("Spectrum() => %+v", s)
	}
	sum := s.Summary()
	if sum.Cells != 4 || sum.Total != 4 || sum.Nullomers != 1 || sum.Observed != 3 || sum.Max != 2 {
		t.Errorf("Summary() => %+v", sum)
	}
	if sum.Mean != 1 {
		t.Errorf("Mean => %v, expected 1", sum.Mean)
	}
	if sum.NullomerFraction() != 0.25 {
		t.Errorf("NullomerFraction() => %v", sum.NullomerFraction())
	}
}
