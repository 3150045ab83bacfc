package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMemoryFlag(t *testing.T) {
	var m memoryFlag
	if err := m.Set("2GiB"); err != nil || uint64(m) != 2<<30 {
		t.Errorf("Set(2GiB) => %d, %v", m, err)
	}
	if m.String() != "2.0 GiB" {
		t.Errorf("String() => %q", m.String())
	}
	for _, bad := range []string{"lots", "0"} {
		if err := m.Set(bad); err == nil {
			t.Errorf("Set(%q) accepted", bad)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"nullomer_go:", "Count Peptides:", "Peptide Motifs:"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}

func TestArgumentErrors(t *testing.T) {
	var testtable = [][]string{
		{"count_peptides", "in", "out"},
		{"count_peptides", "in", "out", "three"},
		{"nullomer_motifs", "in", "out", "2", "--strategy", "fast"},
		{"peptide_motifs", "in", "out", "0"},
	}
	for _, args := range testtable {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v accepted", args)
		}
	}
}

func TestPipeline(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus.fasta")
	if err := os.WriteFile(corpus, []byte(">p1\nMKVLA\nAGW\n>p2\nMKKV\n>short\nM\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	counts := filepath.Join(dir, "counts.csv.gz")
	if _, err := execute(t, "count_peptides", corpus, counts, "2", "--workers", "2", "--max_memory", "64MiB"); err != nil {
		t.Fatalf("count_peptides: %v", err)
	}

	nullomers := filepath.Join(dir, "nullomer_motifs.txt")
	if _, err := execute(t, "nullomer_motifs", counts, nullomers, "1"); err != nil {
		t.Fatalf("nullomer_motifs: %v", err)
	}
	peptides := filepath.Join(dir, "peptide_motifs.txt")
	if _, err := execute(t, "peptide_motifs", counts, peptides, "2", "--strategy", "scan"); err != nil {
		t.Fatalf("peptide_motifs: %v", err)
	}

	// 7 windows in p1, 3 in p2
	data, err := os.ReadFile(peptides)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if !strings.HasSuffix(lines[0], "(TotalPeptides=10)") {
		t.Errorf("header %q", lines[0])
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[1]), "..,") || !strings.Contains(lines[1], " 10,") {
		t.Errorf("first row %q, expected the full wildcard with 10 matches", lines[1])
	}

	data, err = os.ReadFile(nullomers)
	if err != nil {
		t.Fatal(err)
	}
	// 400 2-mers, 8 distinct observed
	if !strings.Contains(string(data), "(TotalNullomers=392)") {
		t.Errorf("nullomer header:\n%s", strings.SplitN(string(data), "\n", 2)[0])
	}
}
