package sequence_source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nullomer_go/alphabet"
)

func TestExtractSequence(t *testing.T) {
	var testtable = []struct {
		line string
		seq  string
		ok   bool
	}{
		{`<sequence length="4" mass="500" checksum="X">MKVL</sequence>`, "MKVL", true},
		{`  <sequence>AAB</sequence>`, "AAB", true},
		{`<sequence length="4">MKVL`, "", false},
		{`<sequence length="4"`, "", false},
		{`<entry dataset="Swiss-Prot">`, "", false},
		{`<sequence></sequence>`, "", true},
	}
	for _, tt := range testtable {
		seq, ok := ExtractSequence(tt.line)
		if seq != tt.seq || ok != tt.ok {
			t.Errorf("ExtractSequence(%q) => %q, %v, expected %q, %v", tt.line, seq, ok, tt.seq, tt.ok)
		}
	}
}

const uniprotSample = `<?xml version="1.0" encoding="UTF-8"?>
<uniprot>
<entry>
<sequence length="6" mass="1">MKVLAA</sequence>
</entry>
<entry>
<sequence length="3" mass="1">MKX</sequence>
</entry>
<entry>
<sequence length="2" mass="1">MK</sequence>
</entry>
<entry>
<sequence length="3" mass="1">WWW</sequence>
</entry>
</uniprot>
`

func TestScanUniProt(t *testing.T) {
	s := Scanner{Alphabet: alphabet.AminoAcids(), MinLength: 3, Format: FormatUniProt}
	var got []string
	stats, err := s.Scan(context.Background(), strings.NewReader(uniprotSample), func(seq string) error {
		got = append(got, seq)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "MKVLAA,WWW" {
		t.Errorf("accepted => %v", got)
	}
	want := Stats{Lines: 15, Records: 4, Accepted: 2, TooShort: 1, InvalidSymbols: 1}
	if stats != want {
		t.Errorf("stats => %+v, expected %+v", stats, want)
	}
}

func TestScanFileFasta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proteins.faa")
	if err := os.WriteFile(path, []byte(">a\nmkv\nla\n>b\nMK\n>c\nMKB\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ab, _ := alphabet.New("AKLMV")
	s := Scanner{Alphabet: ab, MinLength: 3}
	var got []string
	stats, err := s.ScanFile(context.Background(), path, func(seq string) error {
		got = append(got, seq)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "MKVLA" {
		t.Errorf("accepted => %v", got)
	}
	if stats.TooShort != 1 || stats.InvalidSymbols != 1 {
		t.Errorf("stats => %+v", stats)
	}
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := Scanner{Alphabet: alphabet.AminoAcids(), MinLength: 3, Format: FormatUniProt}
	_, err := s.Scan(ctx, strings.NewReader(uniprotSample), func(string) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Scan on cancelled context => %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	var testtable = []struct {
		path   string
		format Format
	}{
		{"uniprot_sprot.xml.gz", FormatUniProt},
		{"uniprot_sprot.xml", FormatUniProt},
		{"proteins.fasta", FormatFASTA},
		{"proteins.FAA.gz", FormatFASTA},
	}
	for _, tt := range testtable {
		if got := DetectFormat(tt.path); got != tt.format {
			t.Errorf("DetectFormat(%q) => %v", tt.path, got)
		}
	}
}
