// Package sequence_source extracts protein records from a UniProt XML dump or a FASTA file
// and passes on only the records that can be counted.
package sequence_source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"nullomer_go/alphabet"
	common "nullomer_go/utils"
)

type Format int

const (
	FormatAuto Format = iota
	FormatUniProt
	FormatFASTA
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "uniprot", "xml":
		return FormatUniProt, nil
	case "fasta", "fa":
		return FormatFASTA, nil
	}
	return FormatAuto, fmt.Errorf("unknown input format %q (auto, uniprot, fasta)", s)
}

func (f Format) String() string {
	switch f {
	case FormatUniProt:
		return "uniprot"
	case FormatFASTA:
		return "fasta"
	}
	return "auto"
}

// DetectFormat picks FASTA for the usual FASTA extensions and UniProt XML otherwise.
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".gz")))
	switch ext {
	case ".fa", ".fasta", ".faa", ".fas":
		return FormatFASTA
	}
	return FormatUniProt
}

// Stats tallies what happened to each record.
type Stats struct {
	Lines          int64 // UniProt only
	Records        int64
	Accepted       int64
	TooShort       int64
	InvalidSymbols int64
}

// Scanner yields alphabet-pure records of at least MinLength residues.
type Scanner struct {
	Alphabet      *alphabet.Alphabet
	MinLength     int
	Format        Format
	Progress      bool // draw a progress bar while reading a file
	ProgressEvery int  // otherwise log every this many records
}

// EmitFunc receives each accepted record.
type EmitFunc func(seq string) error

// Scan reads r in the scanner's format. Auto is treated as UniProt.
func (s *Scanner) Scan(ctx context.Context, r io.Reader, emit EmitFunc) (Stats, error) {
	var stats Stats
	ticker := common.Ticker{Label: "reading sequences", Every: s.ProgressEvery}
	if s.Progress {
		ticker.Every = 0
	}

	accept := func(seq string) error {
		stats.Records++
		ticker.Tick()
		if err := s.Alphabet.Validate(seq, s.MinLength); err != nil {
			var verr *alphabet.ValidationError
			if !errors.As(err, &verr) {
				return err
			}
			if verr.TooShort() {
				stats.TooShort++
			} else {
				stats.InvalidSymbols++
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Accepted++
		return emit(seq)
	}

	if s.Format == FormatFASTA {
		err := common.StreamFasta(r, func(_ string, seq string) error {
			return accept(seq)
		})
		return stats, err
	}

	scanner := common.NewLineScanner(r)
	for scanner.Scan() {
		stats.Lines++
		seq, ok := ExtractSequence(scanner.Text())
		if !ok {
			continue
		}
		if err := accept(seq); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scanner error at line %d: %w", stats.Lines, err)
	}
	return stats, nil
}

// ScanFile opens a plain or gzip-compressed path and scans it.
func (s *Scanner) ScanFile(ctx context.Context, path string, emit EmitFunc) (Stats, error) {
	in, err := common.OpenInput(path, s.Progress)
	if err != nil {
		return Stats{}, err
	}
	defer in.Close()

	scan := *s
	if scan.Format == FormatAuto {
		scan.Format = DetectFormat(path)
	}
	stats, err := scan.Scan(ctx, in, emit)
	if err != nil {
		return stats, fmt.Errorf("reading %s: %w", path, err)
	}
	return stats, nil
}

// ExtractSequence pulls the text between <sequence ...> and </sequence on a single line.
// It does not parse XML; lines without all three markers yield false.
func ExtractSequence(line string) (string, bool) {
	pos1 := strings.Index(line, "<sequence")
	if pos1 < 0 {
		return "", false
	}
	pos2 := strings.IndexByte(line[pos1:], '>')
	if pos2 < 0 {
		return "", false
	}
	start := pos1 + pos2 + 1
	pos3 := strings.Index(line[start:], "</sequence")
	if pos3 < 0 {
		return "", false
	}
	return line[start : start+pos3], true
}
