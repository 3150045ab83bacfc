package peptide_report

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"nullomer_go/alphabet"
	common "nullomer_go/utils"
)

// ReadStats summarizes one pass over a report.
type ReadStats struct {
	Lines      int64
	Rows       int64 // parsed data rows
	Nullomers  int64 // parsed rows with count 0
	Skipped    int64 // malformed rows
	Summary    Summary
	HasSummary bool
}

// Read parses every data row of r and hands it to fn. The first line is always treated as
// the header. Malformed rows are skipped and counted, never fatal; an error from fn stops
// the read and is returned.
func Read(r io.Reader, ab *alphabet.Alphabet, progressEvery int, fn func(Row) error) (ReadStats, error) {
	var stats ReadStats
	scanner := common.NewLineScanner(r)
	ticker := common.Ticker{Label: "reading peptide report", Every: progressEvery}

	for scanner.Scan() {
		stats.Lines++
		line := scanner.Text()
		if stats.Lines == 1 {
			stats.Summary, stats.HasSummary = ParseSummary(line)
			continue
		}
		ticker.Tick()

		row, err := ParseRow(line, ab)
		if err != nil {
			var ferr *FormatError
			if errors.As(err, &ferr) {
				ferr.Line = stats.Lines
				stats.Skipped++
				log.Debugf("skipping %v", ferr)
				continue
			}
			return stats, err
		}
		stats.Rows++
		if row.IsNullomer() {
			stats.Nullomers++
		}
		if err := fn(row); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scanner error at line %d: %w", stats.Lines, err)
	}
	return stats, nil
}

// ReadFile is Read over a plain or gzip-compressed file.
func ReadFile(path string, ab *alphabet.Alphabet, progress bool, progressEvery int, fn func(Row) error) (ReadStats, error) {
	in, err := common.OpenInput(path, progress)
	if err != nil {
		return ReadStats{}, err
	}
	defer in.Close()

	if progress {
		progressEvery = 0
	}
	stats, err := Read(in, ab, progressEvery, fn)
	if err != nil {
		return stats, fmt.Errorf("reading %s: %w", path, err)
	}
	return stats, nil
}
