// Common package contains commonly used functions that benefit multiple tools
// Exporting these functions from the Common package reduces redundant code
package common

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"
	gzip "github.com/klauspost/pgzip"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// Longest line accepted by the line scanners (UniProt XML keeps whole sequences on one line)
const MaxLineLength = 64 << 20

// Input is a plain or gzip-compressed file opened for streaming.
type Input struct {
	io.Reader
	file *os.File
	gz   *gzip.Reader
	bar  *pb.ProgressBar
}

// OpenInput opens path for reading. Gzip content is detected from the magic bytes,
// so "counts.csv.gz" and a renamed gzip file both work. With progress set, a byte
// progress bar over the compressed size is drawn on stderr.
func OpenInput(path string, progress bool) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	in := &Input{file: f}

	var raw io.Reader = f
	if progress {
		if info, err := f.Stat(); err == nil {
			in.bar = pb.Full.Start64(info.Size())
			in.bar.Set(pb.Bytes, true)
			in.bar.SetWriter(os.Stderr)
			raw = in.bar.NewProxyReader(f)
		}
	}

	br := bufio.NewReaderSize(raw, 1<<20)
	magic, _ := br.Peek(2)
	if len(magic) == 2 && magic[0] == 0x1F && magic[1] == 0x8B {
		gr, err := gzip.NewReader(br)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("failed to open gzip reader for %s: %w", path, err)
		}
		in.gz = gr
		in.Reader = gr
	} else {
		in.Reader = br
	}
	return in, nil
}

func (in *Input) Close() error {
	if in.bar != nil {
		in.bar.Finish()
	}
	if in.gz != nil {
		in.gz.Close()
	}
	return in.file.Close()
}

// NewLineScanner returns a scanner that tolerates very long lines.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), MaxLineLength)
	return scanner
}

type FastaHandler func(id string, seq string) error

// StreamFasta is a fast, memory-efficient function for streaming FASTA records.
// Sequences are treated case-insensitively and handed to handler one record at a time.
func StreamFasta(r io.Reader, handler FastaHandler) error {
	scanner := NewLineScanner(r)

	var currentID string
	var inRecord bool
	var buffer []byte

	flush := func() error {
		if !inRecord || len(buffer) == 0 {
			return nil
		}
		if err := handler(currentID, string(buffer)); err != nil {
			return fmt.Errorf("handler error (%s): %w", currentID, err)
		}
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, ">") {
			if err := flush(); err != nil {
				return err
			}
			currentID = strings.TrimPrefix(line, ">")
			inRecord = true
			buffer = buffer[:0] // reset buffer
		} else {
			buffer = append(buffer, strings.ToUpper(line)...)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return flush()
}

// StderrIsTerminal decides whether progress bars make sense.
func StderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Ticker logs a progress line every Every calls to Tick.
type Ticker struct {
	Label string
	Every int
	n     int
}

func (t *Ticker) Tick() {
	t.n++
	if t.Every > 0 && t.n%t.Every == 0 {
		log.WithField("done", t.n).Infof("%s: progress", t.Label)
	}
}

func (t *Ticker) Count() int {
	return t.n
}

// SiblingPath swaps the extension of path (ignoring a trailing .gz) for ext.
func SiblingPath(path, ext string) string {
	base := strings.TrimSuffix(path, ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}
