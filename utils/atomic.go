package common

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gzip "github.com/klauspost/pgzip"
)

// AtomicFile buffers a report into a temporary file next to its destination and only
// renames it into place on Commit, so readers never see a truncated report.
// A ".gz" destination is gzip-compressed.
type AtomicFile struct {
	path string
	tmp  *os.File
	buf  *bufio.Writer
	gz   *gzip.Writer
	w    io.Writer
	done bool
}

func CreateAtomic(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create output %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to create output %s: %w", path, err)
	}
	a := &AtomicFile{path: path, tmp: tmp, buf: bufio.NewWriterSize(tmp, 1<<20)}
	a.w = a.buf
	if strings.HasSuffix(path, ".gz") {
		a.gz = gzip.NewWriter(a.buf)
		a.w = a.gz
	}
	return a, nil
}

func (a *AtomicFile) Write(p []byte) (int, error) {
	return a.w.Write(p)
}

func (a *AtomicFile) WriteString(s string) (int, error) {
	return io.WriteString(a.w, s)
}

// Commit flushes everything and moves the file to its final path.
func (a *AtomicFile) Commit() error {
	if a.done {
		return fmt.Errorf("output %s already closed", a.path)
	}
	a.done = true
	if a.gz != nil {
		if err := a.gz.Close(); err != nil {
			a.discard()
			return fmt.Errorf("failed to compress %s: %w", a.path, err)
		}
	}
	if err := a.buf.Flush(); err != nil {
		a.discard()
		return fmt.Errorf("failed to write %s: %w", a.path, err)
	}
	if err := a.tmp.Close(); err != nil {
		os.Remove(a.tmp.Name())
		return fmt.Errorf("failed to write %s: %w", a.path, err)
	}
	if err := os.Rename(a.tmp.Name(), a.path); err != nil {
		os.Remove(a.tmp.Name())
		return fmt.Errorf("failed to move output into %s: %w", a.path, err)
	}
	return nil
}

// Abort drops the temporary file. It is a no-op after Commit, so it can be deferred.
func (a *AtomicFile) Abort() {
	if a.done {
		return
	}
	a.done = true
	a.discard()
}

func (a *AtomicFile) discard() {
	a.tmp.Close()
	os.Remove(a.tmp.Name())
}
