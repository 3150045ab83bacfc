package config // Run-wide settings shared by every tool

import (
	"fmt"
	"math/bits"
	"runtime"

	"github.com/dustin/go-humanize"
)

// Settings are threaded into every engine constructor.
type Settings struct {
	Workers       int    // goroutines used by the counting and scoring engines
	MaxMemory     uint64 // ceiling in bytes for dense tables (tensor, motif accumulators)
	ProgressEvery int    // records between progress log lines when no terminal is attached
	Progress      bool   // draw a progress bar on stderr
	Plot          bool   // also write an SVG diagnostic plot next to the report
}

// Default returns settings sized for the local machine.
func Default() Settings {
	return Settings{
		Workers:       runtime.NumCPU(),
		MaxMemory:     8 << 30,
		ProgressEvery: 100000,
	}
}

// ParseMemory accepts human sizes such as "512MiB" or "16GB".
func ParseMemory(s string) (uint64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid memory size %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid memory size %q: must be positive", s)
	}
	return n, nil
}

// AllocationError is returned before a dense table would exceed the memory ceiling.
type AllocationError struct {
	What  string
	Cells uint64 // 0 when the cell count itself overflows
	Bytes uint64
	Limit uint64
}

func (e *AllocationError) Error() string {
	if e.Cells == 0 {
		return fmt.Sprintf("%s: table size overflows 64 bits (limit %s)", e.What, humanize.IBytes(e.Limit))
	}
	return fmt.Sprintf("%s: %s cells need %s, above the %s limit (raise --max_memory or lower the length)",
		e.What, humanize.Comma(int64(e.Cells)), humanize.IBytes(e.Bytes), humanize.IBytes(e.Limit))
}

// Cells returns radix^length, or an AllocationError if it overflows.
func Cells(what string, radix, length int, limit uint64) (uint64, error) {
	cells := uint64(1)
	for i := 0; i < length; i++ {
		hi, lo := bits.Mul64(cells, uint64(radix))
		if hi != 0 {
			return 0, &AllocationError{What: what, Limit: limit}
		}
		cells = lo
	}
	return cells, nil
}

// CheckAllocation verifies that copies tables of cells*cellBytes fit under MaxMemory.
func (s Settings) CheckAllocation(what string, cells, cellBytes uint64, copies int) error {
	hi, size := bits.Mul64(cells, cellBytes)
	if hi == 0 && copies > 1 {
		hi, size = bits.Mul64(size, uint64(copies))
	}
	if hi != 0 {
		return &AllocationError{What: what, Cells: cells, Bytes: ^uint64(0), Limit: s.MaxMemory}
	}
	if size > s.MaxMemory {
		return &AllocationError{What: what, Cells: cells, Bytes: size, Limit: s.MaxMemory}
	}
	return nil
}

// FitWorkers returns the largest worker count <= s.Workers whose private tables fit in memory.
// It returns 0 when even a single table does not fit.
func (s Settings) FitWorkers(cells, cellBytes uint64) int {
	w := s.Workers
	if w < 1 {
		w = 1
	}
	for ; w > 0; w-- {
		if s.CheckAllocation("", cells, cellBytes, w) == nil {
			return w
		}
	}
	return 0
}
