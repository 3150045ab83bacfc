// benchmark.go
// Measures execution time and memory usage for any wrapped tool run

package benchmark

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
)

// Report is the resource usage of one measured run.
type Report struct {
	ID              string
	Label           string
	Elapsed         time.Duration
	MemUsed         int64 // live heap growth, may be negative after GC
	TotalAllocated  uint64
	PeakHeap        uint64
	GCCycles        uint32
	CPUs            int
	GoroutinesStart int
	GoroutinesEnd   int
}

// Measure runs f and records its resource usage. f's error is returned unchanged.
func Measure(label string, f func() error) (Report, error) {
	r := Report{ID: uuid.NewString(), Label: label, CPUs: runtime.NumCPU()}

	runtime.GC()
	var memStart, memEnd runtime.MemStats
	runtime.ReadMemStats(&memStart)
	r.GoroutinesStart = runtime.NumGoroutine()
	start := time.Now()

	err := f()

	r.Elapsed = time.Since(start)
	runtime.ReadMemStats(&memEnd)
	r.GoroutinesEnd = runtime.NumGoroutine()
	r.MemUsed = int64(memEnd.Alloc) - int64(memStart.Alloc)
	r.TotalAllocated = memEnd.TotalAlloc - memStart.TotalAlloc
	r.PeakHeap = memEnd.HeapSys
	r.GCCycles = memEnd.NumGC - memStart.NumGC
	return r, err
}

// Run measures f and logs the environment and the report.
func Run(label string, f func() error) error {
	entry := log.WithField("benchmark", label)
	host, _ := os.Hostname()
	entry.WithFields(log.Fields{
		"host":    host,
		"go":      runtime.Version(),
		"os_arch": runtime.GOOS + "/" + runtime.GOARCH,
	}).Info("benchmark starting")

	r, err := Measure(label, f)
	r.Log()
	return err
}

func (r Report) Log() {
	used := humanize.IBytes(uint64(max(r.MemUsed, 0)))
	log.WithFields(log.Fields{
		"benchmark":  r.Label,
		"id":         r.ID,
		"elapsed":    r.Elapsed.Round(time.Millisecond),
		"mem_used":   used,
		"allocated":  humanize.IBytes(r.TotalAllocated),
		"heap_sys":   humanize.IBytes(r.PeakHeap),
		"gc_cycles":  r.GCCycles,
		"cpus":       r.CPUs,
		"goroutines": fmt.Sprintf("%d → %d", r.GoroutinesStart, r.GoroutinesEnd),
	}).Info("benchmark finished")
}

// StartCPUProfile writes a CPU profile into dir until Stop is called.
func StartCPUProfile(dir string) interface{ Stop() } {
	log.Infof("writing CPU profile to %s", dir)
	return profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook)
}
