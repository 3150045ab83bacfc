package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"nullomer_go/config"
)

// memoryFlag is a byte size flag accepting human units ("8GiB", "512MB").
type memoryFlag uint64

var _ pflag.Value = (*memoryFlag)(nil)

func (m *memoryFlag) String() string {
	return humanize.IBytes(uint64(*m))
}

func (m *memoryFlag) Set(s string) error {
	n, err := config.ParseMemory(s)
	if err != nil {
		return err
	}
	*m = memoryFlag(n)
	return nil
}

func (m *memoryFlag) Type() string {
	return "size"
}

// globalFlags are shared by every tool.
type globalFlags struct {
	workers    int
	maxMemory  memoryFlag
	plot       bool
	benchmark  bool
	cpuprofile string
	verbose    bool
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	def := config.Default()
	g.maxMemory = memoryFlag(def.MaxMemory)
	fs.IntVarP(&g.workers, "workers", "w", def.Workers, "Worker goroutines for counting and scoring")
	fs.Var(&g.maxMemory, "max_memory", "Ceiling for dense count tables")
	fs.BoolVar(&g.plot, "plot", false, "Also write an SVG plot next to the output")
	fs.BoolVar(&g.benchmark, "benchmark", false, "Report elapsed time and memory usage")
	fs.StringVar(&g.cpuprofile, "cpuprofile", "", "Write a CPU profile into this directory")
	fs.BoolVar(&g.verbose, "verbose", false, "Debug logging")
}

func (g *globalFlags) settings(progress bool) config.Settings {
	s := config.Default()
	s.Workers = max(g.workers, 1)
	s.MaxMemory = uint64(g.maxMemory)
	s.Progress = progress
	s.Plot = g.plot
	return s
}
