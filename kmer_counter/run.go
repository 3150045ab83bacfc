package kmer_counter

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"nullomer_go/alphabet"
	"nullomer_go/config"
	"nullomer_go/plots"
	"nullomer_go/rates"
	"nullomer_go/sequence_source"
	common "nullomer_go/utils"
)

// Options for one count_peptides run
type Options struct {
	InFile    string
	OutFile   string
	K         int
	Cutoff    uint64 // lowest count written before the nullomers; 0 writes every observed peptide
	Format    sequence_source.Format
	Alphabet  *alphabet.Alphabet
	Baselines rates.Baselines
	Settings  config.Settings
}

// Run counts every k-mer of the corpus and writes the peptide count report.
func Run(ctx context.Context, opts Options) error {
	scanner := &sequence_source.Scanner{
		Alphabet:      opts.Alphabet,
		MinLength:     opts.K,
		Format:        opts.Format,
		Progress:      opts.Settings.Progress,
		ProgressEvery: opts.Settings.ProgressEvery,
	}
	log.Infof("counting %d-mers in %s", opts.K, opts.InFile)

	tensor, stats, err := Count(ctx, opts.Alphabet, opts.K, opts.Settings,
		func(ctx context.Context, emit sequence_source.EmitFunc) (sequence_source.Stats, error) {
			return scanner.ScanFile(ctx, opts.InFile, emit)
		})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"records":        stats.Records,
		"accepted":       stats.Accepted,
		"too_short":      stats.TooShort,
		"invalid_symbol": stats.InvalidSymbols,
	}).Info("completed read in")

	spectrum := tensor.Spectrum()
	summary := spectrum.Summary()
	log.WithFields(log.Fields{
		"total":     humanize.Comma(int64(summary.Total)),
		"max":       summary.Max,
		"mean":      fmt.Sprintf("%.3f", summary.Mean),
		"stddev":    fmt.Sprintf("%.3f", summary.StdDev),
		"nullomers": humanize.Comma(int64(summary.Nullomers)),
		"fraction":  fmt.Sprintf("%.4f", summary.NullomerFraction()),
	}).Info("count distribution")

	out, err := common.CreateAtomic(opts.OutFile)
	if err != nil {
		return err
	}
	defer out.Abort()

	reportStats, err := WriteReport(out, tensor, stats.Accepted, opts.Baselines, opts.Cutoff)
	if err != nil {
		return fmt.Errorf("writing %s: %w", opts.OutFile, err)
	}
	if err := out.Commit(); err != nil {
		return err
	}
	log.Infof("wrote %d observed and %d nullomer peptides to %s", reportStats.Observed, reportStats.Nullomers, opts.OutFile)

	if opts.Settings.Plot {
		return writeSpectrumPlot(opts, spectrum)
	}
	return nil
}

func writeSpectrumPlot(opts Options, spectrum Spectrum) error {
	svg, err := plots.CountSpectrum(spectrum.Counts, spectrum.Cells, opts.K)
	if err != nil {
		return fmt.Errorf("plotting count spectrum: %w", err)
	}
	path := common.SiblingPath(opts.OutFile, ".svg")
	out, err := common.CreateAtomic(path)
	if err != nil {
		return err
	}
	defer out.Abort()
	if _, err := out.Write(svg); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := out.Commit(); err != nil {
		return err
	}
	log.Infof("wrote count spectrum to %s", path)
	return nil
}
