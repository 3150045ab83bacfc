package motif_finder

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"nullomer_go/alphabet"
	"nullomer_go/config"
	"nullomer_go/peptide_report"
	"nullomer_go/plots"
	"nullomer_go/rates"
	common "nullomer_go/utils"
)

// bars drawn by the --plot chart
const plotTop = 30

// Options for one nullomer_motifs or peptide_motifs run
type Options struct {
	InFile    string
	OutFile   string
	Length    int
	Mode      Mode
	Strategy  Strategy
	Alphabet  *alphabet.Alphabet
	Baselines rates.Baselines
	Settings  config.Settings
}

// Run reads a peptide count report, scores every motif of opts.Length against the rows
// selected by opts.Mode and writes the motif report.
func Run(ctx context.Context, opts Options) error {
	space, err := NewSpace(opts.Alphabet, opts.Length, opts.Settings)
	if err != nil {
		return err
	}
	log.Infof("scoring %d-residue motifs of %s rows in %s", opts.Length, opts.Mode, opts.InFile)

	corpus := NewCorpus(opts.Alphabet, opts.Mode)
	stats, err := peptide_report.ReadFile(opts.InFile, opts.Alphabet, opts.Settings.Progress, opts.Settings.ProgressEvery,
		func(row peptide_report.Row) error {
			corpus.Add(row)
			return nil
		})
	if err != nil {
		return err
	}
	fields := log.Fields{
		"rows":      stats.Rows,
		"nullomers": stats.Nullomers,
		"skipped":   stats.Skipped,
		"selected":  corpus.Rows,
	}
	if corpus.Skipped > 0 {
		fields["unscorable"] = corpus.Skipped
	}
	if stats.HasSummary {
		fields["total_sequences"] = stats.Summary.TotalSequences
		fields["total_peptides"] = stats.Summary.TotalPeptides
	}
	log.WithFields(fields).Info("completed read in")
	if stats.Skipped > 0 {
		log.Warnf("%d malformed rows in %s were skipped", stats.Skipped, opts.InFile)
	}
	if opts.Mode == ModeNullomer {
		checkCompleteness(opts.Alphabet, corpus.Length, stats)
	}

	scorer := &Scorer{Space: space, Settings: opts.Settings, Strategy: opts.Strategy}
	res, err := scorer.ScoreCorpus(ctx, corpus)
	if err != nil {
		return err
	}
	summary := res.Table.Summary()
	log.WithFields(log.Fields{
		"strategy": opts.Strategy,
		"motifs":   humanize.Comma(int64(summary.Motifs)),
		"max":      summary.Max,
		"mean":     fmt.Sprintf("%.3f", summary.Mean),
		"stddev":   fmt.Sprintf("%.3f", summary.StdDev),
	}).Info("motif distribution")

	out, err := common.CreateAtomic(opts.OutFile)
	if err != nil {
		return err
	}
	defer out.Abort()
	if err := WriteReport(out, res, space, opts.Baselines); err != nil {
		return fmt.Errorf("writing %s: %w", opts.OutFile, err)
	}
	if err := out.Commit(); err != nil {
		return err
	}
	log.Infof("wrote %d motifs to %s", res.Table.Len(), opts.OutFile)

	if opts.Settings.Plot && res.Table.Len() > 0 {
		return writeTopPlot(opts, res, space)
	}
	return nil
}

// checkCompleteness warns when fewer rows were read than the k-mer space holds. The
// nullomer denominator stays the number of rows actually read.
func checkCompleteness(ab *alphabet.Alphabet, k int, stats peptide_report.ReadStats) {
	if k <= 0 {
		return
	}
	cells, err := config.Cells("peptide space", ab.Size(), k, 0)
	if err != nil {
		return
	}
	if uint64(stats.Rows) < cells {
		log.Warnf("report holds %s of the %s possible %d-mers; it may have been truncated, nullomer percentages use the rows present",
			humanize.Comma(stats.Rows), humanize.Comma(int64(cells)), k)
	}
}

func writeTopPlot(opts Options, res *Result, space *Space) error {
	ranked := res.Table.Ranked()
	if len(ranked) > plotTop {
		ranked = ranked[:plotTop]
	}
	motifs := make([]string, len(ranked))
	counts := make([]uint64, len(ranked))
	for i, o := range ranked {
		motifs[i] = space.Motif(o.Key)
		counts[i] = o.Count
	}
	title := fmt.Sprintf("Top %d-residue %s motifs", opts.Length, opts.Mode)
	svg, err := plots.TopMotifs(motifs, counts, title)
	if err != nil {
		return fmt.Errorf("plotting motifs: %w", err)
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
	log.Infof("wrote motif chart to %s", path)
	return nil
}
