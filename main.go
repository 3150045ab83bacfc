package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nullomer_go/alphabet"
	"nullomer_go/benchmark"
	"nullomer_go/config"
	"nullomer_go/kmer_counter"
	"nullomer_go/motif_finder"
	"nullomer_go/rates"
	"nullomer_go/sanity_check"
	"nullomer_go/sequence_source"
	common "nullomer_go/utils"
)

func printVersion(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "nullomer_go - Version Information Menu")
	fmt.Fprintln(out, "Central Executable:")
	fmt.Fprintf(out, "\tnullomer_go:\t\t%s\n", config.Main_version)
	fmt.Fprintf(out, "\nModular tools:\n")
	fmt.Fprintf(out, "\tCount Peptides:\t\t%s\n", config.Count_Peptides)
	fmt.Fprintf(out, "\tNullomer Motifs:\t%s\n", config.Nullomer_Motifs)
	fmt.Fprintf(out, "\tPeptide Motifs:\t\t%s\n", config.Peptide_Motifs)
	fmt.Fprintf(out, "\tSanity Check:\t\t%s\n", config.Sanity_check)
	fmt.Fprintf(out, "\tBenchmark:\t\t%s\n", config.Benchmark)
	fmt.Fprintf(out, "\nGo version: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// runHook stamps every log entry with the invocation id.
type runHook struct {
	id string
}

func (h runHook) Levels() []log.Level { return log.AllLevels }

func (h runHook) Fire(e *log.Entry) error {
	e.Data["run"] = h.id
	return nil
}

func setupLogging(verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.AddHook(runHook{id: uuid.NewString()})
}

// tool wraps a tool body with the global benchmark and profiling flags.
func (g *globalFlags) tool(body func(ctx context.Context, settings config.Settings, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		settings := g.settings(common.StderrIsTerminal())
		if g.cpuprofile != "" {
			defer benchmark.StartCPUProfile(g.cpuprofile).Stop()
		}
		run := func() error {
			return body(cmd.Context(), settings, args)
		}
		if g.benchmark {
			label := fmt.Sprintf("nullomer_go %s %s", cmd.Name(), strings.Join(args, " "))
			return benchmark.Run(label, run)
		}
		return run()
	}
}

func parseLength(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, s)
	}
	return n, nil
}

func countPeptidesCommand(g *globalFlags) *cobra.Command {
	var (
		cutoff uint64
		format string
	)
	cmd := &cobra.Command{
		Use:   "count_peptides <input> <output> <peptide_length>",
		Short: "Count every peptide of a length in a protein corpus and list the nullomers",
		Long: `Counts every k-residue peptide in a UniProt XML or FASTA corpus (optionally gzip).
Writes one row per observed peptide, most frequent first, with its enrichment against
the codon and Swiss-Prot baselines, followed by every peptide never observed.`,
		Args: cobra.ExactArgs(3),
		RunE: g.tool(func(ctx context.Context, settings config.Settings, args []string) error {
			k, err := parseLength("peptide_length", args[2])
			if err != nil {
				return err
			}
			f, err := sequence_source.ParseFormat(format)
			if err != nil {
				return err
			}
			ab := alphabet.AminoAcids()
			return kmer_counter.Run(ctx, kmer_counter.Options{
				InFile:    args[0],
				OutFile:   args[1],
				K:         k,
				Cutoff:    cutoff,
				Format:    f,
				Alphabet:  ab,
				Baselines: rates.Standard(ab),
				Settings:  settings,
			})
		}),
	}
	cmd.Flags().Uint64VarP(&cutoff, "output_cutoff", "c", 0, "Only write observed peptides seen at least this many times")
	cmd.Flags().StringVar(&format, "format", "auto", "Input format: auto, uniprot or fasta")
	return cmd
}

func motifCommand(g *globalFlags, use string, mode motif_finder.Mode) *cobra.Command {
	var strategy string
	short := "Score wildcard motifs against the nullomers of a peptide count report"
	if mode == motif_finder.ModePeptide {
		short = "Score wildcard motifs against the observed peptides of a count report, weighted by count"
	}
	cmd := &cobra.Command{
		Use:   use + " <input> <output> <motif_length>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: g.tool(func(ctx context.Context, settings config.Settings, args []string) error {
			length, err := parseLength("motif_length", args[2])
			if err != nil {
				return err
			}
			s, err := motif_finder.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			ab := alphabet.AminoAcids()
			return motif_finder.Run(ctx, motif_finder.Options{
				InFile:    args[0],
				OutFile:   args[1],
				Length:    length,
				Mode:      mode,
				Strategy:  s,
				Alphabet:  ab,
				Baselines: rates.Standard(ab),
				Settings:  settings,
			})
		}),
	}
	cmd.Flags().StringVar(&strategy, "strategy", "expand", "Scoring strategy: expand (per peptide window) or scan (per motif)")
	return cmd
}

func checkCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run diagnostic tests on known corpora",
		Args:  cobra.NoArgs,
		RunE: g.tool(func(ctx context.Context, settings config.Settings, _ []string) error {
			return sanity_check.Run(ctx, settings)
		}),
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd)
		},
	}
}

func rootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:     "nullomer_go",
		Short:   "Peptide counting, nullomer discovery and motif scoring",
		Version: config.Main_version,
		Long: `nullomer_go counts peptides in protein corpora and scores wildcard motifs.

  count_peptides   peptide counts and nullomers of a UniProt/FASTA corpus
  nullomer_motifs  motifs shared by the nullomers of a count report
  peptide_motifs   motifs of the observed peptides, weighted by count`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(g.verbose)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	g.register(root.PersistentFlags())
	root.AddCommand(
		countPeptidesCommand(g),
		motifCommand(g, "nullomer_motifs", motif_finder.ModeNullomer),
		motifCommand(g, "peptide_motifs", motif_finder.ModePeptide),
		checkCommand(g),
		versionCommand(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
