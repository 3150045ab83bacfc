package motif_finder

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"nullomer_go/config"
	"nullomer_go/peptide_report"
)

// Strategy selects how motif counts are accumulated. Both produce identical tables.
type Strategy int

const (
	// StrategyExpand enumerates the 2^L wildcard masks of every peptide window into dense
	// accumulators. Cost grows with the corpus, not with the motif space.
	StrategyExpand Strategy = iota
	// StrategyScan walks the motif space lazily and matches every motif against the corpus.
	StrategyScan
)

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "", "expand":
		return StrategyExpand, nil
	case "scan":
		return StrategyScan, nil
	}
	return 0, fmt.Errorf("unknown strategy %q (expand or scan)", s)
}

func (s Strategy) String() string {
	if s == StrategyScan {
		return "scan"
	}
	return "expand"
}

// ctx is polled every checkEvery units of work
const checkEvery = 1024

// Result is the outcome of scoring one corpus.
type Result struct {
	Mode        Mode
	Table       *Table
	Rows        int64
	Denominator uint64
	Skipped     int64
}

type Scorer struct {
	Space    *Space
	Settings config.Settings
	Strategy Strategy
}

// Score filters rows by mode and scores the qualifying peptides. Rows with residues
// outside the alphabet are skipped and counted in Result.Skipped.
func (s *Scorer) Score(ctx context.Context, rows []peptide_report.Row, mode Mode) (*Result, error) {
	c := NewCorpus(s.Space.ab, mode)
	for _, row := range rows {
		c.Add(row)
	}
	return s.ScoreCorpus(ctx, c)
}

// ScoreCorpus counts, for every motif, the weighted number of windows it matches.
func (s *Scorer) ScoreCorpus(ctx context.Context, c *Corpus) (*Result, error) {
	res := &Result{Mode: c.mode, Rows: c.Rows, Denominator: c.Denominator, Skipped: c.Skipped}
	if c.Rows == 0 {
		res.Table = &Table{}
		return res, nil
	}

	var (
		parts [][]Occurrence
		err   error
	)
	switch s.Strategy {
	case StrategyScan:
		parts, err = s.scan(ctx, c)
	default:
		parts, err = s.expand(ctx, c)
	}
	if err != nil {
		return nil, err
	}
	res.Table = joinParts(parts)
	return res, nil
}

func (s *Scorer) workers(limit uint64) int {
	w := s.Settings.Workers
	if w < 1 {
		w = 1
	}
	if uint64(w) > limit {
		w = int(limit)
	}
	return w
}

func (s *Scorer) expand(ctx context.Context, c *Corpus) ([][]Occurrence, error) {
	sp := s.Space
	if err := s.Settings.CheckAllocation("motif accumulators", sp.size, 8, 1); err != nil {
		return nil, err
	}
	block := sp.size / sp.radix // motifs sharing one leading digit
	workers := s.workers(sp.radix)
	log.WithFields(log.Fields{
		"motifs":  humanize.Comma(int64(sp.size)),
		"memory":  humanize.IBytes(sp.size * 8),
		"workers": workers,
	}).Info("expanding peptide windows")

	parts := make([][]Occurrence, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := uint64(w) * sp.radix / uint64(workers)
		hi := uint64(w+1) * sp.radix / uint64(workers)
		g.Go(func() error {
			acc := make([]uint64, (hi-lo)*block)
			offsets := make([]uint64, 0, 1<<(sp.length-1))
			for i, pep := range c.peptides {
				if i%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				weight := c.weights[i]
				for start := 0; start+sp.length <= len(pep); start++ {
					win := pep[start : start+sp.length]
					offsets = sp.tailOffsets(offsets[:0], win)
					for _, lead := range [2]uint64{uint64(win[0]), uint64(sp.wildcard)} {
						if lead < lo || lead >= hi {
							continue
						}
						base := (lead - lo) * block
						for _, off := range offsets {
							acc[base+off] += weight
						}
					}
				}
			}
			parts[w] = collect(acc, lo*block)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

// tailOffsets appends the key offsets of every wildcard mask over win[1:], i.e. the keys
// of all motifs matching the window with the leading digit zeroed.
func (s *Space) tailOffsets(dst []uint64, win []int8) []uint64 {
	dst = append(dst, 0)
	place := uint64(1)
	wild := uint64(s.wildcard)
	for j := len(win) - 1; j >= 1; j-- {
		n := len(dst)
		for i := 0; i < n; i++ {
			dst = append(dst, dst[i]+wild*place)
			dst[i] += uint64(win[j]) * place
		}
		place *= s.radix
	}
	return dst
}

func collect(acc []uint64, base uint64) []Occurrence {
	var out []Occurrence
	for i, n := range acc {
		if n > 0 {
			out = append(out, Occurrence{Key: base + uint64(i), Count: n})
		}
	}
	return out
}

func (s *Scorer) scan(ctx context.Context, c *Corpus) ([][]Occurrence, error) {
	sp := s.Space
	if err := s.Settings.CheckAllocation("motif table", sp.size, 16, 1); err != nil {
		return nil, err
	}
	workers := s.workers(sp.size)
	chunk := (sp.size + uint64(workers) - 1) / uint64(workers)
	log.WithFields(log.Fields{
		"motifs":   humanize.Comma(int64(sp.size)),
		"peptides": humanize.Comma(c.Rows),
		"workers":  workers,
	}).Info("scanning motif space")

	parts := make([][]Occurrence, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := uint64(w) * chunk
		g.Go(func() error {
			it := sp.Iter(lo, lo+chunk)
			var part []Occurrence
			for n := 0; it.Next(); n++ {
				if n%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				codes := it.Codes()
				var total uint64
				for i, pep := range c.peptides {
					if m := MatchCount(codes, pep, sp.wildcard); m > 0 {
						total += uint64(m) * c.weights[i]
					}
				}
				if total > 0 {
					part = append(part, Occurrence{Key: it.Key(), Count: total})
				}
			}
			parts[w] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}
