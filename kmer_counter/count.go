package kmer_counter

import (
	"context"
	"errors"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"nullomer_go/alphabet"
	"nullomer_go/config"
	"nullomer_go/sequence_source"
)

// Source streams accepted records into emit until the corpus is exhausted.
type Source func(ctx context.Context, emit sequence_source.EmitFunc) (sequence_source.Stats, error)

// FromSlice is a Source over records already in memory. Records are validated the same
// way a file scan would validate them.
func FromSlice(ab *alphabet.Alphabet, k int, records []string) Source {
	return func(ctx context.Context, emit sequence_source.EmitFunc) (sequence_source.Stats, error) {
		var stats sequence_source.Stats
		for _, rec := range records {
			stats.Records++
			if err := ab.Validate(rec, k); err != nil {
				var verr *alphabet.ValidationError
				if errors.As(err, &verr) && verr.TooShort() {
					stats.TooShort++
				} else {
					stats.InvalidSymbols++
				}
				continue
			}
			stats.Accepted++
			if err := emit(rec); err != nil {
				return stats, err
			}
		}
		return stats, ctx.Err()
	}
}

// Count folds every record of source into a fresh tensor. Records are fanned out to
// settings.Workers goroutines, each owning a private tensor; the shards are summed once
// all of them finish. The worker count is lowered until every shard fits the memory
// ceiling.
func Count(ctx context.Context, ab *alphabet.Alphabet, k int, settings config.Settings, source Source) (*Tensor, sequence_source.Stats, error) {
	var stats sequence_source.Stats
	cells, err := tensorCells(ab, k, settings)
	if err != nil {
		return nil, stats, err
	}
	if err := settings.CheckAllocation("k-mer tensor", cells, 8, 1); err != nil {
		return nil, stats, err
	}
	workers := settings.FitWorkers(cells, 8)
	if workers < settings.Workers {
		log.Warnf("memory limit %s allows %d private tensors, using %d workers instead of %d",
			humanize.IBytes(settings.MaxMemory), workers, workers, settings.Workers)
	}
	log.WithFields(log.Fields{
		"k":       k,
		"cells":   humanize.Comma(int64(cells)),
		"memory":  humanize.IBytes(cells * 8 * uint64(workers)),
		"workers": workers,
	}).Info("allocating k-mer tensor")

	shards := make([]*Tensor, workers)
	for i := range shards {
		shards[i] = newTensor(ab, k, cells, settings.MaxMemory)
	}

	g, gctx := errgroup.WithContext(ctx)
	records := make(chan string, workers*64)

	for _, shard := range shards {
		g.Go(func() error {
			for rec := range records {
				if _, err := shard.Fold(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(records)
		s, err := source(gctx, func(seq string) error {
			select {
			case records <- seq:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
		stats = s
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	t := shards[0]
	for _, shard := range shards[1:] {
		if err := t.Merge(shard); err != nil {
			return nil, stats, err
		}
	}
	return t, stats, nil
}
