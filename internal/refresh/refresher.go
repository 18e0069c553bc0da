// Package refresh orchestrates cache refreshes: fetch every configured
// source, parse, and install one complete snapshot.
package refresh

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/garagehq/servicebot/internal/cache"
	"github.com/garagehq/servicebot/internal/pricing"
	"github.com/garagehq/servicebot/internal/recall"
)

// DefaultInterval is the background staleness check cadence.
const DefaultInterval = 5 * time.Minute

// PricingSource supplies raw spreadsheet ranges from one pricing table.
type PricingSource interface {
	Name() string
	FetchRanges(ctx context.Context) ([]pricing.Range, error)
}

// RecallSource supplies the raw recall-folder file listing.
type RecallSource interface {
	Name() string
	ListFiles(ctx context.Context) ([]recall.File, error)
}

// Options configures the refresher.
type Options struct {
	// Interval between background staleness checks.
	Interval time.Duration
	// Concurrent fetches all sources in parallel. Sequential is the
	// default: it trades latency for a smaller peak memory footprint.
	Concurrent bool
}

// Refresher fetches from every source and swaps the cache snapshot.
type Refresher struct {
	cache   *cache.Cache
	pricing []PricingSource
	recalls RecallSource
	opts    Options
}

// New creates a Refresher over the given sources.
func New(c *cache.Cache, sources []PricingSource, recallSrc RecallSource, opts Options) *Refresher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Refresher{
		cache:   c,
		pricing: sources,
		recalls: recallSrc,
		opts:    opts,
	}
}

// Refresh fetches every source and installs a new snapshot. A refresh
// already in progress makes this call an immediate no-op. When any fetch
// fails the whole refresh aborts and the previous snapshot stays in place.
func (r *Refresher) Refresh(ctx context.Context) error {
	if !r.cache.BeginRefresh() {
		zap.L().Debug("refresh: already in progress, skipping")
		return nil
	}
	defer r.cache.EndRefresh()

	start := time.Now()

	ranges, files, err := r.fetch(ctx)
	if err != nil {
		return err
	}

	records := pricing.ParseRanges(ranges)
	notices := recall.ListPDFs(files)
	r.cache.Replace(records, notices)

	zap.L().Info("refresh: complete",
		zap.Int("ranges", len(ranges)),
		zap.Int("pricing_records", len(records)),
		zap.Int("recall_notices", len(notices)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// EnsureFresh refreshes only when the snapshot is missing or stale.
func (r *Refresher) EnsureFresh(ctx context.Context) error {
	if !r.cache.NeedsRefresh() {
		return nil
	}
	return r.Refresh(ctx)
}

// Run re-evaluates staleness on a fixed cadence until ctx is cancelled.
// Failures are logged, never escalated to in-flight requests.
func (r *Refresher) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "refresh"))
	log.Info("starting background refresher", zap.Duration("interval", r.opts.Interval))

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("background refresher stopped")
			return
		case <-ticker.C:
			if err := r.EnsureFresh(ctx); err != nil {
				log.Error("opportunistic refresh failed", zap.Error(err))
			}
		}
	}
}

func (r *Refresher) fetch(ctx context.Context) ([]pricing.Range, []recall.File, error) {
	if r.opts.Concurrent {
		return r.fetchConcurrent(ctx)
	}

	var ranges []pricing.Range
	for _, src := range r.pricing {
		rs, err := src.FetchRanges(ctx)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "refresh: fetch pricing source %s", src.Name())
		}
		ranges = append(ranges, rs...)
	}

	var files []recall.File
	if r.recalls != nil {
		fs, err := r.recalls.ListFiles(ctx)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "refresh: list recall files from %s", r.recalls.Name())
		}
		files = fs
	}

	return ranges, files, nil
}

// fetchConcurrent fans the fetches out, preserving per-source order in the
// concatenated result.
func (r *Refresher) fetchConcurrent(ctx context.Context) ([]pricing.Range, []recall.File, error) {
	g, ctx := errgroup.WithContext(ctx)

	results := make([][]pricing.Range, len(r.pricing))
	for i, src := range r.pricing {
		g.Go(func() error {
			rs, err := src.FetchRanges(ctx)
			if err != nil {
				return eris.Wrapf(err, "refresh: fetch pricing source %s", src.Name())
			}
			results[i] = rs
			return nil
		})
	}

	var files []recall.File
	if r.recalls != nil {
		g.Go(func() error {
			fs, err := r.recalls.ListFiles(ctx)
			if err != nil {
				return eris.Wrapf(err, "refresh: list recall files from %s", r.recalls.Name())
			}
			files = fs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var ranges []pricing.Range
	for _, rs := range results {
		ranges = append(ranges, rs...)
	}
	return ranges, files, nil
}
