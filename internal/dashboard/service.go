package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/greenbacks-app/greenbacks/internal/model"
	"github.com/greenbacks-app/greenbacks/internal/period"
	"github.com/greenbacks-app/greenbacks/internal/report"
)

// Source supplies raw transactions and the ordered filter list.
type Source interface {
	Transactions(ctx context.Context, start, end time.Time) ([]model.CoreTransaction, error)
	Filters(ctx context.Context) ([]model.Filter, error)
}

// Service computes dashboard results for query windows. Results are cached
// per window until Invalidate is called.
type Service struct {
	source Source
	log    zerolog.Logger
	cache  *ristretto.Cache
}

// NewService creates a Service reading from source.
func NewService(source Source, log zerolog.Logger) (*Service, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10000,
		MaxCost:            1000,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	return &Service{
		source: source,
		log:    log,
		cache:  cache,
	}, nil
}

// Close releases the cache.
func (s *Service) Close() {
	s.cache.Close()
}

// Window returns the categorised transactions for w.
func (s *Service) Window(ctx context.Context, w period.Window) (Result, error) {
	key := w.String()
	if v, ok := s.cache.Get(key); ok {
		s.log.Debug().Str("window", key).Str("cache", "hit").Msg("dashboard window")
		return v.(Result), nil
	}

	raw, err := s.source.Transactions(ctx, w.Start, w.End)
	if err != nil {
		return Result{}, fmt.Errorf("reading transactions for %s: %w", key, err)
	}
	filters, err := s.source.Filters(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reading filters: %w", err)
	}

	res := Build(raw, filters)
	s.log.Info().
		Str("window_start", w.Start.Format(model.DateFormat)).
		Str("window_end", w.End.Format(model.DateFormat)).
		Int("transactions", len(raw)).
		Int("filters", len(filters)).
		Int("transfers", len(res.Transfers)).
		Int("hidden", res.Hidden).
		Msg("built dashboard window")

	s.cache.Set(key, res, 1)
	s.cache.Wait()
	return res, nil
}

// Invalidate drops every cached window. Call it after transactions or
// filters change.
func (s *Service) Invalidate() {
	s.cache.Clear()
	s.log.Debug().Msg("dashboard cache cleared")
}

// Timeline returns the running balance for w, padded to its bounds.
func (s *Service) Timeline(ctx context.Context, w period.Window) ([]model.Totals, error) {
	res, err := s.Window(ctx, w)
	if err != nil {
		return nil, err
	}
	return res.Timeline(w.Start, w.End), nil
}

// MonthlyTimelines builds one timeline per month overlapping w. Months are
// computed concurrently and returned in order.
func (s *Service) MonthlyTimelines(ctx context.Context, w period.Window) ([][]model.Totals, error) {
	months := w.Months()
	out := make([][]model.Totals, len(months))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, m := range months {
		i, m := i, m
		g.Go(func() error {
			totals, err := s.Timeline(ctx, m)
			if err != nil {
				return fmt.Errorf("timeline for %s: %w", m.Key(), err)
			}
			out[i] = totals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Projections averages fixed earning and spending over the months before
// the month containing now.
func (s *Service) Projections(ctx context.Context, now time.Time, months int) (report.Projection, error) {
	if months <= 0 {
		months = report.DefaultProjectionMonths
	}
	res, err := s.Window(ctx, period.Trailing(now, months))
	if err != nil {
		return report.Projection{}, err
	}
	return report.Projections(res.Earning, res.Spending, months), nil
}
