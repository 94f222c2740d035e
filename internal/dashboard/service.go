// Package dashboard aggregates the five upstream reporting feeds into a
// single snapshot, cached in Redis so a flaky backend does not blank the
// landing page.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/zedx-auto/garagepos/internal/shopapi"
)

const snapshotKey = "garagepos:dashboard:snapshot"

// Snapshot bundles everything the dashboard screen renders.
type Snapshot struct {
	Totals         shopapi.TransactionTotals     `json:"totals"`
	OutgoingTotals shopapi.OutgoingPaymentTotals `json:"outgoingTotals"`
	TodaySales     []shopapi.Transaction         `json:"todaySales"`
	TodayOutgoing  []shopapi.OutgoingPayment     `json:"todayOutgoing"`
	RevenueSeries  []shopapi.DailyRevenuePoint   `json:"revenueSeries"`
	GeneratedAt    time.Time                     `json:"generatedAt"`
	Stale          bool                          `json:"stale"`
}

// Service fetches and caches dashboard snapshots.
type Service struct {
	logger *slog.Logger
	api    *shopapi.Client
	redis  *redis.Client
	ttl    time.Duration
}

// NewService builds a dashboard Service.
func NewService(logger *slog.Logger, api *shopapi.Client, rdb *redis.Client, ttl time.Duration) *Service {
	return &Service{logger: logger, api: api, redis: rdb, ttl: ttl}
}

// Snapshot returns the dashboard snapshot for the operator holding token.
// A fresh cached copy wins; otherwise all five feeds are fetched
// concurrently. When the upstream is down, the previous snapshot is served
// marked stale instead of failing the page.
func (s *Service) Snapshot(ctx context.Context, token string) (*Snapshot, error) {
	if cached, ok := s.cached(ctx); ok {
		return cached, nil
	}

	snap, err := s.fetch(ctx, token)
	if err != nil {
		if errors.Is(err, shopapi.ErrAuthRequired) {
			return nil, err
		}
		if stale, ok := s.staleCached(ctx); ok {
			s.logger.Warn("serving stale dashboard snapshot", slog.Any("error", err))
			stale.Stale = true
			return stale, nil
		}
		return nil, err
	}

	s.store(ctx, snap)
	return snap, nil
}

// Refresh rebuilds and stores the snapshot, ignoring the freshness window.
// The scheduled warmup job calls this with a service token.
func (s *Service) Refresh(ctx context.Context, token string) error {
	snap, err := s.fetch(ctx, token)
	if err != nil {
		return err
	}
	s.store(ctx, snap)
	return nil
}

func (s *Service) fetch(ctx context.Context, token string) (*Snapshot, error) {
	api := s.api.WithToken(token)
	snap := &Snapshot{GeneratedAt: time.Now()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := api.GetTransactionTotals(ctx)
		if err != nil {
			return err
		}
		snap.Totals = *totals
		return nil
	})
	g.Go(func() error {
		totals, err := api.GetOutgoingPaymentTotals(ctx)
		if err != nil {
			return err
		}
		snap.OutgoingTotals = *totals
		return nil
	})
	g.Go(func() error {
		sales, err := api.GetTodayTransactions(ctx)
		if err != nil {
			return err
		}
		snap.TodaySales = sales
		return nil
	})
	g.Go(func() error {
		payments, err := api.GetTodayOutgoingPayments(ctx)
		if err != nil {
			return err
		}
		snap.TodayOutgoing = payments
		return nil
	})
	g.Go(func() error {
		series, err := api.GetLast30DaysRevenue(ctx)
		if err != nil {
			return err
		}
		snap.RevenueSeries = series
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Service) cached(ctx context.Context) (*Snapshot, bool) {
	snap, ok := s.staleCached(ctx)
	if !ok {
		return nil, false
	}
	if time.Since(snap.GeneratedAt) > s.ttl {
		return nil, false
	}
	return snap, true
}

// staleCached ignores the freshness window; entries persist well past the
// TTL so there is something to serve during an outage.
func (s *Service) staleCached(ctx context.Context) (*Snapshot, bool) {
	raw, err := s.redis.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

func (s *Service) store(ctx context.Context, snap *Snapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, snapshotKey, raw, 24*time.Hour).Err(); err != nil {
		s.logger.Warn("failed to cache dashboard snapshot", slog.Any("error", err))
	}
}
