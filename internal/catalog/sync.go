package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kimchiscan/server/internal/exchange"
	"golang.org/x/sync/errgroup"
)

// Store is the slice of the repository the syncer needs.
type Store interface {
	ExchangeIDByName(ctx context.Context, name string) (int32, error)
	UpsertCoin(ctx context.Context, symbol, name string) (int32, error)
	UpsertListing(ctx context.Context, exchangeID, coinID int32, marketSymbol, base, quote string) error
	DeactivateListingsExcept(ctx context.Context, exchangeID int32, keep []string) (int64, error)
	CountActiveListings(ctx context.Context, exchangeID int32) (int64, error)
}

// Summary reports one sync pass across the targeted venues.
type Summary struct {
	ActiveTotal int64 `json:"active_total"`
	Deactivated int64 `json:"deactivated"`
	Upserts     int64 `json:"upserts"`
}

// Syncer refreshes the listing catalog from venue listing endpoints.
type Syncer struct {
	registry *exchange.Registry
	store    Store
}

func NewSyncer(store Store, registry *exchange.Registry) *Syncer {
	return &Syncer{registry: registry, store: store}
}

// Sync discovers listings for the targeted venues ("all" or one venue name,
// case-insensitive) and reconciles coin_listings. Venues run concurrently;
// within one venue the order is discover → upsert → deactivate. A venue whose
// discovery fails contributes zero symbols and skips deactivation, so an
// upstream outage never wipes a catalog.
func (s *Syncer) Sync(ctx context.Context, target string) (Summary, error) {
	venues, err := s.resolveTargets(target)
	if err != nil {
		return Summary{}, err
	}

	var (
		mu      sync.Mutex
		summary Summary
	)

	var g errgroup.Group
	for _, venue := range venues {
		g.Go(func() error {
			upserts, deactivated, active := s.syncVenue(ctx, venue)
			mu.Lock()
			summary.Upserts += upserts
			summary.Deactivated += deactivated
			summary.ActiveTotal += active
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("catalog sync complete",
		"active_total", summary.ActiveTotal,
		"deactivated", summary.Deactivated,
		"target", target,
		"upserts", summary.Upserts,
	)
	return summary, nil
}

func (s *Syncer) syncVenue(ctx context.Context, venue string) (upserts, deactivated, active int64) {
	adapter, err := s.registry.Get(venue)
	if err != nil {
		slog.Error("catalog sync skipped", "error", err, "venue", venue)
		return 0, 0, 0
	}

	exchangeID, err := s.store.ExchangeIDByName(ctx, venue)
	if err != nil {
		slog.Error("catalog sync skipped", "error", err, "venue", venue)
		return 0, 0, 0
	}

	listings, err := adapter.ListSymbols(ctx)
	if err != nil {
		// Empty-set guard: no deactivation on upstream failure.
		slog.Error("listing discovery failed, keeping existing catalog", "error", err, "venue", venue)
		return 0, 0, 0
	}

	keep := make([]string, 0, len(listings))
	for _, l := range listings {
		coinID, err := s.store.UpsertCoin(ctx, l.Symbol, l.Symbol)
		if err != nil {
			slog.Error("coin upsert failed", "error", err, "symbol", l.Symbol, "venue", venue)
			continue
		}
		if err := s.store.UpsertListing(ctx, exchangeID, coinID, l.MarketSymbol, l.Base, l.Quote); err != nil {
			slog.Error("listing upsert failed", "error", err, "symbol", l.Symbol, "venue", venue)
			continue
		}
		keep = append(keep, l.Symbol)
		upserts++
	}

	deactivated, err = s.store.DeactivateListingsExcept(ctx, exchangeID, keep)
	if err != nil {
		slog.Error("listing deactivation failed", "error", err, "venue", venue)
	}

	active, err = s.store.CountActiveListings(ctx, exchangeID)
	if err != nil {
		slog.Error("active listing count failed", "error", err, "venue", venue)
	}

	slog.Info("venue catalog synced",
		"active", active, "deactivated", deactivated, "upserts", upserts, "venue", venue)
	return upserts, deactivated, active
}

func (s *Syncer) resolveTargets(target string) ([]string, error) {
	if target == "" || strings.EqualFold(target, "all") {
		return s.registry.Names(), nil
	}
	for _, name := range s.registry.Names() {
		if strings.EqualFold(target, name) {
			return []string{name}, nil
		}
	}
	return nil, fmt.Errorf("invalid sync target %q (allowed: all, binance, upbit, bithumb)", target)
}
