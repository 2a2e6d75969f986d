package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kimchiscan/server/internal/domain"
	"github.com/kimchiscan/server/internal/exchange"
	"github.com/kimchiscan/server/internal/httpclient"
	"github.com/kimchiscan/server/internal/ratelimit"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// maxVolumeChars bounds the decimal string representation of a persisted
// volume. Longer values would overflow the backing NUMERIC column, so the
// volume is dropped; the price itself is never dropped.
const maxVolumeChars = 30

// Store is the slice of the repository the ingestor needs.
type Store interface {
	ActiveListings(ctx context.Context, exchangeID int32) ([]domain.ActiveListing, error)
	UpsertPrice(ctx context.Context, p domain.NewPriceData) error
}

// VenueResult accounts for one venue within a batch: how many ticker rows
// the adapter returned, how many were persisted, and how many fell out
// (unlisted symbols plus per-row upsert failures).
type VenueResult struct {
	Dropped int
	Elapsed time.Duration
	Error   error
	Fetched int
	Saved   int
	Venue   string
}

// Ingestor fans out ticker fetches across venues and persists normalized
// snapshots. Exchange ids are resolved by name once at wiring time and cached
// here, never hardcoded.
type Ingestor struct {
	exchangeIDs map[string]int32
	registry    *exchange.Registry
	retryCfg    ratelimit.RetryConfig
	store       Store

	now func() time.Time
}

func NewIngestor(store Store, registry *exchange.Registry, exchangeIDs map[string]int32, retryCfg ratelimit.RetryConfig) *Ingestor {
	return &Ingestor{
		exchangeIDs: exchangeIDs,
		now:         time.Now,
		registry:    registry,
		retryCfg:    retryCfg,
		store:       store,
	}
}

// FetchAllPrices runs one ingestion batch: the venue fetches run in parallel,
// each venue's rows are filtered to its active listings, sanitized, and
// upserted one by one. The batch timestamp is captured once before fan-out so
// every row of the batch shares it. Venue and row failures are logged and
// absorbed; one venue succeeding is a successful batch.
func (i *Ingestor) FetchAllPrices(ctx context.Context) []VenueResult {
	started := i.now()
	batchTS := started.UTC()

	venues := i.registry.Names()
	results := make([]VenueResult, len(venues))

	// Plain errgroup, not WithContext: a failing venue must not cancel the
	// survivors, or partial success is lost.
	var g errgroup.Group
	for idx, venue := range venues {
		g.Go(func() error {
			venueStarted := time.Now()
			results[idx] = i.ingestVenue(ctx, venue, batchTS)
			results[idx].Elapsed = time.Since(venueStarted)
			return nil
		})
	}
	_ = g.Wait()

	logBatch(results, batchTS, time.Since(started))
	return results
}

func (i *Ingestor) ingestVenue(ctx context.Context, venue string, batchTS time.Time) VenueResult {
	result := VenueResult{Venue: venue}

	adapter, err := i.registry.Get(venue)
	if err != nil {
		result.Error = err
		return result
	}

	exchangeID, ok := i.exchangeIDs[venue]
	if !ok {
		result.Error = fmt.Errorf("no exchange id cached for %s", venue)
		return result
	}

	listings, err := i.store.ActiveListings(ctx, exchangeID)
	if err != nil {
		result.Error = fmt.Errorf("load active listings: %w", err)
		return result
	}
	if len(listings) == 0 {
		slog.Info("no active listings, skipping venue", "venue", venue)
		return result
	}

	coinIDs := make(map[string]int32, len(listings))
	markets := make([]string, 0, len(listings))
	for _, l := range listings {
		coinIDs[l.Symbol] = l.CoinID
		markets = append(markets, l.MarketSymbol)
	}

	tickers, err := ratelimit.WithRetry(ctx, venue, i.retryCfg, httpclient.IsRetryable,
		func(ctx context.Context) ([]exchange.Ticker, error) {
			return adapter.FetchTickers(ctx, markets)
		},
	)
	if err != nil {
		result.Error = fmt.Errorf("fetch tickers: %w", err)
		return result
	}
	result.Fetched = len(tickers)

	for _, t := range tickers {
		coinID, listed := coinIDs[t.Symbol]
		if !listed {
			result.Dropped++
			continue
		}

		row := domain.NewPriceData{
			CoinID:         coinID,
			ExchangeID:     exchangeID,
			Price:          t.Price,
			PriceChange24h: t.ChangePct24h,
			Timestamp:      batchTS,
			Volume24h:      sanitizeVolume(t.Volume24h),
		}

		if err := i.store.UpsertPrice(ctx, row); err != nil {
			slog.Error("price upsert failed, skipping row", "error", err, "symbol", t.Symbol, "venue", venue)
			result.Dropped++
			continue
		}
		result.Saved++
	}

	return result
}

// logBatch emits one line per venue plus the batch totals keyed by the shared
// timestamp.
func logBatch(results []VenueResult, batchTS time.Time, totalElapsed time.Duration) {
	okVenues, totalSaved := 0, 0

	for _, r := range results {
		if r.Error != nil {
			slog.Error("venue ingestion failed",
				"elapsed", r.Elapsed.Round(time.Millisecond).String(),
				"error", r.Error,
				"venue", r.Venue,
			)
			continue
		}
		okVenues++
		totalSaved += r.Saved
		slog.Info("venue ingested",
			"dropped", r.Dropped,
			"elapsed", r.Elapsed.Round(time.Millisecond).String(),
			"fetched", r.Fetched,
			"saved", r.Saved,
			"venue", r.Venue,
		)
	}

	slog.Info("price batch complete",
		"batch_ts", batchTS.Format(time.RFC3339),
		"elapsed", totalElapsed.Round(time.Millisecond).String(),
		"saved", totalSaved,
		"venues_ok", fmt.Sprintf("%d/%d", okVenues, len(results)),
	)
}

// sanitizeVolume nulls out volumes whose decimal string exceeds the column
// budget.
func sanitizeVolume(v decimal.NullDecimal) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	if len(v.Decimal.String()) > maxVolumeChars {
		return decimal.NullDecimal{}
	}
	return v
}
