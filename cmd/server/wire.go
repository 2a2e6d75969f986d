package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kimchiscan/server/internal/arbitrage"
	"github.com/kimchiscan/server/internal/catalog"
	"github.com/kimchiscan/server/internal/config"
	"github.com/kimchiscan/server/internal/domain"
	"github.com/kimchiscan/server/internal/exchange"
	"github.com/kimchiscan/server/internal/fxrate"
	"github.com/kimchiscan/server/internal/httpclient"
	"github.com/kimchiscan/server/internal/ingest"
	"github.com/kimchiscan/server/internal/ratelimit"
	"github.com/kimchiscan/server/internal/scheduler"
	"github.com/kimchiscan/server/internal/server"
	"github.com/kimchiscan/server/internal/store"
	"golang.org/x/time/rate"
)

const (
	binanceBaseURL = "https://api.binance.com"
	upbitBaseURL   = "https://api.upbit.com"
	bithumbBaseURL = "https://api.bithumb.com"
	naverBaseURL   = "https://m.search.naver.com"
	eximBaseURL    = "https://oapi.koreaexim.go.kr"
)

// Venue fetches run every two seconds; one retry is all the schedule leaves
// room for.
var ingestRetryCfg = ratelimit.RetryConfig{
	InitialBackoff: 200 * time.Millisecond,
	MaxAttempts:    2,
	MaxBackoff:     time.Second,
}

// The kimchi snapshot job tracks ETH moved from Binance to Upbit against the
// reference rate.
const (
	snapshotSymbol = "ETH"
	snapshotFrom   = domain.ExchangeBinance
	snapshotTo     = domain.ExchangeUpbit
)

type app struct {
	scheduler *scheduler.Scheduler
	server    *server.Server
}

func buildApp(ctx context.Context, pool *pgxpool.Pool, env config.Env) (*app, error) {
	repo := store.NewRepository(pool)

	registry := exchange.NewRegistry(
		exchange.NewBinance(httpclient.NewClient(binanceBaseURL, nil, nil, 0)),
		// Upbit allows 10 ticker calls per second; half that keeps headroom.
		exchange.NewUpbit(
			httpclient.NewClient(upbitBaseURL, nil, nil, 0),
			rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		),
		exchange.NewBithumb(httpclient.NewClient(bithumbBaseURL, nil, nil, 0)),
	)

	exchangeIDs := make(map[string]int32, len(registry.Names()))
	for _, name := range registry.Names() {
		id, err := repo.ExchangeIDByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve exchange id: %w", err)
		}
		exchangeIDs[name] = id
	}

	fxService := fxrate.NewService(
		repo,
		httpclient.NewClient(naverBaseURL, nil, nil, 0),
		httpclient.NewClient(eximBaseURL, nil, nil, 0),
		env.ExchangeRateAPIKey,
	)

	syncer := catalog.NewSyncer(repo, registry)
	ingestor := ingest.NewIngestor(repo, registry, exchangeIDs, ingestRetryCfg)
	calculator := arbitrage.NewCalculator(repo, fxService, repo)

	sched := scheduler.New(scheduler.Jobs{
		FetchAllPrices: func(ctx context.Context) error {
			ingestor.FetchAllPrices(ctx)
			return nil
		},
		FetchFxRate: func(ctx context.Context) error {
			_, err := fxService.FetchAndSaveUsdKrwRate(ctx)
			return err
		},
		RecordKimchi: func(ctx context.Context) error {
			return calculator.RecordKimchiSnapshot(ctx, snapshotSymbol, snapshotFrom, snapshotTo, domain.FxUsdKrw)
		},
		SyncCatalog: func(ctx context.Context) error {
			_, err := syncer.Sync(ctx, "all")
			return err
		},
	})

	return &app{
		scheduler: sched,
		server:    server.New(calculator, fxService, syncer, ingestor),
	}, nil
}
