package fxrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kimchiscan/server/internal/domain"
	"github.com/kimchiscan/server/internal/httpclient"
	"github.com/kimchiscan/server/internal/ratelimit"
	"github.com/shopspring/decimal"
)

const usdCode = "USD"

// ErrExternalAPI marks a total failure of the FX provider chain.
var ErrExternalAPI = errors.New("external fx api failed")

// FallbackUsdKrw is the library constant used when both providers and the
// store are unavailable. It is never persisted.
var FallbackUsdKrw = decimal.NewFromInt(1300)

// Store is the slice of the repository the FX service needs.
type Store interface {
	InsertFxRate(ctx context.Context, rate domain.NewFxRate) error
	LatestFxRate(ctx context.Context, currencyCode string) (domain.FxRate, error)
}

// Providers are polled every ten seconds, so one quick retry per provider is
// all the budget allows before the chain moves on.
var fxRetryCfg = ratelimit.RetryConfig{
	InitialBackoff: 500 * time.Millisecond,
	MaxAttempts:    2,
	MaxBackoff:     2 * time.Second,
}

// Service acquires USD/KRW through a fallback chain (Naver scrape, then the
// Korea Eximbank JSON API) and serves the latest persisted rate.
type Service struct {
	authKey  string
	exim     *httpclient.Client
	naver    *httpclient.Client
	retryCfg ratelimit.RetryConfig
	store    Store

	now func() time.Time
}

func NewService(store Store, naverClient, eximClient *httpclient.Client, authKey string) *Service {
	return &Service{
		authKey:  authKey,
		exim:     eximClient,
		naver:    naverClient,
		now:      time.Now,
		retryCfg: fxRetryCfg,
		store:    store,
	}
}

// FetchAndSaveUsdKrwRate walks the provider chain, persists the first rate it
// obtains, and returns it. A primary failure is logged at warn and triggers
// the secondary; only a total chain failure surfaces.
func (s *Service) FetchAndSaveUsdKrwRate(ctx context.Context) (decimal.Decimal, error) {
	rate, err := ratelimit.WithRetry(ctx, "naver", s.retryCfg, httpclient.IsRetryable, s.fetchFromNaver)
	if err == nil {
		saved := domain.NewFxRate{CurrencyCode: usdCode, Rate: rate}
		if err := s.store.InsertFxRate(ctx, saved); err != nil {
			return decimal.Decimal{}, fmt.Errorf("save naver rate: %w", err)
		}
		slog.Info("usd/krw rate saved", "rate", rate.String(), "source", "naver")
		return rate, nil
	}
	slog.Warn("naver fx fetch failed, falling back to eximbank", "error", err)

	saved, err := ratelimit.WithRetry(ctx, "eximbank", s.retryCfg, httpclient.IsRetryable, s.fetchFromEximbank)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	if err := s.store.InsertFxRate(ctx, saved); err != nil {
		return decimal.Decimal{}, fmt.Errorf("save eximbank rate: %w", err)
	}
	slog.Info("usd/krw rate saved", "rate", saved.Rate.String(), "source", "eximbank")
	return saved.Rate, nil
}

// GetLatestUsdKrwRate returns the most recent persisted USD rate, fetching
// through the chain when none exists yet.
func (s *Service) GetLatestUsdKrwRate(ctx context.Context) (decimal.Decimal, error) {
	fr, err := s.store.LatestFxRate(ctx, usdCode)
	if err == nil {
		return fr.Rate, nil
	}
	return s.FetchAndSaveUsdKrwRate(ctx)
}
