package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/kimchiscan/server/internal/domain"
	"github.com/kimchiscan/server/internal/httpclient"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	krwPrefix = "KRW-"

	// Upbit allows comfortably more markets per ticker call; 100 keeps URLs
	// short while holding the request count at a handful per batch.
	upbitChunkSize = 100
)

type upbitMarket struct {
	Market string `json:"market"`
}

// Upbit serializes prices as JSON numbers; they are widened to decimal
// immediately after decoding.
type upbitTicker struct {
	AccTradeVolume24h float64 `json:"acc_trade_volume_24h"`
	Market            string  `json:"market"`
	SignedChangeRate  float64 `json:"signed_change_rate"`
	TradePrice        float64 `json:"trade_price"`
}

// Upbit is a domestic venue; only KRW markets are ingested. Batched ticker
// calls are paced by the limiter.
type Upbit struct {
	http    *httpclient.Client
	limiter *rate.Limiter
}

func NewUpbit(httpClient *httpclient.Client, limiter *rate.Limiter) *Upbit {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Upbit{http: httpClient, limiter: limiter}
}

func (u *Upbit) Name() string {
	return domain.ExchangeUpbit
}

// ListSymbols returns the base assets of every KRW market.
func (u *Upbit) ListSymbols(ctx context.Context) ([]Listing, error) {
	var markets []upbitMarket
	if err := u.http.GetJSON(ctx, "/v1/market/all", &markets); err != nil {
		return nil, fmt.Errorf("upbit market/all: %w", err)
	}

	listings := make([]Listing, 0, len(markets))
	for _, m := range markets {
		if !strings.HasPrefix(m.Market, krwPrefix) {
			continue
		}
		base := strings.TrimPrefix(m.Market, krwPrefix)
		listings = append(listings, Listing{
			Base:         base,
			MarketSymbol: m.Market,
			Quote:        "KRW",
			Symbol:       strings.ToUpper(base),
		})
	}

	return listings, nil
}

// FetchTickers fetches the given KRW markets in limiter-paced chunks.
// A chunk failure fails the whole call: partial venue data would make the
// latest-per-exchange view lopsided within one batch timestamp.
func (u *Upbit) FetchTickers(ctx context.Context, markets []string) ([]Ticker, error) {
	tickers := make([]Ticker, 0, len(markets))

	for chunk := range chunked(markets, upbitChunkSize) {
		if err := u.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var raw []upbitTicker
		err := u.http.GetJSON(ctx, "/v1/ticker", &raw,
			httpclient.WithQueryParam("markets", strings.Join(chunk, ",")),
		)
		if err != nil {
			return nil, fmt.Errorf("upbit ticker batch: %w", err)
		}

		for _, t := range raw {
			if !strings.HasPrefix(t.Market, krwPrefix) {
				continue
			}
			tickers = append(tickers, Ticker{
				ChangePct24h: decimal.NullDecimal{
					Decimal: decimal.NewFromFloat(t.SignedChangeRate).Mul(decimal.NewFromInt(100)),
					Valid:   true,
				},
				Price:     decimal.NewFromFloat(t.TradePrice),
				Symbol:    strings.TrimPrefix(t.Market, krwPrefix),
				Volume24h: decimal.NullDecimal{Decimal: decimal.NewFromFloat(t.AccTradeVolume24h), Valid: true},
			})
		}
	}

	return tickers, nil
}

func chunked(items []string, size int) func(yield func([]string) bool) {
	return func(yield func([]string) bool) {
		for start := 0; start < len(items); start += size {
			end := min(start+size, len(items))
			if !yield(items[start:end]) {
				return
			}
		}
	}
}
