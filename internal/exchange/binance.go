package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/kimchiscan/server/internal/domain"
	"github.com/kimchiscan/server/internal/httpclient"
)

const usdtQuote = "USDT"

type binanceExchangeInfo struct {
	Symbols []binanceSymbolInfo `json:"symbols"`
}

type binanceSymbolInfo struct {
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
	Status     string `json:"status"`
	Symbol     string `json:"symbol"`
}

type binanceTicker struct {
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	Symbol             string `json:"symbol"`
	Volume             string `json:"volume"`
}

// Binance is the foreign venue; all kept markets are USDT-quoted.
type Binance struct {
	http *httpclient.Client
}

func NewBinance(httpClient *httpclient.Client) *Binance {
	return &Binance{http: httpClient}
}

func (b *Binance) Name() string {
	return domain.ExchangeBinance
}

// ListSymbols returns the base assets of every TRADING market quoted in USDT.
func (b *Binance) ListSymbols(ctx context.Context) ([]Listing, error) {
	var info binanceExchangeInfo
	if err := b.http.GetJSON(ctx, "/api/v3/exchangeInfo", &info); err != nil {
		return nil, fmt.Errorf("binance exchangeInfo: %w", err)
	}

	listings := make([]Listing, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" || s.QuoteAsset != usdtQuote {
			continue
		}
		listings = append(listings, Listing{
			Base:         s.BaseAsset,
			MarketSymbol: s.Symbol,
			Quote:        usdtQuote,
			Symbol:       strings.ToUpper(s.BaseAsset),
		})
	}

	return listings, nil
}

// FetchTickers pulls the full 24hr ticker set and keeps USDT-quoted entries.
// Rows with an unparsable price are dropped; volume and change are optional.
func (b *Binance) FetchTickers(ctx context.Context, _ []string) ([]Ticker, error) {
	var raw []binanceTicker
	if err := b.http.GetJSON(ctx, "/api/v3/ticker/24hr", &raw); err != nil {
		return nil, fmt.Errorf("binance ticker/24hr: %w", err)
	}

	tickers := make([]Ticker, 0, len(raw))
	for _, t := range raw {
		if !strings.HasSuffix(t.Symbol, usdtQuote) {
			continue
		}
		price, err := parseDecimal("lastPrice", t.LastPrice)
		if err != nil {
			continue
		}
		tickers = append(tickers, Ticker{
			ChangePct24h: parseOptionalDecimal(t.PriceChangePercent),
			Price:        price,
			Symbol:       strings.TrimSuffix(t.Symbol, usdtQuote),
			Volume24h:    parseOptionalDecimal(t.Volume),
		})
	}

	return tickers, nil
}
