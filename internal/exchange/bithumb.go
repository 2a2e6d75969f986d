package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kimchiscan/server/internal/domain"
	"github.com/kimchiscan/server/internal/httpclient"
)

const bithumbOKStatus = "0000"

// bithumbResponse keys the data object by symbol; the "date" entry and any
// non-object values are skipped via RawMessage.
type bithumbResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Status string                     `json:"status"`
}

// Field casing alternates between _24H and _24h across records; both spellings
// are decoded and coalesced.
type bithumbTickerData struct {
	ClosingPrice      string `json:"closing_price"`
	FluctateRate24H   string `json:"fluctate_rate_24H"`
	FluctateRate24h   string `json:"fluctate_rate_24h"`
	UnitsTraded24H    string `json:"units_traded_24H"`
	UnitsTraded24h    string `json:"units_traded_24h"`
}

func (d bithumbTickerData) volume() string {
	if d.UnitsTraded24H != "" {
		return d.UnitsTraded24H
	}
	return d.UnitsTraded24h
}

func (d bithumbTickerData) changeRate() string {
	if d.FluctateRate24H != "" {
		return d.FluctateRate24H
	}
	return d.FluctateRate24h
}

// Bithumb is a domestic venue. One ALL_KRW call serves both listing discovery
// and ticker fetch; there is no per-symbol fan-out.
type Bithumb struct {
	http *httpclient.Client
}

func NewBithumb(httpClient *httpclient.Client) *Bithumb {
	return &Bithumb{http: httpClient}
}

func (b *Bithumb) Name() string {
	return domain.ExchangeBithumb
}

// ListSymbols returns every symbol key of the ALL_KRW data object.
func (b *Bithumb) ListSymbols(ctx context.Context) ([]Listing, error) {
	data, err := b.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]Listing, 0, len(data))
	for symbol := range data {
		upper := strings.ToUpper(symbol)
		listings = append(listings, Listing{
			Base:         upper,
			MarketSymbol: upper + "_KRW",
			Quote:        "KRW",
			Symbol:       upper,
		})
	}

	return listings, nil
}

// FetchTickers translates the ALL_KRW payload. Rows without a parsable
// closing_price are dropped silently.
func (b *Bithumb) FetchTickers(ctx context.Context, _ []string) ([]Ticker, error) {
	data, err := b.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make([]Ticker, 0, len(data))
	for symbol, t := range data {
		if t.ClosingPrice == "" {
			continue
		}
		price, err := parseDecimal("closing_price", t.ClosingPrice)
		if err != nil {
			continue
		}
		tickers = append(tickers, Ticker{
			ChangePct24h: parseOptionalDecimal(t.changeRate()),
			Price:        price,
			Symbol:       strings.ToUpper(symbol),
			Volume24h:    parseOptionalDecimal(t.volume()),
		})
	}

	return tickers, nil
}

func (b *Bithumb) fetchAll(ctx context.Context) (map[string]bithumbTickerData, error) {
	var resp bithumbResponse
	if err := b.http.GetJSON(ctx, "/public/ticker/ALL_KRW", &resp); err != nil {
		return nil, fmt.Errorf("bithumb ALL_KRW: %w", err)
	}
	if resp.Status != bithumbOKStatus {
		return nil, fmt.Errorf("bithumb ALL_KRW status %q", resp.Status)
	}

	data := make(map[string]bithumbTickerData, len(resp.Data))
	for key, raw := range resp.Data {
		if key == "date" {
			continue
		}
		var t bithumbTickerData
		// Non-object values are not symbols.
		if err := json.Unmarshal(raw, &t); err != nil {
			continue
		}
		data[key] = t
	}

	return data, nil
}
