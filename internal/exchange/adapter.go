package exchange

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Listing is one venue-native market discovered during catalog sync.
// Symbol is the base asset in uppercase; MarketSymbol is the venue's pair
// string (BTCUSDT, KRW-BTC, BTC_KRW).
type Listing struct {
	Base         string
	MarketSymbol string
	Quote        string
	Symbol       string
}

// Ticker is one venue ticker row translated to decimal values. Price is in
// the venue's native quote currency. Volume and ChangePct are optional:
// upstream rows missing them still carry a usable price.
type Ticker struct {
	ChangePct24h decimal.NullDecimal
	Price        decimal.Decimal
	Symbol       string
	Volume24h    decimal.NullDecimal
}

// Adapter is a pure translator for one venue: it lists tradable symbols and
// fetches tickers, and never touches the store.
// markets passes the venue's listed market symbols for venues that fetch by
// explicit market list (Upbit); venues with an all-markets endpoint ignore it.
type Adapter interface {
	Name() string
	ListSymbols(ctx context.Context) ([]Listing, error)
	FetchTickers(ctx context.Context, markets []string) ([]Ticker, error)
}

// Registry enumerates venues keyed by canonical name, preserving order.
type Registry struct {
	adapters map[string]Adapter
	names    []string
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
		r.names = append(r.names, a.Name())
	}
	return r
}

func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("unknown exchange %q", name)
	}
	return a, nil
}

// Names returns venue names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// parseDecimal wraps shopspring parsing with the upstream field for context.
func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}

// parseOptionalDecimal returns an invalid NullDecimal for unparsable or empty
// input instead of an error; optional upstream fields never fail a row.
func parseOptionalDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
