package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/kimchiscan/server/internal/httpclient"
)

const bithumbAllKrwBody = `{
	"status": "0000",
	"data": {
		"BTC": {"closing_price": "83200000", "units_traded_24H": "1234.5", "fluctate_rate_24H": "2.5"},
		"ETH": {"closing_price": "5000000", "units_traded_24h": "99.25", "fluctate_rate_24h": "-1.0"},
		"DUD": {"units_traded_24H": "5"},
		"date": "1717000000000"
	}
}`

func newBithumbClient(t *testing.T, body string) *Bithumb {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/public/ticker/ALL_KRW" {
			t.Errorf("path = %q, want /public/ticker/ALL_KRW", r.URL.Path)
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewBithumb(httpclient.NewClient(srv.URL, nil, srv.Client(), 0))
}

func TestBithumbListSymbols(t *testing.T) {
	b := newBithumbClient(t, bithumbAllKrwBody)

	listings, err := b.ListSymbols(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	symbols := make([]string, 0, len(listings))
	for _, l := range listings {
		symbols = append(symbols, l.Symbol)
	}
	sort.Strings(symbols)

	// The date key is skipped; DUD is still a listed symbol even without a price.
	want := []string{"BTC", "DUD", "ETH"}
	if len(symbols) != len(want) {
		t.Fatalf("symbols = %v, want %v", symbols, want)
	}
	for i := range want {
		if symbols[i] != want[i] {
			t.Errorf("symbols[%d] = %q, want %q", i, symbols[i], want[i])
		}
	}

	for _, l := range listings {
		if l.Symbol == "BTC" && l.MarketSymbol != "BTC_KRW" {
			t.Errorf("market symbol = %q, want BTC_KRW", l.MarketSymbol)
		}
	}
}

func TestBithumbFetchTickers(t *testing.T) {
	b := newBithumbClient(t, bithumbAllKrwBody)

	tickers, err := b.FetchTickers(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// DUD has no closing_price and is dropped silently.
	if len(tickers) != 2 {
		t.Fatalf("len(tickers) = %d, want 2", len(tickers))
	}

	bysym := make(map[string]Ticker, len(tickers))
	for _, tk := range tickers {
		bysym[tk.Symbol] = tk
	}

	btc, ok := bysym["BTC"]
	if !ok {
		t.Fatal("BTC missing")
	}
	if btc.Price.String() != "83200000" {
		t.Errorf("BTC price = %s, want 83200000", btc.Price)
	}
	if !btc.Volume24h.Valid || btc.Volume24h.Decimal.String() != "1234.5" {
		t.Errorf("BTC volume = %+v, want 1234.5 (upper-case 24H field)", btc.Volume24h)
	}

	eth, ok := bysym["ETH"]
	if !ok {
		t.Fatal("ETH missing")
	}
	if !eth.Volume24h.Valid || eth.Volume24h.Decimal.String() != "99.25" {
		t.Errorf("ETH volume = %+v, want 99.25 (lower-case 24h field)", eth.Volume24h)
	}
	if !eth.ChangePct24h.Valid || eth.ChangePct24h.Decimal.String() != "-1" {
		t.Errorf("ETH change = %+v, want -1", eth.ChangePct24h)
	}
}

func TestBithumbFetchTickers_BadStatus(t *testing.T) {
	b := newBithumbClient(t, `{"status": "5500", "data": {}}`)

	if _, err := b.FetchTickers(context.Background(), nil); err == nil {
		t.Fatal("expected error for non-0000 status")
	}
}
