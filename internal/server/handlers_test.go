package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kimchiscan/server/internal/arbitrage"
	"github.com/kimchiscan/server/internal/domain"
	"github.com/kimchiscan/server/internal/fxrate"
	"github.com/kimchiscan/server/internal/httpclient"
	"github.com/kimchiscan/server/internal/store"
	"github.com/shopspring/decimal"
)

type stubPriceReader struct {
	common []string
	prices map[string][]domain.VenuePrice
}

func (s *stubPriceReader) LatestPriceVolumePerExchange(ctx context.Context, symbol string) ([]domain.VenuePrice, error) {
	return s.prices[symbol], nil
}

func (s *stubPriceReader) CommonSymbols(ctx context.Context, from, to string, limit int) ([]string, error) {
	if limit > 0 && limit < len(s.common) {
		return s.common[:limit], nil
	}
	return s.common, nil
}

type stubKimchiStore struct{}

func (stubKimchiStore) InsertKimchi(ctx context.Context, p domain.KimchiPoint) error { return nil }
func (stubKimchiStore) QueryKimchi(ctx context.Context, symbol, from, to string, minutes int) ([]domain.KimchiPoint, error) {
	return nil, nil
}

type stubFxStore struct {
	rate decimal.Decimal
}

func (s *stubFxStore) InsertFxRate(ctx context.Context, rate domain.NewFxRate) error { return nil }
func (s *stubFxStore) LatestFxRate(ctx context.Context, currencyCode string) (domain.FxRate, error) {
	if s.rate.IsZero() {
		return domain.FxRate{}, store.ErrNotFound
	}
	return domain.FxRate{CurrencyCode: currencyCode, Rate: s.rate}, nil
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func newTestRouter(t *testing.T, prices *stubPriceReader) http.Handler {
	t.Helper()

	// The fx clients are never reached: the fake store always has a rate.
	fx := fxrate.NewService(
		&stubFxStore{rate: dec(t, "1300")},
		httpclient.NewClient("http://127.0.0.1:1", nil, nil, 0),
		httpclient.NewClient("http://127.0.0.1:1", nil, nil, 0),
		"",
	)
	calc := arbitrage.NewCalculator(prices, fx, stubKimchiStore{})
	return New(calc, fx, nil, nil).Router()
}

func TestHandleArbitrage_OK(t *testing.T) {
	router := newTestRouter(t, &stubPriceReader{prices: map[string][]domain.VenuePrice{
		"BTC": {
			{Exchange: "Binance", Price: dec(t, "60000")},
			{Exchange: "Upbit", Price: dec(t, "83200000")},
		},
	}})

	req := httptest.NewRequest("GET", "/api/v1/arbitrage/btc?from=binance&to=upbit&fx=usdkrw&fees=exclude", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var got domain.DirectionalArbitrage
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Symbol != "BTC" {
		t.Errorf("symbol = %q, want BTC (upper-cased)", got.Symbol)
	}
	if got.FromExchange != "Binance" || got.ToExchange != "Upbit" {
		t.Errorf("pair = %s/%s, want normalized names", got.FromExchange, got.ToExchange)
	}
	if !got.FromPrice.Equal(dec(t, "78000000")) {
		t.Errorf("from price = %s, want 78000000", got.FromPrice)
	}
}

func TestHandleArbitrage_MissingSideIs404(t *testing.T) {
	router := newTestRouter(t, &stubPriceReader{prices: map[string][]domain.VenuePrice{
		"BTC": {{Exchange: "Binance", Price: dec(t, "60000")}},
	}})

	req := httptest.NewRequest("GET", "/api/v1/arbitrage/BTC?from=binance&to=upbit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleArbitrage_BadExchangeIs400(t *testing.T) {
	router := newTestRouter(t, &stubPriceReader{})

	req := httptest.NewRequest("GET", "/api/v1/arbitrage/BTC?from=binance&to=coinbase", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleArbitrageList_SortedAndLimited(t *testing.T) {
	router := newTestRouter(t, &stubPriceReader{
		common: []string{"BTC", "ETH", "XRP"},
		prices: map[string][]domain.VenuePrice{
			"BTC": {
				{Exchange: "Binance", Price: dec(t, "60000")},
				{Exchange: "Upbit", Price: dec(t, "80000000")},
			},
			"ETH": {
				{Exchange: "Binance", Price: dec(t, "3000")},
				{Exchange: "Upbit", Price: dec(t, "4095000")},
			},
			"XRP": {
				{Exchange: "Binance", Price: dec(t, "0.5")},
				{Exchange: "Upbit", Price: dec(t, "656.5")},
			},
		},
	})

	req := httptest.NewRequest("GET", "/api/v1/arbitrage?from=binance&to=upbit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var got []domain.DirectionalArbitrage
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Symbol != "ETH" {
		t.Errorf("top symbol = %s, want ETH (highest premium)", got[0].Symbol)
	}
	// List default excludes fees.
	if !got[0].TotalFees.IsZero() {
		t.Errorf("fees = %s, want 0 by default on lists", got[0].TotalFees)
	}
}

func TestHandleExchangeRate_ProviderChainDownIs502(t *testing.T) {
	// Empty fx store forces a live fetch; both provider clients point at a
	// closed port, so the whole chain fails and the handler maps it upstream.
	fx := fxrate.NewService(
		&stubFxStore{},
		httpclient.NewClient("http://127.0.0.1:1", nil, nil, 0),
		httpclient.NewClient("http://127.0.0.1:1", nil, nil, 0),
		"",
	)
	calc := arbitrage.NewCalculator(&stubPriceReader{}, fx, stubKimchiStore{})
	router := New(calc, fx, nil, nil).Router()

	req := httptest.NewRequest("GET", "/api/v1/exchange-rate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHandleExchangeRate(t *testing.T) {
	router := newTestRouter(t, &stubPriceReader{})

	req := httptest.NewRequest("GET", "/api/v1/exchange-rate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got exchangeRateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.CurrencyPair != "USD/KRW" {
		t.Errorf("pair = %q, want USD/KRW", got.CurrencyPair)
	}
	if !got.Rate.Equal(dec(t, "1300")) {
		t.Errorf("rate = %s, want 1300", got.Rate)
	}
}
