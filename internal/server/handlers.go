package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kimchiscan/server/internal/arbitrage"
	"github.com/kimchiscan/server/internal/domain"
	"github.com/shopspring/decimal"
)

// GET /api/v1/arbitrage?from&to&fx&fees&limit
// fx defaults to usdkrw and fees to exclude for bulk reads.
func (s *Server) handleArbitrageList(w http.ResponseWriter, r *http.Request) {
	from, to, err := exchangePairParams(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	fxSource, err := fxSourceParam(r, domain.FxUsdKrw)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	includeFees, err := feesParam(r, false)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	list, err := s.calculator.GetDirectionalArbitrageList(r.Context(), from, to, fxSource, includeFees, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/v1/arbitrage/{symbol}?from&to&fx&fees
// fx defaults to usdtkrw and fees to include for single-symbol reads.
func (s *Server) handleArbitrage(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))

	from, to, err := exchangePairParams(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	fxSource, err := fxSourceParam(r, domain.FxUsdtKrw)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	includeFees, err := feesParam(r, true)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	arb, err := s.calculator.GetDirectionalArbitrageWithOptions(r.Context(), arbitrage.Options{
		FromExchange: from,
		FxSource:     fxSource,
		IncludeFees:  includeFees,
		Symbol:       symbol,
		ToExchange:   to,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, arb)
}

// GET /api/v1/kimchi-history?symbol&from&to&minutes
func (s *Server) handleKimchiHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeBadRequest(w, errors.New("missing required parameter symbol"))
		return
	}
	from, to, err := exchangePairParams(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	minutes, err := intParam(r, "minutes", 60)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	points, err := s.calculator.GetKimchiHistory(r.Context(), symbol, from, to, minutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

type exchangeRateResponse struct {
	CurrencyPair string          `json:"currency_pair"`
	Note         string          `json:"note,omitempty"`
	Rate         decimal.Decimal `json:"rate"`
	Timestamp    time.Time       `json:"timestamp"`
}

// GET /api/v1/exchange-rate
func (s *Server) handleExchangeRate(w http.ResponseWriter, r *http.Request) {
	rate, err := s.fx.GetLatestUsdKrwRate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exchangeRateResponse{
		CurrencyPair: "USD/KRW",
		Rate:         rate,
		Timestamp:    time.Now().UTC(),
	})
}

// POST /api/v1/admin/sync-coins?exchange=all|binance|upbit|bithumb
func (s *Server) handleSyncCoins(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("exchange")
	if target == "" {
		target = "all"
	}

	summary, err := s.syncer.Sync(r.Context(), target)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type ingestNowResponse struct {
	ElapsedMs int64 `json:"elapsed_ms"`
	OK        bool  `json:"ok"`
}

// POST /api/v1/admin/ingest-now
func (s *Server) handleIngestNow(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	s.ingestor.FetchAllPrices(r.Context())
	writeJSON(w, http.StatusOK, ingestNowResponse{
		ElapsedMs: time.Since(started).Milliseconds(),
		OK:        true,
	})
}
