package fxrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kimchiscan/server/internal/domain"
	"github.com/kimchiscan/server/internal/httpclient"
	"github.com/shopspring/decimal"
)

const eximPath = "/site/program/financial/exchangeJSON"

var errUsdRowMissing = errors.New("usd row missing in eximbank response")

type eximRow struct {
	CurUnit  string `json:"cur_unit"`
	DealBasR string `json:"deal_bas_r"`
	TTB      string `json:"ttb"`
	TTS      string `json:"tts"`
}

// fetchFromEximbank queries the daily rate table and extracts the USD row.
// Eximbank formats numbers with thousands separators; commas are stripped
// before parsing. Empty ttb/tts stay null.
func (s *Service) fetchFromEximbank(ctx context.Context) (domain.NewFxRate, error) {
	var rows []eximRow
	err := s.exim.GetJSON(ctx, eximPath, &rows,
		httpclient.WithQueryParam("authkey", s.authKey),
		httpclient.WithQueryParam("searchdate", s.now().Format("20060102")),
		httpclient.WithQueryParam("data", "AP01"),
	)
	if err != nil {
		return domain.NewFxRate{}, fmt.Errorf("fetch eximbank rates: %w", err)
	}

	for _, row := range rows {
		if row.CurUnit != usdCode {
			continue
		}

		rate, err := parseEximDecimal(row.DealBasR)
		if err != nil {
			return domain.NewFxRate{}, fmt.Errorf("parse deal_bas_r %q: %w", row.DealBasR, err)
		}

		return domain.NewFxRate{
			CurrencyCode: usdCode,
			Rate:         rate,
			TTBRate:      parseEximOptional(row.TTB),
			TTSRate:      parseEximOptional(row.TTS),
		}, nil
	}

	return domain.NewFxRate{}, errUsdRowMissing
}

func parseEximDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

func parseEximOptional(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := parseEximDecimal(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
