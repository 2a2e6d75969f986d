package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FxSource selects how USD-quoted prices are converted to KRW.
type FxSource string

const (
	// FxUsdKrw uses the persisted central-bank style USD/KRW reference rate.
	FxUsdKrw FxSource = "usdkrw"
	// FxUsdtKrw uses the market-implied rate from a domestic USDT quote.
	FxUsdtKrw FxSource = "usdtkrw"
)

// ParseFxSource accepts the two wire values; anything else is an error.
func ParseFxSource(s string) (FxSource, error) {
	switch FxSource(s) {
	case FxUsdKrw, FxUsdtKrw:
		return FxSource(s), nil
	}
	return "", fmt.Errorf("invalid fx source %q (allowed: usdkrw, usdtkrw)", s)
}

// DirectionalArbitrage is the result of a notional buy on FromExchange and
// sale on ToExchange, both sides expressed in KRW.
type DirectionalArbitrage struct {
	Symbol                   string              `json:"symbol"`
	FromExchange             string              `json:"from_exchange"`
	ToExchange               string              `json:"to_exchange"`
	FromPrice                decimal.Decimal     `json:"from_price"`
	ToPrice                  decimal.Decimal     `json:"to_price"`
	PriceDifference          decimal.Decimal     `json:"price_difference"`
	ProfitPercentage         decimal.Decimal     `json:"profit_percentage"`
	EstimatedProfitAfterFees decimal.Decimal     `json:"estimated_profit_after_fees"`
	TotalFees                decimal.Decimal     `json:"total_fees"`
	IsProfitable             bool                `json:"is_profitable"`
	FxType                   FxSource            `json:"fx_type"`
	FxRate                   decimal.Decimal     `json:"fx_rate"`
	FromVolume24h            decimal.NullDecimal `json:"from_volume_24h"`
	ToVolume24h              decimal.NullDecimal `json:"to_volume_24h"`
	FromNotional24h          decimal.NullDecimal `json:"from_notional_24h"`
	ToNotional24h            decimal.NullDecimal `json:"to_notional_24h"`
}

// KimchiPoint is one appended row of the kimchi premium time series.
type KimchiPoint struct {
	Symbol           string              `json:"symbol"`
	FromExchange     string              `json:"from_exchange"`
	ToExchange       string              `json:"to_exchange"`
	FxType           FxSource            `json:"fx_type"`
	TS               time.Time           `json:"ts"`
	FromPriceKrw     decimal.Decimal     `json:"from_price_krw"`
	ToPriceKrw       decimal.Decimal     `json:"to_price_krw"`
	ProfitPercentage decimal.Decimal     `json:"profit_percentage"`
	FromVolume24h    decimal.NullDecimal `json:"from_volume_24h"`
	ToVolume24h      decimal.NullDecimal `json:"to_volume_24h"`
	FromNotional24h  decimal.NullDecimal `json:"from_notional_24h"`
	ToNotional24h    decimal.NullDecimal `json:"to_notional_24h"`
}
