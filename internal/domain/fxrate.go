package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRate is one persisted reference rate. Rows are append-only; the latest
// rate for a currency is the one with the greatest CreatedAt.
type FxRate struct {
	CreatedAt    time.Time
	CurrencyCode string
	ID           int32
	Rate         decimal.Decimal
	TTBRate      decimal.NullDecimal
	TTSRate      decimal.NullDecimal
}

// NewFxRate is an FxRate awaiting persistence. TTB/TTS (telegraphic transfer
// buy/sell) are only available from the Eximbank source.
type NewFxRate struct {
	CurrencyCode string
	Rate         decimal.Decimal
	TTBRate      decimal.NullDecimal
	TTSRate      decimal.NullDecimal
}
