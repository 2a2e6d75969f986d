package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewPriceData is one normalized price snapshot awaiting persistence.
// Price is in the venue's native quote currency (USDT for Binance, KRW for
// the domestic venues). Timestamp is the ingestion clock, captured once per
// batch, not the upstream tick time.
type NewPriceData struct {
	CoinID         int32
	ExchangeID     int32
	Price          decimal.Decimal
	PriceChange24h decimal.NullDecimal
	Timestamp      time.Time
	Volume24h      decimal.NullDecimal
}

// VenuePrice is one row of the latest-per-exchange view: a venue's most
// recent price and 24h volume inside the freshness window.
type VenuePrice struct {
	Exchange  string
	Price     decimal.Decimal
	Volume24h decimal.NullDecimal
}
