package domain

import "time"

// Coin is created on first appearance in any venue's listing and never deleted.
// Symbol is stored uppercase and unique.
type Coin struct {
	CreatedAt time.Time
	ID        int32
	IsActive  bool
	Name      string
	Symbol    string
}

// ActiveListing is the ingestion view of one active listing: just enough to
// filter adapter rows and resolve coin ids without a per-row query.
type ActiveListing struct {
	CoinID       int32
	MarketSymbol string
	Symbol       string
}

// CoinListing records that a venue currently trades a coin under a native
// market symbol (BTCUSDT, KRW-BTC, BTC_KRW). Unique on (ExchangeID, CoinID).
// A coin is eligible for ingestion on a venue only while IsActive is true;
// stale listings are soft-deactivated, preserving historical joins.
type CoinListing struct {
	Base         string
	CoinID       int32
	ExchangeID   int32
	ID           int32
	IsActive     bool
	MarketSymbol string
	Quote        string
	UpdatedAt    time.Time
}
