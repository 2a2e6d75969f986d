package domain

import "time"

// Canonical venue names as stored in the exchanges table.
const (
	ExchangeBinance = "Binance"
	ExchangeUpbit   = "Upbit"
	ExchangeBithumb = "Bithumb"
)

// VenueNames lists every supported venue in registry order.
var VenueNames = []string{ExchangeBinance, ExchangeUpbit, ExchangeBithumb}

// Exchange mirrors one row of the seeded exchanges table. Immutable at runtime.
type Exchange struct {
	APIBaseURL string
	Country    string
	CreatedAt  time.Time
	ID         int32
	Name       string
}

// IsDomestic reports whether a venue quotes in KRW.
func IsDomestic(name string) bool {
	return name == ExchangeUpbit || name == ExchangeBithumb
}
