package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kimchiscan/server/internal/domain"
)

// freshnessWindow bounds how old a price may be and still count as "latest".
const freshnessWindow = 30 * time.Minute

// UpsertPrice inserts one snapshot; on a (exchange, coin, timestamp) conflict
// only the mutable fields are replaced, so repeated writes of the same key are
// idempotent with last-writer-wins semantics.
func (r *Repository) UpsertPrice(ctx context.Context, p domain.NewPriceData) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO price_data (exchange_id, coin_id, price, volume_24h, price_change_24h, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (exchange_id, coin_id, timestamp) DO UPDATE SET
			price            = EXCLUDED.price,
			volume_24h       = EXCLUDED.volume_24h,
			price_change_24h = EXCLUDED.price_change_24h
	`, p.ExchangeID, p.CoinID, p.Price, p.Volume24h, p.PriceChange24h, p.Timestamp)
	if err != nil {
		return fmt.Errorf("upsert price exchange=%d coin=%d: %w", p.ExchangeID, p.CoinID, err)
	}
	return nil
}

// LatestPriceVolumePerExchange returns one row per venue with that venue's
// most recent price and 24h volume no older than the freshness window.
func (r *Repository) LatestPriceVolumePerExchange(ctx context.Context, symbol string) ([]domain.VenuePrice, error) {
	cutoff := r.now().Add(-freshnessWindow)

	rows, err := r.pool.Query(ctx, `
		SELECT name, price, volume_24h FROM (
			SELECT e.name AS name, pd.price, pd.volume_24h,
			       ROW_NUMBER() OVER (PARTITION BY e.name ORDER BY pd.timestamp DESC) AS rn
			FROM price_data pd
			JOIN exchanges e ON pd.exchange_id = e.id
			JOIN coins c ON pd.coin_id = c.id
			WHERE c.symbol = $1
			  AND pd.timestamp >= $2
		) t
		WHERE rn = 1
	`, strings.ToUpper(symbol), cutoff)
	if err != nil {
		return nil, fmt.Errorf("latest prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	prices := make([]domain.VenuePrice, 0, 3)
	for rows.Next() {
		var vp domain.VenuePrice
		if err := rows.Scan(&vp.Exchange, &vp.Price, &vp.Volume24h); err != nil {
			return nil, fmt.Errorf("scan latest price row: %w", err)
		}
		prices = append(prices, vp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest price rows: %w", err)
	}

	return prices, nil
}
