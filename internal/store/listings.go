package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/kimchiscan/server/internal/domain"
)

// UpsertListing inserts or reactivates a venue's listing of a coin.
func (r *Repository) UpsertListing(ctx context.Context, exchangeID, coinID int32, marketSymbol, base, quote string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO coin_listings (exchange_id, coin_id, market_symbol, base, quote, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (exchange_id, coin_id) DO UPDATE SET
			market_symbol = EXCLUDED.market_symbol,
			base          = EXCLUDED.base,
			quote         = EXCLUDED.quote,
			is_active     = TRUE,
			updated_at    = NOW()
	`, exchangeID, coinID, marketSymbol, base, quote)
	if err != nil {
		return fmt.Errorf("upsert listing exchange=%d coin=%d: %w", exchangeID, coinID, err)
	}
	return nil
}

// DeactivateListingsExcept soft-deactivates a venue's active listings whose
// symbol is not in keep. An empty keep set is a no-op: a venue returning
// nothing must never blanket-deactivate its catalog.
func (r *Repository) DeactivateListingsExcept(ctx context.Context, exchangeID int32, keep []string) (int64, error) {
	if len(keep) == 0 {
		return 0, nil
	}

	upper := make([]string, len(keep))
	for i, s := range keep {
		upper[i] = strings.ToUpper(s)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE coin_listings cl
		SET is_active = FALSE, updated_at = NOW()
		FROM coins c
		WHERE c.id = cl.coin_id
		  AND cl.exchange_id = $1
		  AND cl.is_active
		  AND NOT (c.symbol = ANY($2))
	`, exchangeID, upper)
	if err != nil {
		return 0, fmt.Errorf("deactivate listings exchange=%d: %w", exchangeID, err)
	}
	return tag.RowsAffected(), nil
}

// ActiveListings returns a venue's active listings with their coin ids.
// The ingestor filters adapter rows through this set so every persisted price
// references an active listing.
func (r *Repository) ActiveListings(ctx context.Context, exchangeID int32) ([]domain.ActiveListing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.symbol, c.id, cl.market_symbol
		FROM coin_listings cl
		JOIN coins c ON c.id = cl.coin_id
		WHERE cl.exchange_id = $1 AND cl.is_active
	`, exchangeID)
	if err != nil {
		return nil, fmt.Errorf("active listings exchange=%d: %w", exchangeID, err)
	}
	defer rows.Close()

	listed := make([]domain.ActiveListing, 0)
	for rows.Next() {
		var al domain.ActiveListing
		if err := rows.Scan(&al.Symbol, &al.CoinID, &al.MarketSymbol); err != nil {
			return nil, fmt.Errorf("scan active listing: %w", err)
		}
		listed = append(listed, al)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active listings: %w", err)
	}

	return listed, nil
}

// CountActiveListings counts a venue's active listings after a sync pass.
func (r *Repository) CountActiveListings(ctx context.Context, exchangeID int32) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM coin_listings WHERE exchange_id = $1 AND is_active
	`, exchangeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active listings exchange=%d: %w", exchangeID, err)
	}
	return n, nil
}
