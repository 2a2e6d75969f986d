package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// UpsertCoin inserts a coin or refreshes its name, returning the coin id.
// Symbols are stored uppercase.
func (r *Repository) UpsertCoin(ctx context.Context, symbol, name string) (int32, error) {
	var id int32
	err := r.pool.QueryRow(ctx, `
		INSERT INTO coins (symbol, name)
		VALUES ($1, $2)
		ON CONFLICT (symbol) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, strings.ToUpper(symbol), name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert coin %s: %w", symbol, err)
	}
	return id, nil
}

// ExchangeIDByName resolves a venue's id from its canonical name.
func (r *Repository) ExchangeIDByName(ctx context.Context, name string) (int32, error) {
	var id int32
	err := r.pool.QueryRow(ctx, `SELECT id FROM exchanges WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("exchange %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve exchange %s: %w", name, err)
	}
	return id, nil
}

// CommonSymbols returns symbols actively listed on both venues, ordered
// lexicographically. limit <= 0 means no limit.
func (r *Repository) CommonSymbols(ctx context.Context, from, to string, limit int) ([]string, error) {
	query := `
		SELECT c.symbol
		FROM coins c
		JOIN coin_listings lf ON lf.coin_id = c.id AND lf.is_active
		JOIN exchanges ef ON ef.id = lf.exchange_id AND ef.name = $1
		JOIN coin_listings lt ON lt.coin_id = c.id AND lt.is_active
		JOIN exchanges et ON et.id = lt.exchange_id AND et.name = $2
		ORDER BY c.symbol
	`
	args := []any{from, to}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("common symbols %s/%s: %w", from, to, err)
	}
	defer rows.Close()

	symbols := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan common symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate common symbols: %w", err)
	}

	return symbols, nil
}
