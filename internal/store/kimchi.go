package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kimchiscan/server/internal/domain"
)

// InsertKimchi appends one premium snapshot to the time series.
func (r *Repository) InsertKimchi(ctx context.Context, p domain.KimchiPoint) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO kimchi_history (
			symbol, from_exchange, to_exchange, fx_type, ts,
			from_price_krw, to_price_krw, profit_percentage,
			from_volume_24h, to_volume_24h, from_notional_24h, to_notional_24h
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.Symbol, p.FromExchange, p.ToExchange, string(p.FxType), p.TS,
		p.FromPriceKrw, p.ToPriceKrw, p.ProfitPercentage,
		p.FromVolume24h, p.ToVolume24h, p.FromNotional24h, p.ToNotional24h)
	if err != nil {
		return fmt.Errorf("insert kimchi point %s: %w", p.Symbol, err)
	}
	return nil
}

// QueryKimchi reads the last `minutes` of points for one directional pair,
// oldest first.
func (r *Repository) QueryKimchi(ctx context.Context, symbol, from, to string, minutes int) ([]domain.KimchiPoint, error) {
	since := r.now().Add(-time.Duration(minutes) * time.Minute)

	rows, err := r.pool.Query(ctx, `
		SELECT symbol, from_exchange, to_exchange, fx_type, ts,
		       from_price_krw, to_price_krw, profit_percentage,
		       from_volume_24h, to_volume_24h, from_notional_24h, to_notional_24h
		FROM kimchi_history
		WHERE symbol = $1 AND from_exchange = $2 AND to_exchange = $3 AND ts >= $4
		ORDER BY ts ASC
	`, strings.ToUpper(symbol), from, to, since)
	if err != nil {
		return nil, fmt.Errorf("query kimchi history %s: %w", symbol, err)
	}
	defer rows.Close()

	points := make([]domain.KimchiPoint, 0)
	for rows.Next() {
		var p domain.KimchiPoint
		var fxType string
		if err := rows.Scan(&p.Symbol, &p.FromExchange, &p.ToExchange, &fxType, &p.TS,
			&p.FromPriceKrw, &p.ToPriceKrw, &p.ProfitPercentage,
			&p.FromVolume24h, &p.ToVolume24h, &p.FromNotional24h, &p.ToNotional24h); err != nil {
			return nil, fmt.Errorf("scan kimchi row: %w", err)
		}
		p.FxType = domain.FxSource(fxType)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kimchi rows: %w", err)
	}

	return points, nil
}
