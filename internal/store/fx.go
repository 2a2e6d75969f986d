package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kimchiscan/server/internal/domain"
)

// InsertFxRate appends one rate row; the table is append-only.
func (r *Repository) InsertFxRate(ctx context.Context, rate domain.NewFxRate) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO exchange_rates (currency_code, rate, ttb_rate, tts_rate)
		VALUES ($1, $2, $3, $4)
	`, rate.CurrencyCode, rate.Rate, rate.TTBRate, rate.TTSRate)
	if err != nil {
		return fmt.Errorf("insert fx rate %s: %w", rate.CurrencyCode, err)
	}
	return nil
}

// LatestFxRate returns the most recently persisted rate for a currency.
func (r *Repository) LatestFxRate(ctx context.Context, currencyCode string) (domain.FxRate, error) {
	var fr domain.FxRate
	err := r.pool.QueryRow(ctx, `
		SELECT id, currency_code, rate, ttb_rate, tts_rate, created_at
		FROM exchange_rates
		WHERE currency_code = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, currencyCode).Scan(&fr.ID, &fr.CurrencyCode, &fr.Rate, &fr.TTBRate, &fr.TTSRate, &fr.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FxRate{}, fmt.Errorf("fx rate %s: %w", currencyCode, ErrNotFound)
	}
	if err != nil {
		return domain.FxRate{}, fmt.Errorf("latest fx rate %s: %w", currencyCode, err)
	}
	return fr, nil
}
