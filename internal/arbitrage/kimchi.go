package arbitrage

import (
	"context"
	"fmt"

	"github.com/kimchiscan/server/internal/domain"
)

// RecordKimchiSnapshot computes a fee-free directional arbitrage and appends
// it to the kimchi_history time series with the current UTC instant.
func (c *Calculator) RecordKimchiSnapshot(ctx context.Context, symbol, from, to string, fxSource domain.FxSource) error {
	arb, err := c.GetDirectionalArbitrageWithOptions(ctx, Options{
		FromExchange: from,
		FxSource:     fxSource,
		IncludeFees:  false,
		Symbol:       symbol,
		ToExchange:   to,
	})
	if err != nil {
		return fmt.Errorf("compute kimchi snapshot %s %s->%s: %w", symbol, from, to, err)
	}

	point := domain.KimchiPoint{
		Symbol:           arb.Symbol,
		FromExchange:     arb.FromExchange,
		ToExchange:       arb.ToExchange,
		FxType:           arb.FxType,
		TS:               c.now().UTC(),
		FromPriceKrw:     arb.FromPrice,
		ToPriceKrw:       arb.ToPrice,
		ProfitPercentage: arb.ProfitPercentage,
		FromVolume24h:    arb.FromVolume24h,
		ToVolume24h:      arb.ToVolume24h,
		FromNotional24h:  arb.FromNotional24h,
		ToNotional24h:    arb.ToNotional24h,
	}

	if err := c.kimchi.InsertKimchi(ctx, point); err != nil {
		return fmt.Errorf("append kimchi snapshot: %w", err)
	}
	return nil
}

// GetKimchiHistory reads the last `minutes` of snapshots for one pair.
func (c *Calculator) GetKimchiHistory(ctx context.Context, symbol, from, to string, minutes int) ([]domain.KimchiPoint, error) {
	return c.kimchi.QueryKimchi(ctx, symbol, from, to, minutes)
}
